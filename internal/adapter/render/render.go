// Package render draws the pumping-test figures with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Output names of the summary figures, without extension.
const (
	AggregateName = "all-GI-data"
	ContourName   = "grand-island-contour-maps"
	ScreenName    = "grand-island-screen-locations"
)

// Axis labels shared by the drawdown figures.
const (
	elapsedLabel  = "time since pumping began (min)"
	drawdownLabel = "drawdown (ft)"
)

// Output is where and how a figure is written.
type Output struct {
	Dir    string
	Format string
}

func (o Output) path(name string) string {
	return filepath.Join(o.Dir, name+"."+o.Format)
}

// writeFigure renders onto a canvas of the output format and writes it to path.
func writeFigure(path, format string, w, h vg.Length, paint func(draw.Canvas)) error {
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}
	paint(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// namedColor resolves an SVG/CSS colour name, falling back to black.
func namedColor(name string) color.Color {
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return color.Black
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// logXYs keeps the pairs that can be placed on log-log axes.
func logXYs(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if xs[i] > 0 && ys[i] > 0 && finite(xs[i]) && finite(ys[i]) {
			out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return out
}

// semilogXYs keeps the pairs that can be placed on a log x axis.
func semilogXYs(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if xs[i] > 0 && finite(xs[i]) && finite(ys[i]) {
			out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return out
}

func setLogX(p *plot.Plot) {
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
}

func setLogY(p *plot.Plot) {
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

var dashed = []vg.Length{vg.Points(4), vg.Points(2)}

// vLine is a vertical rule across the full height of the data area. It
// widens the x range to include X and leaves the y range to the data.
type vLine struct {
	X float64
	draw.LineStyle
}

// DataRange implements plot.DataRanger.
func (v vLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	return v.X, v.X, math.Inf(1), math.Inf(-1)
}

func (v vLine) Plot(c draw.Canvas, plt *plot.Plot) {
	if v.X < plt.X.Min || v.X > plt.X.Max {
		return
	}
	trX, _ := plt.Transforms(&c)
	x := trX(v.X)
	c.StrokeLine2(v.LineStyle, x, c.Min.Y, x, c.Max.Y)
}

// dashGlyph is a short horizontal stroke.
type dashGlyph struct{}

func (dashGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetLineStyle(draw.LineStyle{Color: sty.Color, Width: vg.Points(0.75)})
	var p vg.Path
	p.Move(vg.Point{X: pt.X - sty.Radius, Y: pt.Y})
	p.Line(vg.Point{X: pt.X + sty.Radius, Y: pt.Y})
	c.Stroke(p)
}

func newScatter(xys plotter.XYs, shape draw.GlyphDrawer, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	return s, nil
}

func newLine(xys plotter.XYs, c color.Color, width vg.Length, dashes []vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = width
	l.LineStyle.Dashes = dashes
	return l, nil
}
