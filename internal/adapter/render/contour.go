package render

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// defaultLevels is the number of colour steps in a contour panel.
const defaultLevels = 12

// Contours draws the water table and land surface maps side by side.
type Contours struct {
	out    Output
	levels int
}

// NewContours creates a contour map renderer.
func NewContours(out Output) *Contours {
	return &Contours{out: out, levels: defaultLevels}
}

// Render writes grand-island-contour-maps.<format>: water table on the left,
// land surface with well labels on the right.
func (r *Contours) Render(m domain.ContourMaps) (string, error) {
	water, waterBar, err := r.panel(m, m.WaterTable, "water table (ft AMSL)", false)
	if err != nil {
		return "", fmt.Errorf("water table: %w", err)
	}
	land, landBar, err := r.panel(m, m.LandSurface, "land surface (ft AMSL)", true)
	if err != nil {
		return "", fmt.Errorf("land surface: %w", err)
	}

	path := r.out.path(ContourName)
	err = writeFigure(path, r.out.Format, 14*vg.Inch, 6*vg.Inch, func(dc draw.Canvas) {
		half := (dc.Max.X - dc.Min.X) / 2
		drawWithBar(draw.Crop(dc, 0, -half, 0, 0), water, waterBar)
		drawWithBar(draw.Crop(dc, half, 0, 0, 0), land, landBar)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (r *Contours) panel(m domain.ContourMaps, f *domain.Field, title string, labelled bool) (*plot.Plot, *plot.Plot, error) {
	lo, hi := f.Range()
	if math.IsNaN(lo) {
		return nil, nil, domain.ErrNoPlottableSamples
	}
	flat := hi <= lo
	if flat {
		hi = lo + 1
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (ft)"
	p.Y.Label.Text = "y (ft)"

	hm := plotter.NewHeatMap(f, cm.Palette(r.levels))
	hm.Min, hm.Max = lo, hi
	p.Add(hm)
	if !flat {
		iso := plotter.NewContour(f.Filled(), levelsBetween(lo, hi, r.levels), nil)
		iso.LineStyles = []draw.LineStyle{{Color: colornames.Dimgray, Width: vg.Points(0.5)}}
		p.Add(iso)
	}
	p.Add(hullMask{Hull: f.Hull, Color: colornames.White}, plotter.NewGrid())

	xys := make(plotter.XYs, len(m.Coordinates))
	labels := make([]string, len(m.Coordinates))
	for i, c := range m.Coordinates {
		xys[i] = plotter.XY{X: c.X, Y: c.Y}
		labels[i] = c.Label
	}
	wells, err := newScatter(xys, draw.CircleGlyph{}, colornames.Black, vg.Points(1.5))
	if err != nil {
		return nil, nil, err
	}
	p.Add(wells)

	if labelled {
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, nil, err
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = vg.Points(6)
		}
		p.Add(lbl)
	}

	p.X.Min, p.X.Max = m.Bounds.MinX, m.Bounds.MaxX
	p.Y.Min, p.Y.Max = m.Bounds.MinY, m.Bounds.MaxY

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: r.levels})
	bar.HideX()
	bar.Y.Padding = 0

	return p, bar, nil
}

// drawWithBar draws a map with its colour bar to the right at half height.
func drawWithBar(dc draw.Canvas, p, bar *plot.Plot) {
	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	barW := w / 8
	p.Draw(draw.Crop(dc, 0, -barW, 0, 0))
	bar.Draw(draw.Crop(dc, w-barW, 0, h/4, -h/4))
}

// levelsBetween returns the n-1 interior boundaries of n equal bands on [lo, hi].
func levelsBetween(lo, hi float64, n int) []float64 {
	levels := make([]float64, 0, n-1)
	for k := 1; k < n; k++ {
		levels = append(levels, lo+(hi-lo)*float64(k)/float64(n))
	}
	return levels
}

// hullMask paints the data area outside Hull, hiding the extrapolated
// isolines and the heat map cells that straddle the hull.
type hullMask struct {
	Hull  []domain.Point
	Color color.Color
}

func (m hullMask) Plot(c draw.Canvas, plt *plot.Plot) {
	if len(m.Hull) < 3 {
		return
	}
	trX, trY := plt.Transforms(&c)

	var path vg.Path
	path.Move(vg.Point{X: c.Min.X, Y: c.Min.Y})
	path.Line(vg.Point{X: c.Max.X, Y: c.Min.Y})
	path.Line(vg.Point{X: c.Max.X, Y: c.Max.Y})
	path.Line(vg.Point{X: c.Min.X, Y: c.Max.Y})
	path.Close()
	// The hull is counter-clockwise like the frame, so trace it backwards to
	// leave a hole under the nonzero fill rule.
	last := len(m.Hull) - 1
	path.Move(vg.Point{X: trX(m.Hull[last].X), Y: trY(m.Hull[last].Y)})
	for i := last - 1; i >= 0; i-- {
		path.Line(vg.Point{X: trX(m.Hull[i].X), Y: trY(m.Hull[i].Y)})
	}
	path.Close()

	c.SetColor(m.Color)
	c.Fill(path)
}
