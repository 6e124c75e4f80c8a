package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// PerWellOptions configures the per-well diagnostic figures.
type PerWellOptions struct {
	Output
	// Duration is the pumping duration in minutes, marked with a vertical rule.
	Duration float64
	// Derivatives selects the smoothed-derivative panel. When false every
	// figure carries the sampling-interval panel instead.
	Derivatives   bool
	DerivativeMin float64
	DerivativeMax float64
}

// PerWell writes one log-log diagnostic figure per well, named after the
// observation file.
type PerWell struct {
	opts PerWellOptions
}

// NewPerWell creates a per-well renderer.
func NewPerWell(opts PerWellOptions) *PerWell {
	return &PerWell{opts: opts}
}

// Name identifies the figures this strategy writes.
func (r *PerWell) Name() string { return "well" }

// Add renders and writes the figure for one well, replacing any existing file.
func (r *PerWell) Add(_ context.Context, w domain.WellPlot) (string, error) {
	top, err := r.drawdownPlot(w)
	if err != nil {
		return "", err
	}

	var lower *plot.Plot
	switch {
	case !r.opts.Derivatives:
		lower, err = intervalPlot(w.Drawdown)
	case w.Derivative != nil:
		lower, err = r.derivativePlot(w.Derivative)
	}
	if err != nil {
		return "", fmt.Errorf("well %s: %w", w.File.ID, err)
	}

	base := strings.TrimSuffix(filepath.Base(w.File.Path), filepath.Ext(w.File.Path))
	path := r.opts.path(base)

	if lower == nil {
		top.X.Label.Text = elapsedLabel
		err = writeFigure(path, r.opts.Format, 8*vg.Inch, 6*vg.Inch, top.Draw)
	} else {
		lower.X.Min, lower.X.Max = top.X.Min, top.X.Max
		lower.X.Label.Text = elapsedLabel
		err = writeFigure(path, r.opts.Format, 8*vg.Inch, 9*vg.Inch, func(dc draw.Canvas) {
			stack(dc, top, lower)
		})
	}
	if err != nil {
		return "", fmt.Errorf("well %s: %w", w.File.ID, err)
	}
	return path, nil
}

// Flush is a no-op; every figure is written by Add.
func (r *PerWell) Flush(context.Context) (string, error) { return "", nil }

func (r *PerWell) drawdownPlot(w domain.WellPlot) (*plot.Plot, error) {
	xys := logXYs(w.Drawdown.Elapsed, w.Drawdown.Drawdown)
	if len(xys) == 0 {
		return nil, fmt.Errorf("well %s: %w", w.File.ID, domain.ErrNoPlottableSamples)
	}

	p := plot.New()
	p.Title.Text = w.File.ID
	p.Y.Label.Text = drawdownLabel
	setLogX(p)
	setLogY(p)

	line, err := newLine(xys, colornames.Red, vg.Points(1), nil)
	if err != nil {
		return nil, err
	}
	points, err := newScatter(xys, draw.CircleGlyph{}, colornames.Black, vg.Points(1.5))
	if err != nil {
		return nil, err
	}
	p.Add(line, points)

	if w.Derivative != nil {
		xs, ys := fittedCurve(w.Derivative)
		if fit := logXYs(xs, ys); len(fit) > 1 {
			l, err := newLine(fit, colornames.Blue, vg.Points(1), dashed)
			if err != nil {
				return nil, err
			}
			p.Add(l)
		}
	}

	p.Add(vLine{X: r.opts.Duration, LineStyle: draw.LineStyle{Color: colornames.Steelblue, Width: vg.Points(1)}})
	return p, nil
}

func (r *PerWell) derivativePlot(d *domain.Derivative) (*plot.Plot, error) {
	xs := make([]float64, len(d.Samples))
	ys := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		xs[i], ys[i] = s.Elapsed, s.Slope
	}

	p := plot.New()
	p.Y.Label.Text = "d s/d(ln(t)) no recovery"
	setLogX(p)
	if xys := semilogXYs(xs, ys); len(xys) > 1 {
		l, err := newLine(xys, colornames.Green, vg.Points(1), dashed)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	p.Add(plotter.NewGrid())
	p.Y.Min, p.Y.Max = r.opts.DerivativeMin, r.opts.DerivativeMax
	p.Add(vLine{X: r.opts.Duration, LineStyle: draw.LineStyle{Color: colornames.Steelblue, Width: vg.Points(1)}})
	return p, nil
}

// intervalPlot shows the gap between consecutive samples.
func intervalPlot(d domain.Drawdown) (*plot.Plot, error) {
	elapsed, gaps := domain.SamplingIntervals(d)

	p := plot.New()
	p.Y.Label.Text = "Δt (min)"
	setLogX(p)
	if xys := semilogXYs(elapsed, gaps); len(xys) > 0 {
		s, err := newScatter(xys, draw.CrossGlyph{}, colornames.Red, vg.Points(2.5))
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}
	return p, nil
}

func fittedCurve(d *domain.Derivative) (xs, ys []float64) {
	xs = make([]float64, len(d.Samples))
	ys = make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		xs[i], ys[i] = s.Elapsed, s.Fitted
	}
	return xs, ys
}

// stack draws plots top to bottom with aligned data areas.
func stack(dc draw.Canvas, plots ...*plot.Plot) {
	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	t := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(10),
	}
	canvases := plot.Align(rows, t, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}
}
