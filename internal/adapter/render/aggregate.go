package render

import (
	"context"
	"fmt"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

const aggregateTitle = "July 1931 Grand Island Test USGS WSP-887 (Wenzel, 1942)"

// AggregateOptions configures the all-wells figure.
type AggregateOptions struct {
	Output
	Duration float64
	// Colors maps a line code to a colour name.
	Colors map[string]string
}

// Aggregate accumulates every well on one log-log axes, coloured by line,
// and writes the figure on Flush.
type Aggregate struct {
	opts  AggregateOptions
	plot  *plot.Plot
	wells int
}

// NewAggregate creates an aggregate renderer.
func NewAggregate(opts AggregateOptions) *Aggregate {
	return &Aggregate{opts: opts, plot: plot.New()}
}

// Name identifies the figure this strategy writes.
func (r *Aggregate) Name() string { return "aggregate" }

// Add draws one well's curve. Nothing is written until Flush.
func (r *Aggregate) Add(_ context.Context, w domain.WellPlot) (string, error) {
	xys := logXYs(w.Drawdown.Elapsed, w.Drawdown.Drawdown)
	if len(xys) == 0 {
		return "", fmt.Errorf("well %s: %w", w.File.ID, domain.ErrNoPlottableSamples)
	}
	l, err := newLine(xys, namedColor(r.opts.Colors[w.Line]), vg.Points(0.25), nil)
	if err != nil {
		return "", fmt.Errorf("well %s: %w", w.File.ID, err)
	}
	r.plot.Add(l)
	r.wells++
	return "", nil
}

// Flush writes all-GI-data.<format>.
func (r *Aggregate) Flush(context.Context) (string, error) {
	if r.wells == 0 {
		return "", fmt.Errorf("aggregate plot: %w", domain.ErrNoPlottableSamples)
	}

	p := r.summaryPlot()
	path := r.opts.path(AggregateName)
	if err := writeFigure(path, r.opts.Format, 8*vg.Inch, 6*vg.Inch, p.Draw); err != nil {
		return "", err
	}
	r.plot, r.wells = plot.New(), 0
	return path, nil
}

// summaryPlot finishes the accumulated plot with titles, log axes and the
// pumping-duration rule.
func (r *Aggregate) summaryPlot() *plot.Plot {
	p := r.plot
	p.Title.Text = aggregateTitle
	p.X.Label.Text = elapsedLabel
	p.Y.Label.Text = drawdownLabel
	setLogX(p)
	setLogY(p)
	p.Add(vLine{X: r.opts.Duration, LineStyle: draw.LineStyle{Color: colornames.Black, Width: vg.Points(0.1)}})
	return p
}
