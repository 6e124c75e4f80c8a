package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// DrawdownTransformer turns a loaded series into the input of the drawdown
// figures: the normalized series, its line group and, when enabled, the
// smoothed derivative of the rising limb.
type DrawdownTransformer struct {
	window      domain.TestWindow
	pumped      domain.PumpedWell
	divisor     float64
	derivatives bool
	logger      *slog.Logger
}

// NewTransformer creates a DrawdownTransformer from the run options.
func NewTransformer(opts Options, logger *slog.Logger) *DrawdownTransformer {
	return &DrawdownTransformer{
		window:      opts.Window,
		pumped:      opts.PumpedWell,
		divisor:     opts.SmoothingDivisor,
		derivatives: opts.SplineDerivative,
		logger:      logger,
	}
}

// Transform always returns a usable plot input. A non-nil error reports a
// derivative that could not be fitted; the plot then has no overlay.
func (t *DrawdownTransformer) Transform(f domain.WellFile, s domain.Series) (domain.WellPlot, error) {
	w := domain.WellPlot{
		File:     f,
		Drawdown: domain.Normalize(s, t.window),
		Line:     domain.LineOf(f.ID, t.pumped),
	}
	if !t.derivatives || domain.IsPumpedWell(f.ID, t.pumped) {
		return w, nil
	}

	d, err := domain.EstimateDerivative(s, t.window, t.divisor)
	if err != nil {
		return w, err
	}
	t.logger.Debug("derivative fitted", "well", f.ID, "samples", len(d.Samples), "smoothing", d.Smoothing)
	w.Derivative = &d
	return w, nil
}
