package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// DefaultSmoothingDivisor is the constant in the smoothing heuristic
// norm(drawdown) / (n * divisor). It is an empirical tunable from the
// 1942 analysis, not a derived quantity.
const DefaultSmoothingDivisor = 70.0

// DerivativeSample is the fitted curve evaluated at one rising-limb sample.
type DerivativeSample struct {
	Elapsed float64 // minutes
	Fitted  float64 // smoothed drawdown, ft
	Slope   float64 // ds/d(ln t), ft
}

// Derivative is the smoothed rising limb of one well.
type Derivative struct {
	WellID    string
	Smoothing float64
	Samples   []DerivativeSample
}

// SmoothingFactor returns norm(drawdown) / (n * divisor).
func SmoothingFactor(drawdown []float64, n int, divisor float64) float64 {
	if n <= 0 || divisor <= 0 {
		return 0
	}
	return floats.Norm(drawdown, 2) / (float64(n) * divisor)
}

// EstimateDerivative fits a smoothing spline to (ln t, s) over the rising
// limb of a series and evaluates its value and first derivative at every
// sample. Samples at t = 0 have no logarithm and are dropped. The smoothing
// strength is taken from the normalized series and the number of fitted
// samples.
func EstimateDerivative(s Series, w TestWindow, divisor float64) (Derivative, error) {
	limb := RisingLimb(s, w)

	elapsed := make([]float64, 0, limb.Len())
	drawdown := make([]float64, 0, limb.Len())
	logt := make([]float64, 0, limb.Len())
	for i, t := range limb.Elapsed {
		if t <= 0 {
			continue
		}
		elapsed = append(elapsed, t)
		drawdown = append(drawdown, limb.Drawdown[i])
		logt = append(logt, math.Log(t))
	}

	d := Derivative{WellID: s.WellID}
	if len(logt) < 3 {
		return d, fmt.Errorf("well %s: %w: %d rising-limb samples", s.WellID, ErrSplineFit, len(logt))
	}

	d.Smoothing = SmoothingFactor(Normalize(s, w).Drawdown, len(logt), divisor)

	g, err := SmoothingSpline(logt, drawdown, d.Smoothing)
	if err != nil {
		return d, fmt.Errorf("well %s: %w", s.WellID, err)
	}

	var nc interp.NaturalCubic
	if err := nc.Fit(logt, g); err != nil {
		return d, fmt.Errorf("well %s: %w: %v", s.WellID, ErrSplineFit, err)
	}

	d.Samples = make([]DerivativeSample, len(logt))
	for i, x := range logt {
		d.Samples[i] = DerivativeSample{
			Elapsed: elapsed[i],
			Fitted:  nc.Predict(x),
			Slope:   nc.PredictDerivative(x),
		}
	}
	return d, nil
}
