package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Reinsch smoothing spline. The natural cubic spline g with knots at every x
// minimising ∫g''² subject to Σ(y - g(x))² <= s is found by solving
//
//	(R + λ QᵀQ) c = Qᵀy,  g = y - λ Q c
//
// for the λ at which the residual λ²‖Qc‖² equals s. The residual grows
// monotonically with λ, from 0 (interpolation) to the least-squares line.

const (
	splineMaxBisections = 200
	splineTolerance     = 1e-10
)

type reinsch struct {
	x, y []float64
	qt   *mat.Dense // (n-2) x n second-difference operator
	r    *mat.SymDense
	qtq  *mat.Dense
	qty  *mat.VecDense
}

func newReinsch(x, y []float64) (*reinsch, error) {
	n := len(x)
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 samples, have %d", ErrSplineFit, n)
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d abscissae for %d ordinates", ErrSplineFit, n, len(y))
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = x[i+1] - x[i]
		if !(h[i] > 0) {
			return nil, fmt.Errorf("%w: abscissae not strictly increasing at index %d", ErrSplineFit, i+1)
		}
	}

	m := n - 2
	qt := mat.NewDense(m, n, nil)
	r := mat.NewSymDense(m, nil)
	for j := 0; j < m; j++ {
		qt.Set(j, j, 1/h[j])
		qt.Set(j, j+1, -1/h[j]-1/h[j+1])
		qt.Set(j, j+2, 1/h[j+1])
		r.SetSym(j, j, (h[j]+h[j+1])/3)
		if j+1 < m {
			r.SetSym(j, j+1, h[j+1]/6)
		}
	}

	var qtq mat.Dense
	qtq.Mul(qt, qt.T())

	qty := mat.NewVecDense(m, nil)
	qty.MulVec(qt, mat.NewVecDense(n, append([]float64(nil), y...)))

	return &reinsch{x: x, y: y, qt: qt, r: r, qtq: &qtq, qty: qty}, nil
}

// solve returns the smoothed ordinates and residual sum of squares for λ.
func (s *reinsch) solve(lambda float64) ([]float64, float64, error) {
	m := s.qty.Len()
	a := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			a.SetSym(i, j, s.r.At(i, j)+lambda*s.qtq.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, 0, fmt.Errorf("%w: system not positive definite (lambda=%g)", ErrSplineFit, lambda)
	}
	var c mat.VecDense
	if err := chol.SolveVecTo(&c, s.qty); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSplineFit, err)
	}

	var qc mat.VecDense
	qc.MulVec(s.qt.T(), &c)

	g := make([]float64, len(s.y))
	rss := 0.0
	for i := range g {
		d := lambda * qc.AtVec(i)
		g[i] = s.y[i] - d
		rss += d * d
	}
	return g, rss, nil
}

// SmoothingSpline returns the ordinates, at each x, of the natural cubic
// smoothing spline whose residual sum of squares does not exceed smoothing.
// x must be strictly increasing with at least 3 values. A smoothing of zero
// interpolates y; a smoothing at least as large as the residual of the
// least-squares line returns that line.
func SmoothingSpline(x, y []float64, smoothing float64) ([]float64, error) {
	s, err := newReinsch(x, y)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(smoothing) || smoothing < 0 {
		return nil, fmt.Errorf("%w: invalid smoothing %g", ErrSplineFit, smoothing)
	}
	if smoothing == 0 {
		return append([]float64(nil), y...), nil
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	line := make([]float64, len(x))
	lineRSS := 0.0
	for i, xi := range x {
		line[i] = alpha + beta*xi
		lineRSS += (y[i] - line[i]) * (y[i] - line[i])
	}
	if smoothing >= lineRSS {
		return line, nil
	}

	// Bracket λ in log space, then bisect.
	lo, hi := 1.0, 1.0
	for i := 0; ; i++ {
		_, rss, err := s.solve(hi)
		if err != nil {
			return nil, err
		}
		if rss >= smoothing {
			break
		}
		if i >= 60 {
			return line, nil
		}
		hi *= 10
	}
	for i := 0; ; i++ {
		_, rss, err := s.solve(lo)
		if err != nil {
			return nil, err
		}
		if rss <= smoothing {
			break
		}
		if i >= 60 {
			return nil, fmt.Errorf("%w: smoothing %g not reachable", ErrSplineFit, smoothing)
		}
		lo /= 10
	}

	best, _, err := s.solve(lo)
	if err != nil {
		return nil, err
	}
	for i := 0; i < splineMaxBisections; i++ {
		mid := math.Sqrt(lo * hi)
		g, rss, err := s.solve(mid)
		if err != nil {
			return nil, err
		}
		if rss <= smoothing {
			lo, best = mid, g
		} else {
			hi = mid
		}
		if math.Abs(rss-smoothing) <= splineTolerance*smoothing || hi/lo-1 < splineTolerance {
			break
		}
	}
	return best, nil
}
