package domain

import "math"

const eulerGamma = 0.5772156649015329

// TheisWellFunction returns W(u), the exponential integral E1(u): the power
// series for u <= 1, a continued fraction above. Values of u above 50 return 0.
func TheisWellFunction(u float64) float64 {
	switch {
	case u <= 0:
		return math.Inf(1)
	case u > 50:
		return 0
	case u <= 1:
		return e1Series(u)
	}
	return e1Fraction(u)
}

func e1Series(u float64) float64 {
	sum := -eulerGamma - math.Log(u)
	term := u
	for k := 1; k < 100; k++ {
		c := term / float64(k)
		sum += c
		if math.Abs(c) < 1e-16*math.Abs(sum) {
			break
		}
		term *= -u / float64(k+1)
	}
	return sum
}

// e1Fraction evaluates E1 by modified Lentz iteration.
func e1Fraction(u float64) float64 {
	const tiny = 1e-300
	b := u + 1
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i < 200; i++ {
		an := -float64(i * i)
		b += 2
		d = 1 / (an*d + b)
		c = b + an/c
		del := c * d
		h *= del
		if math.Abs(del-1) < 1e-15 {
			break
		}
	}
	return h * math.Exp(-u)
}

// Aquifer holds confined-aquifer properties for synthetic drawdown.
type Aquifer struct {
	Transmissivity float64 // ft²/day
	Storativity    float64
}

// Drawdown returns the Theis drawdown in ft at radius r (ft) after elapsed
// minutes for a well pumped at q (ft³/day) for pumping minutes, superposing
// recovery after the pump stops.
func (a Aquifer) Drawdown(q, r, elapsed, pumping float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	s := a.theis(q, r, elapsed)
	if elapsed > pumping {
		s -= a.theis(q, r, elapsed-pumping)
	}
	return s
}

func (a Aquifer) theis(q, r, minutes float64) float64 {
	days := minutes / 1440
	u := r * r * a.Storativity / (4 * a.Transmissivity * days)
	return q / (4 * math.Pi * a.Transmissivity) * TheisWellFunction(u)
}
