// Package fuzzy implements the Fuzzy Inference Engine: membership
// functions, fuzzy sets, rule evaluation, defuzzification, and
// Dempster-Shafer evidence combination.
package fuzzy

import "math"

// MembershipFn is a closed set of membership-function variants over a
// fuzzy set's universe. Every implementation must return a value in
// [0,1] for any x; callers clamp against the universe separately.
type MembershipFn interface {
	membership(x float64) float64
	kind() string
}

// Triangular is 0 at Left and Right, 1 at Center.
type Triangular struct {
	Left, Center, Right float64
}

func (t Triangular) kind() string { return "triangular" }

func (t Triangular) membership(x float64) float64 {
	switch {
	case x <= t.Left || x >= t.Right:
		return 0
	case x == t.Center:
		return 1
	case x < t.Center:
		return (x - t.Left) / (t.Center - t.Left)
	default:
		return (t.Right - x) / (t.Right - t.Center)
	}
}

// Trapezoidal is 1 on [B,C], 0 outside [A,D], linear in between.
// Requires A <= B <= C <= D.
type Trapezoidal struct {
	A, B, C, D float64
}

func (t Trapezoidal) kind() string { return "trapezoidal" }

func (t Trapezoidal) membership(x float64) float64 {
	switch {
	case x <= t.A || x >= t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Gaussian is a bell curve centered at Mean with standard deviation Sigma.
type Gaussian struct {
	Mean, Sigma float64
}

func (g Gaussian) kind() string { return "gaussian" }

func (g Gaussian) membership(x float64) float64 {
	if g.Sigma == 0 {
		if x == g.Mean {
			return 1
		}
		return 0
	}
	z := (x - g.Mean) / g.Sigma
	return math.Exp(-0.5 * z * z)
}

// Sigmoid rises from 0 to 1 around Midpoint at the given Slope.
type Sigmoid struct {
	Slope, Midpoint float64
}

func (s Sigmoid) kind() string { return "sigmoid" }

func (s Sigmoid) membership(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-s.Slope*(x-s.Midpoint)))
}

// CustomPoint is one (x, y) sample of a piecewise-linear membership
// function. Points must be sorted by X with Y in [0,1].
type CustomPoint struct {
	X, Y float64
}

// Custom is a piecewise-linear membership function defined by sorted
// sample points, clamped at the ends.
type Custom struct {
	Points []CustomPoint
}

func (c Custom) kind() string { return "custom" }

func (c Custom) membership(x float64) float64 {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if x <= c.Points[0].X {
		return clamp01(c.Points[0].Y)
	}
	if x >= c.Points[n-1].X {
		return clamp01(c.Points[n-1].Y)
	}
	for i := 0; i < n-1; i++ {
		p0, p1 := c.Points[i], c.Points[i+1]
		if x >= p0.X && x <= p1.X {
			if p1.X == p0.X {
				return clamp01(p0.Y)
			}
			t := (x - p0.X) / (p1.X - p0.X)
			return clamp01(p0.Y + t*(p1.Y-p0.Y))
		}
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
