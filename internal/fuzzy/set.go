package fuzzy

import (
	"sort"

	"edc/internal/edcerr"
)

// FuzzySet is a named fuzzy set over a closed interval [Lo, Hi].
// Immutable after construction.
type FuzzySet struct {
	Name string
	Lo   float64
	Hi   float64
	Fn   MembershipFn
}

// NewFuzzySet validates and constructs a FuzzySet.
func NewFuzzySet(name string, lo, hi float64, fn MembershipFn) (*FuzzySet, error) {
	if lo >= hi {
		return nil, edcerr.Newf(edcerr.InvalidInput, "invalid universe: lo (%f) must be < hi (%f)", lo, hi)
	}
	if c, ok := fn.(Custom); ok {
		if err := validateCustomPoints(c.Points); err != nil {
			return nil, err
		}
	}
	return &FuzzySet{Name: name, Lo: lo, Hi: hi, Fn: fn}, nil
}

func validateCustomPoints(points []CustomPoint) error {
	if len(points) == 0 {
		return edcerr.New(edcerr.InvalidInput, "custom membership function requires at least one point", nil)
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].X < points[j].X }) {
		return edcerr.New(edcerr.InvalidInput, "custom membership function points must be sorted by x", nil)
	}
	for _, p := range points {
		if p.Y < 0 || p.Y > 1 {
			return edcerr.Newf(edcerr.InvalidInput, "custom membership function y=%f out of [0,1]", p.Y)
		}
	}
	return nil
}

// Membership evaluates μ(x). Deterministic; x outside [Lo,Hi] returns 0.
func (s *FuzzySet) Membership(x float64) float64 {
	if x < s.Lo || x > s.Hi {
		return 0
	}
	return clamp01(s.Fn.membership(x))
}
