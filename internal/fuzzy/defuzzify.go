package fuzzy

import "edc/internal/edcerr"

// DefuzzifyMethod selects the crisp-value extraction strategy.
type DefuzzifyMethod string

const (
	Centroid        DefuzzifyMethod = "centroid"
	Maximum         DefuzzifyMethod = "maximum"
	MeanOfMaxima    DefuzzifyMethod = "mean_of_maxima"
	BisectorOfArea  DefuzzifyMethod = "bisector_of_area"
)

const centroidSamples = 200

// Defuzzify extracts a crisp value from an output fuzzy set using the
// given method. Centroid returns the universe midpoint (with a
// NumericUnderflow error, not silently) when the total accumulated mass
// is below 1e-9.
func Defuzzify(output *FuzzyOutputSet, method DefuzzifyMethod) (float64, error) {
	if output == nil || len(output.Activation) == 0 {
		return 0, edcerr.New(edcerr.InvalidInput, "output set has no activation", nil)
	}

	switch method {
	case Centroid, "":
		return defuzzifyCentroid(output)
	case Maximum:
		return defuzzifyMaximum(output), nil
	case MeanOfMaxima:
		return defuzzifyMeanOfMaxima(output), nil
	case BisectorOfArea:
		return defuzzifyBisector(output)
	default:
		return 0, edcerr.Newf(edcerr.InvalidInput, "unknown defuzzification method: %s", method)
	}
}

func sampleUniverse(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	xs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		xs[i] = lo + step*float64(i)
	}
	return xs
}

func defuzzifyCentroid(o *FuzzyOutputSet) (float64, error) {
	xs := sampleUniverse(o.Lo, o.Hi, centroidSamples)

	var numerator, mass float64
	for _, x := range xs {
		m := o.aggregatedMembership(x)
		numerator += x * m
		mass += m
	}

	if mass < 1e-9 {
		mid := (o.Lo + o.Hi) / 2
		return mid, edcerr.Newf(edcerr.NumericUnderflow, "total mass %.3e below threshold; returning universe midpoint", mass)
	}

	return numerator / mass, nil
}

func defuzzifyMaximum(o *FuzzyOutputSet) float64 {
	xs := sampleUniverse(o.Lo, o.Hi, centroidSamples)

	best := xs[0]
	bestM := o.aggregatedMembership(best)
	for _, x := range xs[1:] {
		m := o.aggregatedMembership(x)
		if m > bestM {
			bestM = m
			best = x
		}
	}
	return best
}

func defuzzifyMeanOfMaxima(o *FuzzyOutputSet) float64 {
	xs := sampleUniverse(o.Lo, o.Hi, centroidSamples)

	var maxM float64
	for _, x := range xs {
		if m := o.aggregatedMembership(x); m > maxM {
			maxM = m
		}
	}

	var sum float64
	var count int
	const tol = 1e-6
	for _, x := range xs {
		if m := o.aggregatedMembership(x); m >= maxM-tol {
			sum += x
			count++
		}
	}
	if count == 0 {
		return (o.Lo + o.Hi) / 2
	}
	return sum / float64(count)
}

func defuzzifyBisector(o *FuzzyOutputSet) (float64, error) {
	xs := sampleUniverse(o.Lo, o.Hi, centroidSamples)

	memberships := make([]float64, len(xs))
	var totalArea float64
	for i, x := range xs {
		memberships[i] = o.aggregatedMembership(x)
		totalArea += memberships[i]
	}

	if totalArea < 1e-9 {
		mid := (o.Lo + o.Hi) / 2
		return mid, edcerr.Newf(edcerr.NumericUnderflow, "total mass %.3e below threshold; returning universe midpoint", totalArea)
	}

	var running float64
	half := totalArea / 2
	for i, m := range memberships {
		running += m
		if running >= half {
			return xs[i], nil
		}
	}
	return xs[len(xs)-1], nil
}
