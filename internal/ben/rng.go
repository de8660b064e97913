package ben

import "math/rand"

// newRNG returns a seeded PRNG. A zero seed falls back to a fixed default
// rather than a time-based seed, so propagate_mcmc and propagate_pf runs
// are reproducible unless the caller explicitly asks for variation by
// passing a non-zero seed (spec.md §8 "bit-identical posterior means").
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed)) // #nosec G404 - sampling algorithm, not security-sensitive
}

// sampleBernoulli returns true with probability p.
func sampleBernoulli(p float64, rng *rand.Rand) bool {
	return rng.Float64() < p
}

// systematicResample implements systematic resampling for the particle
// filter: a single random offset determines every draw, giving lower
// variance than independent multinomial resampling for the same particle
// count.
func systematicResample(weights []float64, rng *rand.Rand) []int {
	n := len(weights)
	indices := make([]int, n)
	if n == 0 {
		return indices
	}

	cumulative := make([]float64, n)
	sum := 0.0
	for i, w := range weights {
		sum += w
		cumulative[i] = sum
	}
	if sum <= 0 {
		for i := range indices {
			indices[i] = i % n
		}
		return indices
	}

	start := rng.Float64() / float64(n)
	j := 0
	for i := 0; i < n; i++ {
		target := (start + float64(i)/float64(n)) * sum
		for j < n-1 && cumulative[j] < target {
			j++
		}
		indices[i] = j
	}
	return indices
}

// effectiveSampleSize computes 1 / sum(w_i^2) for normalized weights w.
func effectiveSampleSize(weights []float64) float64 {
	sumSq := 0.0
	for _, w := range weights {
		sumSq += w * w
	}
	if sumSq == 0 {
		return 0
	}
	return 1.0 / sumSq
}

// normalizeWeights rescales weights to sum to 1, returning the original
// slice unmodified when the sum is non-positive.
func normalizeWeights(weights []float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return weights
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}
