package ben

import (
	"context"
	"sort"
)

const (
	mcmcBurnIn     = 1000
	mcmcThinning   = 10
	mcmcSamples    = 5000
	mcmcChainCount = 4
)

// propagateMCMC runs mcmcChainCount independent Gibbs chains concurrently
// (spec.md §5 "MCMC chain independence" runs in a data-parallel thread
// pool) and averages their posterior means, which is both a standard
// multi-chain MCMC practice and the natural way to exercise the
// hardware-concurrency-sized worker pool required of propagation. Each
// chain is seeded deterministically from params.Seed plus its index, so
// repeated calls with the same seed are bit-identical regardless of
// actual goroutine interleaving.
func (n *Network) propagateMCMC(ctx context.Context, params Params) (*PropagationReport, error) {
	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seed := params.Seed
	if seed == 0 {
		seed = 1
	}

	chainReports, err := runChains(ctx, mcmcChainCount, seed, func(cctx context.Context, chainSeed int64) (*PropagationReport, error) {
		return n.runGibbsChain(cctx, ids, chainSeed)
	})
	if err != nil {
		return nil, err
	}

	beliefs := make(map[string]float64, len(ids))
	autocorr := 0.0
	deadlineHit := false
	iterations := 0
	for _, r := range chainReports {
		for id, v := range r.Beliefs {
			beliefs[id] += v / float64(mcmcChainCount)
		}
		autocorr += r.Autocorrelation / float64(mcmcChainCount)
		if r.DeadlineExceeded {
			deadlineHit = true
		}
		if r.Iterations > iterations {
			iterations = r.Iterations
		}
	}

	if len(beliefs) == 0 {
		beliefs = snapshotBeliefs(n.nodes)
	} else {
		for id, v := range beliefs {
			n.nodes[id].CurrentBelief = v
		}
	}

	return &PropagationReport{
		Algorithm:        AlgorithmMCMC,
		Beliefs:          beliefs,
		Converged:        !deadlineHit,
		Iterations:       iterations,
		Autocorrelation:  autocorr,
		DeadlineExceeded: deadlineHit,
	}, nil
}

// runGibbsChain runs one single-site Gibbs chain without mutating the
// network, so mcmcChainCount chains can read n.nodes concurrently.
func (n *Network) runGibbsChain(ctx context.Context, ids []string, seed int64) (*PropagationReport, error) {
	rng := newRNG(seed)
	state := make(map[string]float64, len(ids))
	for _, id := range ids {
		state[id] = n.nodes[id].CurrentBelief
	}

	sums := make(map[string]float64, len(ids))
	collected := 0
	var chainAgg []float64

	totalSweeps := mcmcBurnIn + mcmcSamples*mcmcThinning
	sweep := 0
	for ; sweep < totalSweeps; sweep++ {
		if deadlineExceeded(ctx) {
			break
		}

		for _, id := range ids {
			p := n.mcmcConditional(id, state)
			if sampleBernoulli(p, rng) {
				state[id] = 1.0
			} else {
				state[id] = 0.0
			}
		}

		if sweep >= mcmcBurnIn && (sweep-mcmcBurnIn)%mcmcThinning == 0 {
			agg := 0.0
			for _, id := range ids {
				sums[id] += state[id]
				agg += state[id]
			}
			chainAgg = append(chainAgg, agg/float64(len(ids)))
			collected++
		}
	}

	beliefs := make(map[string]float64, len(ids))
	if collected > 0 {
		for id, sum := range sums {
			beliefs[id] = sum / float64(collected)
		}
	} else {
		for _, id := range ids {
			beliefs[id] = state[id]
		}
	}

	return &PropagationReport{
		Algorithm:        AlgorithmMCMC,
		Beliefs:          beliefs,
		Iterations:       sweep,
		Autocorrelation:  lag1Autocorrelation(chainAgg),
		DeadlineExceeded: sweep < totalSweeps,
	}, nil
}

// mcmcConditional computes the Gibbs conditional probability for id given
// the current binary states of its neighbors along edges of every kind,
// pooling the same way belief propagation does. It reads n.edges directly
// because Propagate already holds n.mu exclusively.
func (n *Network) mcmcConditional(id string, state map[string]float64) float64 {
	p := n.nodes[id].CurrentBelief
	for _, e := range n.edges {
		if e.Target == id {
			p = bayesianPool(p, bpMessage(e, state[e.Source]))
		}
	}
	for _, e := range n.edges {
		if e.Source == id {
			p = bayesianPool(p, bpMessage(e, state[e.Target]))
		}
	}
	return p
}

// lag1Autocorrelation computes the lag-1 sample autocorrelation of a
// scalar chain, returning 0 for chains too short to estimate.
func lag1Autocorrelation(chain []float64) float64 {
	n := len(chain)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range chain {
		mean += v
	}
	mean /= float64(n)

	var num, den float64
	for i := 0; i < n-1; i++ {
		num += (chain[i] - mean) * (chain[i+1] - mean)
	}
	for i := 0; i < n; i++ {
		den += (chain[i] - mean) * (chain[i] - mean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}
