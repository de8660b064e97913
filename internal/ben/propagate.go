package ben

import (
	"context"
	"time"

	"edc/internal/edcerr"
)

// Algorithm selects a propagation method (spec.md §4.2).
type Algorithm string

const (
	AlgorithmBeliefPropagation Algorithm = "belief_propagation"
	AlgorithmVariational       Algorithm = "variational"
	AlgorithmMCMC              Algorithm = "mcmc"
	AlgorithmParticle          Algorithm = "particle"
)

// Params carries the tunables referenced throughout §4.2; zero values fall
// back to the spec's defaults in each propagate_*.go implementation.
type Params struct {
	Seed int64 // RNG seed for MCMC/particle; 0 uses a fixed default.
}

// PropagationReport is the result of one propagate call. Converged is
// false whenever the deadline cut the run short; otherwise belief
// propagation (one topological pass over the DAG), MCMC and the particle
// filter report true, and variational reports true only once its change
// criterion is met within its iteration cap.
type PropagationReport struct {
	Algorithm        Algorithm
	Beliefs          map[string]float64
	Converged        bool
	Iterations       int
	EffectiveSamples float64 // particle filter only
	Autocorrelation  float64 // MCMC only
	DeadlineExceeded bool
}

// Propagate incorporates pending evidence and runs the requested
// algorithm under an exclusive lock (spec.md §5 "propagation on a network
// takes an exclusive lock").
func (n *Network) Propagate(ctx context.Context, algo Algorithm, params Params) (*PropagationReport, error) {
	if err := n.requireNonEmpty(); err != nil {
		return nil, err
	}

	n.Lock()
	defer n.Unlock()

	n.incorporateAllLocked()

	switch algo {
	case AlgorithmBeliefPropagation:
		return n.propagateBeliefPropagation(ctx)
	case AlgorithmVariational:
		return n.propagateVariational(ctx)
	case AlgorithmMCMC:
		return n.propagateMCMC(ctx, params)
	case AlgorithmParticle:
		return n.propagateParticle(ctx, params)
	default:
		return nil, edcerr.Newf(edcerr.InvalidInput, "unknown propagation algorithm: %s", algo)
	}
}

// incorporateAllLocked is IncorporateAll without re-acquiring the lock,
// for use from Propagate which already holds it.
func (n *Network) incorporateAllLocked() {
	for _, node := range n.nodes {
		node.IncorporateEvidence()
	}
}

// deadlineExceeded checks ctx without blocking.
func deadlineExceeded(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func snapshotBeliefs(nodes map[string]*Node) map[string]float64 {
	out := make(map[string]float64, len(nodes))
	for id, nd := range nodes {
		out[id] = nd.CurrentBelief
	}
	return out
}

// withDeadline wraps ctx with deadlineMS if positive, matching the wire
// schema's propagation request `deadline_ms` field (spec.md §6).
func withDeadline(ctx context.Context, deadlineMS int) (context.Context, context.CancelFunc) {
	if deadlineMS <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(deadlineMS)*time.Millisecond)
}
