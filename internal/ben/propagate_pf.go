package ben

import (
	"context"
	"sort"
)

const pfParticles = 1000

// particle is one sampled assignment of binary states across every node.
type particle struct {
	state  map[string]float64
	weight float64
}

// propagateParticle runs a single-step particle filter suited to
// Temporal-edge-heavy networks (spec.md §4.2): particles are sampled from
// each node's current belief, reweighted by how consistent their sampled
// states are with the messages of every incoming edge, and
// resampled systematically whenever the effective sample size drops below
// P/2.
func (n *Network) propagateParticle(ctx context.Context, params Params) (*PropagationReport, error) {
	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rng := newRNG(params.Seed)
	particles := make([]*particle, pfParticles)
	for i := range particles {
		st := make(map[string]float64, len(ids))
		for _, id := range ids {
			st[id] = boolToFloat(sampleBernoulli(n.nodes[id].CurrentBelief, rng))
		}
		particles[i] = &particle{state: st, weight: 1.0 / float64(pfParticles)}
	}

	if deadlineExceeded(ctx) {
		return n.finishParticle(particles, ids, true), nil
	}

	weights := make([]float64, pfParticles)
	for i, p := range particles {
		w := 1.0
		for _, id := range ids {
			for _, e := range n.edges {
				if e.Target == id {
					w *= likelihood(p.state[id], bpMessage(e, p.state[e.Source]))
				}
			}
		}
		weights[i] = w
	}
	weights = normalizeWeights(weights)
	for i, w := range weights {
		particles[i].weight = w
	}

	ess := effectiveSampleSize(weights)
	if ess < pfParticles/2 {
		idx := systematicResample(weights, rng)
		resampled := make([]*particle, pfParticles)
		for i, j := range idx {
			resampled[i] = &particle{state: particles[j].state, weight: 1.0 / float64(pfParticles)}
		}
		particles = resampled
		ess = pfParticles
	}

	report := n.finishParticle(particles, ids, false)
	report.EffectiveSamples = ess
	return report, nil
}

func (n *Network) finishParticle(particles []*particle, ids []string, deadlineHit bool) *PropagationReport {
	beliefs := make(map[string]float64, len(ids))
	for _, id := range ids {
		sum := 0.0
		for _, p := range particles {
			sum += p.state[id] * p.weight
		}
		beliefs[id] = sum
		n.nodes[id].CurrentBelief = sum
	}

	return &PropagationReport{
		Algorithm:        AlgorithmParticle,
		Beliefs:          beliefs,
		Converged:        !deadlineHit,
		Iterations:       1,
		DeadlineExceeded: deadlineHit,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// likelihood scores how consistent a sampled binary state is with an
// expected message probability.
func likelihood(state, expected float64) float64 {
	if state >= 0.5 {
		return expected
	}
	return 1 - expected
}
