package ben

import (
	"context"
	"math"

	"edc/internal/edcerr"
)

const (
	mpeRestarts      = 50
	sensitivityDelta = 0.05
)

// Marginal returns a node's current belief under a read lock, so it blocks
// until any in-flight Propagate completes (spec.md §5).
func (n *Network) Marginal(id string) (float64, error) {
	n.RLock()
	defer n.RUnlock()

	node, ok := n.nodes[id]
	if !ok {
		return 0, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
	}
	return node.CurrentBelief, nil
}

// Conditional temporarily pins the given nodes to fixed values, re-runs
// belief propagation on a private copy of the network, and returns the
// target's resulting belief (spec.md §4.2).
func (n *Network) Conditional(ctx context.Context, target string, given map[string]float64) (float64, error) {
	clone, err := n.cloneNetwork()
	if err != nil {
		return 0, err
	}
	for id, v := range given {
		node, ok := clone.nodes[id]
		if !ok {
			return 0, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
		}
		node.CurrentBelief = v
		node.Prior = v
	}

	report, err := clone.Propagate(ctx, AlgorithmBeliefPropagation, Params{})
	if err != nil {
		return 0, err
	}
	v, ok := report.Beliefs[target]
	if !ok {
		return 0, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", target)
	}
	return v, nil
}

// MPE finds the maximum a posteriori assignment over scope via hill-climb
// from the current beliefs, with K restarts from randomized starting
// points to reduce sensitivity to local optima (spec.md §4.2).
func (n *Network) MPE(scope []string) (map[string]float64, error) {
	n.RLock()
	for _, id := range scope {
		if _, ok := n.nodes[id]; !ok {
			n.RUnlock()
			return nil, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
		}
	}
	n.RUnlock()

	rng := newRNG(1)
	best := map[string]float64{}
	bestScore := math.Inf(-1)

	for r := 0; r < mpeRestarts; r++ {
		assignment := make(map[string]float64, len(scope))
		for _, id := range scope {
			if r == 0 {
				n.RLock()
				assignment[id] = n.nodes[id].CurrentBelief
				n.RUnlock()
			} else {
				assignment[id] = rng.Float64()
			}
		}

		score := n.hillClimb(assignment, scope)
		if score > bestScore {
			bestScore = score
			best = assignment
		}
	}
	return best, nil
}

// hillClimb performs coordinate ascent on joint log-likelihood of the
// assignment against each node's Markov blanket, moving each coordinate to
// whichever of {0, 0.25, 0.5, 0.75, 1} scores best until no move improves.
func (n *Network) hillClimb(assignment map[string]float64, scope []string) float64 {
	candidates := []float64{0, 0.25, 0.5, 0.75, 1}
	improved := true
	for improved {
		improved = false
		for _, id := range scope {
			bestV := assignment[id]
			bestScore := n.jointLogLikelihood(assignment)
			for _, c := range candidates {
				trial := assignment[id]
				assignment[id] = c
				s := n.jointLogLikelihood(assignment)
				assignment[id] = trial
				if s > bestScore {
					bestScore = s
					bestV = c
					improved = true
				}
			}
			assignment[id] = bestV
		}
	}
	return n.jointLogLikelihood(assignment)
}

// jointLogLikelihood scores an assignment by how well each scoped node's
// value matches the belief implied by its neighbors, summed in log space.
func (n *Network) jointLogLikelihood(assignment map[string]float64) float64 {
	total := 0.0
	n.RLock()
	defer n.RUnlock()
	for id, v := range assignment {
		p := n.nodes[id].CurrentBelief
		for _, e := range n.EdgesTo(id) {
			if nb, ok := assignment[e.Source]; ok {
				p = bayesianPool(p, bpMessage(e, nb))
			} else {
				p = bayesianPool(p, bpMessage(e, n.nodes[e.Source].CurrentBelief))
			}
		}
		p = clampUnit(p, incorporationEpsilon)
		total += v*math.Log(p) + (1-v)*math.Log(1-p)
	}
	return total
}

// Sensitivity estimates ∂belief(target)/∂belief(wrt) by symmetric finite
// difference, perturbing each wrt node's prior by ±Δ and re-propagating
// (spec.md §4.2).
func (n *Network) Sensitivity(ctx context.Context, target string, wrt []string) (map[string]float64, error) {
	out := make(map[string]float64, len(wrt))
	for _, id := range wrt {
		up, err := n.Conditional(ctx, target, map[string]float64{id: clampUnit(n.beliefOf(id)+sensitivityDelta, incorporationEpsilon)})
		if err != nil {
			return nil, err
		}
		down, err := n.Conditional(ctx, target, map[string]float64{id: clampUnit(n.beliefOf(id)-sensitivityDelta, incorporationEpsilon)})
		if err != nil {
			return nil, err
		}
		out[id] = (up - down) / (2 * sensitivityDelta)
	}
	return out, nil
}

func (n *Network) beliefOf(id string) float64 {
	n.RLock()
	defer n.RUnlock()
	if nd, ok := n.nodes[id]; ok {
		return nd.CurrentBelief
	}
	return 0.5
}

// WhatIf implements Pearl's do-operator: interventions sever the incoming
// edges of intervened nodes (graph surgery), fix their belief, and
// propagate the result through the remainder of the graph. Empty
// interventions must be equivalent to Marginal (spec.md §8 idempotence).
func (n *Network) WhatIf(ctx context.Context, interventions map[string]float64) (map[string]float64, error) {
	if len(interventions) == 0 {
		n.RLock()
		defer n.RUnlock()
		return snapshotBeliefs(n.nodes), nil
	}

	clone, err := n.cloneNetwork()
	if err != nil {
		return nil, err
	}

	for id, v := range interventions {
		node, ok := clone.nodes[id]
		if !ok {
			return nil, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
		}
		performGraphSurgery(clone, id)
		node.CurrentBelief = v
		node.Prior = v
	}

	report, err := clone.Propagate(ctx, AlgorithmBeliefPropagation, Params{})
	if err != nil {
		return nil, err
	}
	return report.Beliefs, nil
}

// performGraphSurgery removes every edge incoming to id, the graph-surgery
// step of the do-operator: once a node's value is fixed by intervention,
// its former causes can no longer explain it.
func performGraphSurgery(n *Network, id string) {
	kept := n.edges[:0:0]
	for _, e := range n.edges {
		if e.Target == id {
			continue
		}
		kept = append(kept, e)
	}
	n.edges = kept
}

// cloneNetwork returns a deep, independently-lockable copy of n for
// read-heavy query algorithms that must mutate a private working copy
// (Conditional, WhatIf).
func (n *Network) cloneNetwork() (*Network, error) {
	nodes, edges := n.snapshot()

	clone := New()
	for id, nd := range nodes {
		if err := clone.AddNode(id, nd.Kind, nd.Prior); err != nil {
			return nil, err
		}
		clone.nodes[id].CurrentBelief = nd.CurrentBelief
		for _, e := range nd.Evidence() {
			clone.nodes[id].AddEvidence(e)
		}
	}
	for _, e := range edges {
		if err := clone.AddEdge(e.Source, e.Target, e.Kind, e.Strength); err != nil {
			return nil, err
		}
	}
	return clone, nil
}
