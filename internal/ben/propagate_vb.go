package ben

import (
	"context"
	"math"
)

const (
	vbEpsilon       = 1e-4
	vbMaxIterations = 200
	vbRelaxation    = 0.5
)

// propagateVariational runs mean-field variational inference over the full
// graph, including cyclic Correlational/Temporal edges (spec.md §4.2).
// Each node's belief is pulled toward the Bayesian pool of its neighbors'
// messages (both predecessors and successors contribute, since mean-field
// treats the graph as an undirected Markov blanket), with an
// under-relaxation factor λ=0.5 applied to guarantee convergence.
func (n *Network) propagateVariational(ctx context.Context) (*PropagationReport, error) {
	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}

	converged := false
	iter := 0
	for ; iter < vbMaxIterations; iter++ {
		if deadlineExceeded(ctx) {
			return &PropagationReport{Algorithm: AlgorithmVariational, Beliefs: snapshotBeliefs(n.nodes), Iterations: iter, DeadlineExceeded: true}, nil
		}

		maxDelta := 0.0
		updates := make(map[string]float64, len(ids))
		for _, id := range ids {
			node := n.nodes[id]
			target := node.CurrentBelief
			// Edges are read from n.edges directly: Propagate already holds
			// n.mu exclusively, and EdgesTo/EdgesFrom would re-lock it.
			for _, e := range n.edges {
				if e.Target == id {
					target = bayesianPool(target, bpMessage(e, n.nodes[e.Source].CurrentBelief))
				}
			}
			for _, e := range n.edges {
				if e.Source == id {
					target = bayesianPool(target, bpMessage(e, n.nodes[e.Target].CurrentBelief))
				}
			}
			updated := node.CurrentBelief + vbRelaxation*(target-node.CurrentBelief)
			updates[id] = updated
			if d := math.Abs(updated - node.CurrentBelief); d > maxDelta {
				maxDelta = d
			}
		}
		for id, v := range updates {
			n.nodes[id].CurrentBelief = v
		}

		if maxDelta < vbEpsilon {
			converged = true
			iter++
			break
		}
	}

	return &PropagationReport{
		Algorithm:  AlgorithmVariational,
		Beliefs:    snapshotBeliefs(n.nodes),
		Converged:  converged,
		Iterations: iter,
	}, nil
}
