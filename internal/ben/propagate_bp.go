package ben

import "context"

// propagateBeliefPropagation runs exact sum-product message passing over
// the Causal/Supportive/Inhibitory subgraph, in topological order (spec.md
// §4.2). A node with no exact-kind predecessors keeps the belief produced
// by evidence incorporation. A node with predecessors combines each
// parent's message with its own current belief via a standard two-source
// Bayesian pool, normalized so the result stays a probability.
//
// Message semantics per edge kind (the source left Causal's modulation
// unspecified; treated the same as Supportive, scaled by strength):
//   - Supportive, Causal: message = strength·parent_belief + (1−strength)·0.5
//   - Inhibitory:         message = strength·(1−parent_belief) + (1−strength)·0.5
func (n *Network) propagateBeliefPropagation(ctx context.Context) (*PropagationReport, error) {
	order, err := n.ExactTopoOrder()
	if err != nil {
		return nil, err
	}

	layers := n.topoLayers(order)
	for _, layer := range layers {
		if deadlineExceeded(ctx) {
			return &PropagationReport{Algorithm: AlgorithmBeliefPropagation, Beliefs: snapshotBeliefs(n.nodes), DeadlineExceeded: true}, nil
		}

		// Nodes within one layer have no exact-kind edges between them, so
		// they can be combined concurrently (spec.md §5 "belief propagation
		// over acyclic subgraph node batches").
		if err := batchApply(ctx, layer, func(id string) error {
			node := n.nodes[id]
			preds := n.exactPredecessorEdges(id)
			if len(preds) == 0 {
				return nil
			}

			combined := node.CurrentBelief
			for _, e := range preds {
				parent := n.nodes[e.Source]
				msg := bpMessage(e, parent.CurrentBelief)
				combined = bayesianPool(combined, msg)
			}
			node.CurrentBelief = combined
			return nil
		}); err != nil {
			return &PropagationReport{Algorithm: AlgorithmBeliefPropagation, Beliefs: snapshotBeliefs(n.nodes), DeadlineExceeded: true}, nil
		}
	}

	return &PropagationReport{
		Algorithm:  AlgorithmBeliefPropagation,
		Beliefs:    snapshotBeliefs(n.nodes),
		Converged:  true,
		Iterations: len(layers),
	}, nil
}

// topoLayers groups a topological order into batches where no node depends
// on another node in the same batch, by assigning each node a level one
// greater than the maximum level of its exact-kind predecessors.
func (n *Network) topoLayers(order []string) [][]string {
	level := make(map[string]int, len(order))
	maxLevel := 0
	for _, id := range order {
		lvl := 0
		for _, e := range n.exactPredecessorEdges(id) {
			if pl := level[e.Source] + 1; pl > lvl {
				lvl = pl
			}
		}
		level[id] = lvl
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	layers := make([][]string, maxLevel+1)
	for _, id := range order {
		l := level[id]
		layers[l] = append(layers[l], id)
	}
	return layers
}

func bpMessage(e *Edge, parentBelief float64) float64 {
	s := e.Strength
	if s < 0 {
		s = -s
	}
	switch e.Kind {
	case Inhibitory:
		return s*(1-parentBelief) + (1-s)*0.5
	default: // Supportive, Causal
		return s*parentBelief + (1-s)*0.5
	}
}

// bayesianPool combines two independent probability estimates of the same
// binary proposition: p(a,b) = a·b / (a·b + (1-a)·(1-b)), falling back to
// 0.5 when both dismiss the proposition equally (a·b and (1-a)(1-b) both
// zero never happens for p,q in (0,1), but guard anyway).
func bayesianPool(a, b float64) float64 {
	num := a * b
	den := num + (1-a)*(1-b)
	if den <= 0 {
		return 0.5
	}
	return num / den
}

// exactPredecessorEdges returns the exact-kind edges terminating at id.
func (n *Network) exactPredecessorEdges(id string) []*Edge {
	var out []*Edge
	for _, e := range n.edges {
		if e.Target == id && e.Kind.IsExact() {
			out = append(out, e)
		}
	}
	return out
}
