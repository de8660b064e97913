package ben

import "edc/internal/edcerr"

// ValidateExactAcyclic re-checks the exact subgraph is a DAG (spec.md §4.2,
// §4.5 "PropagationDidNotConverge vs CycleInExactSubgraph").
// graph.PreventCycles already blocks a cycle at AddEdge time; this is a
// defensive second check, and no code in this module calls it.
func (n *Network) ValidateExactAcyclic() error {
	if _, err := n.ExactTopoOrder(); err != nil {
		return err
	}
	return nil
}

// ExactPredecessors returns the source ids of every exact-kind edge
// terminating at id, in the order they were added.
func (n *Network) ExactPredecessors(id string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []string
	for _, e := range n.edges {
		if e.Target == id && e.Kind.IsExact() {
			out = append(out, e.Source)
		}
	}
	return out
}

// requireNonEmpty is a shared guard used by the propagation and query
// entry points.
func (n *Network) requireNonEmpty() error {
	if n.IsEmpty() {
		return edcerr.New(edcerr.EmptyNetwork, "network has no nodes", nil)
	}
	return nil
}
