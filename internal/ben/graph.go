package ben

import (
	"sync"

	"github.com/dominikbraun/graph"

	"edc/internal/edcerr"
	"edc/internal/fuzzy"
)

func idHash(id string) string { return id }

// Network is a typed DAG of belief-carrying nodes. The full graph
// (including Correlational/Temporal cycles) is tracked in g; a second
// graph, exactG, mirrors only the exact-kind edges so exact algorithms can
// gate on acyclicity independently of the approximate subgraph.
//
// Structural edits (add_node/add_edge) are not removed once applied during
// a request — spec.md §3 "Lifecycle" — so Network never exposes a delete.
type Network struct {
	mu     sync.RWMutex
	g      graph.Graph[string, string]
	exactG graph.Graph[string, string]
	nodes  map[string]*Node
	edges  []*Edge
}

// New creates an empty evidence network.
func New() *Network {
	return &Network{
		g:      graph.New(idHash, graph.Directed()),
		exactG: graph.New(idHash, graph.Directed(), graph.PreventCycles()),
		nodes:  make(map[string]*Node),
	}
}

// AddNode registers a new node. Rejects a duplicate id.
func (n *Network) AddNode(id string, kind NodeKind, prior float64) error {
	if prior < 0 || prior > 1 {
		return edcerr.Newf(edcerr.InvalidInput, "prior must be in [0,1], got %f", prior)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.nodes[id]; exists {
		return edcerr.Newf(edcerr.InvalidInput, "duplicate node id: %s", id)
	}

	if err := n.g.AddVertex(id); err != nil {
		return edcerr.Newf(edcerr.Internal, "failed to add vertex: %v", err)
	}
	if err := n.exactG.AddVertex(id); err != nil {
		return edcerr.Newf(edcerr.Internal, "failed to add exact-subgraph vertex: %v", err)
	}

	n.nodes[id] = NewNode(id, kind, prior)
	return nil
}

// AddEdge validates endpoints and strength, and rejects an edge that would
// introduce a cycle within the exact subgraph (spec.md §3, §4.2).
func (n *Network) AddEdge(src, dst string, kind EdgeKind, strength float64) error {
	if strength < -1 || strength > 1 {
		return edcerr.Newf(edcerr.InvalidInput, "strength must be in [-1,1], got %f", strength)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.nodes[src]; !ok {
		return edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", src)
	}
	if _, ok := n.nodes[dst]; !ok {
		return edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", dst)
	}

	if err := n.g.AddEdge(src, dst); err != nil {
		return edcerr.Newf(edcerr.Internal, "failed to add edge: %v", err)
	}

	if kind.IsExact() {
		if err := n.exactG.AddEdge(src, dst); err != nil {
			return edcerr.New(edcerr.CycleInExactSubgraph, "edge would introduce a cycle in the exact subgraph", map[string]interface{}{"source": src, "target": dst, "kind": string(kind)})
		}
	}

	n.edges = append(n.edges, &Edge{Source: src, Target: dst, Kind: kind, Strength: strength})
	return nil
}

// Node returns a node by id.
func (n *Network) Node(id string) (*Node, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	node, ok := n.nodes[id]
	if !ok {
		return nil, edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
	}
	return node, nil
}

// Nodes returns every node, unordered.
func (n *Network) Nodes() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, 0, len(n.nodes))
	for _, v := range n.nodes {
		out = append(out, v)
	}
	return out
}

// Edges returns every edge, in insertion order.
func (n *Network) Edges() []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// EdgesFrom returns the outgoing edges of a node.
func (n *Network) EdgesFrom(id string) []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []*Edge
	for _, e := range n.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the incoming edges of a node.
func (n *Network) EdgesTo(id string) []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []*Edge
	for _, e := range n.edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// UpdateEvidence appends evidence to a node's bounded FIFO ring.
func (n *Network) UpdateEvidence(id string, e *fuzzy.Evidence) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	node, ok := n.nodes[id]
	if !ok {
		return edcerr.Newf(edcerr.UnknownNode, "unknown node: %s", id)
	}
	node.AddEvidence(e)
	return nil
}

// Lock/Unlock/RLock/RUnlock expose the network's mutex to the propagation
// and query layers of this package, matching spec.md §5's "propagation
// takes an exclusive lock; concurrent queries ... take a read lock".
func (n *Network) Lock()    { n.mu.Lock() }
func (n *Network) Unlock()  { n.mu.Unlock() }
func (n *Network) RLock()   { n.mu.RLock() }
func (n *Network) RUnlock() { n.mu.RUnlock() }

// MetaBelief returns the current belief of the first Meta-kind node found,
// used by the optimizer as its uncertainty signal (spec.md §4.3 step 2).
func (n *Network) MetaBelief() (float64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, nd := range n.nodes {
		if nd.Kind == KindMeta {
			return nd.CurrentBelief, true
		}
	}
	return 0, false
}

// IsEmpty reports whether the network has no nodes.
func (n *Network) IsEmpty() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.nodes) == 0
}

// ExactTopoOrder returns nodes ordered topologically within the exact
// subgraph, used by belief propagation (spec.md §4.2).
func (n *Network) ExactTopoOrder() ([]string, error) {
	order, err := graph.TopologicalSort(n.exactG)
	if err != nil {
		return nil, edcerr.Newf(edcerr.Structural, "exact subgraph is not a DAG: %v", err)
	}
	return order, nil
}

// snapshot returns a deep copy of all nodes and edges, used by read-heavy
// query paths to avoid holding the write lock (spec.md §4.4
// "copy-on-propagate").
func (n *Network) snapshot() (map[string]*Node, []*Edge) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	nodes := make(map[string]*Node, len(n.nodes))
	for id, nd := range n.nodes {
		nodes[id] = nd.clone()
	}
	edges := make([]*Edge, len(n.edges))
	copy(edges, n.edges)
	return nodes, edges
}
