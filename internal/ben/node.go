// Package ben implements the Bayesian Evidence Network: a typed DAG of
// belief-carrying nodes, multiple propagation algorithms, and a query
// interface, as specified in spec.md §4.2.
package ben

import (
	"time"

	"edc/internal/fuzzy"
	"edc/internal/ring"
)

// NodeKind is the closed set of network node roles.
type NodeKind string

const (
	KindQuery    NodeKind = "Query"
	KindContext  NodeKind = "Context"
	KindDomain   NodeKind = "Domain"
	KindStrategy NodeKind = "Strategy"
	KindQuality  NodeKind = "Quality"
	KindResource NodeKind = "Resource"
	KindOutput   NodeKind = "Output"
	KindMeta     NodeKind = "Meta"
)

// NEvidenceCap is the bounded FIFO capacity of a node's evidence ring,
// spec.md §3 and §5.
const NEvidenceCap = 64

// Node is one vertex of the evidence network.
type Node struct {
	ID            string
	Kind          NodeKind
	Prior         float64
	CurrentBelief float64
	evidence      *ring.Ring[*fuzzy.Evidence]
}

// NewNode constructs a node with its prior also seeding current belief.
func NewNode(id string, kind NodeKind, prior float64) *Node {
	return &Node{
		ID:            id,
		Kind:          kind,
		Prior:         prior,
		CurrentBelief: prior,
		evidence:      ring.New[*fuzzy.Evidence](NEvidenceCap),
	}
}

// AddEvidence appends evidence to the node's bounded FIFO ring, evicting
// the oldest entry when full. Evidence is kept ordered by timestamp
// ascending per spec.md §3 — callers are expected to append in temporal
// order, which the FIFO ring preserves by construction.
func (n *Node) AddEvidence(e *fuzzy.Evidence) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	n.evidence.Push(e)
}

// Evidence returns the node's evidence in timestamp-ascending order.
func (n *Node) Evidence() []*fuzzy.Evidence {
	return n.evidence.Items()
}

// clone deep-copies the node for copy-on-propagate snapshotting (spec.md
// §4.4 "read-heavy query paths may take a read lock on an immutable
// snapshot").
func (n *Node) clone() *Node {
	c := &Node{ID: n.ID, Kind: n.Kind, Prior: n.Prior, CurrentBelief: n.CurrentBelief, evidence: n.evidence.Clone()}
	return c
}
