package facade

import (
	"context"
	"time"

	"edc/internal/ben"
	"edc/internal/edcerr"
	"edc/internal/registry"
)

// withDeadline wraps ctx with deadlineMS when positive. ben.Network.Propagate
// applies no deadline of its own and only checks the ctx it is given, so
// the wire-level deadline_ms is applied here, before the network's
// exclusive lock is acquired.
func withDeadline(ctx context.Context, deadlineMS int) (context.Context, context.CancelFunc) {
	if deadlineMS <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(deadlineMS)*time.Millisecond)
}

// EmptyRequest is the input type for wire operations that take no
// parameters.
type EmptyRequest struct{}

// CreateNetworkResult wires net.create.
type CreateNetworkResult struct {
	NetworkHandle uint64 `json:"network_handle"`
}

// CreateNetwork implements net.create.
func CreateNetwork() *Envelope {
	handle := registry.Networks.Create(ben.New())
	return ok(CreateNetworkResult{NetworkHandle: uint64(handle)})
}

// AddNodeRequest wires net.add_node.
type AddNodeRequest struct {
	NetworkHandle uint64  `json:"network_handle"`
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Prior         float64 `json:"prior"`
}

// AddNode implements net.add_node.
func AddNode(req AddNodeRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}
	if err := net.AddNode(req.ID, ben.NodeKind(req.Kind), req.Prior); err != nil {
		processMetrics.RecordError()
		return fail(err)
	}
	processMetrics.RecordBeliefCreated()
	return ok(struct{}{})
}

// AddEdgeRequest wires net.add_edge.
type AddEdgeRequest struct {
	NetworkHandle uint64  `json:"network_handle"`
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Kind          string  `json:"kind"`
	Strength      float64 `json:"strength"`
}

// AddEdge implements net.add_edge.
func AddEdge(req AddEdgeRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}
	if err := net.AddEdge(req.Source, req.Target, ben.EdgeKind(req.Kind), req.Strength); err != nil {
		return fail(err)
	}
	return ok(struct{}{})
}

// UpdateEvidenceRequest wires net.update_evidence.
type UpdateEvidenceRequest struct {
	NetworkHandle uint64       `json:"network_handle"`
	NodeID        string       `json:"node_id"`
	Evidence      EvidenceWire `json:"evidence"`
}

// UpdateEvidence implements net.update_evidence.
func UpdateEvidence(req UpdateEvidenceRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}
	e, err := evidenceWireToEvidence(req.Evidence)
	if err != nil {
		processMetrics.RecordError()
		return fail(err)
	}
	if err := net.UpdateEvidence(req.NodeID, e); err != nil {
		processMetrics.RecordError()
		return fail(err)
	}
	processMetrics.RecordUpdate()
	return ok(struct{}{})
}

// PropagateRequest wires net.propagate (spec.md §6's propagation request
// schema).
type PropagateRequest struct {
	NetworkHandle uint64 `json:"network_handle"`
	Algorithm     string `json:"algorithm"`
	DeadlineMS    int    `json:"deadline_ms,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
}

// PropagationReportWire wires a ben.PropagationReport.
type PropagationReportWire struct {
	Algorithm        string             `json:"algorithm"`
	Beliefs          map[string]float64 `json:"beliefs"`
	Converged        bool               `json:"converged"`
	Iterations       int                `json:"iterations"`
	EffectiveSamples float64            `json:"effective_samples,omitempty"`
	Autocorrelation  float64            `json:"autocorrelation,omitempty"`
	DeadlineExceeded bool               `json:"deadline_exceeded"`
}

// Propagate implements net.propagate.
func Propagate(ctx context.Context, req PropagateRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}

	deadlineCtx, cancel := withDeadline(ctx, req.DeadlineMS)
	defer cancel()

	report, err := net.Propagate(deadlineCtx, ben.Algorithm(req.Algorithm), ben.Params{Seed: req.Seed})
	if err != nil {
		processMetrics.RecordError()
		return fail(err)
	}

	return ok(PropagationReportWire{
		Algorithm:        string(report.Algorithm),
		Beliefs:          report.Beliefs,
		Converged:        report.Converged,
		Iterations:       report.Iterations,
		EffectiveSamples: report.EffectiveSamples,
		Autocorrelation:  report.Autocorrelation,
		DeadlineExceeded: report.DeadlineExceeded,
	})
}

// QuerySpecWire is a tagged union over the five query kinds (spec.md §4.2).
type QuerySpecWire struct {
	Kind          string             `json:"kind"`
	Node          string             `json:"node,omitempty"`
	Target        string             `json:"target,omitempty"`
	Given         map[string]float64 `json:"given,omitempty"`
	Scope         []string           `json:"scope,omitempty"`
	Wrt           []string           `json:"wrt,omitempty"`
	Interventions map[string]float64 `json:"interventions,omitempty"`
}

// QueryRequest wires net.query.
type QueryRequest struct {
	NetworkHandle uint64        `json:"network_handle"`
	Spec          QuerySpecWire `json:"spec"`
}

// QueryResult wires the union of possible query results; exactly one field
// is populated depending on the request's Kind.
type QueryResult struct {
	Marginal    float64            `json:"marginal,omitempty"`
	Assignment  map[string]float64 `json:"assignment,omitempty"`
	Derivatives map[string]float64 `json:"derivatives,omitempty"`
}

// Query implements net.query.
func Query(ctx context.Context, req QueryRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}

	switch req.Spec.Kind {
	case "marginal":
		v, err := net.Marginal(req.Spec.Node)
		if err != nil {
			return fail(err)
		}
		return ok(QueryResult{Marginal: v})

	case "conditional":
		v, err := net.Conditional(ctx, req.Spec.Target, req.Spec.Given)
		if err != nil {
			return fail(err)
		}
		return ok(QueryResult{Marginal: v})

	case "mpe":
		assignment, err := net.MPE(req.Spec.Scope)
		if err != nil {
			return fail(err)
		}
		return ok(QueryResult{Assignment: assignment})

	case "sensitivity":
		derivatives, err := net.Sensitivity(ctx, req.Spec.Target, req.Spec.Wrt)
		if err != nil {
			return fail(err)
		}
		return ok(QueryResult{Derivatives: derivatives})

	case "what_if":
		assignment, err := net.WhatIf(ctx, req.Spec.Interventions)
		if err != nil {
			return fail(err)
		}
		return ok(QueryResult{Assignment: assignment})

	default:
		return fail(edcerr.Newf(edcerr.InvalidInput, "unknown query kind: %q", req.Spec.Kind))
	}
}

// StatsRequest wires net.stats.
type StatsRequest struct {
	NetworkHandle uint64 `json:"network_handle"`
}

// NetworkStats reports the network's current shape.
type NetworkStats struct {
	NodeCount int                `json:"node_count"`
	EdgeCount int                `json:"edge_count"`
	Beliefs   map[string]float64 `json:"beliefs"`
}

// NetworkStatsOp implements net.stats.
func NetworkStatsOp(req StatsRequest) *Envelope {
	net, err := registry.Networks.Get(registry.Handle(req.NetworkHandle))
	if err != nil {
		return fail(err)
	}

	nodes := net.Nodes()
	beliefs := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		beliefs[n.ID] = n.CurrentBelief
	}
	return ok(NetworkStats{
		NodeCount: len(nodes),
		EdgeCount: len(net.Edges()),
		Beliefs:   beliefs,
	})
}
