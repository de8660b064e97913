// Package facade implements the thin JSON-in/JSON-out layer that converts
// string-encoded wire requests into typed calls on the fuzzy, ben, and mco
// packages (spec.md §4.5). Every exported operation returns an *Envelope
// rather than a bare Go error, so transport failures and domain failures
// share the same {ok}/{error} wire shape regardless of which protocol
// (MCP tool call, HTTP handler, test) is driving it.
package facade

import "edc/internal/edcerr"

// Envelope is the wire-level result of every facade operation: exactly one
// of Ok or Error is set.
type Envelope struct {
	Ok    interface{} `json:"ok,omitempty"`
	Error *WireError  `json:"error,omitempty"`
}

// WireError mirrors spec.md §6's error shape.
type WireError struct {
	Kind    edcerr.Kind            `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func ok(v interface{}) *Envelope {
	return &Envelope{Ok: v}
}

// fail converts any error into an Envelope. Errors not already carrying an
// edcerr.Kind are reported as Internal, matching spec.md §7's policy that
// an escaped untyped error indicates a bug, not a domain failure.
func fail(err error) *Envelope {
	if e, ok := err.(*edcerr.Error); ok {
		return &Envelope{Error: &WireError{Kind: e.EKind, Message: e.Message, Details: e.Details}}
	}
	return &Envelope{Error: &WireError{Kind: edcerr.Internal, Message: err.Error()}}
}
