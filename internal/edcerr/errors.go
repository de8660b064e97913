// Package edcerr defines the flat error taxonomy shared by the fuzzy,
// ben, mco, and facade packages.
//
// Validation and structural errors are raised before any state mutation.
// Numeric non-convergence and deadline expiry are returned, not raised:
// propagation reports them through the Converged and DeadlineExceeded
// flags of its result, alongside the best-effort beliefs, with a nil error.
package edcerr

import "fmt"

// Kind is one of the flat error categories from the wire error shape.
type Kind string

const (
	InvalidInput        Kind = "InvalidInput"
	UnknownHandle        Kind = "UnknownHandle"
	UnknownNode          Kind = "UnknownNode"
	UnknownSet           Kind = "UnknownSet"
	EmptyRuleBase        Kind = "EmptyRuleBase"
	EmptyNetwork         Kind = "EmptyNetwork"
	Structural           Kind = "Structural"
	CycleInExactSubgraph Kind = "CycleInExactSubgraph"
	HighConflict         Kind = "HighConflict"
	NumericUnderflow     Kind = "NumericUnderflow"
	Numeric              Kind = "Numeric"
	PropagationDidNotConverge Kind = "PropagationDidNotConverge"
	Resource             Kind = "Resource"
	ResourceOverflow     Kind = "ResourceOverflow"
	Deadline             Kind = "DeadlineExceeded"
	Internal             Kind = "Internal"
)

// Error is the typed error value shaped to match the §6 wire error:
// {"kind": enum, "message": str, "details": obj}.
type Error struct {
	EKind   Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.EKind, e.Message)
}

// KindOf returns the edcerr.Kind carried by err, or Internal if err does
// not carry one (a bug, per spec.md §7 — always wrap with a helper here
// instead of letting a bare error escape a package boundary).
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.EKind
	}
	return Internal
}

func New(kind Kind, message string, details map[string]interface{}) *Error {
	return &Error{EKind: kind, Message: message, Details: details}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{EKind: kind, Message: fmt.Sprintf(format, args...)}
}

func WithDetail(err *Error, key string, value interface{}) *Error {
	if err.Details == nil {
		err.Details = map[string]interface{}{}
	}
	err.Details[key] = value
	return err
}
