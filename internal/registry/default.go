package registry

import (
	"edc/internal/ben"
	"edc/internal/fuzzy"
	"edc/internal/mco"
)

// Top-level default registries are provided for convenience; callers that
// want isolated state (tests, multi-tenant hosts) can construct their own
// Registry[T] values instead (spec.md §9 "Global mutable registries").
var (
	FuzzyEngines = New[fuzzy.Engine]()
	Networks     = New[ben.Network]()
	Optimizers   = New[mco.Optimizer]()
)
