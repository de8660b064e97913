package mco

import (
	"edc/internal/ring"
)

// Kind is the closed set of strategy roles in the portfolio (spec.md §3).
type Kind string

const (
	KindQueryOpt          Kind = "QueryOpt"
	KindResourceAlloc     Kind = "ResourceAlloc"
	KindQualityImprove    Kind = "QualityImprove"
	KindEfficiencyBoost   Kind = "EfficiencyBoost"
	KindErrorRecovery     Kind = "ErrorRecovery"
	KindAdaptiveLearning  Kind = "AdaptiveLearning"
	KindContextAdapt      Kind = "ContextAdapt"
	KindUncertaintyReduce Kind = "UncertaintyReduce"
)

// AllKinds lists the portfolio's default strategy kinds, in a stable
// order, used to seed a new optimizer with one strategy per kind.
var AllKinds = []Kind{
	KindQueryOpt, KindResourceAlloc, KindQualityImprove, KindEfficiencyBoost,
	KindErrorRecovery, KindAdaptiveLearning, KindContextAdapt, KindUncertaintyReduce,
}

// HistoryCapacity is the bounded outcome ring per strategy, reused from
// the same FIFO primitive backing BEN node evidence.
const HistoryCapacity = 1000

// Applicability is a predicate over a decision context.
type Applicability func(ctx *DecisionContext) bool

// Record is one portfolio entry.
type Record struct {
	ID            string
	Kind          Kind
	Applicability Applicability
	ExpectedGain  map[string]float64 // dimension -> gain
	ResourceCost  map[string]float64 // resource -> cost
	RequiredTime  float64            // seconds
	SuccessRate   float64            // EWMA, spec.md §3
	Invocations   int
	History       *ring.Ring[Outcome]
}

// NewRecord constructs a strategy record with an empty history ring and a
// neutral success_rate prior (spec.md §8 "EWMA update ... converges").
func NewRecord(id string, kind Kind, applicability Applicability, expectedGain, resourceCost map[string]float64, requiredTime float64) *Record {
	return &Record{
		ID:            id,
		Kind:          kind,
		Applicability: applicability,
		ExpectedGain:  expectedGain,
		ResourceCost:  resourceCost,
		RequiredTime:  requiredTime,
		SuccessRate:   0.5,
		History:       ring.New[Outcome](HistoryCapacity),
	}
}

// IsApplicable reports whether the strategy passes its applicability
// predicate against ctx; a nil predicate is always applicable.
func (r *Record) IsApplicable(ctx *DecisionContext) bool {
	if r.Applicability == nil {
		return true
	}
	return r.Applicability(ctx)
}

// featureVector projects a strategy into a fixed-dimension numeric vector
// for diversity scoring: one axis per resource/gain dimension actually
// present, plus success_rate and required_time. Keys are sorted so the
// same dimension always lands on the same axis across strategies.
func (r *Record) featureVector(dims []string) []float32 {
	v := make([]float32, len(dims)+2)
	for i, d := range dims {
		v[i] = float32(r.ExpectedGain[d] - r.ResourceCost[d])
	}
	v[len(dims)] = float32(r.SuccessRate)
	v[len(dims)+1] = float32(r.RequiredTime)
	return v
}

// defaultSeedPortfolio builds one default strategy per kind, grounded on
// plausible Four-Sided-Triangle pipeline roles: a query optimizer reduces
// latency at high complexity, a resource allocator trades cpu for
// throughput, and so on. Applicability thresholds and costs are
// illustrative defaults a caller is expected to override by supplying
// their own seed_strategies (spec.md §4.3 "create_optimizer(seed_strategies?)").
func defaultSeedPortfolio() []*Record {
	mk := func(kind Kind, gainDim string, gain float64, costResource string, cost, requiredTime float64, applies Applicability) *Record {
		return NewRecord(string(kind), kind, applies,
			map[string]float64{gainDim: gain},
			map[string]float64{costResource: cost},
			requiredTime)
	}

	return []*Record{
		mk(KindQueryOpt, "quality", 0.15, "cpu", 0.2, 1.0, func(c *DecisionContext) bool { return c.QueryComplexity > 0.3 }),
		mk(KindResourceAlloc, "efficiency", 0.2, "cpu", 0.1, 0.5, func(c *DecisionContext) bool { return true }),
		mk(KindQualityImprove, "quality", 0.25, "cpu", 0.3, 2.0, func(c *DecisionContext) bool { return c.QualityRequirements["accuracy"] > 0.5 }),
		mk(KindEfficiencyBoost, "efficiency", 0.3, "cpu", 0.15, 0.5, func(c *DecisionContext) bool { return true }),
		mk(KindErrorRecovery, "quality", 0.1, "cpu", 0.05, 0.3, func(c *DecisionContext) bool { return c.HasTag("degraded") }),
		mk(KindAdaptiveLearning, "quality", 0.12, "cpu", 0.2, 1.5, func(c *DecisionContext) bool { return c.QueryComplexity > 0.5 }),
		mk(KindContextAdapt, "quality", 0.1, "cpu", 0.1, 0.5, func(c *DecisionContext) bool { return true }),
		mk(KindUncertaintyReduce, "quality", 0.18, "cpu", 0.25, 1.0, func(c *DecisionContext) bool { return c.UncertaintyTolerance < 0.4 }),
	}
}
