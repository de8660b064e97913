// Package mco implements the Metacognitive Optimizer: a portfolio of
// strategies selected over decision contexts using fuzzy/Bayesian outputs,
// with online performance learning (spec.md §4.3).
package mco

import "time"

// DecisionContext describes the situation the optimizer must choose
// strategies for.
type DecisionContext struct {
	QueryComplexity      float64
	AvailableResources   map[string]float64
	QualityRequirements  map[string]float64
	TimeBudget           float64
	UncertaintyTolerance float64
	Tags                 map[string]struct{}
}

// HasTag reports whether a tag is present; nil Tags is treated as empty.
func (c *DecisionContext) HasTag(tag string) bool {
	if c.Tags == nil {
		return false
	}
	_, ok := c.Tags[tag]
	return ok
}

// Outcome is the observed result of executing a strategy bundle, reported
// back by the caller for learning (spec.md §4.3).
type Outcome struct {
	QualityAchieved float64
	ResourcesUsed   map[string]float64
	TimeTaken       float64
	UserFeedback    float64
	Timestamp       time.Time
}
