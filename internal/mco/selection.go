package mco

import (
	"context"
	"strconv"
)

// Scoring weights for step 2 of the selection algorithm (spec.md §4.3).
// The source left these unweighted; these defaults favor quality over
// efficiency, with resource cost and uncertainty as comparable penalties.
const (
	weightQuality     = 0.35
	weightEfficiency  = 0.25
	weightCost        = 0.20
	weightUncertainty = 0.20
)

type scoredStrategy struct {
	strategy *Record
	score    float64
}

// selectionResult is the intermediate output of Select, before resource
// allocation.
type selectionResult struct {
	chosen []scoredStrategy
}

// Select runs steps 1-3 of spec.md §4.3: applicability filter, time-budget
// pre-filter (step 5, applied here before allocation), scoring, and
// Pareto/MMR selection. Resource allocation (step 4) is performed
// separately by allocate so callers can inspect the pre-allocation bundle.
func Select(ctx context.Context, portfolio []*Record, decisionCtx *DecisionContext, uncertaintySrc UncertaintySource) (*selectionResult, error) {
	penalty := uncertaintyPenalty(uncertaintySrc)

	var candidates []*Record
	for _, r := range portfolio {
		if !r.IsApplicable(decisionCtx) {
			continue
		}
		if decisionCtx.TimeBudget > 0 && r.RequiredTime > decisionCtx.TimeBudget {
			continue
		}
		candidates = append(candidates, r)
	}

	if len(candidates) == 0 {
		return &selectionResult{}, nil
	}

	scored := make([]scoredStrategy, 0, len(candidates))
	for _, r := range candidates {
		scored = append(scored, scoredStrategy{strategy: r, score: score(r, decisionCtx, penalty)})
	}

	lambda := 1 - decisionCtx.UncertaintyTolerance
	chosen, err := mmrSelect(ctx, scored, lambda)
	if err != nil {
		return nil, err
	}

	return &selectionResult{chosen: chosen}, nil
}

// score computes spec.md §4.3 step 2's weighted objective. expected_quality
// and expected_efficiency are each strategy's corresponding expected_gain
// entries, modulated by success_rate; normalized_cost sums resource_cost
// entries against the context's available_resources.
func score(r *Record, ctx *DecisionContext, uncertaintyPenaltyValue float64) float64 {
	quality := r.ExpectedGain["quality"] * r.SuccessRate
	efficiency := r.ExpectedGain["efficiency"] * r.SuccessRate
	normalizedCost := normalizedResourceCost(r, ctx)
	return weightQuality*quality + weightEfficiency*efficiency - weightCost*normalizedCost - weightUncertainty*uncertaintyPenaltyValue
}

func normalizedResourceCost(r *Record, ctx *DecisionContext) float64 {
	if len(r.ResourceCost) == 0 {
		return 0
	}
	total := 0.0
	for resource, cost := range r.ResourceCost {
		avail := ctx.AvailableResources[resource]
		if avail <= 0 {
			total += cost
			continue
		}
		total += cost / avail
	}
	return total / float64(len(r.ResourceCost))
}

// Allocation is the outcome of proportional-fitting resource allocation
// (spec.md §4.3 step 4).
type Allocation struct {
	Strategies     []*Record
	ResourceUsage  map[string]float64
	ExpectedGains  map[string]float64
	Rationale      []string
	ResourceLimits map[string]float64
}

// allocate distributes available_resources proportionally to score among
// the MMR-selected bundle: each strategy's share of the score mass caps
// how much of the budget it may draw, and that cap is further clamped by
// the strategy's own resource_cost ceiling (spec.md §4.3 step 4). Because
// allocation_i = min(share_i·available, cost_i) and the shares sum to 1,
// the summed allocation can never exceed available_resources on any axis
// beyond floating-point rounding. The greedy-repair retry below (drop the
// lowest-scoring strategy) runs only when summed usage exceeds a limit by
// more than 1e-9, which that bound rules out; it is a defensive fallback.
func allocate(selection *selectionResult, ctx *DecisionContext) *Allocation {
	chosen := append([]scoredStrategy(nil), selection.chosen...)

	for {
		usage := map[string]float64{}
		weights := allocationWeights(chosen)
		totalWeight := 0.0
		for _, w := range weights {
			totalWeight += w
		}

		feasible := true
		var overResource string
		if totalWeight > 0 {
			for i, c := range chosen {
				share := weights[i] / totalWeight
				for resource, cost := range c.strategy.ResourceCost {
					allocated := cost
					if avail, ok := ctx.AvailableResources[resource]; ok {
						cap := share * avail
						if cap < allocated {
							allocated = cap
						}
					}
					usage[resource] += allocated
				}
			}
			for resource, used := range usage {
				if limit, ok := ctx.AvailableResources[resource]; ok && used > limit+1e-9 {
					feasible = false
					overResource = resource
					break
				}
			}
		}

		if feasible || len(chosen) <= 1 {
			return buildAllocation(chosen, usage, overResource, feasible)
		}

		// Greedy repair: drop the lowest-scoring selected strategy and retry.
		worst := 0
		for i, c := range chosen {
			if c.score < chosen[worst].score {
				worst = i
			}
		}
		chosen = append(chosen[:worst], chosen[worst+1:]...)
	}
}

func buildAllocation(chosen []scoredStrategy, usage map[string]float64, overResource string, feasible bool) *Allocation {
	strategies := make([]*Record, len(chosen))
	gains := map[string]float64{}
	rationale := make([]string, 0, len(chosen)+1)
	for i, c := range chosen {
		strategies[i] = c.strategy
		for dim, g := range c.strategy.ExpectedGain {
			gains[dim] += g
		}
		rationale = append(rationale, rationaleLine(c.strategy, c.score))
	}
	if !feasible {
		rationale = append(rationale, "resource overflow on "+overResource+"; allocation is partial")
	}
	return &Allocation{
		Strategies:    strategies,
		ResourceUsage: usage,
		ExpectedGains: gains,
		Rationale:     rationale,
	}
}

func rationaleLine(r *Record, s float64) string {
	return string(r.Kind) + " selected (score=" + strconv.FormatFloat(s, 'f', 4, 64) + ")"
}

// allocationWeights shifts scores so the lowest-scoring chosen strategy
// gets a small positive weight rather than zero, so proportional fitting
// still distributes resources sensibly even when every candidate scored
// negative (spec.md §4.3 step 4 "resources distributed proportionally to
// score").
func allocationWeights(chosen []scoredStrategy) []float64 {
	if len(chosen) == 0 {
		return nil
	}
	minScore := chosen[0].score
	for _, c := range chosen {
		if c.score < minScore {
			minScore = c.score
		}
	}
	weights := make([]float64, len(chosen))
	for i, c := range chosen {
		weights[i] = (c.score - minScore) + 0.01
	}
	return weights
}
