package mco

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"edc/internal/edcerr"
	"edc/internal/reinforcement"
	"edc/internal/ring"
	"edc/internal/validation"
)

// DecisionLogCapacity bounds the optimizer's decision history (spec.md §5).
const DecisionLogCapacity = 1000

// DefaultAlpha is the EWMA smoothing factor for success_rate (spec.md §3).
const DefaultAlpha = 0.2

// successThreshold is the quality_achieved cutoff above which an outcome
// counts as a success for the EWMA update (spec.md §4.3 "indicator(outcome
// >= threshold)"). The source left the threshold unspecified; 0.5 treats a
// majority-quality outcome as success.
const successThreshold = 0.5

// OptimizationResult is the caller-facing bundle returned by Optimize,
// mirroring the wire shape in spec.md §6.
type OptimizationResult struct {
	DecisionID         string // correlates with EvaluateDecision/decision log entries
	SelectedStrategies []string
	Allocation         map[string]float64
	ExpectedGains      map[string]float64
	Rationale          []string
	Uncertainty        float64
}

// DecisionScore is the result of EvaluateDecision.
type DecisionScore struct {
	PredictedQuality float64
	ActualQuality    float64
	Error            float64
	Strategies       []string
}

// decisionLogEntry records one optimize call for the bounded decision log.
type decisionLogEntry struct {
	Context   *DecisionContext
	Result    *OptimizationResult
	Timestamp time.Time
}

// Optimizer owns a strategy portfolio, a bounded decision log, and the
// EWMA learning parameter alpha (spec.md §3 "Optimizer instance").
type Optimizer struct {
	mu         sync.Mutex
	portfolio  map[string]*Record
	alpha      float64
	decisions  *ring.Ring[decisionLogEntry]
	calibrator *validation.CalibrationTracker
	bandit     *reinforcement.ThompsonSelector
}

// New creates an optimizer, seeding the portfolio with one strategy per
// kind when seedStrategies is empty (spec.md §4.3).
func New(seedStrategies []*Record) *Optimizer {
	o := &Optimizer{
		portfolio:  make(map[string]*Record),
		alpha:      DefaultAlpha,
		decisions:  ring.New[decisionLogEntry](DecisionLogCapacity),
		calibrator: validation.NewCalibrationTracker(),
		bandit:     reinforcement.NewThompsonSelectorWithTime(),
	}

	if len(seedStrategies) == 0 {
		seedStrategies = defaultSeedPortfolio()
	}
	for _, r := range seedStrategies {
		o.portfolio[r.ID] = r
		o.bandit.AddStrategy(&reinforcement.Strategy{ID: r.ID, Name: r.ID, Kind: string(r.Kind), IsActive: true})
	}
	return o
}

// Optimize selects a strategy bundle and allocates resources for it
// (spec.md §4.3). A nil uncertaintySrc falls back to the default prior.
func (o *Optimizer) Optimize(ctx context.Context, decisionCtx *DecisionContext, uncertaintySrc UncertaintySource) (*OptimizationResult, error) {
	o.mu.Lock()
	portfolio := make([]*Record, 0, len(o.portfolio))
	for _, r := range o.portfolio {
		portfolio = append(portfolio, r)
	}
	o.mu.Unlock()

	selection, err := Select(ctx, portfolio, decisionCtx, uncertaintySrc)
	if err != nil {
		return nil, err
	}

	if len(selection.chosen) == 0 {
		result := &OptimizationResult{
			DecisionID:         uuid.NewString(),
			SelectedStrategies: []string{},
			Allocation:         map[string]float64{},
			ExpectedGains:      map[string]float64{},
			Rationale:          []string{"no applicable strategy for this context"},
			Uncertainty:        uncertaintyPenalty(uncertaintySrc),
		}
		o.logDecision(decisionCtx, result)
		o.recordPrediction(result, "none")
		return result, nil
	}

	alloc := allocate(selection, decisionCtx)

	ids := make([]string, len(alloc.Strategies))
	for i, s := range alloc.Strategies {
		ids[i] = s.ID
	}

	result := &OptimizationResult{
		DecisionID:         uuid.NewString(),
		SelectedStrategies: ids,
		Allocation:         alloc.ResourceUsage,
		ExpectedGains:      alloc.ExpectedGains,
		Rationale:          alloc.Rationale,
		Uncertainty:        uncertaintyPenalty(uncertaintySrc),
	}
	o.logDecision(decisionCtx, result)
	o.recordPrediction(result, string(alloc.Strategies[0].Kind))
	return result, nil
}

// recordPrediction feeds the decision's predicted quality into the
// calibration tracker so CalibrationReport can compare it against the
// outcome EvaluateDecision later observes. A nil or missing quality gain
// is skipped; it carries no calibration signal.
func (o *Optimizer) recordPrediction(result *OptimizationResult, strategyKind string) {
	quality, ok := result.ExpectedGains["quality"]
	if !ok || quality < 0 || quality > 1 {
		return
	}
	o.calibrator.RecordPrediction(&validation.Prediction{
		DecisionID:   result.DecisionID,
		Confidence:   quality,
		StrategyKind: strategyKind,
	})
}

func (o *Optimizer) logDecision(ctx *DecisionContext, result *OptimizationResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions.Push(decisionLogEntry{Context: ctx, Result: result, Timestamp: time.Now()})
}

// EvaluateDecision compares a prior optimization result against an
// observed outcome, returning a DecisionScore (spec.md §4.3).
func (o *Optimizer) EvaluateDecision(result *OptimizationResult, observed Outcome) *DecisionScore {
	predicted := result.ExpectedGains["quality"]
	o.calibrator.RecordOutcome(&validation.Outcome{
		DecisionID:       result.DecisionID,
		WasCorrect:       observed.QualityAchieved >= successThreshold,
		ActualConfidence: clampUnit(observed.QualityAchieved),
		Source:           validation.OutcomeSourceEvaluate,
	})
	return &DecisionScore{
		PredictedQuality: predicted,
		ActualQuality:    observed.QualityAchieved,
		Error:            observed.QualityAchieved - predicted,
		Strategies:       result.SelectedStrategies,
	}
}

// clampUnit clamps v to [0,1]; QualityAchieved is nominally unit-ranged but
// EvaluateDecision may be called with unvalidated caller input.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CalibrationReport reports how well this optimizer's predicted decision
// quality has matched observed outcomes so far.
func (o *Optimizer) CalibrationReport() *validation.CalibrationReport {
	return o.calibrator.GetCalibrationReport()
}

// BanditArm is one strategy's Thompson Sampling state, exposed alongside
// the EWMA-based Record so a caller can compare the two exploration
// signals: SuccessRate is deterministic and recency-weighted, while
// SelectionProbability reflects accumulated Beta-distribution evidence.
type BanditArm struct {
	StrategyID           string
	Alpha                float64
	Beta                 float64
	Trials               int
	Successes            int
	SelectionProbability float64
}

// BanditState reports every portfolio strategy's Thompson Sampling arm,
// with SelectionProbability estimated via samples draws from each arm's
// Beta(alpha, beta) posterior (spec.md's EWMA learning loop has no
// exploration term of its own; this is the optimizer's secondary,
// probabilistic view of the same success history).
func (o *Optimizer) BanditState(samples int) []BanditArm {
	dist := o.bandit.GetStrategyDistribution(samples)
	arms := o.bandit.GetAllStrategies()
	out := make([]BanditArm, 0, len(arms))
	for _, a := range arms {
		out = append(out, BanditArm{
			StrategyID:           a.ID,
			Alpha:                a.Alpha,
			Beta:                 a.Beta,
			Trials:               a.TotalTrials,
			Successes:            a.TotalSuccesses,
			SelectionProbability: dist[a.ID],
		})
	}
	return out
}

// UpdateStrategyPerformance applies the EWMA success_rate update and
// records the outcome in the strategy's bounded history, clipping outliers
// beyond 3 standard deviations of recent history before folding them in
// (spec.md §4.3 "Learning"). Updates to a single optimizer are serialized
// by o.mu (spec.md §5 "Optimizer update_strategy_performance calls are
// serialized per optimizer").
func (o *Optimizer) UpdateStrategyPerformance(strategyID string, outcome Outcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, ok := o.portfolio[strategyID]
	if !ok {
		return edcerr.Newf(edcerr.InvalidInput, "unknown strategy id: %s", strategyID)
	}
	if outcome.QualityAchieved < 0 || outcome.QualityAchieved > 1 || outcome.UserFeedback < 0 || outcome.UserFeedback > 1 {
		return edcerr.New(edcerr.InvalidInput, "outcome values out of [0,1] range", nil)
	}

	clipped := clipOutlier(outcome.QualityAchieved, r.History.Items())
	indicator := 0.0
	if clipped >= successThreshold {
		indicator = 1.0
	}

	_ = o.bandit.RecordOutcome(strategyID, indicator >= 1.0)

	r.SuccessRate = o.alpha*indicator + (1-o.alpha)*r.SuccessRate
	for dim := range r.ExpectedGain {
		if dim == "quality" {
			r.ExpectedGain[dim] = o.alpha*clipped + (1-o.alpha)*r.ExpectedGain[dim]
		}
	}

	outcome.QualityAchieved = clipped
	r.History.Push(outcome)
	r.Invocations++
	return nil
}

// clipOutlier clamps v to within 3 standard deviations of history's
// quality_achieved values, a no-op when fewer than 2 samples exist.
func clipOutlier(v float64, history []Outcome) float64 {
	if len(history) < 2 {
		return v
	}

	mean, std := meanStd(history)
	if std == 0 {
		return v
	}
	low, high := mean-3*std, mean+3*std
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func meanStd(history []Outcome) (mean, std float64) {
	n := float64(len(history))
	for _, h := range history {
		mean += h.QualityAchieved
	}
	mean /= n

	var sumSq float64
	for _, h := range history {
		d := h.QualityAchieved - mean
		sumSq += d * d
	}
	std = math.Sqrt(sumSq / n)
	return mean, std
}

// Portfolio returns a snapshot of the current strategy records.
func (o *Optimizer) Portfolio() []*Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Record, 0, len(o.portfolio))
	for _, r := range o.portfolio {
		out = append(out, r)
	}
	return out
}

// DecisionLog returns the bounded history of past optimize calls.
func (o *Optimizer) DecisionLog() []decisionLogEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.decisions.Items()
}
