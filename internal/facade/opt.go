package facade

import (
	"context"

	"edc/internal/mco"
	"edc/internal/registry"
)

// CreateOptimizerRequest wires opt.create. SeedStrategies is optional; an
// empty list seeds the default one-strategy-per-kind portfolio.
type CreateOptimizerRequest struct {
	SeedStrategies []StrategyWire `json:"seed_strategies,omitempty"`
}

// StrategyWire is the wire representation of an mco.Record.
type StrategyWire struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	ExpectedGain map[string]float64 `json:"expected_gain"`
	ResourceCost map[string]float64 `json:"resource_cost"`
	RequiredTime float64            `json:"required_time"`
}

// CreateOptimizerResult wires the freshly minted optimizer handle.
type CreateOptimizerResult struct {
	OptimizerHandle uint64 `json:"optimizer_handle"`
}

// CreateOptimizer implements opt.create.
func CreateOptimizer(req CreateOptimizerRequest) *Envelope {
	seeds := make([]*mco.Record, len(req.SeedStrategies))
	for i, s := range req.SeedStrategies {
		seeds[i] = mco.NewRecord(s.ID, mco.Kind(s.Kind), nil, s.ExpectedGain, s.ResourceCost, s.RequiredTime)
	}
	handle := registry.Optimizers.Create(mco.New(seeds))
	return ok(CreateOptimizerResult{OptimizerHandle: uint64(handle)})
}

// DecisionContextWire is the wire representation of an mco.DecisionContext.
type DecisionContextWire struct {
	QueryComplexity      float64            `json:"query_complexity"`
	AvailableResources   map[string]float64 `json:"available_resources"`
	QualityRequirements  map[string]float64 `json:"quality_requirements,omitempty"`
	TimeBudget           float64            `json:"time_budget"`
	UncertaintyTolerance float64            `json:"uncertainty_tolerance"`
	Tags                 []string           `json:"tags,omitempty"`
}

func decisionContextWireToContext(w DecisionContextWire) *mco.DecisionContext {
	tags := make(map[string]struct{}, len(w.Tags))
	for _, t := range w.Tags {
		tags[t] = struct{}{}
	}
	return &mco.DecisionContext{
		QueryComplexity:      w.QueryComplexity,
		AvailableResources:   w.AvailableResources,
		QualityRequirements:  w.QualityRequirements,
		TimeBudget:           w.TimeBudget,
		UncertaintyTolerance: w.UncertaintyTolerance,
		Tags:                 tags,
	}
}

// OptimizeRequest wires opt.optimize. NetworkHandle is optional; when
// present the optimizer reads its Meta node belief as the uncertainty
// source instead of the default prior (spec.md §4.3 step 2).
type OptimizeRequest struct {
	OptimizerHandle uint64              `json:"optimizer_handle"`
	Context         DecisionContextWire `json:"context"`
	NetworkHandle   *uint64             `json:"network_handle,omitempty"`
}

// OptimizationResultWire wires an mco.OptimizationResult (spec.md §6).
type OptimizationResultWire struct {
	DecisionID         string             `json:"decision_id"`
	SelectedStrategies []string           `json:"selected_strategies"`
	Allocation         map[string]float64 `json:"allocation"`
	ExpectedGains      map[string]float64 `json:"expected_gains"`
	Rationale          []string           `json:"rationale"`
	Uncertainty        float64            `json:"uncertainty"`
}

// Optimize implements opt.optimize.
func Optimize(ctx context.Context, req OptimizeRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}

	var uncertaintySrc mco.UncertaintySource
	if req.NetworkHandle != nil {
		net, err := registry.Networks.Get(registry.Handle(*req.NetworkHandle))
		if err != nil {
			return fail(err)
		}
		uncertaintySrc = net
	}

	result, err := opt.Optimize(ctx, decisionContextWireToContext(req.Context), uncertaintySrc)
	if err != nil {
		return fail(err)
	}
	return ok(OptimizationResultWire{
		DecisionID:         result.DecisionID,
		SelectedStrategies: result.SelectedStrategies,
		Allocation:         result.Allocation,
		ExpectedGains:      result.ExpectedGains,
		Rationale:          result.Rationale,
		Uncertainty:        result.Uncertainty,
	})
}

// OutcomeWire is the wire representation of an mco.Outcome.
type OutcomeWire struct {
	QualityAchieved float64            `json:"quality_achieved"`
	ResourcesUsed   map[string]float64 `json:"resources_used"`
	TimeTaken       float64            `json:"time_taken"`
	UserFeedback    float64            `json:"user_feedback"`
}

func outcomeWireToOutcome(w OutcomeWire) mco.Outcome {
	return mco.Outcome{
		QualityAchieved: w.QualityAchieved,
		ResourcesUsed:   w.ResourcesUsed,
		TimeTaken:       w.TimeTaken,
		UserFeedback:    w.UserFeedback,
	}
}

// EvaluateRequest wires opt.evaluate.
type EvaluateRequest struct {
	OptimizerHandle uint64                 `json:"optimizer_handle"`
	Result          OptimizationResultWire `json:"result"`
	ObservedOutcome OutcomeWire            `json:"observed_outcome"`
}

// DecisionScoreWire wires an mco.DecisionScore.
type DecisionScoreWire struct {
	PredictedQuality float64  `json:"predicted_quality"`
	ActualQuality    float64  `json:"actual_quality"`
	Error            float64  `json:"error"`
	Strategies       []string `json:"strategies"`
}

// Evaluate implements opt.evaluate.
func Evaluate(req EvaluateRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}

	result := &mco.OptimizationResult{
		DecisionID:         req.Result.DecisionID,
		SelectedStrategies: req.Result.SelectedStrategies,
		Allocation:         req.Result.Allocation,
		ExpectedGains:      req.Result.ExpectedGains,
		Rationale:          req.Result.Rationale,
		Uncertainty:        req.Result.Uncertainty,
	}
	score := opt.EvaluateDecision(result, outcomeWireToOutcome(req.ObservedOutcome))
	return ok(DecisionScoreWire{
		PredictedQuality: score.PredictedQuality,
		ActualQuality:    score.ActualQuality,
		Error:            score.Error,
		Strategies:       score.Strategies,
	})
}

// UpdateRequest wires opt.update.
type UpdateRequest struct {
	OptimizerHandle uint64      `json:"optimizer_handle"`
	StrategyID      string      `json:"strategy_id"`
	Outcome         OutcomeWire `json:"outcome"`
}

// Update implements opt.update.
func Update(req UpdateRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}
	if err := opt.UpdateStrategyPerformance(req.StrategyID, outcomeWireToOutcome(req.Outcome)); err != nil {
		return fail(err)
	}
	return ok(struct{}{})
}

// OptStatsRequest wires opt.stats.
type OptStatsRequest struct {
	OptimizerHandle uint64 `json:"optimizer_handle"`
}

// StrategyStatsWire reports one portfolio strategy's current learning state.
type StrategyStatsWire struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	SuccessRate float64 `json:"success_rate"`
	Invocations int     `json:"invocations"`
}

// OptStats reports the optimizer's portfolio and decision log size.
type OptStats struct {
	Portfolio         []StrategyStatsWire `json:"portfolio"`
	DecisionLogLength int                 `json:"decision_log_length"`
}

// OptStatsOp implements opt.stats.
func OptStatsOp(req OptStatsRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}

	portfolio := opt.Portfolio()
	stats := make([]StrategyStatsWire, len(portfolio))
	for i, r := range portfolio {
		stats[i] = StrategyStatsWire{ID: r.ID, Kind: string(r.Kind), SuccessRate: r.SuccessRate, Invocations: r.Invocations}
	}
	return ok(OptStats{Portfolio: stats, DecisionLogLength: len(opt.DecisionLog())})
}

// CalibrationBucketWire wires a validation.CalibrationBucket.
type CalibrationBucketWire struct {
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
	Count         int     `json:"count"`
	CorrectCount  int     `json:"correct_count"`
	Accuracy      float64 `json:"accuracy"`
	Calibration   float64 `json:"calibration"`
}

// KindCalibrationWire wires a validation.KindCalibration.
type KindCalibrationWire struct {
	PredictionCount int     `json:"prediction_count"`
	OutcomeCount    int     `json:"outcome_count"`
	Accuracy        float64 `json:"accuracy"`
	Calibration     float64 `json:"calibration"`
}

// CalibrationReportWire wires a validation.CalibrationReport, reporting how
// well an optimizer's predicted decision quality has tracked observed
// outcomes across every opt.evaluate call made against it.
type CalibrationReportWire struct {
	TotalPredictions int                             `json:"total_predictions"`
	TotalOutcomes    int                             `json:"total_outcomes"`
	Buckets          []CalibrationBucketWire         `json:"buckets"`
	OverallAccuracy  float64                         `json:"overall_accuracy"`
	ExpectedError    float64                         `json:"expected_calibration_error"`
	BiasType         string                          `json:"bias_type"`
	BiasMagnitude    float64                         `json:"bias_magnitude"`
	ByStrategyKind   map[string]KindCalibrationWire  `json:"by_strategy_kind"`
	Recommendations  []string                        `json:"recommendations"`
}

// CalibrationReport implements opt.calibration.
func CalibrationReport(req OptStatsRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}

	report := opt.CalibrationReport()
	buckets := make([]CalibrationBucketWire, len(report.Buckets))
	for i, b := range report.Buckets {
		buckets[i] = CalibrationBucketWire{
			MinConfidence: b.MinConfidence,
			MaxConfidence: b.MaxConfidence,
			Count:         b.Count,
			CorrectCount:  b.CorrectCount,
			Accuracy:      b.Accuracy,
			Calibration:   b.Calibration,
		}
	}
	byKind := make(map[string]KindCalibrationWire, len(report.ByStrategyKind))
	for kind, kc := range report.ByStrategyKind {
		byKind[kind] = KindCalibrationWire{
			PredictionCount: kc.PredictionCount,
			OutcomeCount:    kc.OutcomeCount,
			Accuracy:        kc.Accuracy,
			Calibration:     kc.Calibration,
		}
	}
	return ok(CalibrationReportWire{
		TotalPredictions: report.TotalPredictions,
		TotalOutcomes:    report.TotalOutcomes,
		Buckets:          buckets,
		OverallAccuracy:  report.OverallAccuracy,
		ExpectedError:    report.Calibration,
		BiasType:         string(report.Bias.Type),
		BiasMagnitude:    report.Bias.Magnitude,
		ByStrategyKind:   byKind,
		Recommendations:  report.Recommendations,
	})
}

// BanditStateRequest wires opt.bandit_state. Samples bounds the Monte Carlo
// draw count used to estimate each arm's selection probability; a
// non-positive value falls back to 1000.
type BanditStateRequest struct {
	OptimizerHandle uint64 `json:"optimizer_handle"`
	Samples         int    `json:"samples,omitempty"`
}

// BanditArmWire wires one mco.BanditArm.
type BanditArmWire struct {
	StrategyID           string  `json:"strategy_id"`
	Alpha                float64 `json:"alpha"`
	Beta                 float64 `json:"beta"`
	Trials               int     `json:"trials"`
	Successes            int     `json:"successes"`
	SelectionProbability float64 `json:"selection_probability"`
}

// BanditStateResult wires the portfolio's Thompson Sampling state.
type BanditStateResult struct {
	Arms []BanditArmWire `json:"arms"`
}

// BanditState implements opt.bandit_state, reporting the Beta-distribution
// bandit arm backing each portfolio strategy alongside its EWMA
// success_rate in opt.stats — a second, exploration-aware view of the same
// per-strategy success history.
func BanditState(req BanditStateRequest) *Envelope {
	opt, err := registry.Optimizers.Get(registry.Handle(req.OptimizerHandle))
	if err != nil {
		return fail(err)
	}

	samples := req.Samples
	if samples <= 0 {
		samples = 1000
	}

	arms := opt.BanditState(samples)
	wire := make([]BanditArmWire, len(arms))
	for i, a := range arms {
		wire[i] = BanditArmWire{
			StrategyID:           a.StrategyID,
			Alpha:                a.Alpha,
			Beta:                 a.Beta,
			Trials:               a.Trials,
			Successes:            a.Successes,
			SelectionProbability: a.SelectionProbability,
		}
	}
	return ok(BanditStateResult{Arms: wire})
}
