package facade

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edc/internal/edcerr"
)

func decodeOk(t *testing.T, env *Envelope, out interface{}) {
	t.Helper()
	require.Nil(t, env.Error, "unexpected error envelope: %+v", env.Error)
	body, err := json.Marshal(env.Ok)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestFuzzyRoundTrip_CreateInferDefuzzify(t *testing.T) {
	createResp := CreateSet(CreateSetRequest{
		Set: FuzzySetWire{Name: "low", Lo: 0, Hi: 1, Fn: FnSpecWire{Type: "triangular", Left: -0.2, Center: 0.2, Right: 0.6}},
	})
	var created CreateSetResult
	decodeOk(t, createResp, &created)
	require.NotZero(t, created.EngineHandle)

	addHighResp := CreateSet(CreateSetRequest{
		EngineHandle: created.EngineHandle,
		Set:          FuzzySetWire{Name: "high", Lo: 0, Hi: 1, Fn: FnSpecWire{Type: "triangular", Left: 0.4, Center: 0.8, Right: 1.2}},
	})
	var addedHigh CreateSetResult
	decodeOk(t, addHighResp, &addedHigh)
	assert.Equal(t, created.EngineHandle, addedHigh.EngineHandle)

	inferResp := Inference(InferenceRequest{
		EngineHandle: created.EngineHandle,
		Inputs:       map[string]float64{"x": 0.8},
		Rules: []RuleWire{{
			Antecedents: []AntecedentWire{{Variable: "x", Set: "high"}},
			Connective:  "AND",
			Consequent:  struct {
				Variable string `json:"variable"`
				Set      string `json:"set"`
			}{Variable: "y", Set: "high"},
			Weight: 1.0,
		}},
	})
	var inferred InferenceResult
	decodeOk(t, inferResp, &inferred)
	out, ok := inferred.Outputs["y"]
	require.True(t, ok)

	defuzzResp := Defuzzify(DefuzzifyRequest{Output: out, Method: "centroid"})
	var defuzzed DefuzzifyResult
	decodeOk(t, defuzzResp, &defuzzed)
	assert.GreaterOrEqual(t, defuzzed.Value, 0.6)
	assert.LessOrEqual(t, defuzzed.Value, 1.0)
}

func TestCombineEvidence(t *testing.T) {
	resp := CombineEvidence(CombineEvidenceRequest{
		Evidences: []EvidenceWire{
			{Value: 1, MembershipDegree: 0.9, Confidence: 0.8, SourceReliability: 1, TemporalDecay: 1, ContextRelevance: 1},
			{Value: 1, MembershipDegree: 0.7, Confidence: 0.6, SourceReliability: 1, TemporalDecay: 1, ContextRelevance: 1},
		},
	})
	var result CombineEvidenceResult
	decodeOk(t, resp, &result)
	assert.GreaterOrEqual(t, result.Value, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestMetricsSnapshot_TracksCombineEvidence(t *testing.T) {
	before := processMetrics.GetStats()

	decodeOk(t, CombineEvidence(CombineEvidenceRequest{
		Evidences: []EvidenceWire{
			{Value: 1, MembershipDegree: 0.9, Confidence: 0.8, SourceReliability: 1, TemporalDecay: 1, ContextRelevance: 1},
			{Value: 1, MembershipDegree: 0.7, Confidence: 0.6, SourceReliability: 1, TemporalDecay: 1, ContextRelevance: 1},
		},
	}), &CombineEvidenceResult{})

	var snapshot MetricsSnapshotResult
	decodeOk(t, MetricsSnapshot(EmptyRequest{}), &snapshot)
	assert.Greater(t, snapshot.BeliefsCombined, before["beliefs_combined"])
}

func TestNetworkRoundTrip(t *testing.T) {
	ctx := context.Background()

	createResp := CreateNetwork()
	var created CreateNetworkResult
	decodeOk(t, createResp, &created)

	decodeOk(t, AddNode(AddNodeRequest{NetworkHandle: created.NetworkHandle, ID: "cause", Kind: "Domain", Prior: 0.3}), &struct{}{})
	decodeOk(t, AddNode(AddNodeRequest{NetworkHandle: created.NetworkHandle, ID: "effect", Kind: "Domain", Prior: 0.3}), &struct{}{})
	decodeOk(t, AddEdge(AddEdgeRequest{NetworkHandle: created.NetworkHandle, Source: "cause", Target: "effect", Kind: "Causal", Strength: 0.8}), &struct{}{})

	decodeOk(t, UpdateEvidence(UpdateEvidenceRequest{
		NetworkHandle: created.NetworkHandle,
		NodeID:        "cause",
		Evidence:      EvidenceWire{Value: 1, MembershipDegree: 1, Confidence: 0.9, SourceReliability: 1, TemporalDecay: 1, ContextRelevance: 1},
	}), &struct{}{})

	propResp := Propagate(ctx, PropagateRequest{NetworkHandle: created.NetworkHandle, Algorithm: "belief_propagation", Seed: 1})
	var report PropagationReportWire
	decodeOk(t, propResp, &report)
	assert.Contains(t, report.Beliefs, "cause")
	assert.Contains(t, report.Beliefs, "effect")

	for _, spec := range []QuerySpecWire{
		{Kind: "marginal", Node: "effect"},
		{Kind: "conditional", Target: "effect", Given: map[string]float64{"cause": 1}},
		{Kind: "mpe", Scope: []string{"cause", "effect"}},
		{Kind: "sensitivity", Target: "effect", Wrt: []string{"cause"}},
		{Kind: "what_if", Interventions: map[string]float64{"cause": 0.9}},
	} {
		resp := Query(ctx, QueryRequest{NetworkHandle: created.NetworkHandle, Spec: spec})
		require.Nil(t, resp.Error, "query kind %q failed: %+v", spec.Kind, resp.Error)
	}

	statsResp := NetworkStatsOp(StatsRequest{NetworkHandle: created.NetworkHandle})
	var stats NetworkStats
	decodeOk(t, statsResp, &stats)
	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 1, stats.EdgeCount)
}

func TestOptimizerRoundTrip(t *testing.T) {
	createResp := CreateOptimizer(CreateOptimizerRequest{})
	var created CreateOptimizerResult
	decodeOk(t, createResp, &created)

	optResp := Optimize(context.Background(), OptimizeRequest{
		OptimizerHandle: created.OptimizerHandle,
		Context: DecisionContextWire{
			QueryComplexity:      0.5,
			AvailableResources:   map[string]float64{"cpu": 1.0},
			TimeBudget:           10,
			UncertaintyTolerance: 0.5,
		},
	})
	var result OptimizationResultWire
	decodeOk(t, optResp, &result)
	require.NotEmpty(t, result.SelectedStrategies)

	evalResp := Evaluate(EvaluateRequest{
		OptimizerHandle: created.OptimizerHandle,
		Result:          result,
		ObservedOutcome: OutcomeWire{QualityAchieved: 0.7, TimeTaken: 5, UserFeedback: 0.8},
	})
	var score DecisionScoreWire
	decodeOk(t, evalResp, &score)

	decodeOk(t, Update(UpdateRequest{
		OptimizerHandle: created.OptimizerHandle,
		StrategyID:      result.SelectedStrategies[0],
		Outcome:         OutcomeWire{QualityAchieved: 0.7, TimeTaken: 5, UserFeedback: 0.8},
	}), &struct{}{})

	statsResp := OptStatsOp(OptStatsRequest{OptimizerHandle: created.OptimizerHandle})
	var stats OptStats
	decodeOk(t, statsResp, &stats)
	assert.NotEmpty(t, stats.Portfolio)
	assert.Equal(t, 1, stats.DecisionLogLength)

	calibResp := CalibrationReport(OptStatsRequest{OptimizerHandle: created.OptimizerHandle})
	var calib CalibrationReportWire
	decodeOk(t, calibResp, &calib)
	assert.Equal(t, 1, calib.TotalPredictions)
	assert.Equal(t, 1, calib.TotalOutcomes)

	banditResp := BanditState(BanditStateRequest{OptimizerHandle: created.OptimizerHandle, Samples: 200})
	var bandit BanditStateResult
	decodeOk(t, banditResp, &bandit)
	require.NotEmpty(t, bandit.Arms)
	for _, a := range bandit.Arms {
		assert.GreaterOrEqual(t, a.SelectionProbability, 0.0)
		assert.LessOrEqual(t, a.SelectionProbability, 1.0)
	}
}

func TestErrorEnvelope_UnknownHandle(t *testing.T) {
	resp := AddNode(AddNodeRequest{NetworkHandle: 999999, ID: "x", Kind: "Domain", Prior: 0.5})
	require.NotNil(t, resp.Error)
	assert.Equal(t, edcerr.UnknownHandle, resp.Error.Kind)
}

func TestDispatch_UnknownOperation(t *testing.T) {
	raw := Dispatch(context.Background(), "nope.nope", json.RawMessage(`{}`))
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, edcerr.InvalidInput, env.Error.Kind)
}

func TestDispatch_FuzzyCreateSet(t *testing.T) {
	req, err := json.Marshal(CreateSetRequest{
		Set: FuzzySetWire{Name: "low", Lo: 0, Hi: 1, Fn: FnSpecWire{Type: "triangular", Left: 0, Center: 0.5, Right: 1}},
	})
	require.NoError(t, err)

	raw := Dispatch(context.Background(), "fuzzy.create_set", req)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Nil(t, env.Error)
}
