package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalibrationTracker_RecordPrediction(t *testing.T) {
	tracker := NewCalibrationTracker()

	tests := []struct {
		name        string
		prediction  *Prediction
		expectError bool
	}{
		{
			name: "valid prediction",
			prediction: &Prediction{
				DecisionID:   "decision-1",
				Confidence:   0.8,
				StrategyKind: "QueryOpt",
			},
			expectError: false,
		},
		{
			name: "missing decision_id",
			prediction: &Prediction{
				Confidence:   0.8,
				StrategyKind: "QueryOpt",
			},
			expectError: true,
		},
		{
			name: "confidence too high",
			prediction: &Prediction{
				DecisionID:   "decision-2",
				Confidence:   1.5,
				StrategyKind: "QueryOpt",
			},
			expectError: true,
		},
		{
			name: "confidence too low",
			prediction: &Prediction{
				DecisionID:   "decision-3",
				Confidence:   -0.1,
				StrategyKind: "QueryOpt",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tracker.RecordPrediction(tt.prediction)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.prediction.Timestamp)
			}
		})
	}
}

func TestCalibrationTracker_RecordOutcome(t *testing.T) {
	tracker := NewCalibrationTracker()

	pred := &Prediction{
		DecisionID:   "decision-1",
		Confidence:   0.8,
		StrategyKind: "QueryOpt",
	}
	err := tracker.RecordPrediction(pred)
	assert.NoError(t, err)

	tests := []struct {
		name        string
		outcome     *Outcome
		expectError bool
	}{
		{
			name: "valid outcome",
			outcome: &Outcome{
				DecisionID:       "decision-1",
				WasCorrect:       true,
				ActualConfidence: 0.9,
				Source:           OutcomeSourceEvaluate,
			},
			expectError: false,
		},
		{
			name: "missing decision_id",
			outcome: &Outcome{
				WasCorrect:       true,
				ActualConfidence: 0.9,
			},
			expectError: true,
		},
		{
			name: "no prediction exists",
			outcome: &Outcome{
				DecisionID:       "nonexistent",
				WasCorrect:       true,
				ActualConfidence: 0.9,
			},
			expectError: true,
		},
		{
			name: "invalid actual_confidence",
			outcome: &Outcome{
				DecisionID:       "decision-1",
				WasCorrect:       true,
				ActualConfidence: 1.5,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tracker.RecordOutcome(tt.outcome)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.outcome.Timestamp)
			}
		})
	}
}

func TestCalibrationTracker_GetCalibrationReport_NoData(t *testing.T) {
	tracker := NewCalibrationTracker()

	report := tracker.GetCalibrationReport()

	assert.NotNil(t, report)
	assert.Equal(t, 0, report.TotalPredictions)
	assert.Equal(t, 0, report.TotalOutcomes)
	assert.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "No outcomes recorded")
}

func TestCalibrationTracker_GetCalibrationReport_WellCalibrated(t *testing.T) {
	tracker := NewCalibrationTracker()

	confidenceLevels := []struct {
		conf    float64
		correct int
		total   int
	}{
		{0.5, 5, 10},
		{0.7, 7, 10},
		{0.9, 9, 10},
	}

	idx := 0
	for _, level := range confidenceLevels {
		for i := 0; i < level.total; i++ {
			pred := &Prediction{
				DecisionID:   string(rune('a' + idx)),
				Confidence:   level.conf,
				StrategyKind: "QueryOpt",
			}
			tracker.RecordPrediction(pred)

			outcome := &Outcome{
				DecisionID:       pred.DecisionID,
				WasCorrect:       i < level.correct,
				ActualConfidence: level.conf,
				Source:           OutcomeSourceEvaluate,
			}
			tracker.RecordOutcome(outcome)
			idx++
		}
	}

	report := tracker.GetCalibrationReport()

	assert.Equal(t, 30, report.TotalPredictions)
	assert.Equal(t, 30, report.TotalOutcomes)
	assert.InDelta(t, 0.7, report.OverallAccuracy, 0.05)
	assert.LessOrEqual(t, report.Bias.Magnitude, 0.1)

	if len(report.Recommendations) > 0 {
		assert.NotContains(t, report.Recommendations[0], "Significant")
	}
}

func TestCalibrationTracker_GetCalibrationReport_Overconfident(t *testing.T) {
	tracker := NewCalibrationTracker()

	for i := 0; i < 10; i++ {
		pred := &Prediction{
			DecisionID:   string(rune('a' + i)),
			Confidence:   0.9,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 6,
			ActualConfidence: 0.6,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	report := tracker.GetCalibrationReport()

	assert.Equal(t, 10, report.TotalPredictions)
	assert.Equal(t, 10, report.TotalOutcomes)
	assert.InDelta(t, 0.6, report.OverallAccuracy, 0.01)
	assert.Equal(t, BiasOverconfident, report.Bias.Type)
	assert.Greater(t, report.Bias.Magnitude, 0.15)
	assert.Contains(t, report.Recommendations[0], "overconfidence")
}

func TestCalibrationTracker_GetCalibrationReport_Underconfident(t *testing.T) {
	tracker := NewCalibrationTracker()

	for i := 0; i < 20; i++ {
		pred := &Prediction{
			DecisionID:   string(rune('a' + i)),
			Confidence:   0.6,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 17,
			ActualConfidence: 0.85,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	report := tracker.GetCalibrationReport()

	assert.Equal(t, 20, report.TotalPredictions)
	assert.Equal(t, 20, report.TotalOutcomes)
	assert.InDelta(t, 0.85, report.OverallAccuracy, 0.01)
	assert.Equal(t, BiasUnderconfident, report.Bias.Type)
	assert.Greater(t, report.Bias.Magnitude, 0.15)
	assert.Contains(t, report.Recommendations[0], "underconfidence")
}

func TestCalibrationTracker_GetCalibrationReport_ByStrategyKind(t *testing.T) {
	tracker := NewCalibrationTracker()

	for i := 0; i < 10; i++ {
		pred := &Prediction{
			DecisionID:   "queryopt-" + string(rune('a'+i)),
			Confidence:   0.8,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 8,
			ActualConfidence: 0.8,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	for i := 0; i < 10; i++ {
		pred := &Prediction{
			DecisionID:   "resourcealloc-" + string(rune('a'+i)),
			Confidence:   0.9,
			StrategyKind: "ResourceAlloc",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 5,
			ActualConfidence: 0.5,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	report := tracker.GetCalibrationReport()

	assert.Equal(t, 20, report.TotalPredictions)
	assert.Equal(t, 20, report.TotalOutcomes)
	assert.Len(t, report.ByStrategyKind, 2)

	queryOpt := report.ByStrategyKind["QueryOpt"]
	assert.NotNil(t, queryOpt)
	assert.Equal(t, 10, queryOpt.PredictionCount)
	assert.InDelta(t, 0.8, queryOpt.Accuracy, 0.01)

	resourceAlloc := report.ByStrategyKind["ResourceAlloc"]
	assert.NotNil(t, resourceAlloc)
	assert.Equal(t, 10, resourceAlloc.PredictionCount)
	assert.InDelta(t, 0.5, resourceAlloc.Accuracy, 0.01)
}

func TestCalibrationTracker_CalibrationBuckets(t *testing.T) {
	tracker := NewCalibrationTracker()

	confidenceLevels := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	for _, conf := range confidenceLevels {
		for i := 0; i < 10; i++ {
			pred := &Prediction{
				DecisionID:   string(rune('a'+i)) + "-" + string(rune('0'+int(conf*10))),
				Confidence:   conf,
				StrategyKind: "QueryOpt",
			}
			tracker.RecordPrediction(pred)

			correct := float64(i) < conf*10
			outcome := &Outcome{
				DecisionID:       pred.DecisionID,
				WasCorrect:       correct,
				ActualConfidence: conf,
				Source:           OutcomeSourceEvaluate,
			}
			tracker.RecordOutcome(outcome)
		}
	}

	report := tracker.GetCalibrationReport()

	assert.Equal(t, 50, report.TotalPredictions)
	assert.Equal(t, 50, report.TotalOutcomes)
	assert.NotEmpty(t, report.Buckets)
	assert.GreaterOrEqual(t, len(report.Buckets), 5)
}

func TestCalibrationTracker_GetPrediction(t *testing.T) {
	tracker := NewCalibrationTracker()

	pred := &Prediction{
		DecisionID:   "decision-1",
		Confidence:   0.8,
		StrategyKind: "QueryOpt",
	}
	tracker.RecordPrediction(pred)

	retrieved, err := tracker.GetPrediction("decision-1")
	assert.NoError(t, err)
	assert.Equal(t, pred.DecisionID, retrieved.DecisionID)
	assert.Equal(t, pred.Confidence, retrieved.Confidence)

	_, err = tracker.GetPrediction("nonexistent")
	assert.Error(t, err)
}

func TestCalibrationTracker_GetOutcome(t *testing.T) {
	tracker := NewCalibrationTracker()

	pred := &Prediction{
		DecisionID:   "decision-1",
		Confidence:   0.8,
		StrategyKind: "QueryOpt",
	}
	tracker.RecordPrediction(pred)

	outcome := &Outcome{
		DecisionID:       "decision-1",
		WasCorrect:       true,
		ActualConfidence: 0.9,
		Source:           OutcomeSourceEvaluate,
	}
	tracker.RecordOutcome(outcome)

	retrieved, err := tracker.GetOutcome("decision-1")
	assert.NoError(t, err)
	assert.Equal(t, outcome.DecisionID, retrieved.DecisionID)
	assert.Equal(t, outcome.WasCorrect, retrieved.WasCorrect)

	_, err = tracker.GetOutcome("nonexistent")
	assert.Error(t, err)
}

func TestCalibrationTracker_ListPredictions(t *testing.T) {
	tracker := NewCalibrationTracker()

	baseTime := time.Now()

	for i := 0; i < 5; i++ {
		pred := &Prediction{
			DecisionID:   "queryopt-" + string(rune('a'+i)),
			Confidence:   0.8,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)
		tracker.predictions[pred.DecisionID].Timestamp = baseTime.Add(time.Duration(i) * time.Minute)
	}

	for i := 0; i < 3; i++ {
		pred := &Prediction{
			DecisionID:   "resourcealloc-" + string(rune('a'+i)),
			Confidence:   0.7,
			StrategyKind: "ResourceAlloc",
		}
		tracker.RecordPrediction(pred)
		tracker.predictions[pred.DecisionID].Timestamp = baseTime.Add(time.Duration(i+10) * time.Minute)
	}

	all := tracker.ListPredictions("", 0)
	assert.Len(t, all, 8)

	queryOpt := tracker.ListPredictions("QueryOpt", 0)
	assert.Len(t, queryOpt, 5)

	resourceAlloc := tracker.ListPredictions("ResourceAlloc", 0)
	assert.Len(t, resourceAlloc, 3)

	limited := tracker.ListPredictions("", 3)
	assert.Len(t, limited, 3)
	assert.True(t, limited[0].Timestamp.After(limited[1].Timestamp))
}

func TestCalibrationTracker_Clear(t *testing.T) {
	tracker := NewCalibrationTracker()

	pred := &Prediction{
		DecisionID:   "decision-1",
		Confidence:   0.8,
		StrategyKind: "QueryOpt",
	}
	tracker.RecordPrediction(pred)

	outcome := &Outcome{
		DecisionID:       "decision-1",
		WasCorrect:       true,
		ActualConfidence: 0.9,
		Source:           OutcomeSourceEvaluate,
	}
	tracker.RecordOutcome(outcome)

	tracker.Clear()

	report := tracker.GetCalibrationReport()
	assert.Equal(t, 0, report.TotalPredictions)
	assert.Equal(t, 0, report.TotalOutcomes)

	_, err := tracker.GetPrediction("decision-1")
	assert.Error(t, err)

	_, err = tracker.GetOutcome("decision-1")
	assert.Error(t, err)
}

func TestCalibrationTracker_ExpectedCalibrationError(t *testing.T) {
	tracker := NewCalibrationTracker()

	for i := 0; i < 10; i++ {
		pred := &Prediction{
			DecisionID:   "bucket1-" + string(rune('a'+i)),
			Confidence:   0.5,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 8,
			ActualConfidence: 0.8,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	for i := 0; i < 10; i++ {
		pred := &Prediction{
			DecisionID:   "bucket2-" + string(rune('a'+i)),
			Confidence:   0.9,
			StrategyKind: "QueryOpt",
		}
		tracker.RecordPrediction(pred)

		outcome := &Outcome{
			DecisionID:       pred.DecisionID,
			WasCorrect:       i < 9,
			ActualConfidence: 0.9,
			Source:           OutcomeSourceEvaluate,
		}
		tracker.RecordOutcome(outcome)
	}

	report := tracker.GetCalibrationReport()

	assert.InDelta(t, 0.15, report.Calibration, 0.1)
}
