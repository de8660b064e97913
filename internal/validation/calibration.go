// Package validation tracks how well the optimizer's predicted decision
// quality matches the quality actually observed once an outcome comes back.
package validation

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// CalibrationTracker tracks predicted-quality/observed-quality pairs for
// optimizer decisions, bucketed by confidence and by strategy kind.
type CalibrationTracker struct {
	predictions map[string]*Prediction
	outcomes    map[string]*Outcome
	mu          sync.RWMutex
}

// Prediction is the predicted quality attached to one optimizer decision.
type Prediction struct {
	DecisionID   string    `json:"decision_id"`
	Confidence   float64   `json:"confidence"` // predicted quality, 0-1
	StrategyKind string    `json:"strategy_kind"`
	Timestamp    time.Time `json:"timestamp"`
}

// Outcome is the quality actually observed for a decision.
type Outcome struct {
	DecisionID       string        `json:"decision_id"`
	WasCorrect       bool          `json:"was_correct"`
	ActualConfidence float64       `json:"actual_confidence"` // observed quality, 0-1
	Source           OutcomeSource `json:"source"`
	Timestamp        time.Time     `json:"timestamp"`
}

// OutcomeSource indicates how the outcome was determined.
type OutcomeSource string

const (
	OutcomeSourceEvaluate     OutcomeSource = "evaluate"
	OutcomeSourceUserFeedback OutcomeSource = "user_feedback"
)

// CalibrationBucket is a confidence range and its observed accuracy.
type CalibrationBucket struct {
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
	Count         int     `json:"count"`
	CorrectCount  int     `json:"correct_count"`
	Accuracy      float64 `json:"accuracy"`
	Calibration   float64 `json:"calibration"` // difference from expected
}

// CalibrationReport summarizes calibration across all recorded decisions.
type CalibrationReport struct {
	TotalPredictions int                         `json:"total_predictions"`
	TotalOutcomes    int                         `json:"total_outcomes"`
	Buckets          []CalibrationBucket         `json:"buckets"`
	OverallAccuracy  float64                     `json:"overall_accuracy"`
	Calibration      float64                     `json:"calibration"` // Expected Calibration Error (ECE)
	Bias             CalibrationBias             `json:"bias"`
	ByStrategyKind   map[string]*KindCalibration `json:"by_strategy_kind"`
	Recommendations  []string                    `json:"recommendations"`
	GeneratedAt      time.Time                   `json:"generated_at"`
}

// CalibrationBias indicates systematic over/under confidence.
type CalibrationBias struct {
	Type        BiasType `json:"type"`
	Magnitude   float64  `json:"magnitude"`
	Description string   `json:"description"`
}

// BiasType categorizes calibration bias.
type BiasType string

const (
	BiasNone           BiasType = "none"
	BiasOverconfident  BiasType = "overconfident"
	BiasUnderconfident BiasType = "underconfident"
)

// KindCalibration tracks calibration for a single strategy kind.
type KindCalibration struct {
	StrategyKind    string  `json:"strategy_kind"`
	PredictionCount int     `json:"prediction_count"`
	OutcomeCount    int     `json:"outcome_count"`
	Accuracy        float64 `json:"accuracy"`
	Calibration     float64 `json:"calibration"`
}

// NewCalibrationTracker creates a new, empty calibration tracker.
func NewCalibrationTracker() *CalibrationTracker {
	return &CalibrationTracker{
		predictions: make(map[string]*Prediction),
		outcomes:    make(map[string]*Outcome),
	}
}

// RecordPrediction stores a decision's predicted quality.
func (ct *CalibrationTracker) RecordPrediction(prediction *Prediction) error {
	if prediction.DecisionID == "" {
		return fmt.Errorf("decision_id is required")
	}
	if prediction.Confidence < 0 || prediction.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1")
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	prediction.Timestamp = time.Now()
	ct.predictions[prediction.DecisionID] = prediction
	return nil
}

// RecordOutcome stores the observed quality for a decision.
func (ct *CalibrationTracker) RecordOutcome(outcome *Outcome) error {
	if outcome.DecisionID == "" {
		return fmt.Errorf("decision_id is required")
	}
	if outcome.ActualConfidence < 0 || outcome.ActualConfidence > 1 {
		return fmt.Errorf("actual_confidence must be between 0 and 1")
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	if _, exists := ct.predictions[outcome.DecisionID]; !exists {
		return fmt.Errorf("no prediction found for decision_id: %s", outcome.DecisionID)
	}

	outcome.Timestamp = time.Now()
	ct.outcomes[outcome.DecisionID] = outcome
	return nil
}

// GetCalibrationReport generates a comprehensive calibration report.
func (ct *CalibrationTracker) GetCalibrationReport() *CalibrationReport {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	report := &CalibrationReport{
		TotalPredictions: len(ct.predictions),
		TotalOutcomes:    len(ct.outcomes),
		Buckets:          []CalibrationBucket{},
		ByStrategyKind:   make(map[string]*KindCalibration),
		Recommendations:  []string{},
		GeneratedAt:      time.Now(),
	}

	var pairs []struct {
		prediction *Prediction
		outcome    *Outcome
	}

	for decisionID, prediction := range ct.predictions {
		if outcome, exists := ct.outcomes[decisionID]; exists {
			pairs = append(pairs, struct {
				prediction *Prediction
				outcome    *Outcome
			}{prediction, outcome})
		}
	}

	if len(pairs) == 0 {
		report.Recommendations = []string{"No outcomes recorded yet. Record outcomes to calculate calibration."}
		return report
	}

	buckets := make([]*CalibrationBucket, 10)
	for i := 0; i < 10; i++ {
		buckets[i] = &CalibrationBucket{
			MinConfidence: float64(i) / 10.0,
			MaxConfidence: float64(i+1) / 10.0,
		}
	}

	correctCount := 0
	kindStats := make(map[string]*struct {
		total   int
		correct int
		errors  []float64
	})

	for _, pair := range pairs {
		pred := pair.prediction
		out := pair.outcome

		bucketIdx := int(pred.Confidence * 10)
		if bucketIdx >= 10 {
			bucketIdx = 9
		}
		bucket := buckets[bucketIdx]
		bucket.Count++
		if out.WasCorrect {
			bucket.CorrectCount++
			correctCount++
		}

		if _, exists := kindStats[pred.StrategyKind]; !exists {
			kindStats[pred.StrategyKind] = &struct {
				total   int
				correct int
				errors  []float64
			}{}
		}
		stats := kindStats[pred.StrategyKind]
		stats.total++
		if out.WasCorrect {
			stats.correct++
		}

		expectedCorrect := pred.Confidence
		actualCorrect := 0.0
		if out.WasCorrect {
			actualCorrect = 1.0
		}
		stats.errors = append(stats.errors, math.Abs(expectedCorrect-actualCorrect))
	}

	var ece float64
	reportBuckets := []CalibrationBucket{}

	for _, bucket := range buckets {
		if bucket.Count > 0 {
			bucket.Accuracy = float64(bucket.CorrectCount) / float64(bucket.Count)
			expectedAccuracy := (bucket.MinConfidence + bucket.MaxConfidence) / 2
			bucket.Calibration = bucket.Accuracy - expectedAccuracy

			weight := float64(bucket.Count) / float64(len(pairs))
			ece += weight * math.Abs(bucket.Calibration)

			reportBuckets = append(reportBuckets, *bucket)
		}
	}

	report.Buckets = reportBuckets
	report.OverallAccuracy = float64(correctCount) / float64(len(pairs))
	report.Calibration = ece
	report.Bias = ct.calculateBias(reportBuckets)

	for kind, stats := range kindStats {
		kindCalib := &KindCalibration{
			StrategyKind:    kind,
			PredictionCount: stats.total,
			OutcomeCount:    stats.total,
			Accuracy:        float64(stats.correct) / float64(stats.total),
		}

		if len(stats.errors) > 0 {
			sum := 0.0
			for _, e := range stats.errors {
				sum += e
			}
			kindCalib.Calibration = sum / float64(len(stats.errors))
		}

		report.ByStrategyKind[kind] = kindCalib
	}

	report.Recommendations = ct.generateRecommendations(report)
	return report
}

// calculateBias determines if there's systematic over/under confidence.
func (ct *CalibrationTracker) calculateBias(buckets []CalibrationBucket) CalibrationBias {
	if len(buckets) == 0 {
		return CalibrationBias{Type: BiasNone}
	}

	totalWeight := 0
	weightedBias := 0.0

	for _, bucket := range buckets {
		weight := bucket.Count
		totalWeight += weight
		weightedBias += float64(weight) * bucket.Calibration
	}

	if totalWeight == 0 {
		return CalibrationBias{Type: BiasNone}
	}

	avgBias := weightedBias / float64(totalWeight)
	magnitude := math.Abs(avgBias)

	bias := CalibrationBias{Magnitude: magnitude}

	if magnitude < 0.05 {
		bias.Type = BiasNone
		bias.Description = "well calibrated - predicted quality matches observed quality"
	} else if avgBias > 0 {
		bias.Type = BiasUnderconfident
		if magnitude > 0.15 {
			bias.Description = fmt.Sprintf("significantly underconfident - observed quality %.1f%% higher than predicted", magnitude*100)
		} else {
			bias.Description = fmt.Sprintf("slightly underconfident - observed quality %.1f%% higher than predicted", magnitude*100)
		}
	} else {
		bias.Type = BiasOverconfident
		if magnitude > 0.15 {
			bias.Description = fmt.Sprintf("significantly overconfident - observed quality %.1f%% lower than predicted", magnitude*100)
		} else {
			bias.Description = fmt.Sprintf("slightly overconfident - observed quality %.1f%% lower than predicted", magnitude*100)
		}
	}

	return bias
}

// generateRecommendations creates actionable recommendations for the
// optimizer's future allocation decisions.
func (ct *CalibrationTracker) generateRecommendations(report *CalibrationReport) []string {
	var recommendations []string

	switch report.Bias.Type {
	case BiasOverconfident:
		if report.Bias.Magnitude > 0.15 {
			recommendations = append(recommendations,
				"significant overconfidence detected: consider widening the uncertainty penalty or lowering expected gains before allocation")
		} else {
			recommendations = append(recommendations,
				"slight overconfidence detected: expected gains run 5-15% high")
		}
	case BiasUnderconfident:
		if report.Bias.Magnitude > 0.15 {
			recommendations = append(recommendations,
				"significant underconfidence detected: the optimizer is leaving allocation headroom unused")
		} else {
			recommendations = append(recommendations,
				"slight underconfidence detected: expected gains run 5-15% low")
		}
	case BiasNone:
		recommendations = append(recommendations, "predicted and observed decision quality are well aligned")
	}

	for kind, kindCalib := range report.ByStrategyKind {
		if kindCalib.OutcomeCount >= 10 && kindCalib.Calibration > 0.1 {
			recommendations = append(recommendations,
				fmt.Sprintf("strategy kind %q is poorly calibrated (ECE=%.2f)", kind, kindCalib.Calibration))
		}
	}

	poorBuckets := []string{}
	for _, bucket := range report.Buckets {
		if bucket.Count >= 5 && math.Abs(bucket.Calibration) > 0.2 {
			poorBuckets = append(poorBuckets,
				fmt.Sprintf("%.0f%%-%.0f%%", bucket.MinConfidence*100, bucket.MaxConfidence*100))
		}
	}
	if len(poorBuckets) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("poor calibration in confidence ranges: %v", poorBuckets))
	}

	if report.TotalOutcomes < 20 {
		recommendations = append(recommendations,
			fmt.Sprintf("only %d outcomes recorded; calibration stabilizes around 50+", report.TotalOutcomes))
	}

	return recommendations
}

// GetPrediction retrieves a prediction by decision ID.
func (ct *CalibrationTracker) GetPrediction(decisionID string) (*Prediction, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	pred, exists := ct.predictions[decisionID]
	if !exists {
		return nil, fmt.Errorf("prediction not found for decision_id: %s", decisionID)
	}
	return pred, nil
}

// GetOutcome retrieves an outcome by decision ID.
func (ct *CalibrationTracker) GetOutcome(decisionID string) (*Outcome, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	outcome, exists := ct.outcomes[decisionID]
	if !exists {
		return nil, fmt.Errorf("outcome not found for decision_id: %s", decisionID)
	}
	return outcome, nil
}

// ListPredictions returns predictions optionally filtered by strategy kind
// and limited to at most limit entries (0 means unlimited), most recent
// first.
func (ct *CalibrationTracker) ListPredictions(strategyKind string, limit int) []*Prediction {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	var out []*Prediction
	for _, pred := range ct.predictions {
		if strategyKind != "" && pred.StrategyKind != strategyKind {
			continue
		}
		out = append(out, pred)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Clear removes all recorded predictions and outcomes.
func (ct *CalibrationTracker) Clear() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.predictions = make(map[string]*Prediction)
	ct.outcomes = make(map[string]*Outcome)
}
