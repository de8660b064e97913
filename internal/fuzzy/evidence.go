package fuzzy

import (
	"time"

	"edc/internal/edcerr"
)

// Evidence is one evidential datum as defined in spec.md §3.
type Evidence struct {
	Value             float64
	MembershipDegree  float64
	Confidence        float64
	SourceReliability float64
	TemporalDecay     float64
	ContextRelevance  float64
	Timestamp         time.Time
}

// EffectiveWeight is confidence * source_reliability * temporal_decay *
// context_relevance.
func (e *Evidence) EffectiveWeight() float64 {
	return e.Confidence * e.SourceReliability * e.TemporalDecay * e.ContextRelevance
}

// ConsensusBoost is the confidence bonus applied when multiple evidences
// agree in sign of support, per spec.md §9 open question (c). The source
// system left this unspecified; this value is the configurable default.
const ConsensusBoost = 0.1

// mass derives a simple Dempster-Shafer belief mass assignment from one
// evidence datum: the mass on "supports" is membership_degree scaled by
// effective weight, the remainder is assigned to "uncertain" (Ω), never to
// "refutes" directly — a single evidence datum alone cannot refute,
// it can only fail to support.
func (e *Evidence) mass() (support, uncertain float64) {
	w := clamp01(e.EffectiveWeight())
	support = clamp01(e.MembershipDegree) * w
	uncertain = 1 - support
	return support, uncertain
}

// CombineEvidence performs Dempster-Shafer combination across a batch of
// evidence data, deriving each datum's mass from (membership_degree,
// effective_weight) as described in spec.md §4.1, and returns the
// combined value, confidence, and the conflict factor K.
//
// Combination rule (pairwise Dempster's rule of combination, folded over
// the batch): for two mass functions m1, m2 over {Support, Refute, Ω},
//
//	m12(Support) = [m1(S)m2(S) + m1(S)m2(Ω) + m1(Ω)m2(S)] / (1-K)
//	m12(Refute)  = [m1(R)m2(R) + m1(R)m2(Ω) + m1(Ω)m2(R)] / (1-K)
//	K            = m1(S)m2(R) + m1(R)m2(S)   (mass assigned to the empty set)
//
// Since a single evidence datum never carries direct "refute" mass (see
// mass()), K only grows here when evidences disagree through their
// resulting combined state across iterations — evidences whose value
// disagrees in sign contribute their mass to the opposing side before
// combination. If K exceeds 0.999 the evidence set is irreconcilable and
// HighConflict is returned.
func CombineEvidence(evidences []*Evidence) (value, confidence float64, conflictK float64, err error) {
	if len(evidences) == 0 {
		return 0, 0, 0, edcerr.New(edcerr.InvalidInput, "no evidence supplied", nil)
	}

	// Running combined mass, starting from the first evidence's frame.
	support, refute, uncertain := frameFor(evidences[0])

	agreeingCount := 0
	if evidences[0].Value >= 0 {
		agreeingCount++
	}

	for _, e := range evidences[1:] {
		s2, r2, u2 := frameFor(e)

		k := support*r2 + refute*s2
		denom := 1 - k
		if denom <= 1e-12 {
			return 0, 0, 1.0, edcerr.New(edcerr.HighConflict, "evidence combination fully conflicting (K≈1)", map[string]interface{}{"conflict_k": 1.0})
		}

		newSupport := (support*s2 + support*u2 + uncertain*s2) / denom
		newRefute := (refute*r2 + refute*u2 + uncertain*r2) / denom
		newUncertain := 1 - newSupport - newRefute

		support, refute, uncertain = clamp01(newSupport), clamp01(newRefute), clamp01(newUncertain)
		conflictK = k

		if e.Value >= 0 {
			agreeingCount++
		}

		if conflictK > 0.999 {
			return 0, 0, conflictK, edcerr.WithDetail(
				edcerr.New(edcerr.HighConflict, "evidence combination conflict factor exceeds threshold", nil),
				"conflict_k", conflictK,
			)
		}
	}

	total := support + refute
	if total < 1e-12 {
		confidence = 0.5
	} else {
		confidence = support / total
	}

	// Consensus boost: when at least two evidences are combined and more
	// than half of them have non-negative value, bump confidence toward
	// certainty (spec.md §9 open question (c)).
	if len(evidences) >= 2 && agreeingCount*2 > len(evidences) {
		confidence = clamp01(confidence + ConsensusBoost*(1-confidence))
	}

	value = weightedValue(evidences)

	return value, confidence, conflictK, nil
}

func frameFor(e *Evidence) (support, refute, uncertain float64) {
	s, u := e.mass()
	if e.Value < 0 {
		// A negative-valued datum argues against the hypothesis: its
		// support mass becomes refuting mass in the combination frame.
		return 0, s, u
	}
	return s, 0, u
}

func weightedValue(evidences []*Evidence) float64 {
	var num, denom float64
	for _, e := range evidences {
		w := e.EffectiveWeight()
		num += e.Value * w
		denom += w
	}
	if denom < 1e-12 {
		return 0
	}
	return num / denom
}
