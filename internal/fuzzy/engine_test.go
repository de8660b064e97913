package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edc/internal/edcerr"
)

// TestCentroid_TriangularSymmetric covers scenario 1 of spec.md §8: centroid
// of a symmetric triangular output set is the triangle center within 1e-3.
func TestCentroid_TriangularSymmetric(t *testing.T) {
	e := NewEngine()
	medium, err := NewFuzzySet("medium", 0, 1, Triangular{0, 0.5, 1})
	require.NoError(t, err)
	e.AddSet(medium)

	out := &FuzzyOutputSet{
		Variable:   "y",
		Activation: map[string]float64{"medium": 1.0},
		Sets:       map[string]*FuzzySet{"medium": medium},
		Lo:         0, Hi: 1,
	}

	val, err := Defuzzify(out, Centroid)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, val, 1e-3)
}

// TestRuleFiring covers scenario 2 of spec.md §8.
func TestRuleFiring(t *testing.T) {
	e := NewEngine()
	low, err := NewFuzzySet("low", 0, 1, Triangular{-0.2, 0.2, 0.6})
	require.NoError(t, err)
	high, err := NewFuzzySet("high", 0, 1, Triangular{0.4, 0.8, 1.2})
	require.NoError(t, err)
	e.AddSet(low)
	e.AddSet(high)

	rule := &Rule{
		Antecedents: []Antecedent{{Variable: "x", Set: "high"}},
		Connective:  ConnectiveAND,
		Consequent:  Consequent{Variable: "y", Set: "high"},
		Weight:      1.0,
	}
	require.NoError(t, e.AddRule(rule))

	outputs, err := e.Inference(map[string]float64{"x": 0.8}, nil)
	require.NoError(t, err)

	y, ok := outputs["y"]
	require.True(t, ok)
	assert.InDelta(t, 1.0, y.aggregatedMembership(0.8), 1e-9)

	centroid, err := Defuzzify(y, Centroid)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, centroid, 0.6)
	assert.LessOrEqual(t, centroid, 1.0)
}

func TestInference_EmptyRuleBaseFails(t *testing.T) {
	e := NewEngine()
	_, err := e.Inference(map[string]float64{"x": 0.5}, nil)
	require.Error(t, err)
}

func TestInference_UnknownSetFails(t *testing.T) {
	e := NewEngine()
	rule := &Rule{
		Antecedents: []Antecedent{{Variable: "x", Set: "missing"}},
		Consequent:  Consequent{Variable: "y", Set: "missing"},
		Weight:      1.0,
	}
	_, err := e.Inference(map[string]float64{"x": 0.5}, []*Rule{rule})
	require.Error(t, err)
}

func TestDefuzzify_MaximumTiesPickSmallestX(t *testing.T) {
	set, err := NewFuzzySet("flat", 0, 1, Trapezoidal{0.2, 0.4, 0.6, 0.8})
	require.NoError(t, err)

	out := &FuzzyOutputSet{
		Variable:   "y",
		Activation: map[string]float64{"flat": 1.0},
		Sets:       map[string]*FuzzySet{"flat": set},
		Lo:         0, Hi: 1,
	}

	val, err := Defuzzify(out, Maximum)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, val, 0.02)
}

func TestDefuzzify_ZeroMassReturnsUnderflow(t *testing.T) {
	set, err := NewFuzzySet("empty", 0, 1, Triangular{2, 3, 4})
	require.NoError(t, err)

	out := &FuzzyOutputSet{
		Variable:   "y",
		Activation: map[string]float64{"empty": 1.0},
		Sets:       map[string]*FuzzySet{"empty": set},
		Lo:         0, Hi: 1,
	}

	val, err := Defuzzify(out, Centroid)
	require.Error(t, err)
	assert.Equal(t, edcerr.NumericUnderflow, edcerr.KindOf(err))
	assert.InDelta(t, 0.5, val, 1e-9)
}
