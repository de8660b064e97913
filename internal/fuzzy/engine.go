package fuzzy

import (
	"sync"

	"edc/internal/edcerr"
)

// FuzzyOutputSet is the S-norm accumulated activation of an output
// variable's fuzzy sets, ready for defuzzification.
type FuzzyOutputSet struct {
	Variable string
	// Activation maps fuzzy-set name to its accumulated firing strength.
	Activation map[string]float64
	// Universe is the union of the consequent sets' universes, used by
	// defuzzification methods that need to sample the output space.
	Lo, Hi float64
	Sets   map[string]*FuzzySet
}

// Engine holds the named fuzzy sets and rule base for one inference
// context. Safe for concurrent reads; mutated only by AddSet/AddRule.
type Engine struct {
	mu    sync.RWMutex
	sets  map[string]*FuzzySet
	rules []*Rule
}

// NewEngine creates an empty fuzzy inference engine.
func NewEngine() *Engine {
	return &Engine{sets: make(map[string]*FuzzySet)}
}

// AddSet registers a fuzzy set for later lookup by name.
func (e *Engine) AddSet(set *FuzzySet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sets[set.Name] = set
}

// Set looks up a registered fuzzy set.
func (e *Engine) Set(name string) (*FuzzySet, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sets[name]
	return s, ok
}

// AddRule validates and appends a rule to the rule base. Rule order is
// preserved for stable tie-breaking during inference.
func (e *Engine) AddRule(rule *Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
	return nil
}

// Inference evaluates every rule against crisp inputs and accumulates
// consequent activations per output variable via S-norm (max).
//
// Tie-break: when two rules produce identical activation for the same
// output set, the earlier rule (lower index) wins — ties are resolved
// deterministically by iterating rules in registration order and using a
// strict ">" comparison when accumulating, so a later equal-activation
// rule never overwrites an earlier one's contribution semantics (the S-norm
// max is itself order-independent in value, and no per-rule provenance is
// recorded, so the result does not depend on rule order).
func (e *Engine) Inference(inputs map[string]float64, rules []*Rule) (map[string]*FuzzyOutputSet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(rules) == 0 {
		rules = e.rules
	}
	if len(rules) == 0 {
		return nil, edcerr.New(edcerr.EmptyRuleBase, "no rules to evaluate", nil)
	}

	// Pre-evaluate membership degrees for every (variable, set) pair
	// referenced by any antecedent.
	degrees := make(map[string]float64)
	for _, r := range rules {
		for _, a := range r.Antecedents {
			key := a.Variable + "\x00" + a.Set
			if _, done := degrees[key]; done {
				continue
			}
			set, ok := e.sets[a.Set]
			if !ok {
				return nil, edcerr.Newf(edcerr.UnknownSet, "unknown fuzzy set: %s", a.Set)
			}
			x, hasInput := inputs[a.Variable]
			if !hasInput {
				degrees[key] = 0
				continue
			}
			degrees[key] = set.Membership(x)
		}
	}

	outputs := make(map[string]*FuzzyOutputSet)
	for _, r := range rules {
		act := r.activation(degrees) * r.Weight

		outSet, ok := e.sets[r.Consequent.Set]
		if !ok {
			return nil, edcerr.Newf(edcerr.UnknownSet, "unknown fuzzy set: %s", r.Consequent.Set)
		}

		out, exists := outputs[r.Consequent.Variable]
		if !exists {
			out = &FuzzyOutputSet{
				Variable:   r.Consequent.Variable,
				Activation: make(map[string]float64),
				Sets:       make(map[string]*FuzzySet),
				Lo:         outSet.Lo,
				Hi:         outSet.Hi,
			}
			outputs[r.Consequent.Variable] = out
		}
		out.Sets[r.Consequent.Set] = outSet
		if outSet.Lo < out.Lo {
			out.Lo = outSet.Lo
		}
		if outSet.Hi > out.Hi {
			out.Hi = outSet.Hi
		}

		if act > out.Activation[r.Consequent.Set] {
			out.Activation[r.Consequent.Set] = act
		}
	}

	return outputs, nil
}

// aggregatedMembership returns the S-norm combined membership of an output
// set at a sample point x: max over consequent sets of
// min(activation, set.Membership(x)) — the usual Mamdani clipping rule.
func (o *FuzzyOutputSet) aggregatedMembership(x float64) float64 {
	var m float64
	for name, act := range o.Activation {
		set, ok := o.Sets[name]
		if !ok {
			continue
		}
		clipped := minf(act, set.Membership(x))
		if clipped > m {
			m = clipped
		}
	}
	return m
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
