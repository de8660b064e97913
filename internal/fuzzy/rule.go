package fuzzy

import (
	"math"

	"edc/internal/edcerr"
)

// Connective joins antecedents with a T-norm (AND, min) or S-norm (OR, max).
type Connective string

const (
	ConnectiveAND Connective = "AND"
	ConnectiveOR  Connective = "OR"
)

// Antecedent references a fuzzy set bound to an input variable, optionally
// negated (1 - membership).
type Antecedent struct {
	Variable string
	Set      string
	Negated  bool
}

// Consequent assigns activation to a fuzzy set on an output variable.
type Consequent struct {
	Variable string
	Set      string
}

// Rule is one fuzzy IF-THEN rule.
type Rule struct {
	Antecedents []Antecedent
	Connective  Connective
	Consequent  Consequent
	Weight      float64
}

// Validate checks the weight is in (0,1] and the rule has at least one
// antecedent.
func (r *Rule) Validate() error {
	if len(r.Antecedents) == 0 {
		return edcerr.New(edcerr.InvalidInput, "rule has no antecedents", nil)
	}
	if r.Weight <= 0 || r.Weight > 1 {
		return edcerr.Newf(edcerr.InvalidInput, "rule weight must be in (0,1], got %f", r.Weight)
	}
	return nil
}

// activation computes the antecedent activation degree given a lookup of
// per-(variable,set) membership degrees already evaluated against the
// supplied crisp inputs.
func (r *Rule) activation(degrees map[string]float64) float64 {
	var acc float64
	for i, a := range r.Antecedents {
		d := degrees[a.Variable+"\x00"+a.Set]
		if a.Negated {
			d = 1 - d
		}
		if i == 0 {
			acc = d
			continue
		}
		switch r.Connective {
		case ConnectiveOR:
			acc = math.Max(acc, d)
		default: // AND, T-norm min
			acc = math.Min(acc, d)
		}
	}
	return acc
}
