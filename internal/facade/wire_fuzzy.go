package facade

import (
	"time"

	"edc/internal/edcerr"
	"edc/internal/fuzzy"
)

// FnSpecWire is the tagged-variant membership-function spec from spec.md
// §6 ("dynamic typing of membership-function specs... modeled as tagged
// variants at the core boundary; JSON is parsed into these variants at the
// façade, not threaded through the core", spec.md §9).
type FnSpecWire struct {
	Type string `json:"type"`

	// triangular
	Left   float64 `json:"left,omitempty"`
	Center float64 `json:"center,omitempty"`
	Right  float64 `json:"right,omitempty"`

	// trapezoidal
	A float64 `json:"a,omitempty"`
	B float64 `json:"b,omitempty"`
	C float64 `json:"c,omitempty"`
	D float64 `json:"d,omitempty"`

	// gaussian
	Mean  float64 `json:"mean,omitempty"`
	Sigma float64 `json:"sigma,omitempty"`

	// sigmoid
	Slope    float64 `json:"slope,omitempty"`
	Midpoint float64 `json:"midpoint,omitempty"`

	// custom
	Points []PointWire `json:"points,omitempty"`
}

// PointWire is one (x, y) sample of a custom membership function.
type PointWire struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func fnSpecToMembershipFn(spec FnSpecWire) (fuzzy.MembershipFn, error) {
	switch spec.Type {
	case "triangular":
		return fuzzy.Triangular{Left: spec.Left, Center: spec.Center, Right: spec.Right}, nil
	case "trapezoidal":
		return fuzzy.Trapezoidal{A: spec.A, B: spec.B, C: spec.C, D: spec.D}, nil
	case "gaussian":
		return fuzzy.Gaussian{Mean: spec.Mean, Sigma: spec.Sigma}, nil
	case "sigmoid":
		return fuzzy.Sigmoid{Slope: spec.Slope, Midpoint: spec.Midpoint}, nil
	case "custom":
		points := make([]fuzzy.CustomPoint, len(spec.Points))
		for i, p := range spec.Points {
			points[i] = fuzzy.CustomPoint{X: p.X, Y: p.Y}
		}
		return fuzzy.Custom{Points: points}, nil
	default:
		return nil, edcerr.Newf(edcerr.InvalidInput, "unknown membership function type: %q", spec.Type)
	}
}

// FuzzySetWire is the wire representation of a fuzzy.FuzzySet.
type FuzzySetWire struct {
	Name string     `json:"name"`
	Lo   float64    `json:"lo"`
	Hi   float64    `json:"hi"`
	Fn   FnSpecWire `json:"fn"`
}

func setWireToFuzzySet(w FuzzySetWire) (*fuzzy.FuzzySet, error) {
	fn, err := fnSpecToMembershipFn(w.Fn)
	if err != nil {
		return nil, err
	}
	return fuzzy.NewFuzzySet(w.Name, w.Lo, w.Hi, fn)
}

// EvidenceWire is the wire representation of spec.md §6's Evidence schema.
type EvidenceWire struct {
	Value             float64 `json:"value"`
	MembershipDegree  float64 `json:"membership_degree"`
	Confidence        float64 `json:"confidence"`
	SourceReliability float64 `json:"source_reliability"`
	TemporalDecay     float64 `json:"temporal_decay"`
	ContextRelevance  float64 `json:"context_relevance"`
	Timestamp         string  `json:"timestamp,omitempty"`
}

func evidenceWireToEvidence(w EvidenceWire) (*fuzzy.Evidence, error) {
	e := &fuzzy.Evidence{
		Value:             w.Value,
		MembershipDegree:  w.MembershipDegree,
		Confidence:        w.Confidence,
		SourceReliability: w.SourceReliability,
		TemporalDecay:     w.TemporalDecay,
		ContextRelevance:  w.ContextRelevance,
	}
	if w.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, w.Timestamp)
		if err != nil {
			return nil, edcerr.Newf(edcerr.InvalidInput, "invalid timestamp %q: %v", w.Timestamp, err)
		}
		e.Timestamp = ts
	}
	return e, nil
}

// AntecedentWire is the wire representation of a fuzzy.Antecedent.
type AntecedentWire struct {
	Variable string `json:"variable"`
	Set      string `json:"set"`
	Negated  bool   `json:"negated,omitempty"`
}

// RuleWire is the wire representation of a fuzzy.Rule.
type RuleWire struct {
	Antecedents []AntecedentWire `json:"antecedents"`
	Connective  string           `json:"connective,omitempty"`
	Consequent  struct {
		Variable string `json:"variable"`
		Set      string `json:"set"`
	} `json:"consequent"`
	Weight float64 `json:"weight"`
}

func ruleWireToRule(w RuleWire) *fuzzy.Rule {
	antecedents := make([]fuzzy.Antecedent, len(w.Antecedents))
	for i, a := range w.Antecedents {
		antecedents[i] = fuzzy.Antecedent{Variable: a.Variable, Set: a.Set, Negated: a.Negated}
	}
	connective := fuzzy.ConnectiveAND
	if w.Connective == string(fuzzy.ConnectiveOR) {
		connective = fuzzy.ConnectiveOR
	}
	return &fuzzy.Rule{
		Antecedents: antecedents,
		Connective:  connective,
		Consequent:  fuzzy.Consequent{Variable: w.Consequent.Variable, Set: w.Consequent.Set},
		Weight:      w.Weight,
	}
}

// FuzzyOutputSetWire is the wire representation of a fuzzy.FuzzyOutputSet,
// carrying the contributing sets inline so Defuzzify can be called
// statelessly against a previous Inference response.
type FuzzyOutputSetWire struct {
	Variable   string                  `json:"variable"`
	Activation map[string]float64      `json:"activation"`
	Lo         float64                 `json:"lo"`
	Hi         float64                 `json:"hi"`
	Sets       map[string]FuzzySetWire `json:"sets"`
}

func outputSetWireToOutputSet(w FuzzyOutputSetWire) (*fuzzy.FuzzyOutputSet, error) {
	sets := make(map[string]*fuzzy.FuzzySet, len(w.Sets))
	for name, sw := range w.Sets {
		fs, err := setWireToFuzzySet(sw)
		if err != nil {
			return nil, err
		}
		sets[name] = fs
	}
	return &fuzzy.FuzzyOutputSet{
		Variable:   w.Variable,
		Activation: w.Activation,
		Lo:         w.Lo,
		Hi:         w.Hi,
		Sets:       sets,
	}, nil
}

func outputSetToWire(o *fuzzy.FuzzyOutputSet, sets map[string]FuzzySetWire) FuzzyOutputSetWire {
	return FuzzyOutputSetWire{
		Variable:   o.Variable,
		Activation: o.Activation,
		Lo:         o.Lo,
		Hi:         o.Hi,
		Sets:       sets,
	}
}
