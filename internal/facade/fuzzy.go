package facade

import (
	"edc/internal/fuzzy"
	"edc/internal/registry"
)

// CreateSetRequest wires fuzzy.create_set (spec.md §6). EngineHandle is
// optional; a missing or zero handle creates a fresh engine and registers
// the set into it, so the first create_set call for a new fuzzy context
// also plays the role of an implicit create_engine.
type CreateSetRequest struct {
	EngineHandle uint64       `json:"engine_handle,omitempty"`
	Set          FuzzySetWire `json:"set"`
}

// CreateSetResult reports the (possibly newly minted) engine handle the
// set was registered into.
type CreateSetResult struct {
	EngineHandle uint64 `json:"engine_handle"`
}

// CreateSet implements fuzzy.create_set.
func CreateSet(req CreateSetRequest) *Envelope {
	fs, err := setWireToFuzzySet(req.Set)
	if err != nil {
		return fail(err)
	}

	handle := registry.Handle(req.EngineHandle)
	engine, err := registry.FuzzyEngines.Get(handle)
	if err != nil {
		engine = fuzzy.NewEngine()
		handle = registry.FuzzyEngines.Create(engine)
	}

	engine.AddSet(fs)
	return ok(CreateSetResult{EngineHandle: uint64(handle)})
}

// InferenceRequest wires fuzzy.inference. Rules is optional; when empty the
// engine's own registered rule base is used.
type InferenceRequest struct {
	EngineHandle uint64             `json:"engine_handle"`
	Inputs       map[string]float64 `json:"inputs"`
	Rules        []RuleWire         `json:"rules,omitempty"`
}

// InferenceResult wires the per-output-variable FuzzyOutputSet map.
type InferenceResult struct {
	Outputs map[string]FuzzyOutputSetWire `json:"outputs"`
}

// Inference implements fuzzy.inference.
func Inference(req InferenceRequest) *Envelope {
	engine, err := registry.FuzzyEngines.Get(registry.Handle(req.EngineHandle))
	if err != nil {
		return fail(err)
	}

	var rules []*fuzzy.Rule
	for _, rw := range req.Rules {
		rules = append(rules, ruleWireToRule(rw))
	}

	outputs, err := engine.Inference(req.Inputs, rules)
	if err != nil {
		return fail(err)
	}

	wireOutputs := make(map[string]FuzzyOutputSetWire, len(outputs))
	for name, out := range outputs {
		setWires := make(map[string]FuzzySetWire, len(out.Sets))
		for setName, fs := range out.Sets {
			setWires[setName] = fuzzySetToWire(fs)
		}
		wireOutputs[name] = outputSetToWire(out, setWires)
	}
	return ok(InferenceResult{Outputs: wireOutputs})
}

func fuzzySetToWire(fs *fuzzy.FuzzySet) FuzzySetWire {
	w := FuzzySetWire{Name: fs.Name, Lo: fs.Lo, Hi: fs.Hi}
	switch fn := fs.Fn.(type) {
	case fuzzy.Triangular:
		w.Fn = FnSpecWire{Type: "triangular", Left: fn.Left, Center: fn.Center, Right: fn.Right}
	case fuzzy.Trapezoidal:
		w.Fn = FnSpecWire{Type: "trapezoidal", A: fn.A, B: fn.B, C: fn.C, D: fn.D}
	case fuzzy.Gaussian:
		w.Fn = FnSpecWire{Type: "gaussian", Mean: fn.Mean, Sigma: fn.Sigma}
	case fuzzy.Sigmoid:
		w.Fn = FnSpecWire{Type: "sigmoid", Slope: fn.Slope, Midpoint: fn.Midpoint}
	case fuzzy.Custom:
		points := make([]PointWire, len(fn.Points))
		for i, p := range fn.Points {
			points[i] = PointWire{X: p.X, Y: p.Y}
		}
		w.Fn = FnSpecWire{Type: "custom", Points: points}
	}
	return w
}

// DefuzzifyRequest wires fuzzy.defuzzify.
type DefuzzifyRequest struct {
	Output FuzzyOutputSetWire `json:"output"`
	Method string             `json:"method,omitempty"`
}

// DefuzzifyResult wires the crisp value.
type DefuzzifyResult struct {
	Value float64 `json:"value"`
}

// Defuzzify implements fuzzy.defuzzify. A NumericUnderflow error (zero
// total mass) is still reported via the error envelope, not silently
// swallowed, per spec.md §7.
func Defuzzify(req DefuzzifyRequest) *Envelope {
	out, err := outputSetWireToOutputSet(req.Output)
	if err != nil {
		return fail(err)
	}

	method := fuzzy.DefuzzifyMethod(req.Method)
	value, err := fuzzy.Defuzzify(out, method)
	if err != nil {
		return fail(err)
	}
	return ok(DefuzzifyResult{Value: value})
}

// CombineEvidenceRequest wires fuzzy.combine_evidence.
type CombineEvidenceRequest struct {
	Evidences []EvidenceWire `json:"evidences"`
}

// CombineEvidenceResult reports the Dempster-Shafer combination outcome.
type CombineEvidenceResult struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	ConflictK  float64 `json:"conflict_k"`
}

// CombineEvidence implements fuzzy.combine_evidence.
func CombineEvidence(req CombineEvidenceRequest) *Envelope {
	evidences := make([]*fuzzy.Evidence, 0, len(req.Evidences))
	for _, ew := range req.Evidences {
		e, err := evidenceWireToEvidence(ew)
		if err != nil {
			return fail(err)
		}
		evidences = append(evidences, e)
	}

	value, confidence, conflictK, err := fuzzy.CombineEvidence(evidences)
	if err != nil {
		processMetrics.RecordError()
		return fail(err)
	}
	processMetrics.RecordBeliefsCombined()
	if conflictK > 0.9 {
		processMetrics.RecordUninformative()
	} else {
		processMetrics.RecordUpdate()
	}
	return ok(CombineEvidenceResult{Value: value, Confidence: confidence, ConflictK: conflictK})
}
