package facade

import (
	"context"
	"encoding/json"

	"edc/internal/edcerr"
)

// Dispatch is the single entry point spec.md §4.5 describes: a thin
// JSON-in/JSON-out layer converting a wire operation name and a raw request
// payload into a typed call on the fuzzy, ben, or mco packages, returning
// the {ok}/{error} envelope as raw JSON. It routes the wire operations of
// spec.md §6 plus opt.calibration, opt.bandit_state and metrics.snapshot.
// cmd/edcserver calls the typed façade functions directly rather than
// going through Dispatch; tests call it directly.
func Dispatch(ctx context.Context, operation string, rawReq json.RawMessage) json.RawMessage {
	env := dispatch(ctx, operation, rawReq)
	body, err := json.Marshal(env)
	if err != nil {
		// Marshaling our own Envelope failing indicates a bug, not a
		// domain failure; report it through the same wire shape anyway.
		body, _ = json.Marshal(fail(edcerr.Newf(edcerr.Internal, "marshal envelope: %v", err)))
	}
	return body
}

func dispatch(ctx context.Context, operation string, rawReq json.RawMessage) *Envelope {
	switch operation {
	case "fuzzy.create_set":
		return decodeAndCall(rawReq, func(req CreateSetRequest) *Envelope { return CreateSet(req) })
	case "fuzzy.inference":
		return decodeAndCall(rawReq, func(req InferenceRequest) *Envelope { return Inference(req) })
	case "fuzzy.defuzzify":
		return decodeAndCall(rawReq, func(req DefuzzifyRequest) *Envelope { return Defuzzify(req) })
	case "fuzzy.combine_evidence":
		return decodeAndCall(rawReq, func(req CombineEvidenceRequest) *Envelope { return CombineEvidence(req) })

	case "net.create":
		return CreateNetwork()
	case "net.add_node":
		return decodeAndCall(rawReq, func(req AddNodeRequest) *Envelope { return AddNode(req) })
	case "net.add_edge":
		return decodeAndCall(rawReq, func(req AddEdgeRequest) *Envelope { return AddEdge(req) })
	case "net.update_evidence":
		return decodeAndCall(rawReq, func(req UpdateEvidenceRequest) *Envelope { return UpdateEvidence(req) })
	case "net.propagate":
		return decodeAndCall(rawReq, func(req PropagateRequest) *Envelope { return Propagate(ctx, req) })
	case "net.query":
		return decodeAndCall(rawReq, func(req QueryRequest) *Envelope { return Query(ctx, req) })
	case "net.stats":
		return decodeAndCall(rawReq, func(req StatsRequest) *Envelope { return NetworkStatsOp(req) })

	case "opt.create":
		return decodeAndCall(rawReq, func(req CreateOptimizerRequest) *Envelope { return CreateOptimizer(req) })
	case "opt.optimize":
		return decodeAndCall(rawReq, func(req OptimizeRequest) *Envelope { return Optimize(ctx, req) })
	case "opt.evaluate":
		return decodeAndCall(rawReq, func(req EvaluateRequest) *Envelope { return Evaluate(req) })
	case "opt.update":
		return decodeAndCall(rawReq, func(req UpdateRequest) *Envelope { return Update(req) })
	case "opt.stats":
		return decodeAndCall(rawReq, func(req OptStatsRequest) *Envelope { return OptStatsOp(req) })
	case "opt.calibration":
		return decodeAndCall(rawReq, func(req OptStatsRequest) *Envelope { return CalibrationReport(req) })
	case "opt.bandit_state":
		return decodeAndCall(rawReq, func(req BanditStateRequest) *Envelope { return BanditState(req) })

	case "metrics.snapshot":
		return MetricsSnapshot(EmptyRequest{})

	default:
		return fail(edcerr.Newf(edcerr.InvalidInput, "unknown operation: %q", operation))
	}
}

// decodeAndCall unmarshals rawReq into a fresh T and invokes fn, turning a
// malformed payload into an InvalidInput envelope instead of a decode panic.
func decodeAndCall[T any](rawReq json.RawMessage, fn func(T) *Envelope) *Envelope {
	var req T
	if len(rawReq) > 0 {
		if err := json.Unmarshal(rawReq, &req); err != nil {
			return fail(edcerr.Newf(edcerr.InvalidInput, "decode request: %v", err))
		}
	}
	return fn(req)
}
