// Package main provides the entry point for the Evidential Decision Core
// MCP server.
//
// This server is designed to be spawned as a child process by an MCP host
// and communicates via stdio. It exposes the fuzzy inference engine,
// Bayesian evidence network, and metacognitive optimizer as MCP tools, one
// per wire operation.
//
// Environment variables are documented in internal/config (prefix EDC_).
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"edc/internal/config"
	"edc/internal/facade"
	"edc/internal/streaming"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	log.Printf("Starting %s (env=%s)...", cfg.Server.Name, cfg.Server.Environment)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)

	registerFuzzyTools(mcpServer)
	registerNetworkTools(mcpServer)
	registerOptimizerTools(mcpServer)
	registerMetricsTools(mcpServer)
	log.Println("Registered 19 tools across fuzzy.*, net.*, opt.*, metrics.* wire operations")

	ctx := context.Background()
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// mustSchema generates a tool's input schema from its request struct via
// reflection, the same inference mcp.AddTool performs internally when no
// schema is supplied — spelled out explicitly here so every tool advertises
// its wire shape up front rather than relying on the implicit fallback.
func mustSchema[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		log.Fatalf("generate schema for %T: %v", *new(T), err)
	}
	return schema
}

// envelopeContent renders a facade.Envelope as the tool's MCP content,
// marking the result an MCP-level error only when the envelope itself
// carries an error — a domain failure (bad handle, invalid input) still
// returns a successful tool call with an {error: ...} body, per spec.md §7.
func envelopeContent(env *facade.Envelope) *mcp.CallToolResult {
	body, err := json.Marshal(env)
	if err != nil {
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: env.Error != nil,
	}
}

func registerFuzzyTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "fuzzy.create_set",
		Description: "Register a fuzzy set (membership function over a universe) into an engine, creating the engine if no handle is supplied.",
		InputSchema: mustSchema[facade.CreateSetRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.CreateSetRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.CreateSet(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fuzzy.inference",
		Description: "Run Mamdani rule inference over an engine's registered sets for the given crisp inputs.",
		InputSchema: mustSchema[facade.InferenceRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.InferenceRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		reporter := streaming.CreateReporter(req, "fuzzy.inference")
		_ = reporter.ReportStep(1, 2, "evaluate", "evaluating rule base against inputs")
		env := facade.Inference(input)
		_ = reporter.ReportStep(2, 2, "done", "inference complete")
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fuzzy.defuzzify",
		Description: "Extract a crisp value from a fuzzy output set using centroid, maximum, mean-of-maxima, or bisector-of-area.",
		InputSchema: mustSchema[facade.DefuzzifyRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.DefuzzifyRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.Defuzzify(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fuzzy.combine_evidence",
		Description: "Combine independent pieces of evidence via Dempster-Shafer combination, reporting the resulting conflict mass.",
		InputSchema: mustSchema[facade.CombineEvidenceRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.CombineEvidenceRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.CombineEvidence(input)
		return envelopeContent(env), env, nil
	})
}

func registerNetworkTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.create",
		Description: "Create a new, empty Bayesian evidence network and return its handle.",
		InputSchema: mustSchema[facade.EmptyRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.EmptyRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.CreateNetwork()
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.add_node",
		Description: "Add a typed node with a prior belief to a network.",
		InputSchema: mustSchema[facade.AddNodeRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.AddNodeRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.AddNode(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.add_edge",
		Description: "Add a typed, strength-weighted edge between two nodes in a network.",
		InputSchema: mustSchema[facade.AddEdgeRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.AddEdgeRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.AddEdge(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.update_evidence",
		Description: "Push a new piece of evidence onto a node's bounded evidence history.",
		InputSchema: mustSchema[facade.UpdateEvidenceRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.UpdateEvidenceRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.UpdateEvidence(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.propagate",
		Description: "Propagate pending evidence through a network using belief propagation, variational inference, MCMC, or a particle filter, under an optional deadline.",
		InputSchema: mustSchema[facade.PropagateRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.PropagateRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		ctx, reporter := streaming.InjectReporter(ctx, req, "net.propagate")
		_ = reporter.ReportStep(1, 2, "propagate", "running "+input.Algorithm)
		env := facade.Propagate(ctx, input)
		_ = reporter.ReportStep(2, 2, "done", "propagation complete")
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.query",
		Description: "Query a network's current belief state: marginal, conditional, most-probable-explanation, sensitivity, or what-if.",
		InputSchema: mustSchema[facade.QueryRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.QueryRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.Query(ctx, input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "net.stats",
		Description: "Report a network's current node/edge counts and beliefs.",
		InputSchema: mustSchema[facade.StatsRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.StatsRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.NetworkStatsOp(input)
		return envelopeContent(env), env, nil
	})
}

func registerOptimizerTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.create",
		Description: "Create a metacognitive optimizer, seeding its strategy portfolio from the given strategies or the default one-per-kind portfolio.",
		InputSchema: mustSchema[facade.CreateOptimizerRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.CreateOptimizerRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.CreateOptimizer(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.optimize",
		Description: "Select and allocate a strategy bundle for a decision context, optionally binding a network's uncertainty.",
		InputSchema: mustSchema[facade.OptimizeRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.OptimizeRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		ctx, reporter := streaming.InjectReporter(ctx, req, "opt.optimize")
		_ = reporter.ReportStep(1, 2, "select", "selecting and allocating strategy bundle")
		env := facade.Optimize(ctx, input)
		_ = reporter.ReportStep(2, 2, "done", "optimization complete")
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.evaluate",
		Description: "Score a prior optimization result against an observed outcome.",
		InputSchema: mustSchema[facade.EvaluateRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.EvaluateRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.Evaluate(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.update",
		Description: "Fold an observed outcome into a strategy's EWMA success rate and history.",
		InputSchema: mustSchema[facade.UpdateRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.UpdateRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.Update(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.stats",
		Description: "Report an optimizer's current portfolio and decision log size.",
		InputSchema: mustSchema[facade.OptStatsRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.OptStatsRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.OptStatsOp(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.calibration",
		Description: "Report how well an optimizer's predicted decision quality has tracked observed outcomes from opt.evaluate.",
		InputSchema: mustSchema[facade.OptStatsRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.OptStatsRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.CalibrationReport(input)
		return envelopeContent(env), env, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "opt.bandit_state",
		Description: "Report each portfolio strategy's Thompson Sampling bandit arm: alpha, beta, and estimated selection probability.",
		InputSchema: mustSchema[facade.BanditStateRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.BanditStateRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.BanditState(input)
		return envelopeContent(env), env, nil
	})
}

func registerMetricsTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "metrics.snapshot",
		Description: "Report process-wide belief-update volume: totals, error rate, and uninformative-evidence rate across every engine and network.",
		InputSchema: mustSchema[facade.EmptyRequest](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input facade.EmptyRequest) (*mcp.CallToolResult, *facade.Envelope, error) {
		env := facade.MetricsSnapshot(input)
		return envelopeContent(env), env, nil
	})
}
