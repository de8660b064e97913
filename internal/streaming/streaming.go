// Package streaming provides MCP progress notification support for the
// long-running wire operations: net.propagate (iterative belief
// propagation), opt.optimize (strategy selection and allocation), and
// fuzzy.inference (rule evaluation over a potentially large rule base).
//
// This package enables real-time progress updates during tool execution using the
// standard MCP notifications/progress mechanism. It's designed to be:
//
//   - Backward Compatible: Clients that don't provide a progressToken simply don't
//     receive notifications; the tool executes normally.
//
//   - Non-Intrusive: Handlers can call progress methods without checking if streaming
//     is enabled; the DefaultReporter handles disabled cases as no-ops.
//
//   - Rate Limited: Built-in debouncing prevents notification floods.
//
//   - Configurable: Per-tool configuration controls behavior like partial data sending.
//
// # Basic Usage
//
// In a handler, create a reporter and report progress:
//
//	func (h *Handler) Handle(ctx context.Context, req *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, *Output, error) {
//	    // Create a reporter (will be no-op if client doesn't want streaming)
//	    reporter := streaming.CreateReporter(req, "net.propagate")
//
//	    reporter.ReportStep(1, 2, "propagate", "running belief propagation...")
//	    // Do work...
//	    reporter.ReportStep(2, 2, "done", "propagation complete")
//
//	    return nil, &Output{...}, nil
//	}
//
// # Context Integration
//
// The reporter can be stored in context for nested function calls:
//
//	ctx, reporter := streaming.InjectReporter(ctx, req, "opt.optimize")
//
//	// Later, in a nested function:
//	r := streaming.GetReporter(ctx)
//	r.ReportProgress(50, 100, "allocation in progress")
package streaming

// Version is the streaming package version.
const Version = "1.0.0"

// StreamingEnabledTools lists the wire operations that support streaming
// progress notifications: the three whose cost scales with input size
// rather than completing in a single bounded step.
var StreamingEnabledTools = []string{
	"net.propagate",
	"opt.optimize",
	"fuzzy.inference",
}
