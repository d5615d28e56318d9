package tools

import (
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Liveness check: responds with pong, echoes input, or reports server status",
	}, NewPingHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Headline KPIs (total, live, avg wait, success rate, sessions), the status chart and today's completions per backend",
	}, NewGetDashboardHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_jobs",
		Description: "List jobs filtered by backend, status or ID/user search, paginated",
	}, NewListJobsHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_job",
		Description: "Retrieve one job by ID with status history, logs and results",
	}, NewGetJobHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_backends",
		Description: "List backends with status, queue depth and error rate",
	}, NewListBackendsHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_timeline",
		Description: "Queue and run durations (seconds) for the most recent jobs",
	}, NewGetTimelineHandler(deps, cfg))

	if deps.Assistant != nil && deps.Assistant.Enabled() {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "ask_assistant",
			Description: "Ask the dashboard assistant to explain a metric, chart or job status",
		}, NewAskAssistantHandler(deps))

		mcp.AddTool(server, &mcp.Tool{
			Name:        "detect_anomalies",
			Description: "Flag jobs with unusual queue times, runtimes or failure patterns",
		}, NewDetectAnomaliesHandler(deps, cfg))
	}
}
