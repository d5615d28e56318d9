package tools

import (
	"context"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/analytics"
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DashboardInput defines the input schema for get_dashboard.
type DashboardInput struct {
	Demo    *bool `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
	Refresh bool  `json:"refresh,omitempty" jsonschema:"Bypass the snapshot cache"`
}

// dashboardSummary is the dashboard without the per-job lists, which
// list_jobs and get_timeline serve.
type dashboardSummary struct {
	Mode         string                 `json:"mode"`
	Source       string                 `json:"source"`
	Note         string                 `json:"note,omitempty"`
	LastUpdated  time.Time              `json:"lastUpdated"`
	Metrics      models.Metrics         `json:"metrics"`
	ChartData    []models.ChartData     `json:"chartData"`
	DailySummary models.DailyJobSummary `json:"dailySummary"`
	Backends     int                    `json:"backends"`
}

// NewGetDashboardHandler creates the get_dashboard tool handler.
func NewGetDashboardHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[DashboardInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, any, error) {
		mode := resolveMode(input.Demo, cfg)
		load := deps.Dashboard.Dashboard
		if input.Refresh {
			load = deps.Dashboard.Refresh
		}
		d, err := load(ctx, mode)
		if err != nil {
			deps.Logger.Error("dashboard failed", "mode", mode, "error", err)
			return serviceError(err), nil, nil
		}

		deps.Logger.Info("dashboard completed", "mode", mode, "source", d.Source, "jobs", d.Metrics.TotalJobs)
		return JSONResult(dashboardSummary{
			Mode:         string(d.Mode),
			Source:       d.Source,
			Note:         d.Note,
			LastUpdated:  d.LastUpdated,
			Metrics:      d.Metrics,
			ChartData:    d.ChartData,
			DailySummary: d.DailySummary,
			Backends:     len(d.Backends),
		}), nil, nil
	}
}

// BackendsInput defines the input schema for list_backends.
type BackendsInput struct {
	Demo *bool `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
}

// NewListBackendsHandler creates the list_backends tool handler.
func NewListBackendsHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[BackendsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BackendsInput) (*mcp.CallToolResult, any, error) {
		backends, err := deps.Dashboard.Backends(ctx, resolveMode(input.Demo, cfg))
		if err != nil {
			deps.Logger.Error("list backends failed", "error", err)
			return serviceError(err), nil, nil
		}
		return JSONResult(backends), nil, nil
	}
}

// TimelineInput defines the input schema for get_timeline.
type TimelineInput struct {
	Demo  *bool `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
	Limit int   `json:"limit,omitempty" jsonschema:"Number of most recent jobs 1-100, default 10"`
}

// NewGetTimelineHandler creates the get_timeline tool handler.
func NewGetTimelineHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[TimelineInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TimelineInput) (*mcp.CallToolResult, any, error) {
		if input.Limit < 0 || input.Limit > 100 {
			return ErrorResult("Limit must be 1-100", "Omit limit for the default of 10"), nil, nil
		}
		limit := input.Limit
		if limit == 0 && cfg != nil {
			limit = cfg.TimelineLimit
		}

		rows, err := deps.Dashboard.Timeline(ctx, resolveMode(input.Demo, cfg), analytics.TimelineOptions{Limit: limit})
		if err != nil {
			deps.Logger.Error("timeline failed", "error", err)
			return serviceError(err), nil, nil
		}
		return JSONResult(rows), nil, nil
	}
}
