package tools

import (
	"context"
	"strings"

	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListJobsInput defines the input schema for list_jobs.
type ListJobsInput struct {
	Demo     *bool  `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
	Backend  string `json:"backend,omitempty" jsonschema:"Only jobs on this backend"`
	Status   string `json:"status,omitempty" jsonschema:"Only jobs with this status: QUEUED, RUNNING, COMPLETED, ERROR or CANCELLED"`
	Search   string `json:"search,omitempty" jsonschema:"Case-insensitive substring of job ID or user"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page, default 1"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"Jobs per page 1-100, default 10"`
}

// NewListJobsHandler creates the list_jobs tool handler.
func NewListJobsHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[ListJobsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListJobsInput) (*mcp.CallToolResult, any, error) {
		if input.PageSize < 0 || input.PageSize > 100 {
			return ErrorResult("page_size must be 1-100", "Reduce page_size value"), nil, nil
		}

		filter := service.JobFilter{
			Backend:  input.Backend,
			Search:   input.Search,
			Page:     input.Page,
			PageSize: input.PageSize,
		}
		if input.Status != "" && !strings.EqualFold(input.Status, "all") {
			status := models.ParseJobStatus(input.Status)
			if status == models.StatusUnknown {
				return ErrorResult("Unknown status "+input.Status, "Use QUEUED, RUNNING, COMPLETED, ERROR or CANCELLED"), nil, nil
			}
			filter.Status = status
		}

		page, err := deps.Dashboard.ListJobs(ctx, resolveMode(input.Demo, cfg), filter)
		if err != nil {
			deps.Logger.Error("list jobs failed", "error", err)
			return serviceError(err), nil, nil
		}
		deps.Logger.Info("list jobs completed", "total", page.Total, "page", page.Page)
		return JSONResult(page), nil, nil
	}
}

// GetJobInput defines the input schema for get_job.
type GetJobInput struct {
	Demo *bool  `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
	ID   string `json:"id" jsonschema:"The job ID"`
}

// NewGetJobHandler creates the get_job tool handler.
func NewGetJobHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[GetJobInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetJobInput) (*mcp.CallToolResult, any, error) {
		if input.ID == "" {
			return ErrorResult("ID cannot be empty", "Use list_jobs to find job IDs"), nil, nil
		}
		job, err := deps.Dashboard.GetJob(ctx, resolveMode(input.Demo, cfg), input.ID)
		if err != nil {
			return serviceError(err), nil, nil
		}
		return JSONResult(job), nil, nil
	}
}
