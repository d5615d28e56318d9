package tools

import (
	"context"

	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput defines the input schema for ask_assistant.
type AskInput struct {
	Query string `json:"query" jsonschema:"The question about the dashboard"`
}

// NewAskAssistantHandler creates the ask_assistant tool handler.
func NewAskAssistantHandler(deps *Dependencies) mcp.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
		answer, err := deps.Assistant.Ask(ctx, input.Query)
		if err != nil {
			return serviceError(err), nil, nil
		}
		return TextResult(answer), nil, nil
	}
}

// AnomaliesInput defines the input schema for detect_anomalies.
type AnomaliesInput struct {
	Demo *bool `json:"demo,omitempty" jsonschema:"Use generated demo data (true) or the live IBM Quantum API (false). Defaults to the server setting"`
}

// NewDetectAnomaliesHandler creates the detect_anomalies tool handler.
func NewDetectAnomaliesHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[AnomaliesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnomaliesInput) (*mcp.CallToolResult, any, error) {
		report, err := deps.Assistant.DetectAnomaliesFor(ctx, resolveMode(input.Demo, cfg))
		if err != nil {
			return serviceError(err), nil, nil
		}
		return JSONResult(report), nil, nil
	}
}
