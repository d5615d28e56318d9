package tools

import (
	"encoding/json"
	"errors"

	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so LLM can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// JSONResult renders v as indented JSON text.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("Failed to encode result", err.Error())
	}
	return TextResult(string(data))
}

// serviceError maps a service error to a tool error with a recovery hint.
func serviceError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return ErrorResult(err.Error(), "Use list_jobs to find valid job IDs")
	case errors.Is(err, service.ErrEmptyQuery):
		return ErrorResult("Query cannot be empty", "Provide a question about the dashboard")
	case errors.Is(err, llm.ErrNoModel):
		return ErrorResult("AI assistant is not configured", "Set QO_LLM_PROVIDER on the server")
	case errors.Is(err, llm.ErrFatalAPI):
		return ErrorResult("LLM provider rejected the request", "Check credentials and quota")
	default:
		return ErrorResult("Failed to load dashboard data", "The data source may be unavailable; try demo=true")
	}
}
