package tools

import (
	"context"

	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput defines the input schema for the ping tool.
type PingInput struct {
	Echo   string `json:"echo,omitempty" jsonschema:"Text to echo back"`
	Status bool   `json:"status,omitempty" jsonschema:"Report the default data mode and whether the assistant is enabled"`
}

type pingStatus struct {
	Mode      string `json:"mode"`
	Assistant bool   `json:"assistant"`
}

// NewPingHandler answers liveness checks from MCP clients.
func NewPingHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[PingInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
		if deps != nil && deps.Logger != nil {
			deps.Logger.Debug("ping", "echo", input.Echo, "status", input.Status)
		}

		switch {
		case input.Status:
			return JSONResult(pingStatus{
				Mode:      string(resolveMode(nil, cfg)),
				Assistant: deps != nil && deps.Assistant != nil && deps.Assistant.Enabled(),
			}), nil, nil
		case input.Echo != "":
			return TextResult(input.Echo), nil, nil
		}
		return TextResult("pong"), nil, nil
	}
}
