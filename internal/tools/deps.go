// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/lvs170603/Quantum-Observer/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Dashboard *service.DashboardService
	Assistant *service.AssistantService
	Logger    *slog.Logger
}
