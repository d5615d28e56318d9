package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/observability"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxArgLogLen is the maximum length for logged arguments before truncation.
const maxArgLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 100 * time.Millisecond

// LoggingMiddleware returns middleware that logs and traces every MCP
// request. Tool calls carry the tool name, raw arguments and whether the
// tool reported an error.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			ctx, span := observability.StartSpan(ctx, "mcp."+method)
			defer span.End()

			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []any{"method", method, "duration_ms", duration.Milliseconds()}
			call, isCall := req.(*mcp.CallToolRequest)
			switch {
			case isCall && call.Params != nil:
				span.SetAttributes(attribute.String("mcp.tool", call.Params.Name))
				attrs = append(attrs, "tool", call.Params.Name)
				if len(call.Params.Arguments) > 0 {
					attrs = append(attrs, "args", truncate(string(call.Params.Arguments), maxArgLogLen))
				}
				if res, ok := result.(*mcp.CallToolResult); ok && res != nil && res.IsError {
					span.SetStatus(codes.Error, "tool error")
					attrs = append(attrs, "tool_error", true)
				}
			default:
				if params := formatParams(req); params != "" {
					attrs = append(attrs, "params", truncate(params, maxArgLogLen))
				}
			}

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logger.Error("request failed", append(attrs, "error", err.Error())...)
			case duration > slowRequestThreshold:
				logger.Warn("slow request", attrs...)
			default:
				logger.Debug("request completed", attrs...)
			}
			return result, err
		}
	}
}

func formatParams(req mcp.Request) string {
	params := req.GetParams()
	if params == nil {
		return ""
	}
	return fmt.Sprintf("%+v", params)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
