// Package server provides the MCP and HTTP server wrappers for Quantum
// Observer and the request logging middleware they share.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the implementation name reported to MCP clients.
const Name = "quantum-observer"

// Server wraps the MCP server with its logger.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates a new MCP server with the given version and logger.
func New(version string, logger *slog.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    Name,
		Version: version,
	}
	opts := &mcp.ServerOptions{
		Instructions: "Quantum Observer reports quantum job queues: KPIs, job lists, backend health and queue/run timelines. Pass demo=false to read the live IBM Quantum account.",
	}

	return &Server{
		mcp:    mcp.NewServer(impl, opts),
		logger: logger,
	}
}

// Run serves on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves on the given transport.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("starting MCP server", "transport", fmt.Sprintf("%T", t))
	return s.mcp.Run(ctx, t)
}

// MCPServer returns the underlying MCP server for tool registration.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Setup installs the logging and panic recovery middleware.
func (s *Server) Setup() {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger), RecoveryMiddleware(s.logger))
}

// RecoveryMiddleware turns a panicking handler into a request error.
func RecoveryMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (result mcp.Result, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked", "method", method, "panic", r, "stack", string(debug.Stack()))
					result, err = nil, fmt.Errorf("internal error in %s", method)
				}
			}()
			return next(ctx, method, req)
		}
	}
}
