// Package main provides the entry point for the Quantum Observer MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/app"
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/server"
	"github.com/lvs170603/Quantum-Observer/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON). Stdout carries
	// the MCP protocol, so nothing else may write there.
	logger, cleanup := config.SetupLogger("observer-mcp", cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("observer-mcp starting",
		"version", version,
		"demo_mode", cfg.DemoMode,
		"live_api", cfg.LiveEnabled(),
		"llm_provider", cfg.LLMProvider,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(initCtx, cfg, logger)
	initCancel()
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing services")
		_ = a.Close()
	}()

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Dashboard: a.Dashboard,
		Assistant: a.Assistant,
		Logger:    logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps, &cfg)
	logger.Info("tools registered", "assistant", a.Assistant.Enabled())

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
