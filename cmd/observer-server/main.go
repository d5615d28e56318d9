// Package main provides the REST server for Quantum Observer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/api"
	"github.com/lvs170603/Quantum-Observer/internal/app"
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/observability"
	"github.com/lvs170603/Quantum-Observer/internal/server"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger("observer-server", cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting observer-server",
		"version", version,
		"port", cfg.ServerPort,
		"demo_mode", cfg.DemoMode,
		"live_api", cfg.LiveEnabled(),
	)

	shutdownTracing, err := observability.InitTracing("observer-server", cfg.OTelExporter, os.Stderr)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(initCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close services", "error", err)
		}
	}()

	handler := api.NewHandler(a.Dashboard, a.Assistant, a.Exporter, a.DefaultMode(), logger)
	srv := server.NewHTTPServer(":"+cfg.ServerPort, handler.Router(), logger)

	logger.Info("REST API available", "url", "http://localhost:"+cfg.ServerPort+"/api/dashboard")
	logger.Info("metrics available", "url", "http://localhost:"+cfg.ServerPort+"/metrics")

	if err := srv.Run(ctx, 10*time.Second); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
