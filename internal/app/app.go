// Package app wires configuration into the services shared by the REST
// server and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lvs170603/Quantum-Observer/internal/analytics"
	"github.com/lvs170603/Quantum-Observer/internal/cache"
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/lvs170603/Quantum-Observer/internal/source"
)

// App holds the wired services.
type App struct {
	Config    config.Config
	Dashboard *service.DashboardService
	Assistant *service.AssistantService
	Exporter  *metrics.Exporter
	Logger    *slog.Logger

	redis *cache.RedisCache
}

// New creates all services from cfg. Optional backends (Redis, the LLM) that
// fail to initialize are logged and disabled rather than aborting startup.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var demo source.Source
	if cfg.SnapshotFile != "" {
		if _, err := os.Stat(cfg.SnapshotFile); err != nil {
			return nil, fmt.Errorf("snapshot file: %w", err)
		}
		demo = source.NewFileSource(cfg.SnapshotFile, nil)
		logger.Info("demo data from snapshot file", "file", cfg.SnapshotFile)
	} else {
		demo = source.NewMockSource(source.MockOptions{Seed: cfg.MockSeed, Jobs: cfg.MockJobs})
	}

	live := source.NewFallbackSource(source.NewLiveSource(source.LiveOptions{
		BaseURL:  cfg.APIBaseURL,
		APIKey:   cfg.APIKey,
		JobLimit: cfg.APIJobLimit,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
	}), demo, logger)
	if !cfg.LiveEnabled() {
		logger.Info("QISKIT_API_KEY not set, live mode serves demo data")
	}

	a := &App{
		Config:   cfg,
		Exporter: metrics.NewExporter(),
		Logger:   logger,
	}

	var snapshots cache.SnapshotCache = cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
			Logger:   logger,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			a.redis = rc
			snapshots = rc
			logger.Info("snapshot cache on redis", "addr", cfg.RedisAddr)
		}
	}

	a.Dashboard = service.NewDashboardService(service.DashboardOptions{
		Demo:     demo,
		Live:     live,
		Cache:    snapshots,
		Exporter: a.Exporter,
		Analysis: service.AnalysisOptions{
			Buckets:  analytics.BucketOptions{Width: cfg.ChartBucketWidth, Count: cfg.ChartBuckets},
			Timeline: analytics.TimelineOptions{Limit: cfg.TimelineLimit},
		},
		Logger: logger,
	})

	model, err := llm.NewModel(ctx, cfg)
	switch {
	case errors.Is(err, llm.ErrNoModel):
		logger.Info("AI assistant disabled", "provider", cfg.LLMProvider)
	case err != nil:
		logger.Warn("AI assistant unavailable", "provider", cfg.LLMProvider, "error", err)
		model = nil
	default:
		logger.Info("AI assistant enabled", "provider", cfg.LLMProvider, "model", model.Model())
	}
	a.Assistant = service.NewAssistantService(model, a.Dashboard, logger)

	return a, nil
}

// DefaultMode is the mode used when a request does not choose one.
func (a *App) DefaultMode() service.Mode {
	return service.ModeFor(a.Config.DemoMode)
}

// Close releases external connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
