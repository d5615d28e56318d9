package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/analytics"
	"github.com/lvs170603/Quantum-Observer/internal/cache"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/observability"
	"github.com/lvs170603/Quantum-Observer/internal/source"
	"go.opentelemetry.io/otel/attribute"
)

// Dashboard is everything the dashboard renders for one snapshot.
type Dashboard struct {
	Mode         Mode                   `json:"mode"`
	Jobs         []models.Job           `json:"jobs"`
	Backends     []models.Backend       `json:"backends"`
	Metrics      models.Metrics         `json:"metrics"`
	ChartData    []models.ChartData     `json:"chartData"`
	DailySummary models.DailyJobSummary `json:"dailySummary"`
	Timeline     []models.GanttRow      `json:"timeline"`
	LastUpdated  time.Time              `json:"lastUpdated"`
	Source       string                 `json:"source"`
	Note         string                 `json:"note,omitempty"`
}

// AnalysisOptions configures the chart window and timeline selection.
type AnalysisOptions struct {
	Buckets  analytics.BucketOptions
	Timeline analytics.TimelineOptions
}

// Analyze runs the analytics core over snap with a single reference time.
// It never fails; malformed jobs are excluded or clamped by the core.
func Analyze(snap *models.Snapshot, now time.Time, opts AnalysisOptions) Dashboard {
	if snap == nil {
		snap = &models.Snapshot{}
	}

	m := analytics.ComputeMetrics(snap.Jobs)
	m.OpenSessions = snap.OpenSessions

	updated := snap.TakenAt
	if updated.IsZero() {
		updated = now
	}

	jobs := snap.Jobs
	if jobs == nil {
		jobs = []models.Job{}
	}
	backends := snap.Backends
	if backends == nil {
		backends = []models.Backend{}
	}

	return Dashboard{
		Jobs:         jobs,
		Backends:     backends,
		Metrics:      m,
		ChartData:    analytics.BucketJobs(snap.Jobs, now, opts.Buckets),
		DailySummary: analytics.SummarizeDay(snap.Jobs, now),
		Timeline:     analytics.BuildTimeline(snap.Jobs, now, opts.Timeline),
		LastUpdated:  updated,
		Source:       snap.Source,
		Note:         snap.Note,
	}
}

// DashboardOptions wires a DashboardService.
type DashboardOptions struct {
	// Demo serves ModeDemo. Live serves ModeLive and is usually a
	// source.FallbackSource over the live API and Demo.
	Demo source.Source
	Live source.Source

	Cache     cache.SnapshotCache
	Collector *metrics.Collector
	Exporter  *metrics.Exporter
	Analysis  AnalysisOptions
	Now       func() time.Time
	Logger    *slog.Logger
}

// DashboardService fetches snapshots through the cache and computes
// dashboards from them.
type DashboardService struct {
	sources   map[Mode]source.Source
	cache     cache.SnapshotCache
	collector *metrics.Collector
	exporter  *metrics.Exporter
	analysis  AnalysisOptions
	now       func() time.Time
	logger    *slog.Logger
}

// NewDashboardService creates a dashboard service. Live falls back to Demo
// when nil; a nil cache disables caching.
func NewDashboardService(opts DashboardOptions) *DashboardService {
	if opts.Live == nil {
		opts.Live = opts.Demo
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Collector == nil {
		opts.Collector = metrics.NewCollector()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DashboardService{
		sources:   map[Mode]source.Source{ModeDemo: opts.Demo, ModeLive: opts.Live},
		cache:     opts.Cache,
		collector: opts.Collector,
		exporter:  opts.Exporter,
		analysis:  opts.Analysis,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Collector returns the service's metrics collector.
func (s *DashboardService) Collector() *metrics.Collector {
	return s.collector
}

// Now returns the service clock's current time.
func (s *DashboardService) Now() time.Time {
	return s.now()
}

// Dashboard returns the dashboard for mode, fetching a snapshot only when
// the cached one has expired.
func (s *DashboardService) Dashboard(ctx context.Context, mode Mode) (*Dashboard, error) {
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, mode, snap), nil
}

// Refresh drops the cached snapshot for mode and recomputes the dashboard.
func (s *DashboardService) Refresh(ctx context.Context, mode Mode) (*Dashboard, error) {
	s.cache.Invalidate(ctx, mode.cacheKey())
	s.logger.Debug("snapshot cache invalidated", "mode", mode)
	return s.Dashboard(ctx, mode)
}

// Analyze runs the analytics core on a caller-supplied snapshot. A zero now
// uses the service clock.
func (s *DashboardService) Analyze(ctx context.Context, snap *models.Snapshot, now time.Time) *Dashboard {
	if now.IsZero() {
		now = s.now()
	}
	start := time.Now()
	d := Analyze(snap, now, s.analysis)
	s.collector.RecordTiming(metrics.OpAnalytics, time.Since(start), nil)
	return &d
}

// Backends returns the backends of the current snapshot.
func (s *DashboardService) Backends(ctx context.Context, mode Mode) ([]models.Backend, error) {
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	return snap.Backends, nil
}

// Timeline returns the Gantt rows for the current snapshot.
func (s *DashboardService) Timeline(ctx context.Context, mode Mode, opts analytics.TimelineOptions) ([]models.GanttRow, error) {
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	return analytics.BuildTimeline(snap.Jobs, s.now(), opts), nil
}

// Snapshot returns the cached snapshot for mode or fetches a new one.
// The returned snapshot is shared and must not be modified.
func (s *DashboardService) Snapshot(ctx context.Context, mode Mode) (*models.Snapshot, error) {
	src, ok := s.sources[mode]
	if !ok || src == nil {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	key := mode.cacheKey()
	if snap, ok := s.cache.Get(ctx, key); ok {
		s.recordCache(true)
		return snap, nil
	}
	s.recordCache(false)

	ctx, span := observability.StartSpan(ctx, "snapshot.fetch", attribute.String("mode", key))
	defer span.End()

	start := time.Now()
	snap, err := src.Fetch(ctx)
	elapsed := time.Since(start)

	name := src.Name()
	if snap != nil && snap.Source != "" {
		name = snap.Source
	}
	s.collector.RecordTiming(metrics.FetchOp(name), elapsed, err)
	if s.exporter != nil {
		s.exporter.ObserveFetch(name, elapsed, err)
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Error("snapshot fetch failed", "mode", mode, "source", name, "duration_ms", elapsed.Milliseconds(), "error", err)
		return nil, fmt.Errorf("fetch %s snapshot: %w", mode, err)
	}

	span.SetAttributes(attribute.String("source", name), attribute.Int("jobs", len(snap.Jobs)))
	s.logger.Debug("snapshot fetched", "mode", mode, "source", name, "jobs", len(snap.Jobs), "duration_ms", elapsed.Milliseconds())
	s.cache.Set(ctx, key, snap)
	return snap, nil
}

func (s *DashboardService) compute(ctx context.Context, mode Mode, snap *models.Snapshot) *Dashboard {
	_, span := observability.StartSpan(ctx, "dashboard.compute", attribute.String("mode", string(mode)))
	defer span.End()

	start := time.Now()
	d := Analyze(snap, s.now(), s.analysis)
	d.Mode = mode
	s.collector.RecordTiming(metrics.OpAnalytics, time.Since(start), nil)

	if s.exporter != nil {
		s.exporter.ObserveDashboard(string(mode), d.Metrics, d.Jobs, d.Backends)
	}
	return &d
}

func (s *DashboardService) recordCache(hit bool) {
	s.collector.RecordCache(hit)
	if s.exporter != nil {
		s.exporter.ObserveCache(hit)
	}
}
