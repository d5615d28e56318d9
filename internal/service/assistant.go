package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/analytics"
	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrEmptyQuery is returned when the assistant is asked nothing.
var ErrEmptyQuery = errors.New("query is required")

// AssistantService answers dashboard questions and runs AI anomaly analysis.
type AssistantService struct {
	model     *llm.Model
	dashboard *DashboardService
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewAssistantService creates an assistant. A nil model makes every call
// fail with llm.ErrNoModel.
func NewAssistantService(model *llm.Model, dashboard *DashboardService, logger *slog.Logger) *AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{
		model:     model,
		dashboard: dashboard,
		collector: dashboard.Collector(),
		logger:    logger,
	}
}

// Enabled reports whether an LLM is configured.
func (a *AssistantService) Enabled() bool {
	return a.model != nil
}

// Ask answers a question about the dashboard.
func (a *AssistantService) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if a.model == nil {
		return "", llm.ErrNoModel
	}

	ctx, span := observability.StartSpan(ctx, "llm.assistant", attribute.String("llm.model", a.model.Model()))
	defer span.End()

	start := time.Now()
	gen, err := a.model.AskDashboard(ctx, query)
	a.collector.RecordLLMUsage(metrics.OpLLMAssistant, time.Since(start), gen.InputTokens, gen.OutputTokens, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("assistant failed", "model", a.model.Model(), "error", err)
		return "", fmt.Errorf("ask assistant: %w", err)
	}
	return strings.TrimSpace(gen.Text), nil
}

// anomalyJob is the per-job record sent to the model.
type anomalyJob struct {
	ID            string               `json:"id"`
	Status        models.JobStatus     `json:"status"`
	Backend       string               `json:"backend"`
	Submitted     models.Timestamp     `json:"submitted"`
	ElapsedTime   float64              `json:"elapsed_time"`
	StatusHistory []models.StatusEntry `json:"status_history"`
	QueueSeconds  float64              `json:"queue_seconds"`
	RunSeconds    float64              `json:"run_seconds"`
	Anomalies     []string             `json:"anomalies,omitempty"`
}

// DetectAnomalies asks the model to flag anomalous jobs. Each job is sent
// with its reconstructed queue and run durations.
func (a *AssistantService) DetectAnomalies(ctx context.Context, jobs []models.Job, now time.Time) (*models.AnomalyReport, error) {
	if a.model == nil {
		return nil, llm.ErrNoModel
	}
	if len(jobs) == 0 {
		return &models.AnomalyReport{Anomalies: []models.Anomaly{}, Summary: "No jobs to analyze."}, nil
	}

	rows := analytics.BuildTimeline(jobs, now, analytics.TimelineOptions{Limit: -1, PreserveOrder: true})
	payload := make([]anomalyJob, len(jobs))
	for i, job := range jobs {
		payload[i] = anomalyJob{
			ID:            job.ID,
			Status:        job.Status,
			Backend:       job.Backend,
			Submitted:     job.Submitted,
			ElapsedTime:   job.ElapsedTime,
			StatusHistory: job.StatusHistory,
			QueueSeconds:  rows[i].QueueDuration,
			RunSeconds:    rows[i].RunDuration,
			Anomalies:     rows[i].Anomalies,
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode jobs: %w", err)
	}

	ctx, span := observability.StartSpan(ctx, "llm.anomalies",
		attribute.String("llm.model", a.model.Model()),
		attribute.Int("jobs", len(jobs)),
	)
	defer span.End()

	start := time.Now()
	report, gen, err := a.model.AnalyzeAnomalies(ctx, string(data))
	a.collector.RecordLLMUsage(metrics.OpLLMAnomalies, time.Since(start), gen.InputTokens, gen.OutputTokens, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("anomaly analysis failed", "model", a.model.Model(), "jobs", len(jobs), "error", err)
		return nil, fmt.Errorf("detect anomalies: %w", err)
	}

	a.logger.Info("anomaly analysis complete", "jobs", len(jobs), "anomalies", len(report.Anomalies))
	return &report, nil
}

// DetectAnomaliesFor analyzes the current snapshot for mode.
func (a *AssistantService) DetectAnomaliesFor(ctx context.Context, mode Mode) (*models.AnomalyReport, error) {
	if a.model == nil {
		return nil, llm.ErrNoModel
	}
	snap, err := a.dashboard.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	return a.DetectAnomalies(ctx, snap.Jobs, a.dashboard.Now())
}
