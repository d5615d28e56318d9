// Package api serves the dashboard over REST.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/lvs170603/Quantum-Observer/internal/analytics"
	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/server"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/lvs170603/Quantum-Observer/internal/source"
)

// maxBodyBytes bounds request bodies (snapshots posted to /api/analyze).
const maxBodyBytes = 10 << 20

// Handler holds the services behind the REST routes.
type Handler struct {
	dashboard   *service.DashboardService
	assistant   *service.AssistantService
	exporter    *metrics.Exporter
	defaultMode service.Mode
	logger      *slog.Logger
}

// NewHandler creates a REST handler. exporter may be nil, in which case
// /metrics is not served.
func NewHandler(dashboard *service.DashboardService, assistant *service.AssistantService, exporter *metrics.Exporter, defaultMode service.Mode, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dashboard:   dashboard,
		assistant:   assistant,
		exporter:    exporter,
		defaultMode: defaultMode,
		logger:      logger,
	}
}

// Router builds the route table wrapped in request logging.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if h.exporter != nil {
		r.Handle("/metrics", h.exporter.Handler()).Methods(http.MethodGet)
	}

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/dashboard", h.GetDashboard).Methods(http.MethodGet)
	a.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	a.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	a.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)
	a.HandleFunc("/backends", h.GetBackends).Methods(http.MethodGet)
	a.HandleFunc("/timeline", h.GetTimeline).Methods(http.MethodGet)
	a.HandleFunc("/export", h.Export).Methods(http.MethodGet)
	a.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	a.HandleFunc("/assistant", h.Ask).Methods(http.MethodPost)
	a.HandleFunc("/anomalies", h.Anomalies).Methods(http.MethodPost)
	a.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	})

	return server.HTTPLoggingMiddleware(h.logger)(r)
}

func (h *Handler) mode(r *http.Request) service.Mode {
	return service.ParseMode(r.URL.Query().Get("demo"), h.defaultMode)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Dashboard(r.Context(), h.mode(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Refresh(r.Context(), h.mode(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page: "+q.Get("page"))
		return
	}
	size, err := intParam(q.Get("page_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page_size: "+q.Get("page_size"))
		return
	}

	filter := service.JobFilter{
		Backend:  allToEmpty(q.Get("backend")),
		Search:   q.Get("q"),
		Page:     page,
		PageSize: size,
	}
	if status := allToEmpty(q.Get("status")); status != "" {
		filter.Status = models.ParseJobStatus(status)
	}

	result, err := h.dashboard.ListJobs(r.Context(), h.mode(r), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.dashboard.GetJob(r.Context(), h.mode(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) GetBackends(w http.ResponseWriter, r *http.Request) {
	backends, err := h.dashboard.Backends(r.Context(), h.mode(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backends)
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	rows, err := h.dashboard.Timeline(r.Context(), h.mode(r), analytics.TimelineOptions{Limit: limit})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = service.FormatCSV
	}

	var buf bytes.Buffer
	if err := h.dashboard.Export(r.Context(), h.mode(r), format, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == service.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFilename(format, h.dashboard.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Analyze runs the analytics core on a posted snapshot. The optional now
// query parameter (RFC3339) pins the reference time.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var now time.Time
	if raw := r.URL.Query().Get("now"); raw != "" {
		ts, ok := models.ParseTimestamp(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid now: "+raw)
			return
		}
		now = ts.Time
	}

	var snap models.Snapshot
	if err := decodeBody(w, r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snapshot: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.dashboard.Analyze(r.Context(), &snap, now))
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	answer, err := h.assistant.Ask(r.Context(), req.Query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

type anomaliesRequest struct {
	Jobs []models.Job `json:"jobs"`
}

// Anomalies analyzes the posted jobs, or the current snapshot when the body
// is empty or has no jobs.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	var req anomaliesRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	var (
		report *models.AnomalyReport
		err    error
	)
	if len(req.Jobs) > 0 {
		report, err = h.assistant.DetectAnomalies(r.Context(), req.Jobs, h.dashboard.Now())
	} else {
		report, err = h.assistant.DetectAnomaliesFor(r.Context(), h.mode(r))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.Collector().Snapshot())
}

// fail maps service errors to HTTP status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request error", "path", r.URL.Path, "request_id", server.RequestID(r.Context()), "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnsupportedFormat), errors.Is(err, service.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNoModel), errors.Is(err, source.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrFatalAPI):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func allToEmpty(s string) string {
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
