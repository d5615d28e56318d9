package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/cache"
	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/lvs170603/Quantum-Observer/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

var fixedNow = time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type cannedLLM struct{ reply string }

func (c cannedLLM) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: c.reply}}}, nil
}

func (c cannedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

func newTestRouter(t *testing.T, model *llm.Model) http.Handler {
	t.Helper()
	exporter := metrics.NewExporter()
	demo := source.NewMockSource(source.MockOptions{Seed: 5, Jobs: 30, Now: clock})
	live := source.NewFallbackSource(source.NewLiveSource(source.LiveOptions{}), demo, nil)
	dash := service.NewDashboardService(service.DashboardOptions{
		Demo:     demo,
		Live:     live,
		Cache:    cache.NewMemoryCache(4, time.Minute),
		Exporter: exporter,
		Now:      clock,
	})
	assistant := service.NewAssistantService(model, dash, nil)
	return NewHandler(dash, assistant, exporter, service.ModeDemo, nil).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestDashboardEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[service.Dashboard](t, rec)
	assert.Equal(t, service.ModeDemo, d.Mode)
	assert.Equal(t, 31, d.Metrics.TotalJobs)
	assert.Len(t, d.ChartData, 12)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/api/dashboard?demo=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[service.Dashboard](t, rec)
	assert.Equal(t, service.ModeLive, d.Mode)
	assert.Equal(t, source.FallbackNote, d.Note, "live mode without an API key falls back to demo data")

	rec = do(t, h, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/refresh", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestJobsEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/jobs?page=2&page_size=5&status=all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.JobPage](t, rec)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Jobs, 5)
	assert.Equal(t, 31, page.Total)

	rec = do(t, h, http.MethodGet, "/api/jobs?q=anomaly", "")
	page = decode[service.JobPage](t, rec)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, source.AnomalyJobID, page.Jobs[0].ID)

	rec = do(t, h, http.MethodGet, "/api/jobs/"+source.AnomalyJobID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[models.Job](t, rec)
	assert.Equal(t, "ibm_brisbane", job.Backend)

	rec = do(t, h, http.MethodGet, "/api/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "job not found")

	rec = do(t, h, http.MethodGet, "/api/jobs?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackendsTimelineStats(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/backends", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Backend](t, rec), 6)

	rec = do(t, h, http.MethodGet, "/api/timeline?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.GanttRow](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[metrics.Snapshot](t, rec)
	require.NotNil(t, stats.FetchMock)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qo_backend_queue_depth")

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "quantum_jobs_20250314T153000Z.csv")
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 32)

	rec = do(t, h, http.MethodGet, "/api/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Job](t, rec), 31)

	rec = do(t, h, http.MethodGet, "/api/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)
	body := `{
		"open_sessions": 2,
		"jobs": [
			{"id": "a", "status": "COMPLETED", "backend": "k", "submitted": "2025-03-14T15:00:00Z",
			 "status_history": [
				{"status": "QUEUED", "timestamp": "2025-03-14T15:00:00Z"},
				{"status": "RUNNING", "timestamp": "2025-03-14T15:01:00Z"},
				{"status": "COMPLETED", "timestamp": "2025-03-14T15:02:00Z"}]},
			{"id": "b", "status": "ERROR", "backend": "k", "submitted": null}
		]
	}`

	rec := do(t, h, http.MethodPost, "/api/analyze?now=2025-03-14T15:30:00Z", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decode[service.Dashboard](t, rec)
	assert.Equal(t, 2, d.Metrics.TotalJobs)
	assert.InDelta(t, 50, d.Metrics.SuccessRate, 1e-9)
	assert.InDelta(t, 60, d.Metrics.AvgWaitTime, 1e-9)
	assert.Equal(t, 2, d.Metrics.OpenSessions)

	rec = do(t, h, http.MethodPost, "/api/analyze?now=yesterday", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/analyze", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantEndpoints(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newTestRouter(t, nil)
		rec := do(t, h, http.MethodPost, "/api/assistant", `{"query":"hi"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		rec = do(t, h, http.MethodPost, "/api/anomalies", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ask", func(t *testing.T) {
		h := newTestRouter(t, llm.NewModelWith(cannedLLM{reply: "Success rate is completed over finished jobs."}, "fake"))
		rec := do(t, h, http.MethodPost, "/api/assistant", `{"query":"what is success rate?"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Success rate is completed over finished jobs.", decode[askResponse](t, rec).Answer)

		rec = do(t, h, http.MethodPost, "/api/assistant", `{"query":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anomalies", func(t *testing.T) {
		reply := `{"anomalies":[{"jobId":"c_anomaly_long_queue","anomalyDescription":"Queued 115 minutes.","severity":"high"}],"summary":"1 anomaly"}`
		h := newTestRouter(t, llm.NewModelWith(cannedLLM{reply: reply}, "fake"))

		rec := do(t, h, http.MethodPost, "/api/anomalies", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		report := decode[models.AnomalyReport](t, rec)
		require.Len(t, report.Anomalies, 1)
		assert.Equal(t, source.AnomalyJobID, report.Anomalies[0].JobID)

		rec = do(t, h, http.MethodPost, "/api/anomalies", `{"jobs":[{"id":"x","status":"QUEUED"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "/api/nope")
}
