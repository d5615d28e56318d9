// Package client provides a REST client for the Quantum Observer server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/service"
)

// DefaultServerURL is used when neither an explicit URL nor QO_SERVER_URL is set.
const DefaultServerURL = "http://localhost:9002"

// Client is a REST client for the Quantum Observer server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses QO_SERVER_URL env var or defaults to localhost:9002.
// Timeout can be configured via QO_CLIENT_TIMEOUT env var (default 30s; the
// AI endpoints can take a while).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("QO_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultServerURL
	}

	timeout := 30 * time.Second
	if t := os.Getenv("QO_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error: %d %s - %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// do sends a request and returns the response for a 2xx status. The caller
// closes the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return resp, nil
}

// getJSON sends a request and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, method, path string, query url.Values, body, result any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// modeQuery encodes the demo flag; nil leaves the server default.
func modeQuery(demo *bool) url.Values {
	q := url.Values{}
	if demo != nil {
		q.Set("demo", strconv.FormatBool(*demo))
	}
	return q
}

// Dashboard fetches the dashboard.
func (c *Client) Dashboard(ctx context.Context, demo *bool) (*service.Dashboard, error) {
	var d service.Dashboard
	if err := c.getJSON(ctx, http.MethodGet, "/api/dashboard", modeQuery(demo), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Refresh drops the cached snapshot and returns a fresh dashboard.
func (c *Client) Refresh(ctx context.Context, demo *bool) (*service.Dashboard, error) {
	var d service.Dashboard
	if err := c.getJSON(ctx, http.MethodPost, "/api/refresh", modeQuery(demo), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListJobsOptions filters ListJobs. Zero values mean no filter.
type ListJobsOptions struct {
	Demo     *bool
	Backend  string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ListJobs fetches one page of filtered jobs.
func (c *Client) ListJobs(ctx context.Context, opts ListJobsOptions) (*service.JobPage, error) {
	q := modeQuery(opts.Demo)
	if opts.Backend != "" {
		q.Set("backend", opts.Backend)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Search != "" {
		q.Set("q", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	var page service.JobPage
	if err := c.getJSON(ctx, http.MethodGet, "/api/jobs", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetJob fetches one job by ID.
func (c *Client) GetJob(ctx context.Context, demo *bool, id string) (*models.Job, error) {
	var job models.Job
	if err := c.getJSON(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), modeQuery(demo), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Backends fetches the backend list.
func (c *Client) Backends(ctx context.Context, demo *bool) ([]models.Backend, error) {
	var backends []models.Backend
	if err := c.getJSON(ctx, http.MethodGet, "/api/backends", modeQuery(demo), nil, &backends); err != nil {
		return nil, err
	}
	return backends, nil
}

// Timeline fetches queue/run rows for the most recent jobs. A zero limit
// uses the server default.
func (c *Client) Timeline(ctx context.Context, demo *bool, limit int) ([]models.GanttRow, error) {
	q := modeQuery(demo)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var rows []models.GanttRow
	if err := c.getJSON(ctx, http.MethodGet, "/api/timeline", q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Export streams the job export to w and returns the server's suggested
// filename.
func (c *Client) Export(ctx context.Context, demo *bool, format string, w io.Writer) (string, error) {
	q := modeQuery(demo)
	q.Set("format", format)

	resp, err := c.do(ctx, http.MethodGet, "/api/export", q, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}

	var filename string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return filename, nil
}

// Ask sends a question to the dashboard assistant.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	var result struct {
		Answer string `json:"answer"`
	}
	body := map[string]string{"query": query}
	if err := c.getJSON(ctx, http.MethodPost, "/api/assistant", nil, body, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Anomalies asks the server to analyze the current snapshot for anomalies.
func (c *Client) Anomalies(ctx context.Context, demo *bool) (*models.AnomalyReport, error) {
	var report models.AnomalyReport
	if err := c.getJSON(ctx, http.MethodPost, "/api/anomalies", modeQuery(demo), struct{}{}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Stats fetches the server's operation statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var stats metrics.Snapshot
	if err := c.getJSON(ctx, http.MethodGet, "/api/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	var result map[string]string
	return c.getJSON(ctx, http.MethodGet, "/health", nil, nil, &result)
}
