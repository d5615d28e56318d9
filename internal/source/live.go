package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"golang.org/x/sync/errgroup"
)

// LiveOptions configures LiveSource.
type LiveOptions struct {
	BaseURL  string
	APIKey   string
	JobLimit int
	Timeout  time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// LiveSource fetches jobs and backends from the IBM Quantum REST API and
// translates them into snapshots.
type LiveSource struct {
	baseURL    string
	apiKey     string
	jobLimit   int
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewLiveSource creates a live API source.
func NewLiveSource(opts LiveOptions) *LiveSource {
	if opts.JobLimit <= 0 {
		opts.JobLimit = 50
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &LiveSource{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		jobLimit:   opts.JobLimit,
		httpClient: &http.Client{Timeout: opts.Timeout},
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

// Name returns the source name.
func (l *LiveSource) Name() string { return NameLive }

// apiBackend is a backend as returned by GET /backends.
type apiBackend struct {
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	QubitCount  int      `json:"qubit_count"`
	QueueLength int      `json:"queue_length"`
	ErrorRate   *float64 `json:"error_rate"`
}

// apiJob is a job as returned by GET /jobs.
type apiJob struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Backend      string `json:"backend"`
	CreationDate string `json:"creation_date"`
	TimePerStep  *struct {
		Running  string `json:"running"`
		Finished string `json:"finished"`
	} `json:"time_per_step"`
	HubInfo *struct {
		User string `json:"user"`
	} `json:"hub_info"`
	Usage *struct {
		QPUSeconds float64 `json:"qpu_seconds"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Result map[string]any `json:"result"`
}

// Fetch retrieves backends and jobs in parallel.
func (l *LiveSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("live api: %w: no API key configured", ErrUnavailable)
	}

	var (
		rawBackends []apiBackend
		rawJobs     []apiJob
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.get(gctx, "/backends", nil, &rawBackends)
	})
	g.Go(func() error {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(l.jobLimit))
		q.Set("descending", "true")
		return l.get(gctx, "/jobs", q, &rawJobs)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := l.now()
	snap := &models.Snapshot{
		Jobs:         make([]models.Job, 0, len(rawJobs)),
		Backends:     make([]models.Backend, 0, len(rawBackends)),
		OpenSessions: 1, // not reported by the API
		TakenAt:      now,
		Source:       NameLive,
	}
	for _, b := range rawBackends {
		snap.Backends = append(snap.Backends, convertBackend(b))
	}
	for _, j := range rawJobs {
		snap.Jobs = append(snap.Jobs, convertJob(j, now))
	}

	l.logger.Debug("live snapshot fetched", "jobs", len(snap.Jobs), "backends", len(snap.Backends))
	return snap, nil
}

// get performs an authenticated GET and decodes the JSON body into result.
func (l *LiveSource) get(ctx context.Context, path string, query url.Values, result any) error {
	endpoint := l.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s - %s", path, resp.Status, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func convertBackend(b apiBackend) models.Backend {
	errorRate := 0.0
	if b.ErrorRate != nil {
		errorRate = *b.ErrorRate
	}
	return models.Backend{
		Name:       b.Name,
		Status:     models.ParseBackendStatus(b.Status),
		QubitCount: b.QubitCount,
		QueueDepth: b.QueueLength,
		ErrorRate:  errorRate,
	}
}

// convertJob rebuilds a status history from the API's per-step times.
// A missing running time means the job never started; a missing finish
// time for a finished job is taken as now.
func convertJob(j apiJob, now time.Time) models.Job {
	status := models.ParseJobStatus(j.Status)
	submitted, _ := models.ParseTimestamp(j.CreationDate)

	var running, finished models.Timestamp
	var hasRunning, hasFinished bool
	if j.TimePerStep != nil {
		running, hasRunning = models.ParseTimestamp(j.TimePerStep.Running)
		finished, hasFinished = models.ParseTimestamp(j.TimePerStep.Finished)
	}

	start := submitted
	if hasRunning {
		start = running
	}
	end := models.NewTimestamp(now)
	if hasFinished {
		end = finished
	}

	var history []models.StatusEntry
	if !submitted.IsZero() {
		history = append(history, models.StatusEntry{Status: models.StatusQueued, Timestamp: submitted})
	}
	if hasRunning {
		history = append(history, models.StatusEntry{Status: models.StatusRunning, Timestamp: running})
	}
	if !status.IsLive() {
		history = append(history, models.StatusEntry{Status: status, Timestamp: end})
	}

	elapsed := 0.0
	if !start.IsZero() && end.After(start.Time) {
		elapsed = end.Sub(start.Time).Seconds()
	}

	user := ""
	if j.HubInfo != nil {
		user = j.HubInfo.User
	}
	logs := fmt.Sprintf("Job status: %s", status)
	if j.Error != nil && j.Error.Message != "" {
		logs = "Error: " + j.Error.Message
	} else if status == models.StatusCompleted {
		logs = "Job executed successfully."
	}
	qpu := 0.0
	if j.Usage != nil {
		qpu = j.Usage.QPUSeconds
	}
	results := j.Result
	if results == nil {
		results = map[string]any{}
	}

	return models.Job{
		ID:            j.ID,
		Status:        status,
		Backend:       j.Backend,
		Submitted:     submitted,
		ElapsedTime:   elapsed,
		User:          MaskUser(user),
		QPUSeconds:    qpu,
		Logs:          logs,
		Results:       results,
		StatusHistory: history,
	}
}

// MaskUser replaces a user identifier with a short stable pseudonym.
func MaskUser(id string) string {
	if id == "" {
		return "Quantum User"
	}
	sum := sha256.Sum256([]byte(id))
	return "user_" + hex.EncodeToString(sum[:])[:6]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
