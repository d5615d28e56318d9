package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// mockUsers are assigned round-robin to generated jobs.
var mockUsers = []string{"Alice", "Bob", "Charlie", "David", "Eve"}

// mockStatuses are the statuses drawn for generated jobs.
var mockStatuses = []models.JobStatus{
	models.StatusCompleted,
	models.StatusRunning,
	models.StatusQueued,
	models.StatusError,
	models.StatusCancelled,
}

// AnomalyJobID identifies the generated job with an abnormally long queue.
const AnomalyJobID = "c_anomaly_long_queue"

// MockOptions configures MockSource.
type MockOptions struct {
	// Seed makes output reproducible; zero seeds from the clock.
	Seed uint64
	// Jobs is the number of random jobs (the anomaly job is extra).
	Jobs int
	// Now overrides the clock.
	Now func() time.Time
}

// MockSource generates demo snapshots resembling a busy IBM Quantum account.
type MockSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	jobs int
	now  func() time.Time
}

// NewMockSource creates a mock source.
func NewMockSource(opts MockOptions) *MockSource {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 50
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(opts.Now().UnixNano())
	}
	return &MockSource{
		rng:  rand.New(rand.NewPCG(seed, seed>>1|1)),
		jobs: opts.Jobs,
		now:  opts.Now,
	}
}

// Name returns the source name.
func (m *MockSource) Name() string { return NameMock }

// Fetch generates a new snapshot.
func (m *MockSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	backends := m.backends()

	jobs := make([]models.Job, 0, m.jobs+1)
	for i := range m.jobs {
		backend := backends[m.rng.IntN(len(backends))].Name
		jobs = append(jobs, m.job(i, backend, now))
	}
	jobs = append(jobs, anomalyJob(now))

	return &models.Snapshot{
		Jobs:         jobs,
		Backends:     backends,
		OpenSessions: m.rng.IntN(5) + 1,
		TakenAt:      now,
		Source:       NameMock,
	}, nil
}

func (m *MockSource) backends() []models.Backend {
	r := m.rng
	kolkata := models.BackendActive
	if r.Float64() > 0.8 {
		kolkata = models.BackendMaintenance
	}
	auckland := models.BackendActive
	if r.Float64() > 0.9 {
		auckland = models.BackendInactive
	}
	return []models.Backend{
		{Name: "ibm_brisbane", Status: models.BackendActive, QubitCount: 127, QueueDepth: r.IntN(10), ErrorRate: 0.012},
		{Name: "ibm_kyoto", Status: models.BackendActive, QubitCount: 127, QueueDepth: r.IntN(10), ErrorRate: 0.015},
		{Name: "ibm_osaka", Status: models.BackendActive, QubitCount: 127, QueueDepth: r.IntN(10), ErrorRate: 0.011},
		{Name: "ibmq_kolkata", Status: kolkata, QubitCount: 27, QueueDepth: 0, ErrorRate: 0.025},
		{Name: "ibmq_mumbai", Status: models.BackendActive, QubitCount: 27, QueueDepth: r.IntN(5), ErrorRate: 0.021},
		{Name: "ibmq_auckland", Status: auckland, QubitCount: 27, QueueDepth: 0, ErrorRate: 0.033},
	}
}

// job builds one random job whose history is consistent with its status.
// Finished jobs are submitted at least 15 minutes ago so that the longest
// queue (9m) plus run (4m) has already elapsed.
func (m *MockSource) job(i int, backend string, now time.Time) models.Job {
	r := m.rng
	status := mockStatuses[r.IntN(len(mockStatuses))]

	ago := time.Duration(r.IntN(240)) * time.Minute
	if status.IsTerminal() {
		ago = 15*time.Minute + time.Duration(r.IntN(225))*time.Minute
	}
	submitted := now.Add(-ago)
	started := submitted.Add(time.Duration(r.IntN(10)) * time.Minute)
	if started.After(now) {
		started = now
	}
	ended := started.Add(time.Duration(r.IntN(5)) * time.Minute)

	job := models.Job{
		ID:        fmt.Sprintf("c%09xq%d", r.Uint64()&0xfffffffff, i),
		Status:    status,
		Backend:   backend,
		Submitted: models.NewTimestamp(submitted),
		User:      mockUsers[i%len(mockUsers)],
		Logs:      "Job execution successful.\nFinal measurement data collected.",
		Results:   map[string]any{},
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusQueued, Timestamp: models.NewTimestamp(submitted)},
		},
	}

	switch status {
	case models.StatusRunning:
		job.StatusHistory = append(job.StatusHistory, models.StatusEntry{Status: models.StatusRunning, Timestamp: models.NewTimestamp(started)})
		job.ElapsedTime = now.Sub(started).Seconds()
	case models.StatusCompleted, models.StatusError:
		job.StatusHistory = append(job.StatusHistory,
			models.StatusEntry{Status: models.StatusRunning, Timestamp: models.NewTimestamp(started)},
			models.StatusEntry{Status: status, Timestamp: models.NewTimestamp(ended)},
		)
		job.ElapsedTime = ended.Sub(started).Seconds()
	case models.StatusCancelled:
		// Cancelled while still queued.
		job.StatusHistory = append(job.StatusHistory, models.StatusEntry{Status: status, Timestamp: models.NewTimestamp(started)})
	}

	switch status {
	case models.StatusCompleted:
		job.QPUSeconds = r.Float64() * 10
		job.Results = map[string]any{"001": 102, "110": 34, "101": 410}
	case models.StatusError:
		job.Logs = "Error: Qubit calibration failed. Details: ...\n[some other log line]"
	}

	return job
}

// anomalyJob waited 115 minutes in the queue before a two-minute run.
func anomalyJob(now time.Time) models.Job {
	submitted := now.Add(-120 * time.Minute)
	return models.Job{
		ID:          AnomalyJobID,
		Status:      models.StatusCompleted,
		Backend:     "ibm_brisbane",
		Submitted:   models.NewTimestamp(submitted),
		ElapsedTime: 120,
		User:        "Faythe",
		QPUSeconds:  18.5,
		Logs:        "Job execution successful.",
		Results:     map[string]any{"000": 512, "111": 488},
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusQueued, Timestamp: models.NewTimestamp(submitted)},
			{Status: models.StatusRunning, Timestamp: models.NewTimestamp(now.Add(-5 * time.Minute))},
			{Status: models.StatusCompleted, Timestamp: models.NewTimestamp(now.Add(-3 * time.Minute))},
		},
	}
}
