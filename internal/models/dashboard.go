package models

import "time"

// Metrics holds the headline KPIs for a snapshot.
type Metrics struct {
	TotalJobs    int     `json:"total_jobs"`
	LiveJobs     int     `json:"live_jobs"`
	AvgWaitTime  float64 `json:"avg_wait_time"` // seconds
	SuccessRate  float64 `json:"success_rate"`  // percent
	OpenSessions int     `json:"open_sessions"`
}

// ChartData is one bucket of the job-status-over-time chart.
// Counts are by current status of the jobs submitted within the bucket.
type ChartData struct {
	Time      string    `json:"time"`
	Start     time.Time `json:"start"`
	Completed int       `json:"COMPLETED"`
	Running   int       `json:"RUNNING"`
	Queued    int       `json:"QUEUED"`
	Error     int       `json:"ERROR"`
	Cancelled int       `json:"CANCELLED"`
	Unknown   int       `json:"UNKNOWN"`
}

// Total returns the number of jobs counted in the bucket.
func (c ChartData) Total() int {
	return c.Completed + c.Running + c.Queued + c.Error + c.Cancelled + c.Unknown
}

// BackendCount is a named value in a per-backend breakdown.
type BackendCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DailyJobSummary counts today's completed jobs per backend.
type DailyJobSummary struct {
	Date               time.Time      `json:"date"`
	TotalCompleted     int            `json:"totalCompleted"`
	CompletedByBackend []BackendCount `json:"completedByBackend"`
}

// Timeline anomaly markers reported on a GanttRow.
const (
	AnomalyMissingSubmitted = "missing_submitted"
	AnomalyQueueClamped     = "queue_clamped"
	AnomalyRunClamped       = "run_clamped"
)

// GanttRow is the queue/run breakdown of one job, in seconds.
type GanttRow struct {
	JobID         string    `json:"jobId"`
	Name          string    `json:"name"`
	Backend       string    `json:"backend"`
	Status        JobStatus `json:"status"`
	Submitted     Timestamp `json:"submitted"`
	QueueDuration float64   `json:"queueDuration"`
	RunDuration   float64   `json:"runDuration"`
	Anomalies     []string  `json:"anomalies,omitempty"`
}

// Anomaly is a job flagged by AI analysis.
type Anomaly struct {
	JobID              string `json:"jobId"`
	AnomalyDescription string `json:"anomalyDescription"`
	Severity           string `json:"severity"`
}

// AnomalyReport is the result of analysing a set of jobs for anomalies.
type AnomalyReport struct {
	Anomalies []Anomaly `json:"anomalies"`
	Summary   string    `json:"summary"`
}
