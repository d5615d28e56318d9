// Package models defines data structures for the Quantum Observer dashboard.
package models

import (
	"time"
)

// JobStatus is the lifecycle state of a quantum job.
type JobStatus string

const (
	StatusCompleted JobStatus = "COMPLETED"
	StatusRunning   JobStatus = "RUNNING"
	StatusQueued    JobStatus = "QUEUED"
	StatusError     JobStatus = "ERROR"
	StatusCancelled JobStatus = "CANCELLED"
	StatusUnknown   JobStatus = "UNKNOWN"
)

// AllStatuses lists every status in display order.
var AllStatuses = []JobStatus{
	StatusCompleted,
	StatusRunning,
	StatusQueued,
	StatusError,
	StatusCancelled,
	StatusUnknown,
}

// IsLive reports whether the job still occupies a backend queue.
func (s JobStatus) IsLive() bool {
	return s == StatusRunning || s == StatusQueued
}

// IsTerminal reports whether no further transition can occur.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// StatusEntry is one transition in a job's status history.
type StatusEntry struct {
	Status    JobStatus `json:"status" yaml:"status"`
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`
}

// Job is a single quantum job as reported by the scheduler.
// Logs and Results are passed through untouched.
type Job struct {
	ID            string         `json:"id" yaml:"id"`
	Status        JobStatus      `json:"status" yaml:"status"`
	Backend       string         `json:"backend" yaml:"backend"`
	Submitted     Timestamp      `json:"submitted" yaml:"submitted"`
	ElapsedTime   float64        `json:"elapsed_time" yaml:"elapsed_time"`
	User          string         `json:"user" yaml:"user"`
	QPUSeconds    float64        `json:"qpu_seconds" yaml:"qpu_seconds"`
	Logs          string         `json:"logs" yaml:"logs"`
	Results       map[string]any `json:"results" yaml:"results"`
	StatusHistory []StatusEntry  `json:"status_history" yaml:"status_history"`
}

// FirstTransition returns the timestamp of the first history entry with the
// given status. Entries with a missing timestamp are skipped.
func (j Job) FirstTransition(status JobStatus) (time.Time, bool) {
	for _, e := range j.StatusHistory {
		if e.Status == status && !e.Timestamp.IsZero() {
			return e.Timestamp.Time, true
		}
	}
	return time.Time{}, false
}

// FirstTerminal returns the timestamp of the first terminal history entry.
func (j Job) FirstTerminal() (time.Time, bool) {
	for _, e := range j.StatusHistory {
		if e.Status.IsTerminal() && !e.Timestamp.IsZero() {
			return e.Timestamp.Time, true
		}
	}
	return time.Time{}, false
}

// BackendStatus is the operational state of a backend.
type BackendStatus string

const (
	BackendActive      BackendStatus = "active"
	BackendInactive    BackendStatus = "inactive"
	BackendMaintenance BackendStatus = "maintenance"
)

// Backend is a quantum processor that executes jobs.
type Backend struct {
	Name       string        `json:"name" yaml:"name"`
	Status     BackendStatus `json:"status" yaml:"status"`
	QubitCount int           `json:"qubit_count" yaml:"qubit_count"`
	QueueDepth int           `json:"queue_depth" yaml:"queue_depth"`
	ErrorRate  float64       `json:"error_rate" yaml:"error_rate"`
}

// Snapshot is a point-in-time view of jobs and backends.
// It must not be mutated once handed to analytics or a cache.
type Snapshot struct {
	Jobs         []Job     `json:"jobs" yaml:"jobs"`
	Backends     []Backend `json:"backends" yaml:"backends"`
	OpenSessions int       `json:"open_sessions" yaml:"open_sessions"`
	TakenAt      time.Time `json:"taken_at" yaml:"taken_at"`
	Source       string    `json:"source" yaml:"source"`
	Note         string    `json:"note,omitempty" yaml:"note,omitempty"`
}
