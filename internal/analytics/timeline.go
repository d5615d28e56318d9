package analytics

import (
	"slices"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// DefaultTimelineLimit is how many of the most recent jobs a timeline shows.
const DefaultTimelineLimit = 10

// TimelineOptions controls row selection for BuildTimeline.
type TimelineOptions struct {
	// Limit caps the number of rows; zero means DefaultTimelineLimit and a
	// negative value disables the cap.
	Limit int
	// PreserveOrder keeps the caller's order instead of sorting by submission.
	// With PreserveOrder the first Limit jobs are kept.
	PreserveOrder bool
}

// BuildTimeline reconstructs the Gantt queue/run bars for jobs.
//
// By default jobs are sorted by submission time (ascending, stable) and the
// most recent Limit are kept. For each job the queue bar runs from submission
// to the first RUNNING entry, or to now if the job never started; the run bar
// runs from that RUNNING entry to the first terminal entry, or to now if the
// job has not finished. A job that never reached RUNNING has no run bar.
// Negative spans are floored at zero and reported in GanttRow.Anomalies.
func BuildTimeline(jobs []models.Job, now time.Time, opts TimelineOptions) []models.GanttRow {
	selected := selectTimelineJobs(jobs, opts)

	rows := make([]models.GanttRow, 0, len(selected))
	for _, job := range selected {
		rows = append(rows, timelineRow(job, now))
	}
	return rows
}

func selectTimelineJobs(jobs []models.Job, opts TimelineOptions) []models.Job {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultTimelineLimit
	}

	if opts.PreserveOrder {
		if limit > 0 && len(jobs) > limit {
			return jobs[:limit]
		}
		return jobs
	}

	sorted := slices.Clone(jobs)
	slices.SortStableFunc(sorted, func(a, b models.Job) int {
		return a.Submitted.Compare(b.Submitted.Time)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted
}

func timelineRow(job models.Job, now time.Time) models.GanttRow {
	row := models.GanttRow{
		JobID:     job.ID,
		Name:      displayName(job.ID),
		Backend:   job.Backend,
		Status:    job.Status,
		Submitted: job.Submitted,
	}

	if job.Submitted.IsZero() {
		row.Anomalies = append(row.Anomalies, models.AnomalyMissingSubmitted)
		return row
	}

	// A job that finished without a RUNNING entry left the queue when it
	// reached its terminal state.
	started, ran := job.FirstTransition(models.StatusRunning)
	if !ran {
		started = now
		if ended, ok := job.FirstTerminal(); ok {
			started = ended
		}
	}

	var clamped bool
	row.QueueDuration, clamped = clampedSeconds(job.Submitted.Time, started)
	if clamped {
		row.Anomalies = append(row.Anomalies, models.AnomalyQueueClamped)
	}

	if !ran {
		return row
	}

	ended, finished := job.FirstTerminal()
	if !finished {
		ended = now
	}
	row.RunDuration, clamped = clampedSeconds(started, ended)
	if clamped {
		row.Anomalies = append(row.Anomalies, models.AnomalyRunClamped)
	}

	return row
}

// displayName shortens a job ID for chart axis labels.
func displayName(id string) string {
	const prefix = 5
	r := []rune(id)
	if len(r) <= prefix {
		return "Job " + id
	}
	return "Job " + string(r[:prefix]) + "..."
}
