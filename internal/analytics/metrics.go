package analytics

import (
	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// ComputeMetrics returns the KPI cards for a snapshot.
//
// Success rate is completed/(completed+error) as a percentage and is 0 when
// no job has completed or failed yet. Average wait is the mean time from
// submission to the first RUNNING transition over jobs that have one; jobs
// that never ran, or whose timestamps are missing, are left out entirely.
// OpenSessions is not derived here; callers copy it from the snapshot.
func ComputeMetrics(jobs []models.Job) models.Metrics {
	var (
		live      int
		completed int
		failed    int
		waitSum   float64
		waitCount int
	)

	for _, job := range jobs {
		switch job.Status {
		case models.StatusCompleted:
			completed++
		case models.StatusError:
			failed++
		}
		if job.Status.IsLive() {
			live++
		}

		if job.Submitted.IsZero() {
			continue
		}
		running, ok := job.FirstTransition(models.StatusRunning)
		if !ok {
			continue
		}
		wait, _ := clampedSeconds(job.Submitted.Time, running)
		waitSum += wait
		waitCount++
	}

	m := models.Metrics{
		TotalJobs: len(jobs),
		LiveJobs:  live,
	}
	if waitCount > 0 {
		m.AvgWaitTime = waitSum / float64(waitCount)
	}
	if attempts := completed + failed; attempts > 0 {
		m.SuccessRate = 100 * float64(completed) / float64(attempts)
	}
	return m
}
