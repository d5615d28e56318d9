package analytics

import (
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// Chart defaults: twelve one-hour buckets.
const (
	DefaultBucketWidth = time.Hour
	DefaultBucketCount = 12
)

// bucketLabelLayout is the fixed-width hour:minute label format.
const bucketLabelLayout = "15:04"

// BucketOptions controls the time-series window.
// Zero values fall back to the defaults; a nil Location uses now's location.
type BucketOptions struct {
	Width    time.Duration
	Count    int
	Location *time.Location
}

func (o BucketOptions) withDefaults(now time.Time) BucketOptions {
	if o.Width <= 0 {
		o.Width = DefaultBucketWidth
	}
	if o.Count <= 0 {
		o.Count = DefaultBucketCount
	}
	if o.Location == nil {
		o.Location = now.Location()
	}
	return o
}

// BucketJobs builds the stacked job-status chart over [now-count*width, now).
//
// Jobs are assigned by submission instant and counted by their current
// status, so the chart is a submission histogram coloured by present state
// rather than a reconstruction of what was running at each moment. Jobs
// submitted outside the window, or with no submission time, are skipped.
// The result always has Count buckets, oldest first.
func BucketJobs(jobs []models.Job, now time.Time, opts BucketOptions) []models.ChartData {
	opts = opts.withDefaults(now)

	windowStart := now.Add(-time.Duration(opts.Count) * opts.Width)
	buckets := make([]models.ChartData, opts.Count)
	for i := range buckets {
		start := windowStart.Add(time.Duration(i) * opts.Width)
		buckets[i] = models.ChartData{
			Time:  start.In(opts.Location).Format(bucketLabelLayout),
			Start: start,
		}
	}

	for _, job := range jobs {
		if job.Submitted.IsZero() || !inWindow(job.Submitted.Time, windowStart, now) {
			continue
		}
		idx := int(job.Submitted.Sub(windowStart) / opts.Width)
		countStatus(&buckets[idx], job.Status)
	}

	return buckets
}

func countStatus(b *models.ChartData, status models.JobStatus) {
	switch status {
	case models.StatusCompleted:
		b.Completed++
	case models.StatusRunning:
		b.Running++
	case models.StatusQueued:
		b.Queued++
	case models.StatusError:
		b.Error++
	case models.StatusCancelled:
		b.Cancelled++
	default:
		b.Unknown++
	}
}
