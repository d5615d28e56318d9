package analytics

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

func ts(t time.Time) models.Timestamp { return models.NewTimestamp(t) }

func entry(status models.JobStatus, at time.Time) models.StatusEntry {
	return models.StatusEntry{Status: status, Timestamp: ts(at)}
}

// threeJobScenario is job A queued, B running after 60s, C completed after
// running from +30s to +90s, all submitted at the same instant.
func threeJobScenario(submitted time.Time) []models.Job {
	return []models.Job{
		{
			ID: "job-a", Status: models.StatusQueued, Backend: "ibm_kyoto", Submitted: ts(submitted),
			StatusHistory: []models.StatusEntry{entry(models.StatusQueued, submitted)},
		},
		{
			ID: "job-b", Status: models.StatusRunning, Backend: "ibm_osaka", Submitted: ts(submitted),
			StatusHistory: []models.StatusEntry{
				entry(models.StatusQueued, submitted),
				entry(models.StatusRunning, submitted.Add(60*time.Second)),
			},
		},
		{
			ID: "job-c", Status: models.StatusCompleted, Backend: "ibm_kyoto", Submitted: ts(submitted),
			StatusHistory: []models.StatusEntry{
				entry(models.StatusQueued, submitted),
				entry(models.StatusRunning, submitted.Add(30*time.Second)),
				entry(models.StatusCompleted, submitted.Add(90*time.Second)),
			},
		},
	}
}

// randomJobs builds a messy snapshot: random statuses, some missing or
// out-of-order timestamps, some outside every window.
func randomJobs(seed uint64, n int, now time.Time) []models.Job {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	jobs := make([]models.Job, 0, n)
	for i := range n {
		status := models.AllStatuses[r.IntN(len(models.AllStatuses))]
		submitted := now.Add(-time.Duration(r.IntN(30*60)) * time.Minute)
		job := models.Job{
			ID:        fmt.Sprintf("rand-%d", i),
			Status:    status,
			Backend:   []string{"ibm_kyoto", "ibm_osaka", "", "ghost"}[r.IntN(4)],
			Submitted: ts(submitted),
		}
		if r.IntN(10) == 0 {
			job.Submitted = models.Timestamp{}
		}
		// Offsets may be negative to simulate clock skew.
		running := submitted.Add(time.Duration(r.IntN(600)-120) * time.Second)
		ended := running.Add(time.Duration(r.IntN(600)-120) * time.Second)
		job.StatusHistory = append(job.StatusHistory, entry(models.StatusQueued, submitted))
		if r.IntN(3) > 0 {
			job.StatusHistory = append(job.StatusHistory, entry(models.StatusRunning, running))
		}
		if status.IsTerminal() && r.IntN(2) == 0 {
			job.StatusHistory = append(job.StatusHistory, entry(status, ended))
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func TestComputeMetricsScenario(t *testing.T) {
	m := ComputeMetrics(threeJobScenario(baseTime.Add(-time.Hour)))

	assert.Equal(t, 3, m.TotalJobs)
	assert.Equal(t, 2, m.LiveJobs)
	assert.InDelta(t, 100.0, m.SuccessRate, 1e-9)
	assert.InDelta(t, 45.0, m.AvgWaitTime, 1e-9, "mean of 60s and 30s; job A never ran")
	assert.Zero(t, m.OpenSessions)
}

func TestComputeMetricsEmpty(t *testing.T) {
	assert.Equal(t, models.Metrics{}, ComputeMetrics(nil))
	assert.Equal(t, models.Metrics{}, ComputeMetrics([]models.Job{}))
}

func TestComputeMetricsSuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.JobStatus
		want     float64
	}{
		{"no attempts", []models.JobStatus{models.StatusQueued, models.StatusRunning, models.StatusCancelled}, 0},
		{"all failed", []models.JobStatus{models.StatusError, models.StatusError}, 0},
		{"mixed", []models.JobStatus{models.StatusCompleted, models.StatusCompleted, models.StatusCompleted, models.StatusError}, 75},
		{"cancelled ignored", []models.JobStatus{models.StatusCompleted, models.StatusCancelled, models.StatusUnknown}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := make([]models.Job, len(tt.statuses))
			for i, s := range tt.statuses {
				jobs[i] = models.Job{ID: fmt.Sprint(i), Status: s}
			}
			assert.InDelta(t, tt.want, ComputeMetrics(jobs).SuccessRate, 1e-9)
		})
	}
}

func TestComputeMetricsClampsSkewedWait(t *testing.T) {
	jobs := []models.Job{
		{
			ID: "skewed", Status: models.StatusRunning, Submitted: ts(baseTime),
			StatusHistory: []models.StatusEntry{entry(models.StatusRunning, baseTime.Add(-5*time.Minute))},
		},
		{
			ID: "normal", Status: models.StatusRunning, Submitted: ts(baseTime),
			StatusHistory: []models.StatusEntry{entry(models.StatusRunning, baseTime.Add(100*time.Second))},
		},
		{
			ID: "no-submit", Status: models.StatusRunning,
			StatusHistory: []models.StatusEntry{entry(models.StatusRunning, baseTime)},
		},
	}

	m := ComputeMetrics(jobs)
	assert.InDelta(t, 50.0, m.AvgWaitTime, 1e-9, "skewed job counts as zero wait, missing submission is excluded")
}

func TestBucketJobsWindow(t *testing.T) {
	now := baseTime
	jobs := []models.Job{
		{ID: "oldest-edge", Status: models.StatusCompleted, Submitted: ts(now.Add(-12 * time.Hour))},
		{ID: "too-old", Status: models.StatusCompleted, Submitted: ts(now.Add(-12*time.Hour - time.Nanosecond))},
		{ID: "last", Status: models.StatusRunning, Submitted: ts(now.Add(-time.Nanosecond))},
		{ID: "at-now", Status: models.StatusQueued, Submitted: ts(now)},
		{ID: "future", Status: models.StatusQueued, Submitted: ts(now.Add(time.Minute))},
		{ID: "mid", Status: models.StatusError, Submitted: ts(now.Add(-90 * time.Minute))},
		{ID: "missing", Status: models.StatusError},
		{ID: "odd", Status: models.StatusUnknown, Submitted: ts(now.Add(-30 * time.Minute))},
	}

	buckets := BucketJobs(jobs, now, BucketOptions{})
	require.Len(t, buckets, DefaultBucketCount)

	assert.Equal(t, "03:30", buckets[0].Time)
	assert.Equal(t, "14:30", buckets[11].Time)
	assert.Equal(t, now.Add(-12*time.Hour), buckets[0].Start)

	assert.Equal(t, 1, buckets[0].Completed)
	assert.Equal(t, 1, buckets[10].Error)
	assert.Equal(t, 1, buckets[11].Running)
	assert.Equal(t, 1, buckets[11].Unknown)

	total := 0
	for _, b := range buckets {
		total += b.Total()
	}
	assert.Equal(t, 4, total)
}

func TestBucketJobsLabelsUseLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	buckets := BucketJobs(nil, baseTime, BucketOptions{Width: 30 * time.Minute, Count: 4, Location: loc})

	require.Len(t, buckets, 4)
	labels := []string{buckets[0].Time, buckets[1].Time, buckets[2].Time, buckets[3].Time}
	assert.Equal(t, []string{"19:00", "19:30", "20:00", "20:30"}, labels)
}

func TestBucketJobsEmpty(t *testing.T) {
	buckets := BucketJobs(nil, baseTime, BucketOptions{Count: 5})
	require.Len(t, buckets, 5)
	for _, b := range buckets {
		assert.Zero(t, b.Total())
	}
}

func TestSummarizeDay(t *testing.T) {
	ref := baseTime
	midnight := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	jobs := []models.Job{
		{ID: "1", Status: models.StatusCompleted, Backend: "ibm_osaka", Submitted: ts(midnight)},
		{ID: "2", Status: models.StatusCompleted, Backend: "ibm_kyoto", Submitted: ts(ref.Add(-time.Hour))},
		{ID: "3", Status: models.StatusCompleted, Backend: "ibm_osaka", Submitted: ts(ref.Add(2 * time.Hour))},
		{ID: "4", Status: models.StatusCompleted, Backend: "", Submitted: ts(ref)},
		{ID: "yesterday", Status: models.StatusCompleted, Backend: "ibm_kyoto", Submitted: ts(midnight.Add(-time.Second))},
		{ID: "tomorrow", Status: models.StatusCompleted, Backend: "ibm_kyoto", Submitted: ts(midnight.Add(24 * time.Hour))},
		{ID: "failed", Status: models.StatusError, Backend: "ibm_kyoto", Submitted: ts(ref)},
		{ID: "no-time", Status: models.StatusCompleted, Backend: "ibm_kyoto"},
	}

	s := SummarizeDay(jobs, ref)

	assert.Equal(t, midnight, s.Date)
	assert.Equal(t, 4, s.TotalCompleted)
	assert.Equal(t, []models.BackendCount{
		{Name: "ibm_osaka", Value: 2},
		{Name: "ibm_kyoto", Value: 1},
		{Name: UnknownBackend, Value: 1},
	}, s.CompletedByBackend)
}

func TestSummarizeDayLocalBoundaries(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ref := time.Date(2025, 3, 14, 1, 0, 0, 0, loc) // 06:00 UTC
	jobs := []models.Job{
		// 03:00 UTC is 22:00 the previous local day.
		{ID: "prev-local-day", Status: models.StatusCompleted, Backend: "b", Submitted: ts(time.Date(2025, 3, 14, 3, 0, 0, 0, time.UTC))},
		{ID: "same-local-day", Status: models.StatusCompleted, Backend: "b", Submitted: ts(time.Date(2025, 3, 14, 5, 30, 0, 0, time.UTC))},
	}

	s := SummarizeDay(jobs, ref)
	assert.Equal(t, 1, s.TotalCompleted)
	assert.True(t, s.Date.Equal(time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC)))
}

func TestSummarizeDayEmpty(t *testing.T) {
	s := SummarizeDay(nil, baseTime)
	assert.Zero(t, s.TotalCompleted)
	require.NotNil(t, s.CompletedByBackend)
	assert.Empty(t, s.CompletedByBackend)
}

func TestBuildTimelineScenario(t *testing.T) {
	submitted := baseTime.Add(-10 * time.Minute)
	now := baseTime
	rows := BuildTimeline(threeJobScenario(submitted), now, TimelineOptions{PreserveOrder: true})

	require.Len(t, rows, 3)

	assert.Equal(t, "job-a", rows[0].JobID)
	assert.InDelta(t, 600.0, rows[0].QueueDuration, 1e-9, "unstarted job queues until now")
	assert.Zero(t, rows[0].RunDuration)

	assert.InDelta(t, 60.0, rows[1].QueueDuration, 1e-9)
	assert.InDelta(t, 540.0, rows[1].RunDuration, 1e-9, "running job runs until now")

	assert.InDelta(t, 30.0, rows[2].QueueDuration, 1e-9)
	assert.InDelta(t, 60.0, rows[2].RunDuration, 1e-9)

	for _, r := range rows {
		assert.Empty(t, r.Anomalies)
	}
}

func TestBuildTimelineClampsMalformedHistory(t *testing.T) {
	now := baseTime
	jobs := []models.Job{
		{
			ID: "started-early", Status: models.StatusRunning, Submitted: ts(now.Add(-time.Minute)),
			StatusHistory: []models.StatusEntry{entry(models.StatusRunning, now.Add(-2*time.Minute))},
		},
		{
			ID: "ended-early", Status: models.StatusCompleted, Submitted: ts(now.Add(-10 * time.Minute)),
			StatusHistory: []models.StatusEntry{
				entry(models.StatusRunning, now.Add(-5*time.Minute)),
				entry(models.StatusCompleted, now.Add(-6*time.Minute)),
			},
		},
		{ID: "no-submit", Status: models.StatusQueued},
	}

	rows := BuildTimeline(jobs, now, TimelineOptions{PreserveOrder: true})
	require.Len(t, rows, 3)

	assert.Zero(t, rows[0].QueueDuration)
	assert.InDelta(t, 120.0, rows[0].RunDuration, 1e-9)
	assert.Equal(t, []string{models.AnomalyQueueClamped}, rows[0].Anomalies)

	assert.InDelta(t, 300.0, rows[1].QueueDuration, 1e-9)
	assert.Zero(t, rows[1].RunDuration)
	assert.Equal(t, []string{models.AnomalyRunClamped}, rows[1].Anomalies)

	assert.Zero(t, rows[2].QueueDuration)
	assert.Zero(t, rows[2].RunDuration)
	assert.Equal(t, []string{models.AnomalyMissingSubmitted}, rows[2].Anomalies)
}

func TestBuildTimelineTerminalWithoutRunning(t *testing.T) {
	submitted := baseTime.Add(-4 * time.Hour)
	tests := []struct {
		name   string
		status models.JobStatus
	}{
		{"completed", models.StatusCompleted},
		{"error", models.StatusError},
		{"cancelled from queue", models.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := []models.Job{{
				ID: "job-x", Status: tt.status, Submitted: ts(submitted),
				StatusHistory: []models.StatusEntry{
					entry(models.StatusQueued, submitted),
					entry(tt.status, submitted.Add(3*time.Minute)),
				},
			}}

			rows := BuildTimeline(jobs, baseTime, TimelineOptions{})
			require.Len(t, rows, 1)
			assert.InDelta(t, 180.0, rows[0].QueueDuration, 1e-9, "queue ends at the terminal entry")
			assert.Zero(t, rows[0].RunDuration)
			assert.Empty(t, rows[0].Anomalies)

			later := BuildTimeline(jobs, baseTime.Add(time.Hour), TimelineOptions{})
			assert.Equal(t, rows, later, "a finished job's bars do not grow")
		})
	}
}

func TestBuildTimelineSortsAndCaps(t *testing.T) {
	now := baseTime
	var jobs []models.Job
	for i := range 15 {
		// Submitted in reverse order: job-0 is the newest.
		jobs = append(jobs, models.Job{
			ID:        fmt.Sprintf("job-%02d", i),
			Status:    models.StatusQueued,
			Submitted: ts(now.Add(-time.Duration(i+1) * time.Minute)),
		})
	}

	rows := BuildTimeline(jobs, now, TimelineOptions{})
	require.Len(t, rows, DefaultTimelineLimit)
	assert.Equal(t, "job-09", rows[0].JobID)
	assert.Equal(t, "job-00", rows[len(rows)-1].JobID)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Submitted.Before(rows[i-1].Submitted.Time), "rows must be chronological")
	}

	assert.Equal(t, "job-14", jobs[14].ID, "input must not be reordered")

	all := BuildTimeline(jobs, now, TimelineOptions{Limit: -1})
	assert.Len(t, all, 15)

	firstThree := BuildTimeline(jobs, now, TimelineOptions{Limit: 3, PreserveOrder: true})
	require.Len(t, firstThree, 3)
	assert.Equal(t, "job-00", firstThree[0].JobID)
}

func TestBuildTimelineEmpty(t *testing.T) {
	rows := BuildTimeline(nil, baseTime, TimelineOptions{})
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Job c1a2b...", displayName("c1a2b3c4dq1"))
	assert.Equal(t, "Job abc", displayName("abc"))
}

func TestProperties(t *testing.T) {
	now := baseTime
	for seed := uint64(1); seed <= 25; seed++ {
		jobs := randomJobs(seed, 80, now)

		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			m := ComputeMetrics(jobs)
			notLive := 0
			inWindowCount := 0
			for _, j := range jobs {
				if !j.Status.IsLive() {
					notLive++
				}
				if !j.Submitted.IsZero() && inWindow(j.Submitted.Time, now.Add(-12*time.Hour), now) {
					inWindowCount++
				}
			}
			assert.Equal(t, m.TotalJobs, m.LiveJobs+notLive)
			assert.GreaterOrEqual(t, m.SuccessRate, 0.0)
			assert.LessOrEqual(t, m.SuccessRate, 100.0)
			assert.GreaterOrEqual(t, m.AvgWaitTime, 0.0)

			buckets := BucketJobs(jobs, now, BucketOptions{})
			bucketTotal := 0
			for _, b := range buckets {
				bucketTotal += b.Total()
			}
			assert.LessOrEqual(t, bucketTotal, m.TotalJobs)
			assert.Equal(t, inWindowCount, bucketTotal)

			summary := SummarizeDay(jobs, now)
			byBackend := 0
			for _, c := range summary.CompletedByBackend {
				byBackend += c.Value
			}
			assert.Equal(t, summary.TotalCompleted, byBackend)

			rows := BuildTimeline(jobs, now, TimelineOptions{Limit: -1})
			assert.Len(t, rows, len(jobs))
			for _, r := range rows {
				assert.GreaterOrEqual(t, r.QueueDuration, 0.0, r.JobID)
				assert.GreaterOrEqual(t, r.RunDuration, 0.0, r.JobID)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	now := baseTime
	jobs := randomJobs(42, 60, now)

	assert.Equal(t, ComputeMetrics(jobs), ComputeMetrics(jobs))
	assert.Equal(t, BucketJobs(jobs, now, BucketOptions{}), BucketJobs(jobs, now, BucketOptions{}))
	assert.Equal(t, SummarizeDay(jobs, now), SummarizeDay(jobs, now))
	assert.Equal(t, BuildTimeline(jobs, now, TimelineOptions{}), BuildTimeline(jobs, now, TimelineOptions{}))
}
