package analytics

import (
	"strings"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// UnknownBackend labels jobs that carry no backend name.
const UnknownBackend = "UNKNOWN"

// SummarizeDay counts COMPLETED jobs submitted during ref's calendar day
// ([local midnight, +24h) in ref's location) and groups them by backend.
// Groups appear in the order their backend is first seen.
func SummarizeDay(jobs []models.Job, ref time.Time) models.DailyJobSummary {
	dayStart := startOfDay(ref)
	dayEnd := dayStart.Add(24 * time.Hour)

	summary := models.DailyJobSummary{
		Date:               dayStart,
		CompletedByBackend: []models.BackendCount{},
	}
	index := make(map[string]int)

	for _, job := range jobs {
		if job.Status != models.StatusCompleted || job.Submitted.IsZero() {
			continue
		}
		if !inWindow(job.Submitted.Time, dayStart, dayEnd) {
			continue
		}

		name := strings.TrimSpace(job.Backend)
		if name == "" {
			name = UnknownBackend
		}
		i, ok := index[name]
		if !ok {
			i = len(summary.CompletedByBackend)
			index[name] = i
			summary.CompletedByBackend = append(summary.CompletedByBackend, models.BackendCount{Name: name})
		}
		summary.CompletedByBackend[i].Value++
		summary.TotalCompleted++
	}

	return summary
}
