package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// DefaultPageSize is the jobs table page size.
const DefaultPageSize = 10

// JobFilter selects and paginates jobs. Empty fields match everything.
type JobFilter struct {
	Backend string
	Status  models.JobStatus
	// Search matches a case-insensitive substring of the job ID or user.
	Search   string
	Page     int
	PageSize int
}

// JobPage is one page of filtered jobs.
type JobPage struct {
	Jobs       []models.Job `json:"jobs"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

// ListJobs filters the current snapshot's jobs and returns one page.
func (s *DashboardService) ListJobs(ctx context.Context, mode Mode, filter JobFilter) (*JobPage, error) {
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	page := FilterJobs(snap.Jobs, filter)
	return &page, nil
}

// GetJob returns the job with the given ID.
func (s *DashboardService) GetJob(ctx context.Context, mode Mode, id string) (*models.Job, error) {
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return nil, err
	}
	for i := range snap.Jobs {
		if snap.Jobs[i].ID == id {
			job := snap.Jobs[i]
			return &job, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// FilterJobs applies filter to jobs, keeping snapshot order. The page is
// clamped to [1, TotalPages]; an empty result reports one page.
func FilterJobs(jobs []models.Job, filter JobFilter) JobPage {
	size := filter.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Backend != "" && job.Backend != filter.Backend {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(job.ID), search) &&
			!strings.Contains(strings.ToLower(job.User), search) {
			continue
		}
		matched = append(matched, job)
	}

	totalPages := max((len(matched)+size-1)/size, 1)
	page := min(max(filter.Page, 1), totalPages)

	lo := min((page-1)*size, len(matched))
	hi := min(lo+size, len(matched))

	return JobPage{
		Jobs:       matched[lo:hi],
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}
