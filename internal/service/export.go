package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var csvHeader = []string{"id", "status", "backend", "submitted", "elapsed_time", "user", "qpu_seconds"}

// Export writes the current snapshot's jobs to w.
func (s *DashboardService) Export(ctx context.Context, mode Mode, format string, w io.Writer) error {
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	snap, err := s.Snapshot(ctx, mode)
	if err != nil {
		return err
	}
	return WriteJobs(w, format, snap.Jobs)
}

// ExportFilename names an export taken at t, e.g. quantum_jobs_20250314T153000Z.csv.
func ExportFilename(format string, t time.Time) string {
	return fmt.Sprintf("quantum_jobs_%s.%s", t.UTC().Format("20060102T150405Z"), strings.ToLower(format))
}

// WriteJobs encodes jobs as CSV or indented JSON.
func WriteJobs(w io.Writer, format string, jobs []models.Job) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return writeCSV(w, jobs)
	case FormatJSON:
		if jobs == nil {
			jobs = []models.Job{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jobs); err != nil {
			return fmt.Errorf("encode jobs: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeCSV(w io.Writer, jobs []models.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, job := range jobs {
		submitted := ""
		if !job.Submitted.IsZero() {
			submitted = job.Submitted.Format(time.RFC3339)
		}
		record := []string{
			job.ID,
			string(job.Status),
			job.Backend,
			submitted,
			strconv.FormatFloat(job.ElapsedTime, 'f', -1, 64),
			job.User,
			strconv.FormatFloat(job.QPUSeconds, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", job.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
