package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/service"
)

// formatWait renders a wait time in seconds the way the KPI card does.
func formatWait(seconds float64) string {
	switch {
	case seconds <= 0:
		return "0s"
	case seconds < 60:
		return fmt.Sprintf("%.0fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.1fh", seconds/3600)
	}
}

// renderKPIs lays the five headline metrics out as cards.
func renderKPIs(t Theme, m models.Metrics) string {
	card := func(label, value string) string {
		return t.cardStyle().Render(t.hintStyle().Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total jobs", fmt.Sprintf("%d", m.TotalJobs)),
		card("Live jobs", fmt.Sprintf("%d", m.LiveJobs)),
		card("Avg wait", formatWait(m.AvgWaitTime)),
		card("Success rate", fmt.Sprintf("%.1f%%", m.SuccessRate)),
		card("Open sessions", fmt.Sprintf("%d", m.OpenSessions)),
	)
}

// renderBackends renders one line per backend.
func renderBackends(t Theme, backends []models.Backend) string {
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Backends") + "\n")
	for _, be := range backends {
		fmt.Fprintf(&b, "  %-18s %s  queue %4d  err %5.2f%%\n",
			be.Name,
			t.backendStatusStyle(be.Status).Render(fmt.Sprintf("%-11s", be.Status)),
			be.QueueDepth,
			be.ErrorRate*100)
	}
	return b.String()
}

// renderChart renders the status chart as stacked text bars, one per bucket.
func renderChart(t Theme, buckets []models.ChartData) string {
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Jobs by hour") + "\n")
	for _, c := range buckets {
		bar := t.jobStatusStyle(models.StatusCompleted).Render(strings.Repeat("█", c.Completed)) +
			t.jobStatusStyle(models.StatusRunning).Render(strings.Repeat("█", c.Running)) +
			t.jobStatusStyle(models.StatusQueued).Render(strings.Repeat("█", c.Queued)) +
			t.jobStatusStyle(models.StatusError).Render(strings.Repeat("█", c.Error)) +
			t.jobStatusStyle(models.StatusCancelled).Render(strings.Repeat("█", c.Cancelled+c.Unknown))
		fmt.Fprintf(&b, "  %s %s %d\n", c.Time, bar, c.Total())
	}
	return b.String()
}

// renderDaily renders today's completions per backend.
func renderDaily(t Theme, s models.DailyJobSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", t.titleStyle().Render("Completed today"), t.hintStyle().Render(fmt.Sprintf("(%d)", s.TotalCompleted)))
	for _, c := range s.CompletedByBackend {
		fmt.Fprintf(&b, "  %-18s %d\n", c.Name, c.Value)
	}
	return b.String()
}

// renderDashboard renders the full status view.
func renderDashboard(t Theme, d *service.Dashboard) string {
	var b strings.Builder
	header := fmt.Sprintf("Quantum Observer  [%s/%s]  updated %s", d.Mode, d.Source, d.LastUpdated.Local().Format("15:04:05"))
	b.WriteString(t.statusStyle().Bold(true).Render(header) + "\n")
	if d.Note != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Render(d.Note) + "\n")
	}
	b.WriteString(renderKPIs(t, d.Metrics) + "\n\n")
	b.WriteString(renderBackends(t, d.Backends) + "\n")
	b.WriteString(renderChart(t, d.ChartData) + "\n")
	b.WriteString(renderDaily(t, d.DailySummary))
	return b.String()
}

// renderJobTable renders a page of jobs.
func renderJobTable(t Theme, page *service.JobPage) string {
	if len(page.Jobs) == 0 {
		return "No jobs found\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-28s %-11s %-18s %-20s %s\n", "ID", "STATUS", "BACKEND", "SUBMITTED", "ELAPSED")
	b.WriteString(strings.Repeat("-", 88) + "\n")
	for _, job := range page.Jobs {
		submitted := "-"
		if !job.Submitted.IsZero() {
			submitted = job.Submitted.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(&b, "%-28s %s %-18s %-20s %.1fs\n",
			job.ID,
			t.jobStatusStyle(job.Status).Render(fmt.Sprintf("%-11s", job.Status)),
			job.Backend,
			submitted,
			job.ElapsedTime)
	}
	b.WriteString(t.hintStyle().Render(fmt.Sprintf("page %d/%d, %d jobs", page.Page, page.TotalPages, page.Total)) + "\n")
	return b.String()
}

// renderJob renders one job with its history, logs and results.
func renderJob(t Theme, job *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n", job.ID)
	fmt.Fprintf(&b, "  Status: %s\n", t.jobStatusStyle(job.Status).Render(string(job.Status)))
	fmt.Fprintf(&b, "  Backend: %s\n", job.Backend)
	fmt.Fprintf(&b, "  User: %s\n", job.User)
	if !job.Submitted.IsZero() {
		fmt.Fprintf(&b, "  Submitted: %s\n", job.Submitted.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "  Elapsed: %.1fs\n", job.ElapsedTime)
	fmt.Fprintf(&b, "  QPU: %.2fs\n", job.QPUSeconds)

	if len(job.StatusHistory) > 0 {
		b.WriteString("\nHistory:\n")
		for _, h := range job.StatusHistory {
			ts := "-"
			if !h.Timestamp.IsZero() {
				ts = h.Timestamp.Format(time.RFC3339)
			}
			fmt.Fprintf(&b, "  %-25s %s\n", ts, t.jobStatusStyle(h.Status).Render(string(h.Status)))
		}
	}

	if job.Logs != "" {
		fmt.Fprintf(&b, "\nLogs:\n  %s\n", job.Logs)
	}

	if len(job.Results) > 0 {
		keys := make([]string, 0, len(job.Results))
		for k := range job.Results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nResults:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, job.Results[k])
		}
	}
	return b.String()
}

// renderAnomalies renders an anomaly report.
func renderAnomalies(t Theme, r *models.AnomalyReport) string {
	var b strings.Builder
	if r.Summary != "" {
		b.WriteString(r.Summary + "\n")
	}
	if len(r.Anomalies) == 0 {
		b.WriteString(t.completedStyle().Render("✓ No anomalies detected") + "\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, a := range r.Anomalies {
		fmt.Fprintf(&b, "%s %s\n  %s\n",
			t.severityStyle(a.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.Severity))),
			a.JobID,
			a.AnomalyDescription)
	}
	return b.String()
}
