package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/tmc/langchaingo/llms"
)

const assistantSystemPrompt = `You are an AI assistant for the 'Quantum Observer' dashboard, a tool for monitoring quantum computing jobs.

Your goal is to be helpful and concise. Keep your answers short and to the point (2-3 sentences max).

The dashboard has the following features:
- KPI cards: 'Total Jobs', 'Live Jobs' (Running/Queued), 'Avg Wait Time', 'Success Rate' and 'Open Sessions'.
- Live jobs table: a paginated list of the most recent jobs; selecting a job shows its details. All jobs can be searched and filtered by backend and status.
- Backend health: the status of each quantum backend with qubit count, current queue depth and error rate.
- Daily summary: completed jobs per backend for the current day.
- Job status over time: job volume by status (Completed, Running, Queued, Error) over the last 12 hours.
- Job timeline: how long recent jobs waited in the queue and how long they ran.
- Demo mode and live mode: demo mode shows generated data, live mode reads real data from the IBM Quantum API. Data refreshes automatically.
- Anomaly detection: AI analysis of recent jobs for unusual behaviour.
- Export: the job list can be downloaded as CSV or JSON.

Answer the user's question based on this information.`

const anomalySystemPrompt = `You are an expert AI system administrator for a quantum computing platform. Your task is to analyze job data to detect and explain anomalies in a way that is clear for both students and expert researchers.

Analyze the provided job data for anomalies like:
- Unusually long queue times.
- Unexpected or frequent failures.
- Significant deviations from typical execution times.
- Inconsistencies in job status history (e.g., negative queue times). Timeline rows list these under "anomalies".

Prioritize anomalies that indicate system performance issues or potential hardware failures.

For each anomaly, write an 'anomalyDescription' explaining what the anomaly is, why it is a concern and what it could indicate.

Respond with ONLY a JSON object of this shape, no prose and no code fences:
{"anomalies": [{"jobId": "...", "anomalyDescription": "...", "severity": "low|medium|high"}], "summary": "..."}

The summary gives the number of anomalies found and a high-level overview of the system's health.`

// AskDashboard answers a question about the dashboard.
func (m *Model) AskDashboard(ctx context.Context, query string) (Generation, error) {
	return m.GenerateWithSystem(ctx, assistantSystemPrompt, "User Query: "+query)
}

// AnalyzeAnomalies asks the model to flag anomalous jobs in jobData, a JSON
// document describing the jobs and their timelines.
func (m *Model) AnalyzeAnomalies(ctx context.Context, jobData string) (models.AnomalyReport, Generation, error) {
	gen, err := m.GenerateWithSystem(ctx, anomalySystemPrompt, "Job data:\n"+jobData, llms.WithJSONMode())
	if err != nil {
		return models.AnomalyReport{}, gen, err
	}
	report, err := ParseAnomalyReport(gen.Text)
	if err != nil {
		return models.AnomalyReport{}, gen, err
	}
	return report, gen, nil
}

// ParseAnomalyReport extracts the JSON report from a model reply. Code fences
// and surrounding prose are ignored; severities are normalized.
func ParseAnomalyReport(text string) (models.AnomalyReport, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return models.AnomalyReport{}, fmt.Errorf("parse anomaly report: no JSON object in response")
	}

	var report models.AnomalyReport
	if err := json.Unmarshal([]byte(text[start:end+1]), &report); err != nil {
		return models.AnomalyReport{}, fmt.Errorf("parse anomaly report: %w", err)
	}

	anomalies := make([]models.Anomaly, 0, len(report.Anomalies))
	for _, a := range report.Anomalies {
		if strings.TrimSpace(a.JobID) == "" {
			continue
		}
		a.Severity = NormalizeSeverity(a.Severity)
		anomalies = append(anomalies, a)
	}
	report.Anomalies = anomalies
	return report, nil
}

// Severity levels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// NormalizeSeverity maps free-form severities onto low, medium or high.
// Unrecognized values become medium.
func NormalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minor", "info", "informational":
		return SeverityLow
	case "high", "critical", "severe", "major":
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
