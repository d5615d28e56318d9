package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Warning:    lipgloss.Color("#FFAF00"), // amber
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status).Bold(true).Underline(true)
}

func (t Theme) cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.ProgressBg).
		Padding(0, 1).
		Width(20)
}

// jobStatusStyle colors a job status the way the dashboard badges do.
func (t Theme) jobStatusStyle(s models.JobStatus) lipgloss.Style {
	switch s {
	case models.StatusCompleted:
		return lipgloss.NewStyle().Foreground(t.Success)
	case models.StatusRunning:
		return lipgloss.NewStyle().Foreground(t.Status)
	case models.StatusQueued:
		return lipgloss.NewStyle().Foreground(t.Warning)
	case models.StatusError:
		return lipgloss.NewStyle().Foreground(t.Error)
	default:
		return lipgloss.NewStyle().Foreground(t.Hint)
	}
}

// backendStatusStyle colors a backend status.
func (t Theme) backendStatusStyle(s models.BackendStatus) lipgloss.Style {
	switch s {
	case models.BackendActive:
		return lipgloss.NewStyle().Foreground(t.Success)
	case models.BackendMaintenance:
		return lipgloss.NewStyle().Foreground(t.Warning)
	default:
		return lipgloss.NewStyle().Foreground(t.Error)
	}
}

// severityStyle colors an anomaly severity.
func (t Theme) severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "high":
		return t.errorStyle()
	case "medium":
		return lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(t.Hint)
	}
}
