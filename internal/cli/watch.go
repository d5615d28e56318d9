package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/lvs170603/Quantum-Observer/internal/client"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// defaultPollInterval matches the dashboard's auto-refresh.
const defaultPollInterval = 15 * time.Second

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard that refreshes every 15 seconds",
	Long: `Show the dashboard and keep it up to date.

Keys: r refreshes now (bypassing the cache), q or Ctrl+C quits.
When stdout is not a terminal the dashboard is printed once.

Examples:
  observer watch
  observer watch --demo=false --interval 30s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", defaultPollInterval, "poll interval")
}

// tickMsg triggers a poll. Ticks from an older generation are dropped so a
// manual refresh does not start a second poll loop.
type tickMsg struct{ gen int }

// dashboardMsg carries the fetched dashboard.
type dashboardMsg struct {
	dashboard *service.Dashboard
	err       error
}

// watchModel is the bubbletea model for the live dashboard.
type watchModel struct {
	client    *client.Client
	demo      *bool
	interval  time.Duration
	dashboard *service.Dashboard
	progress  progress.Model
	theme     Theme
	gen       int
	loading   bool
	quitting  bool
	err       error
}

func newWatchModel(c *client.Client, demo *bool, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return watchModel{
		client:   c,
		demo:     demo,
		interval: interval,
		progress: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(40),
		),
		theme:   defaultTheme,
		loading: true,
	}
}

// Init returns the initial command (first fetch).
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(false),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetch(true)
		}

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = true
		return m, m.fetch(false)

	case dashboardMsg:
		m.loading = false
		m.gen++
		if msg.err != nil {
			// Keep showing the last good dashboard and retry on the next tick.
			m.err = msg.err
			return m, tickCmd(m.interval, m.gen)
		}
		m.err = nil
		m.dashboard = msg.dashboard
		return m, tea.Batch(
			m.progress.SetPercent(msg.dashboard.Metrics.SuccessRate/100),
			tickCmd(m.interval, m.gen),
		)

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m watchModel) renderContent() string {
	if m.quitting {
		return ""
	}
	if m.dashboard == nil {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("✗ %s", m.err)) + "\n"
		}
		return "Loading dashboard...\n"
	}

	out := renderDashboard(m.theme, m.dashboard)
	out += fmt.Sprintf("\nSuccess rate %s\n", m.progress.View())

	status := fmt.Sprintf("refreshing every %s", m.interval)
	if m.loading {
		status = "refreshing..."
	}
	if m.err != nil {
		out += m.theme.errorStyle().Render(fmt.Sprintf("✗ last refresh failed: %s", m.err)) + "\n"
	}
	out += m.theme.hintStyle().Render(status+"  r refresh, q quit") + "\n"
	return out
}

// fetch loads the dashboard in a command so Update never blocks.
func (m watchModel) fetch(refresh bool) tea.Cmd {
	c, demo := m.client, m.demo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		load := c.Dashboard
		if refresh {
			load = c.Refresh
		}
		d, err := load(ctx, demo)
		return dashboardMsg{dashboard: d, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	demo := demoFlag(cmd)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		d, err := apiClient.Dashboard(context.Background(), demo)
		if err != nil {
			return fmt.Errorf("get dashboard: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderDashboard(defaultTheme, d))
		return nil
	}

	p := tea.NewProgram(newWatchModel(apiClient, demo, watchInterval))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}
	return nil
}
