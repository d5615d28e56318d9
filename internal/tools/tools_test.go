package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/llm"
	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/lvs170603/Quantum-Observer/internal/source"
	"github.com/lvs170603/Quantum-Observer/internal/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var fixedNow = time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

type cannedLLM struct{ reply string }

func (c cannedLLM) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: c.reply}}}, nil
}

func (c cannedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

// startSession registers all tools on a fresh server and connects a client
// over in-memory transports.
func startSession(t *testing.T, model *llm.Model) (*mcp.ClientSession, context.Context) {
	t.Helper()
	logger := testLogger()
	clock := func() time.Time { return fixedNow }

	dash := service.NewDashboardService(service.DashboardOptions{
		Demo:   source.NewMockSource(source.MockOptions{Seed: 11, Jobs: 25, Now: clock}),
		Now:    clock,
		Logger: logger,
	})
	deps := &tools.Dependencies{
		Dashboard: dash,
		Assistant: service.NewAssistantService(model, dash, logger),
		Logger:    logger,
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "test-observer", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, deps, &config.Config{DemoMode: true, TimelineLimit: 10})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { _ = session.Close() })
	return session, ctx
}

func call(t *testing.T, ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return text.Text, result.IsError
}

func toolNames(t *testing.T, ctx context.Context, session *mcp.ClientSession) []string {
	t.Helper()
	result, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestRegisterAll(t *testing.T) {
	t.Run("without assistant", func(t *testing.T) {
		session, ctx := startSession(t, nil)
		assert.ElementsMatch(t,
			[]string{"ping", "get_dashboard", "list_jobs", "get_job", "list_backends", "get_timeline"},
			toolNames(t, ctx, session))
	})

	t.Run("with assistant", func(t *testing.T) {
		session, ctx := startSession(t, llm.NewModelWith(cannedLLM{reply: "ok"}, "fake"))
		names := toolNames(t, ctx, session)
		assert.Contains(t, names, "ask_assistant")
		assert.Contains(t, names, "detect_anomalies")
	})
}

func TestPingTool(t *testing.T) {
	session, ctx := startSession(t, nil)

	text, isErr := call(t, ctx, session, "ping", map[string]any{})
	assert.Equal(t, "pong", text)
	assert.False(t, isErr)

	text, _ = call(t, ctx, session, "ping", map[string]any{"echo": "hello world"})
	assert.Equal(t, "hello world", text)

	text, _ = call(t, ctx, session, "ping", map[string]any{"status": true})
	assert.JSONEq(t, `{"mode": "demo", "assistant": false}`, text)
}

func TestDashboardTools(t *testing.T) {
	session, ctx := startSession(t, nil)

	t.Run("get_dashboard", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "get_dashboard", map[string]any{"demo": true})
		require.False(t, isErr, text)

		var out struct {
			Mode      string             `json:"mode"`
			Metrics   models.Metrics     `json:"metrics"`
			ChartData []models.ChartData `json:"chartData"`
			Backends  int                `json:"backends"`
		}
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, "demo", out.Mode)
		assert.Equal(t, 26, out.Metrics.TotalJobs)
		assert.Len(t, out.ChartData, 12)
		assert.Equal(t, 6, out.Backends)
	})

	t.Run("list_backends", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "list_backends", map[string]any{})
		require.False(t, isErr)
		var backends []models.Backend
		require.NoError(t, json.Unmarshal([]byte(text), &backends))
		assert.Len(t, backends, 6)
	})

	t.Run("get_timeline", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "get_timeline", map[string]any{"limit": 4})
		require.False(t, isErr)
		var rows []models.GanttRow
		require.NoError(t, json.Unmarshal([]byte(text), &rows))
		assert.Len(t, rows, 4)

		_, isErr = call(t, ctx, session, "get_timeline", map[string]any{"limit": 500})
		assert.True(t, isErr)
	})
}

func TestJobTools(t *testing.T) {
	session, ctx := startSession(t, nil)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
		check   func(t *testing.T, page service.JobPage)
	}{
		{
			name: "first page",
			args: map[string]any{"page_size": 5},
			check: func(t *testing.T, page service.JobPage) {
				assert.Len(t, page.Jobs, 5)
				assert.Equal(t, 26, page.Total)
				assert.Equal(t, 6, page.TotalPages)
			},
		},
		{
			name: "search anomaly",
			args: map[string]any{"search": "ANOMALY"},
			check: func(t *testing.T, page service.JobPage) {
				require.Len(t, page.Jobs, 1)
				assert.Equal(t, source.AnomalyJobID, page.Jobs[0].ID)
			},
		},
		{
			name: "search matches user",
			args: map[string]any{"search": "faythe"},
			check: func(t *testing.T, page service.JobPage) {
				require.Len(t, page.Jobs, 1)
				assert.Equal(t, "Faythe", page.Jobs[0].User)
			},
		},
		{
			name: "search does not match backend",
			args: map[string]any{"search": "ibm_"},
			check: func(t *testing.T, page service.JobPage) {
				assert.Zero(t, page.Total)
			},
		},
		{
			name: "status filter",
			args: map[string]any{"status": "completed", "page_size": 100},
			check: func(t *testing.T, page service.JobPage) {
				for _, job := range page.Jobs {
					assert.Equal(t, models.StatusCompleted, job.Status)
				}
			},
		},
		{name: "bad status", args: map[string]any{"status": "exploded"}, wantErr: true},
		{name: "bad page size", args: map[string]any{"page_size": 1000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, ctx, session, "list_jobs", tt.args)
			require.Equal(t, tt.wantErr, isErr, text)
			if tt.wantErr {
				return
			}
			var page service.JobPage
			require.NoError(t, json.Unmarshal([]byte(text), &page))
			tt.check(t, page)
		})
	}

	t.Run("get_job", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "get_job", map[string]any{"id": source.AnomalyJobID})
		require.False(t, isErr, text)
		var job models.Job
		require.NoError(t, json.Unmarshal([]byte(text), &job))
		assert.Equal(t, source.AnomalyJobID, job.ID)
		assert.Len(t, job.StatusHistory, 3)
	})

	t.Run("get_job not found", func(t *testing.T) {
		text, isErr := call(t, ctx, session, "get_job", map[string]any{"id": "missing"})
		assert.True(t, isErr)
		assert.Contains(t, text, "list_jobs")
	})
}

func TestAssistantTools(t *testing.T) {
	reply := `{"anomalies":[{"jobId":"c_anomaly_long_queue","anomalyDescription":"Queued for nearly two hours.","severity":"CRITICAL"}],"summary":"One job waited far longer than the rest."}`
	session, ctx := startSession(t, llm.NewModelWith(cannedLLM{reply: reply}, "fake"))

	text, isErr := call(t, ctx, session, "detect_anomalies", map[string]any{})
	require.False(t, isErr, text)
	var report models.AnomalyReport
	require.NoError(t, json.Unmarshal([]byte(text), &report))
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, llm.SeverityHigh, report.Anomalies[0].Severity)

	_, isErr = call(t, ctx, session, "ask_assistant", map[string]any{"query": "   "})
	assert.True(t, isErr)
}
