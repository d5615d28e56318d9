package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"QO_SERVER_PORT", "QO_DEMO_MODE", "QISKIT_API_KEY", "QO_CACHE_TTL", "QO_LLM_PROVIDER", "QO_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "9002", cfg.ServerPort)
	assert.True(t, cfg.DemoMode)
	assert.False(t, cfg.LiveEnabled())
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 12, cfg.ChartBuckets)
	assert.Equal(t, time.Hour, cfg.ChartBucketWidth)
	assert.Equal(t, 10, cfg.TimelineLimit)
	assert.Equal(t, ProviderNone, cfg.LLMProvider)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QO_SERVER_PORT", "8181")
	t.Setenv("QO_DEMO_MODE", "false")
	t.Setenv("QISKIT_API_KEY", "secret")
	t.Setenv("QO_API_BASE_URL", "https://example.test/v2/")
	t.Setenv("QO_CACHE_TTL", "5m")
	t.Setenv("QO_CHART_BUCKETS", "24")
	t.Setenv("QO_MOCK_SEED", "7")
	t.Setenv("QO_LLM_PROVIDER", "OpenAI")
	t.Setenv("QO_LOG_LEVEL", "warning")

	cfg := Load()

	assert.Equal(t, "8181", cfg.ServerPort)
	assert.False(t, cfg.DemoMode)
	assert.True(t, cfg.LiveEnabled())
	assert.Equal(t, "https://example.test/v2", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 24, cfg.ChartBuckets)
	assert.Equal(t, uint64(7), cfg.MockSeed)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("QO_CACHE_TTL", "soon")
	t.Setenv("QO_CHART_BUCKETS", "many")
	t.Setenv("QO_DEMO_MODE", "maybe")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 12, cfg.ChartBuckets)
	assert.True(t, cfg.DemoMode)
}

func TestLoadClampsChartWindow(t *testing.T) {
	tests := []struct {
		name        string
		buckets     string
		width       string
		wantBuckets int
		wantWidth   time.Duration
	}{
		{"within bounds", "24", "30m", 24, 30 * time.Minute},
		{"too many buckets", "1000000000", "1m", maxChartBuckets, time.Minute},
		{"window too wide", "100", "8760h", 100, maxChartWindow / 100},
		{"overflowing product", "720", "2562047h", maxChartBuckets, maxChartWindow / maxChartBuckets},
		{"negative buckets", "-3", "1h", 12, time.Hour},
		{"negative width", "12", "-1h", 12, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QO_CHART_BUCKETS", tt.buckets)
			t.Setenv("QO_CHART_BUCKET_WIDTH", tt.width)

			cfg := Load()

			assert.Equal(t, tt.wantBuckets, cfg.ChartBuckets)
			assert.Equal(t, tt.wantWidth, cfg.ChartBucketWidth)
			assert.LessOrEqual(t, time.Duration(cfg.ChartBuckets)*cfg.ChartBucketWidth, maxChartWindow)
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("snapshot fetched", "source", "mock")

	assert.Contains(t, stderr.String(), "snapshot fetched")
	assert.Contains(t, file.String(), `"source":"mock"`)
	assert.NotContains(t, stderr.String(), "hidden")
}
