// Package config loads Quantum Observer settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers.
const (
	ProviderNone      = "none"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server and client
	ServerPort    string
	ServerURL     string
	ClientTimeout time.Duration

	// Default data mode when a request does not choose one
	DemoMode bool

	// Live job-scheduling API
	APIKey      string
	APIBaseURL  string
	APITimeout  time.Duration
	APIJobLimit int

	// Mock / replay data
	SnapshotFile string
	MockSeed     uint64
	MockJobs     int

	// Snapshot cache
	CacheTTL      time.Duration
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Analytics windows
	ChartBuckets     int
	ChartBucketWidth time.Duration
	TimelineLimit    int

	// AI assistant
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Tracing
	OTelExporter string
}

// Load reads configuration from environment variables.
func Load() Config {
	provider := strings.ToLower(getEnv("QO_LLM_PROVIDER", ProviderNone))
	cfg := Config{
		ServerPort:    getEnv("QO_SERVER_PORT", "9002"),
		ServerURL:     getEnv("QO_SERVER_URL", "http://localhost:9002"),
		ClientTimeout: getDuration("QO_CLIENT_TIMEOUT", 30*time.Second),

		DemoMode: getBool("QO_DEMO_MODE", true),

		APIKey:      getEnv("QISKIT_API_KEY", ""),
		APIBaseURL:  strings.TrimRight(getEnv("QO_API_BASE_URL", "https://api.quantum-computing.ibm.com/v2"), "/"),
		APITimeout:  getDuration("QO_API_TIMEOUT", 10*time.Second),
		APIJobLimit: getInt("QO_API_JOB_LIMIT", 50),

		SnapshotFile: getEnv("QO_SNAPSHOT_FILE", ""),
		MockSeed:     uint64(getInt("QO_MOCK_SEED", 0)),
		MockJobs:     getInt("QO_MOCK_JOBS", 50),

		CacheTTL:      getDuration("QO_CACHE_TTL", 60*time.Second),
		CacheSize:     getInt("QO_CACHE_SIZE", 8),
		RedisAddr:     getEnv("QO_REDIS_ADDR", ""),
		RedisPassword: getEnv("QO_REDIS_PASSWORD", ""),
		RedisDB:       getInt("QO_REDIS_DB", 0),

		ChartBuckets:     getInt("QO_CHART_BUCKETS", 12),
		ChartBucketWidth: getDuration("QO_CHART_BUCKET_WIDTH", time.Hour),
		TimelineLimit:    getInt("QO_TIMELINE_LIMIT", 10),

		LLMProvider:     provider,
		LLMModel:        getEnv("QO_LLM_MODEL", defaultModel(provider)),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		LogFile:  getEnv("QO_LOG_FILE", "/tmp/quantum-observer.log"),
		LogLevel: parseLogLevel(getEnv("QO_LOG_LEVEL", "INFO")),

		OTelExporter: strings.ToLower(getEnv("QO_OTEL_EXPORTER", "none")),
	}
	cfg.ChartBuckets, cfg.ChartBucketWidth = clampChart(cfg.ChartBuckets, cfg.ChartBucketWidth)
	return cfg
}

// Chart window bounds. The window (buckets x width) must stay far below the
// range of time.Duration.
const (
	maxChartBuckets = 720
	maxChartWindow  = 366 * 24 * time.Hour
)

// clampChart bounds the bucket count and narrows the width so the whole
// window fits in maxChartWindow.
func clampChart(buckets int, width time.Duration) (int, time.Duration) {
	if buckets <= 0 {
		buckets = 12
	}
	buckets = min(buckets, maxChartBuckets)
	if width <= 0 {
		width = time.Hour
	}
	width = min(width, maxChartWindow/time.Duration(buckets))
	return buckets, width
}

// LiveEnabled reports whether a live API key is configured.
func (c Config) LiveEnabled() bool {
	return c.APIKey != ""
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOllama:
		return "llama3.2"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderBedrock:
		return "anthropic.claude-3-haiku-20240307-v1:0"
	default:
		return ""
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
