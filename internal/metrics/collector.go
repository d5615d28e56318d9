// Package metrics provides in-memory runtime statistics and the Prometheus
// exporter for dashboard gauges.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics (only for LLM operations)
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	// Token stats (nil if not applicable)
	TotalInputTokens  *int64 `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int64 `json:"total_output_tokens,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	CacheHits     int64              `json:"cache_hits"`
	CacheMisses   int64              `json:"cache_misses"`
	FetchMock     *OperationSnapshot `json:"fetch_mock,omitempty"`
	FetchLive     *OperationSnapshot `json:"fetch_live,omitempty"`
	FetchFile     *OperationSnapshot `json:"fetch_file,omitempty"`
	Analytics     *OperationSnapshot `json:"analytics,omitempty"`
	LLMAssistant  *OperationSnapshot `json:"llm_assistant,omitempty"`
	LLMAnomalies  *OperationSnapshot `json:"llm_anomalies,omitempty"`
}

// Operation names for the collector.
const (
	OpFetchMock    = "fetch_mock"
	OpFetchLive    = "fetch_live"
	OpFetchFile    = "fetch_file"
	OpAnalytics    = "analytics"
	OpLLMAssistant = "llm_assistant"
	OpLLMAnomalies = "llm_anomalies"
)

// FetchOp maps a source name to its fetch operation.
func FetchOp(source string) string {
	return "fetch_" + source
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu          sync.RWMutex
	startTime   time.Time
	ops         map[string]*OperationMetrics
	cacheHits   int64
	cacheMisses int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

func (m *OperationMetrics) observe(duration time.Duration) {
	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordTiming records timing for an operation. A non-nil err also counts
// as a failure.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.observe(duration)
	if err != nil {
		m.Errors++
	}
}

// RecordLLMUsage records timing and token usage for an LLM operation.
func (c *Collector) RecordLLMUsage(op string, duration time.Duration, inputTokens, outputTokens int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.observe(duration)
	if err != nil {
		m.Errors++
	}
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
}

// RecordCache counts a cache lookup.
func (c *Collector) RecordCache(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeTokens bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeTokens && (m.TotalInputTokens > 0 || m.TotalOutputTokens > 0) {
		totalIn := m.TotalInputTokens
		totalOut := m.TotalOutputTokens
		snap.TotalInputTokens = &totalIn
		snap.TotalOutputTokens = &totalOut
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		CacheHits:     c.cacheHits,
		CacheMisses:   c.cacheMisses,
		FetchMock:     snapshotOp(c.ops[OpFetchMock], false),
		FetchLive:     snapshotOp(c.ops[OpFetchLive], false),
		FetchFile:     snapshotOp(c.ops[OpFetchFile], false),
		Analytics:     snapshotOp(c.ops[OpAnalytics], false),
		LLMAssistant:  snapshotOp(c.ops[OpLLMAssistant], true),
		LLMAnomalies:  snapshotOp(c.ops[OpLLMAnomalies], true),
	}
}
