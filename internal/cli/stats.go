package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/lvs170603/Quantum-Observer/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long: `Show server runtime statistics: snapshot cache hit rate, fetch timings
per source, analytics timings and LLM token usage.

Examples:
  observer stats
  observer stats --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stats, err := apiClient.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	if asJSON {
		return printJSON(cmd, stats)
	}
	printServerStats(cmd.OutOrStdout(), stats)
	return nil
}

// printServerStats displays server runtime statistics.
func printServerStats(w io.Writer, stats *metrics.Snapshot) {
	fmt.Fprintf(w, "Server Statistics (in-memory, since restart)\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	lookups := stats.CacheHits + stats.CacheMisses
	if lookups > 0 {
		fmt.Fprintf(w, "Cache: %d hits, %d misses (%.0f%% hit rate)\n",
			stats.CacheHits, stats.CacheMisses, float64(stats.CacheHits)/float64(lookups)*100)
	}

	sections := []struct {
		title string
		op    *metrics.OperationSnapshot
	}{
		{"Fetch (demo)", stats.FetchMock},
		{"Fetch (live)", stats.FetchLive},
		{"Fetch (file)", stats.FetchFile},
		{"Analytics", stats.Analytics},
		{"LLM Assistant", stats.LLMAssistant},
		{"LLM Anomalies", stats.LLMAnomalies},
	}
	for _, s := range sections {
		if s.op == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", s.title)
		printOpStats(w, s.op)
		printTokenStats(w, s.op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(w io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(w, "  Tokens In:  %d total\n", *op.TotalInputTokens)
	fmt.Fprintf(w, "  Tokens Out: %d total\n", *op.TotalOutputTokens)
}
