package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Detect anomalous jobs with AI",
	Long: `Send the current jobs, with their queue and run durations, to the
configured LLM and list the jobs it flags.

Examples:
  observer anomalies
  observer anomalies --demo --json`,
	Args: cobra.NoArgs,
	RunE: runAnomalies,
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	report, err := apiClient.Anomalies(ctx, demoFlag(cmd))
	if err != nil {
		return fmt.Errorf("detect anomalies: %w", err)
	}

	if asJSON {
		return printJSON(cmd, report)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderAnomalies(defaultTheme, report))
	return nil
}
