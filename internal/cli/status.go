package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusRefresh bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the dashboard: KPIs, backends and the status chart",
	Long: `Show the headline KPIs, backend health, the jobs-by-hour chart and
today's completions per backend.

Examples:
  observer status
  observer status --demo=false
  observer status --refresh --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "bypass the server's snapshot cache")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	load := apiClient.Dashboard
	if statusRefresh {
		load = apiClient.Refresh
	}
	d, err := load(ctx, demoFlag(cmd))
	if err != nil {
		return fmt.Errorf("get dashboard: %w", err)
	}

	if asJSON {
		return printJSON(cmd, d)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderDashboard(defaultTheme, d))
	return nil
}
