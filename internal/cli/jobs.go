package cli

import (
	"context"
	"fmt"

	"github.com/lvs170603/Quantum-Observer/internal/client"
	"github.com/spf13/cobra"
)

var (
	jobsBackend  string
	jobsStatus   string
	jobsSearch   string
	jobsPage     int
	jobsPageSize int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect quantum jobs",
	Long: `List jobs in the current snapshot or inspect a specific job by ID.

Examples:
  observer jobs                        # First page of jobs
  observer jobs --status queued        # Only queued jobs
  observer jobs --backend ibm_kyoto -p 2
  observer jobs -q anomaly             # Search by ID or user
  observer jobs c_anomaly_long_queue   # Show details for one job`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVarP(&jobsBackend, "backend", "b", "", "filter by backend")
	jobsCmd.Flags().StringVarP(&jobsStatus, "status", "s", "", "filter by status")
	jobsCmd.Flags().StringVarP(&jobsSearch, "query", "q", "", "search job ID or user")
	jobsCmd.Flags().IntVarP(&jobsPage, "page", "p", 1, "page number")
	jobsCmd.Flags().IntVarP(&jobsPageSize, "page-size", "n", 10, "jobs per page")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return showJob(ctx, cmd, args[0])
	}
	return listJobs(ctx, cmd)
}

func listJobs(ctx context.Context, cmd *cobra.Command) error {
	page, err := apiClient.ListJobs(ctx, client.ListJobsOptions{
		Demo:     demoFlag(cmd),
		Backend:  jobsBackend,
		Status:   jobsStatus,
		Search:   jobsSearch,
		Page:     jobsPage,
		PageSize: jobsPageSize,
	})
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if asJSON {
		return printJSON(cmd, page)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderJobTable(defaultTheme, page))
	return nil
}

func showJob(ctx context.Context, cmd *cobra.Command, id string) error {
	job, err := apiClient.GetJob(ctx, demoFlag(cmd), id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	if asJSON {
		return printJSON(cmd, job)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderJob(defaultTheme, job))
	return nil
}
