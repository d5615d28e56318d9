package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askOutputFile string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI assistant about the dashboard",
	Long: `Ask the dashboard assistant to explain a metric, chart or job status.

Requires the server to run with an LLM provider (QO_LLM_PROVIDER).

Examples:
  observer ask "What is the success rate?"
  observer ask "Why would a job stay QUEUED for two hours?"
  observer ask "Explain the Gantt chart" -o answer.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write answer to file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	ctx := context.Background()

	answer, err := apiClient.Ask(ctx, query)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(answer+"\n"), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Answer written to %s\n", askOutputFile)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
