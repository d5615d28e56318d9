// Package cli provides the command-line interface for Quantum Observer.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lvs170603/Quantum-Observer/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string
	demo      bool
	asJSON    bool

	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "observer",
	Short: "Quantum job queue dashboard",
	Long: `Quantum Observer watches an IBM Quantum account: job KPIs, backend
health, queue and run timelines, and AI-assisted anomaly detection.

Commands talk to a running observer-server (QO_SERVER_URL, default
http://localhost:9002). Without --demo the server's default mode is used.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		apiClient = client.New(serverURL)
		if verbose {
			fmt.Fprintf(os.Stderr, "server: %s\n", apiClient.BaseURL())
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "observer", Version)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default $QO_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "use demo data (--demo=false for the live API)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}

// demoFlag returns the --demo value, or nil when the flag was not given so
// the server default applies.
func demoFlag(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("demo") {
		return nil
	}
	v := demo
	return &v
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
