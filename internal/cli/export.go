package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvs170603/Quantum-Observer/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export jobs as CSV or JSON",
	Long: `Export every job in the current snapshot.

Without -o the file is written to the current directory under the name the
server suggests (quantum_jobs_<timestamp>.<format>). Use -o - for stdout.

Examples:
  observer export
  observer export --format json
  observer export -o jobs.csv
  observer export --format json -o - | jq '.[0]'`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", service.FormatCSV, "export format (csv, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var buf bytes.Buffer
	filename, err := apiClient.Export(ctx, demoFlag(cmd), exportFormat, &buf)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path := exportOutput
	if path == "" {
		path = filepath.Base(filename)
		if path == "" || path == "." {
			path = "quantum_jobs." + exportFormat
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", buf.Len(), path)
	return nil
}
