package cli

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/faultline/internal/core/domain"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the error log of a running engine as JSON",
	Run:   runExport,
}

func init() {
	exportCmd.Flags().StringVar(&serverAddr, "addr", "", "engine address (default http://localhost:<server.port>)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	var records []domain.ExportedRecord
	if err := getJSON(cmd.Context(), engineAddr()+"/errors", &records); err != nil {
		slog.Error("Failed to export error log", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			slog.Error("Failed to create output file", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		slog.Error("Failed to write export", "error", err)
		os.Exit(1)
	}
	if exportOutput != "" {
		slog.Info("Exported error log", "records", len(records), "file", exportOutput)
	}
}
