package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	redisclient "github.com/vietddude/faultline/internal/infra/redis"
)

var (
	tailCount  int64
	tailFollow bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print error records from the Redis stream",
	Run:   runTail,
}

func init() {
	tailCmd.Flags().Int64VarP(&tailCount, "count", "n", 20, "number of records to show")
	tailCmd.Flags().BoolVarP(&tailFollow, "follow", "f", false, "keep polling for new records")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.Redis.URL == "" {
		slog.Error("No redis configured")
		os.Exit(1)
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	stream := redisclient.NewErrorStream(client, cfg.Sink.Stream, cfg.Sink.StreamMax)
	ctx := cmd.Context()

	entries, err := stream.Tail(ctx, tailCount)
	if err != nil {
		slog.Error("Failed to read stream", "error", err)
		os.Exit(1)
	}
	lastID := "0"
	for _, e := range entries {
		printEntry(e)
		lastID = e.StreamID
	}
	if !tailFollow {
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			return
		case <-ticker.C:
			entries, err := stream.Since(ctx, lastID, 100)
			if err != nil {
				slog.Warn("Failed to poll stream", "error", err)
				continue
			}
			for _, e := range entries {
				printEntry(e)
				lastID = e.StreamID
			}
		}
	}
}

func printEntry(e redisclient.Entry) {
	region := e.Record.SourceRegion
	if region == "" {
		region = "-"
	}
	fmt.Printf("%s  %-10s %-20s %s\n", e.Record.Timestamp, region, e.Record.Kind, e.Record.Message)
}
