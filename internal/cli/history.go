package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/infra/storage"
	"github.com/vietddude/faultline/internal/infra/storage/postgres"
)

var (
	historyRegion string
	historyKind   string
	historySince  time.Duration
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the PostgreSQL error archive",
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyRegion, "region", "", "only records from this region")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only records of this kind")
	historyCmd.Flags().DurationVar(&historySince, "since", 24*time.Hour, "how far back to look")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum records to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.Database.URL == "" {
		slog.Error("No database configured, the archive is in memory only")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewArchiveRepo(db)
	since := time.Now().Add(-historySince)

	records, err := repo.List(ctx, storage.ArchiveFilter{
		Region: historyRegion,
		Kind:   domain.ErrorKind(historyKind),
		Since:  since,
		Limit:  historyLimit,
	})
	if err != nil {
		slog.Error("Failed to query archive", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tREGION\tKIND\tMESSAGE")
	for _, rec := range records {
		region := rec.SourceRegion
		if region == "" {
			region = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Timestamp.Format(time.RFC3339), region, rec.Kind, rec.Message)
	}
	_ = w.Flush()

	counts, err := repo.CountByRegion(ctx, since)
	if err != nil {
		slog.Warn("Failed to count archive", "error", err)
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(global)"
		}
		fmt.Printf("%s: %d\n", label, counts[name])
	}
}
