package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/faultline/internal/health"
	"google.golang.org/protobuf/encoding/protojson"
)

var (
	serverAddr string
	grpcTarget string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show region states of a running engine",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverAddr, "addr", "", "engine address (default http://localhost:<server.port>)")
	statusCmd.Flags().StringVar(&grpcTarget, "grpc", "", "probe the gRPC health service at host:port instead")
	rootCmd.AddCommand(statusCmd)
}

func engineAddr() string {
	if serverAddr != "" {
		return serverAddr
	}
	cfg := loadConfig()
	return fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
}

func getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runStatus(cmd *cobra.Command, args []string) {
	if grpcTarget != "" {
		runGRPCStatus(cmd.Context())
		return
	}

	var report health.HealthReport
	if err := getJSON(cmd.Context(), engineAddr()+"/health/detailed", &report); err != nil {
		slog.Error("Failed to fetch status", "error", err)
		os.Exit(1)
	}

	printReport(os.Stdout, report)
}

func printReport(out io.Writer, report health.HealthReport) {
	_, _ = fmt.Fprintf(out, "status: %s  emergency: %t  errors: %d (recent %d)\n",
		report.SystemStatus, report.EmergencyMode, report.TotalErrors, report.RecentErrors)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "REGION\tSTATE\tERRORS\tRETRIES\tCRITICAL\tLAST ERROR")
	for _, r := range report.Regions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\t%s\n",
			r.Name, r.State, r.ErrorCount, r.RetryCount, r.Critical, r.LastError)
	}
	_ = w.Flush()

	for name, status := range report.Dependencies {
		_, _ = fmt.Fprintf(out, "dependency %s: %s\n", name, status)
	}
}

func runGRPCStatus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := health.Probe(ctx, grpcTarget, health.ServiceName)
	if err != nil {
		slog.Error("Failed to probe gRPC health", "error", err)
		os.Exit(1)
	}

	out, err := protojson.MarshalOptions{Multiline: true, UseProtoNames: true}.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
