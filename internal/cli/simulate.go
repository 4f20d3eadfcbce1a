package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/faultline/internal/core/config"
	"github.com/vietddude/faultline/internal/notify"
	"github.com/vietddude/faultline/internal/scenario"
)

var simulateQuiet bool

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted session through degradation, escalation and recovery",
	Long: `Simulate drives a ticket form, a session list and a checkout button through
a fault script on simulated time and prints the engine state after each step.
Regions come from the config file when it declares any.`,
	Run: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simulateQuiet, "quiet", false, "only print the step table")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) {
	cfg := &config.AppConfig{}
	if _, err := os.Stat(cfgPath); err == nil {
		cfg = loadConfig()
	} else {
		setupLogging(config.LoggingConfig{})
	}

	regions := cfg.Regions
	if len(regions) == 0 {
		regions = scenario.DefaultRegions()
	}

	log := slog.Default()
	if simulateQuiet {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runner, err := scenario.NewRunner(cfg.Engine.EngineSettings(), regions, notify.NewLogPresenter(log), log)
	if err != nil {
		slog.Error("Failed to build simulation", "error", err)
		os.Exit(1)
	}

	var results []scenario.Result
	runner.Run(cmd.Context(), scenario.DefaultScript(), func(res scenario.Result) {
		results = append(results, res)
	})

	printResults(os.Stdout, results)
}

func printResults(out io.Writer, results []scenario.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "T\tSTEP\tERRORS\tRECENT\tEMERGENCY\tREGIONS")
	for _, res := range results {
		regions := ""
		for i, r := range res.Stats.Regions {
			if i > 0 {
				regions += " "
			}
			regions += fmt.Sprintf("%s=%s", r.Name, r.State)
			if r.RetryCount > 0 {
				regions += fmt.Sprintf("(%d/%d)", r.RetryCount, r.MaxRetries)
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\t%s\n",
			res.Elapsed, res.Step, res.Stats.TotalErrors, res.Stats.RecentErrors, res.Stats.EmergencyMode, regions)
	}
	_ = w.Flush()
}
