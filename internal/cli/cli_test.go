package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/health"
	"github.com/vietddude/faultline/internal/scenario"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "status", "export", "simulate", "history", "tail"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, health.HealthReport{
		SystemStatus: health.StatusDegraded,
		TotalErrors:  5,
		Regions: []health.RegionHealth{
			{Name: "tickets", State: domain.RegionStateRetryScheduled, ErrorCount: 5, LastError: "submit handler: boom"},
		},
	})

	out := buf.String()
	for _, s := range []string{"status: degraded", "tickets", "retry_scheduled", "submit handler: boom"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []scenario.Result{{
		Step:    "ticket form starts failing",
		Elapsed: "0s",
		Stats: domain.Stats{
			TotalErrors: 5,
			Regions: []domain.RegionStats{
				{Name: "tickets", State: domain.RegionStateRetryScheduled, RetryCount: 1, MaxRetries: 3},
			},
		},
	}})

	if !strings.Contains(buf.String(), "tickets=retry_scheduled(1/3)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
