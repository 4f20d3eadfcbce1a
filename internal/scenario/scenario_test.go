package scenario

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/resilience"
)

func regionState(stats domain.Stats, name string) domain.RegionState {
	for _, r := range stats.Regions {
		if r.Name == name {
			return r.State
		}
	}
	return ""
}

func TestSession_Dispatch(t *testing.T) {
	s := NewSession()
	ctx := context.Background()

	if err := s.Dispatch(ctx, TicketForm, EventSubmit); err != nil {
		t.Fatalf("healthy handler failed: %v", err)
	}
	s.Break(TicketForm)
	if err := s.Dispatch(ctx, TicketForm, EventSubmit); err == nil {
		t.Fatal("broken handler should fail")
	}
	s.Fix(TicketForm)
	if err := s.Dispatch(ctx, TicketForm, EventSubmit); err != nil {
		t.Fatalf("fixed handler failed: %v", err)
	}
	if err := s.Dispatch(ctx, "missing", EventClick); err == nil {
		t.Fatal("expected error for unknown element")
	}
}

func TestSession_Reinit(t *testing.T) {
	s := NewSession()
	ctx := context.Background()

	s.FailReinit("tickets", true)
	if err := s.Reinit(ctx, "tickets"); err == nil {
		t.Error("expected failing re-init")
	}
	s.FailReinit("tickets", false)
	if err := s.Reinit(ctx, "tickets"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if s.Reinits("tickets") != 2 {
		t.Errorf("reinits = %d", s.Reinits("tickets"))
	}
}

func TestDefaultScript(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := NewRunner(resilience.DefaultConfig(), DefaultRegions(), resilience.NopPresenter{}, log)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var results []Result
	r.Run(context.Background(), DefaultScript(), func(res Result) {
		results = append(results, res)
	})

	if len(results) != len(DefaultScript()) {
		t.Fatalf("expected %d results, got %d", len(DefaultScript()), len(results))
	}

	if got := regionState(results[0].Stats, "tickets"); got != domain.RegionStateRetryScheduled {
		t.Errorf("step 1: tickets = %s", got)
	}
	if got := regionState(results[1].Stats, "tickets"); got != domain.RegionStateNormal {
		t.Errorf("step 2: tickets = %s", got)
	}
	if got := regionState(results[2].Stats, "sessions"); got != domain.RegionStateEmergencyFallback {
		t.Errorf("step 3: sessions = %s", got)
	}
	if !results[4].Stats.EmergencyMode {
		t.Error("step 5: expected emergency mode")
	}

	final := results[len(results)-1].Stats
	if final.EmergencyMode {
		t.Error("expected recovery after the quiet period")
	}
	for _, reg := range final.Regions {
		if reg.State != domain.RegionStateNormal {
			t.Errorf("region %s not recovered: %s", reg.Name, reg.State)
		}
	}
	if r.Session.Reinits("tickets") != 1 {
		t.Errorf("tickets re-initialised %d times", r.Session.Reinits("tickets"))
	}
}
