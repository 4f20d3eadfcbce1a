package config

import (
	"errors"
	"testing"
	"time"

	"github.com/vietddude/faultline/internal/resilience"
	"github.com/vietddude/faultline/internal/ui"
)

func TestEngineSettings(t *testing.T) {
	got := EngineConfig{PerRegionThreshold: 3, BackoffMax: 10 * time.Second}.EngineSettings()

	if got.PerRegionThreshold != 3 || got.BackoffMax != 10*time.Second {
		t.Errorf("overrides not applied: %+v", got)
	}
	def := resilience.DefaultConfig()
	if got.GlobalThreshold != def.GlobalThreshold || got.RecoveryWindow != def.RecoveryWindow {
		t.Errorf("defaults not kept: %+v", got)
	}
}

func TestEngineRegion(t *testing.T) {
	form := ui.NewElement("ticket-form", "form")
	list := ui.NewElement("sessions", "ul", "session-list")

	tests := []struct {
		name    string
		region  RegionConfig
		matches []*ui.Element
		check   func(t *testing.T, f resilience.FallbackStrategy)
		wantErr error
	}{
		{
			name:    "notice",
			region:  RegionConfig{Selector: "#ticket-form", Fallback: FallbackNotice, Message: "down"},
			matches: []*ui.Element{form},
			check: func(t *testing.T, f resilience.FallbackStrategy) {
				if n, ok := f.(resilience.StaticNotice); !ok || n.Message != "down" {
					t.Errorf("unexpected fallback %#v", f)
				}
			},
		},
		{
			name:    "redirect",
			region:  RegionConfig{Selector: "#ticket-form, .session-list", Fallback: FallbackRedirect, Path: "/safe"},
			matches: []*ui.Element{form, list},
			check: func(t *testing.T, f resilience.FallbackStrategy) {
				if r, ok := f.(resilience.Redirect); !ok || r.Path != "/safe" {
					t.Errorf("unexpected fallback %#v", f)
				}
			},
		},
		{
			name:    "unknown",
			region:  RegionConfig{Selector: "form", Fallback: "confetti"},
			wantErr: resilience.ErrUnknownFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.region.EngineRegion()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, el := range tt.matches {
				if !got.Match(el) {
					t.Errorf("selector should match %s", el.ID())
				}
			}
			tt.check(t, got.Fallback)
		})
	}
}
