package ui

import (
	"context"
	"errors"
	"testing"
)

func TestElement_OnOff(t *testing.T) {
	el := NewElement("save", "button")

	calls := 0
	id := el.On("click", func(ctx context.Context, ev Event) error {
		calls++
		return nil
	})

	if err := el.Dispatch(context.Background(), Event{Type: "click"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	if !el.Off("click", id) {
		t.Fatal("Off should find the listener")
	}
	if el.Off("click", id) {
		t.Error("second Off should report false")
	}

	_ = el.Dispatch(context.Background(), Event{Type: "click"})
	if calls != 1 {
		t.Errorf("detached handler ran, calls=%d", calls)
	}
}

func TestElement_InterceptAppliesToLaterHandlers(t *testing.T) {
	el := NewElement("form", "form")
	boom := errors.New("boom")

	var seen []string
	el.Intercept(func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			if err := next(ctx, ev); err != nil {
				seen = append(seen, err.Error())
			}
			return nil
		}
	})

	el.On("submit", func(ctx context.Context, ev Event) error { return boom })

	if err := el.Dispatch(context.Background(), Event{Type: "submit"}); err != nil {
		t.Fatalf("middleware should swallow the error, got %v", err)
	}
	if len(seen) != 1 || seen[0] != "boom" {
		t.Errorf("middleware did not observe handler error: %v", seen)
	}
}

func TestParseSelector(t *testing.T) {
	a := NewElement("ticket-form", "form", "ticket")
	b := NewElement("list", "ul", "sessions")
	c := NewElement("nav", "nav").SetAttr("data-region", "nav")

	tests := []struct {
		selector string
		el       *Element
		want     bool
	}{
		{"#ticket-form", a, true},
		{"#ticket-form", b, false},
		{".sessions", b, true},
		{"form", a, true},
		{"[data-region=nav]", c, true},
		{"[data-region='nav']", c, true},
		{".ticket, .sessions", b, true},
		{".ticket, .sessions", c, false},
	}

	for _, tt := range tests {
		t.Run(tt.selector+"/"+tt.el.ID(), func(t *testing.T) {
			if got := ParseSelector(tt.selector)(tt.el); got != tt.want {
				t.Errorf("ParseSelector(%q)(%s) = %v, want %v", tt.selector, tt.el.ID(), got, tt.want)
			}
		})
	}
}

func TestSurface_Query(t *testing.T) {
	s := NewSurface()
	s.Mount(
		NewElement("a", "button", "ticket"),
		NewElement("b", "button"),
		NewElement("c", "input", "ticket"),
	)

	got := s.Query(MatchClass("ticket"))
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "c" {
		t.Errorf("unexpected query result: %v", got)
	}

	if _, ok := s.Get("b"); !ok {
		t.Error("expected to find element b")
	}
}
