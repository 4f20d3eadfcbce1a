package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/ui"
)

type stubReporter struct {
	mu      sync.Mutex
	signals []Signal
}

func (s *stubReporter) ReportError(sig Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
}

func TestInterceptor_WrapError(t *testing.T) {
	rep := &stubReporter{}
	i := NewInterceptor(rep)

	h := i.Wrap("tickets", func(ctx context.Context, ev ui.Event) error {
		return errors.New("save failed")
	})

	if err := h(context.Background(), ui.Event{Type: "click"}); err != nil {
		t.Fatalf("wrapped handler must not propagate, got %v", err)
	}
	if len(rep.signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(rep.signals))
	}
	hf, ok := rep.signals[0].(HandlerFault)
	if !ok {
		t.Fatalf("expected HandlerFault, got %T", rep.signals[0])
	}
	if hf.Region != "tickets" || hf.Event != "click" {
		t.Errorf("unexpected fault %+v", hf)
	}
}

func TestInterceptor_WrapPanic(t *testing.T) {
	rep := &stubReporter{}
	i := NewInterceptor(rep)

	h := i.Wrap("tickets", func(ctx context.Context, ev ui.Event) error {
		var m map[string]int
		m["x"] = 1
		return nil
	})

	if err := h(context.Background(), ui.Event{Type: "click"}); err != nil {
		t.Fatalf("wrapped handler must not propagate, got %v", err)
	}
	if len(rep.signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(rep.signals))
	}
	hf := rep.signals[0].(HandlerFault)
	if hf.Panic == nil || len(hf.Stack) == 0 {
		t.Errorf("expected panic value and stack, got %+v", hf)
	}
}

func TestInterceptor_SuccessUntouched(t *testing.T) {
	rep := &stubReporter{}
	i := NewInterceptor(rep)

	sideEffect := 0
	h := i.Wrap("tickets", func(ctx context.Context, ev ui.Event) error {
		sideEffect++
		return nil
	})

	_ = h(context.Background(), ui.Event{Type: "click"})
	if sideEffect != 1 {
		t.Errorf("handler side effect lost, got %d", sideEffect)
	}
	if len(rep.signals) != 0 {
		t.Errorf("expected no signals, got %d", len(rep.signals))
	}
}

func TestInterceptor_BindKeepsDetachWorking(t *testing.T) {
	rep := &stubReporter{}
	i := NewInterceptor(rep)
	el := ui.NewElement("save", "button")

	before := el.On("click", func(ctx context.Context, ev ui.Event) error { return errors.New("a") })
	i.Bind(el, "tickets")
	after := el.On("click", func(ctx context.Context, ev ui.Event) error { return errors.New("b") })

	if err := el.Dispatch(context.Background(), ui.Event{Type: "click"}); err != nil {
		t.Fatalf("Dispatch propagated %v", err)
	}
	if len(rep.signals) != 2 {
		t.Fatalf("expected both handlers intercepted, got %d signals", len(rep.signals))
	}

	if !el.Off("click", before) || !el.Off("click", after) {
		t.Fatal("detaching original handlers must still work")
	}
	if el.ListenerCount("click") != 0 {
		t.Errorf("expected no listeners, got %d", el.ListenerCount("click"))
	}
}

func TestEngine_BoundElementFaultsReachRegion(t *testing.T) {
	f := newFixture(t, Options{})
	el := ui.NewElement("ticket-save", "button", "ticket")
	f.surface.Mount(el)

	if err := f.engine.RegisterRegion("tickets", RegionConfig{Match: ui.MatchClass("ticket")}); err != nil {
		t.Fatalf("RegisterRegion failed: %v", err)
	}
	el.On("click", func(ctx context.Context, ev ui.Event) error { return errBoom })

	for n := 0; n < 5; n++ {
		if err := el.Dispatch(context.Background(), ui.Event{Type: "click"}); err != nil {
			t.Fatalf("Dispatch propagated %v", err)
		}
	}

	snap := f.regionStats(t, "tickets")
	if !snap.fallbackActive || snap.state != string(domain.RegionStateDegraded) {
		t.Errorf("expected degraded region, got %+v", snap)
	}
	if f.presenter.count("ReplaceRegion") != 1 {
		t.Errorf("expected default notice rendered once, got %d", f.presenter.count("ReplaceRegion"))
	}
}

func TestEngine_LateElementsNotBound(t *testing.T) {
	f := newFixture(t, Options{})

	if err := f.engine.RegisterRegion("sessions", RegionConfig{Match: ui.MatchClass("session")}); err != nil {
		t.Fatalf("RegisterRegion failed: %v", err)
	}

	late := ui.NewElement("late", "li", "session")
	f.surface.Mount(late)
	late.On("click", func(ctx context.Context, ev ui.Event) error { return errBoom })

	if err := late.Dispatch(context.Background(), ui.Event{Type: "click"}); !errors.Is(err, errBoom) {
		t.Errorf("late element should not be intercepted, got %v", err)
	}
	if f.engine.GetErrorStats().TotalErrors != 0 {
		t.Error("late element fault should not be recorded")
	}
}
