package scenario

import (
	"context"
	"path"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/resilience"
)

// Step is one phase of a scripted run. Act runs first, then the clock
// advances by Wait.
type Step struct {
	Name string
	Act  func(ctx context.Context, s *Session, e *resilience.Engine)
	Wait time.Duration
}

// Repeat dispatches an event n times, ignoring errors.
func Repeat(ctx context.Context, s *Session, id, eventType string, n int) {
	for i := 0; i < n; i++ {
		_ = s.Dispatch(ctx, id, eventType)
	}
}

// DefaultScript walks through degradation, retry, escalation and recovery.
func DefaultScript() []Step {
	return []Step{
		{
			Name: "ticket form starts failing",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				s.Break(TicketForm)
				Repeat(ctx, s, TicketForm, EventSubmit, 5)
			},
		},
		{
			Name: "ticket form recovers and the retry fires",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				s.Fix(TicketForm)
			},
			Wait: time.Second,
		},
		{
			Name: "session list panics on refresh",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				s.Break(SessionList)
				s.FailReinit("sessions", true)
				Repeat(ctx, s, SessionList, EventRefresh, 5)
			},
			Wait: 7 * time.Second,
		},
		{
			Name: "checkout is critical and warns",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				s.Break(Checkout)
				Repeat(ctx, s, Checkout, EventClick, 3)
			},
		},
		{
			Name: "fault storm across the page",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				for _, url := range []string{"/static/app.js", "/static/theme.css", "/img/logo.png"} {
					e.ReportError(resilience.ResourceLoadFault{Kind: resourceKind(url), URL: url})
				}
				Repeat(ctx, s, Checkout, EventClick, 3)
				for i := 0; i < 3; i++ {
					e.ReportError(resilience.RejectedOperation{Operation: "load notifications", Reason: context.DeadlineExceeded})
				}
			},
		},
		{
			Name: "everything is fixed and the page goes quiet",
			Act: func(ctx context.Context, s *Session, e *resilience.Engine) {
				for _, id := range []string{TicketForm, SessionList, Checkout} {
					s.Fix(id)
				}
				s.FailReinit("sessions", false)
			},
			Wait: 330 * time.Second,
		},
	}
}

func resourceKind(url string) domain.ResourceKind {
	switch path.Ext(url) {
	case ".js":
		return domain.ResourceScript
	case ".css":
		return domain.ResourceStyle
	case ".png", ".jpg", ".svg":
		return domain.ResourceImage
	default:
		return domain.ResourceOther
	}
}
