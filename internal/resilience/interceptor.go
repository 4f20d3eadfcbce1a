package resilience

import (
	"context"
	"runtime/debug"

	"github.com/vietddude/faultline/internal/ui"
)

// Reporter receives failure signals.
type Reporter interface {
	ReportError(sig Signal)
}

// Interceptor decorates region-owned handlers so their failures are
// reported instead of propagating.
type Interceptor struct {
	reporter Reporter
}

// NewInterceptor creates an interceptor reporting to r.
func NewInterceptor(r Reporter) *Interceptor {
	return &Interceptor{reporter: r}
}

// Wrap returns a handler that runs h and converts a returned error or a
// panic into a HandlerFault for region. Successful runs are untouched.
func (i *Interceptor) Wrap(region string, h ui.Handler) ui.Handler {
	return func(ctx context.Context, ev ui.Event) (err error) {
		defer func() {
			if p := recover(); p != nil {
				i.reporter.ReportError(HandlerFault{
					Region: region,
					Event:  ev.Type,
					Panic:  p,
					Stack:  debug.Stack(),
				})
				err = nil
			}
		}()

		if herr := h(ctx, ev); herr != nil {
			i.reporter.ReportError(HandlerFault{Region: region, Event: ev.Type, Err: herr})
		}
		return nil
	}
}

// Middleware adapts Wrap for ui.Element.Intercept.
func (i *Interceptor) Middleware(region string) ui.Middleware {
	return func(h ui.Handler) ui.Handler {
		return i.Wrap(region, h)
	}
}

// Bind wraps every handler dispatched on el, whenever it was attached.
// Handlers stay registered under their original ids, so Off keeps working.
func (i *Interceptor) Bind(el *ui.Element, region string) {
	el.Intercept(i.Middleware(region))
}
