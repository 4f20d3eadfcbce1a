package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/faultline/internal/core/clock"
	"github.com/vietddude/faultline/internal/ui"
)

// =============================================================================
// Recording Presenter
// =============================================================================

type call struct {
	method string
	args   []any
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []call
}

func (p *recordingPresenter) add(method string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{method: method, args: args})
}

func (p *recordingPresenter) count(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (p *recordingPresenter) toasts(level ToastLevel) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.method == "Toast" && c.args[0] == level {
			n++
		}
	}
	return n
}

func (p *recordingPresenter) Toast(level ToastLevel, msg string) { p.add("Toast", level, msg) }
func (p *recordingPresenter) ShowBanner(msg string, a BannerAction) {
	p.add("ShowBanner", msg, a)
}
func (p *recordingPresenter) HideBanner()               { p.add("HideBanner") }
func (p *recordingPresenter) SetDecorations(on bool)    { p.add("SetDecorations", on) }
func (p *recordingPresenter) ReplaceRegion(r, n string) { p.add("ReplaceRegion", r, n) }
func (p *recordingPresenter) RestoreRegion(r string)    { p.add("RestoreRegion", r) }
func (p *recordingPresenter) Navigate(path string)      { p.add("Navigate", path) }

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	engine    *Engine
	clock     *clock.Fake
	presenter *recordingPresenter
	surface   *ui.Surface
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	fc := clock.NewFake(t0)
	p := &recordingPresenter{}
	s := ui.NewSurface()

	opts.Clock = fc
	opts.Presenter = p
	if opts.Surface == nil {
		opts.Surface = s
	}
	opts.Logger = discardLogger()

	e := New(opts)
	t.Cleanup(e.Close)

	return &fixture{engine: e, clock: fc, presenter: p, surface: opts.Surface}
}

// countingRenderer counts fallback invocations.
type countingRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
	panic any
}

func (c *countingRenderer) strategy() FallbackStrategy {
	return CustomRenderer{Render: func(ctx context.Context, view RegionView) error {
		c.mu.Lock()
		c.calls++
		c.mu.Unlock()
		if c.panic != nil {
			panic(c.panic)
		}
		return c.err
	}}
}

func (c *countingRenderer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var errBoom = errors.New("boom")

func (f *fixture) fault(region string) {
	f.engine.ReportError(HandlerFault{Region: region, Err: errBoom})
}

func (f *fixture) regionStats(t *testing.T, name string) regionSnapshot {
	t.Helper()
	for _, r := range f.engine.GetErrorStats().Regions {
		if r.Name == name {
			return regionSnapshot{
				state:          string(r.State),
				errorCount:     r.ErrorCount,
				fallbackActive: r.FallbackActive,
				retryCount:     r.RetryCount,
			}
		}
	}
	t.Fatalf("region %q not in stats", name)
	return regionSnapshot{}
}

type regionSnapshot struct {
	state          string
	errorCount     int
	fallbackActive bool
	retryCount     int
}
