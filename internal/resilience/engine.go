// Package resilience contains runtime faults to the interface region that
// raised them, degrades and retries that region, escalates the application
// into emergency mode when faults spread, and recovers when they stop.
//
// All state lives in an Engine instance. Mutations are serialised by the
// engine mutex; collaborator callbacks (presenter, renderers, global
// handlers, the re-initialisation hook) run after the mutex is released, in
// the order the engine decided them, so they may call back into the engine.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/vietddude/faultline/internal/core/clock"
	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/observability/metrics"
	"github.com/vietddude/faultline/internal/resilience/backoff"
	"github.com/vietddude/faultline/internal/ui"
)

// GlobalErrorHandler observes every classified error.
type GlobalErrorHandler func(rec domain.ErrorRecord)

// ReinitFunc re-initialises the application for a region after a retry.
type ReinitFunc func(ctx context.Context, region string) error

// Options configures an Engine. Zero values get defaults.
type Options struct {
	Config    Config
	Clock     clock.Clock
	Surface   *ui.Surface
	Presenter Presenter
	Reinit    ReinitFunc
	Logger    *slog.Logger
}

// Engine is the fault-isolation and recovery engine for one session.
type Engine struct {
	cfg         Config
	clock       clock.Clock
	surface     *ui.Surface
	presenter   Presenter
	reinit      ReinitFunc
	strategy    backoff.Strategy
	interceptor *Interceptor
	monitor     *Monitor
	log         *slog.Logger

	mu               sync.Mutex
	ctx              context.Context
	global           *ErrorLog
	regions          map[string]*region
	order            []string
	emergency        bool
	handlers         []GlobalErrorHandler
	emergencyWatches []func(active bool)
	transitionHook   func(Transition)
}

// effects are collaborator calls decided under the lock and run after it.
type effects []func()

func (fx effects) run() {
	for _, f := range fx {
		f()
	}
}

// New creates an engine.
func New(opts Options) *Engine {
	cfg := opts.Config.withDefaults()

	e := &Engine{
		cfg:       cfg,
		clock:     opts.Clock,
		surface:   opts.Surface,
		presenter: opts.Presenter,
		reinit:    opts.Reinit,
		strategy: &backoff.Exponential{
			InitialDelay: cfg.BackoffBase,
			MaxDelay:     cfg.BackoffMax,
			MaxAttempts:  cfg.MaxRetries,
		},
		log:     opts.Logger,
		ctx:     context.Background(),
		global:  NewErrorLog(cfg.GlobalLogCapacity),
		regions: make(map[string]*region),
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.presenter == nil {
		e.presenter = NopPresenter{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.log = e.log.With("component", "resilience")
	e.interceptor = NewInterceptor(e)
	e.monitor = NewMonitor(e, cfg.HealthCheckInterval)
	metrics.EmergencyMode.Set(0)
	return e
}

// Interceptor returns the engine's handler interceptor.
func (e *Engine) Interceptor() *Interceptor {
	return e.interceptor
}

// Monitor returns the recovery monitor.
func (e *Engine) Monitor() *Monitor {
	return e.monitor
}

// Start starts the recovery monitor. ctx is also handed to fallback
// renderers and the re-initialisation hook.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
	e.monitor.Start(ctx)
}

// Close stops the monitor and cancels every pending retry.
func (e *Engine) Close() {
	e.monitor.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.regions {
		r.cancelRetry()
	}
}

// AddGlobalErrorHandler registers fn to observe every classified error.
// Panics in fn are logged and never propagated.
func (e *Engine) AddGlobalErrorHandler(fn GlobalErrorHandler) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, fn)
}

// OnEmergencyChange registers fn to be told when emergency mode flips.
func (e *Engine) OnEmergencyChange(fn func(active bool)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emergencyWatches = append(e.emergencyWatches, fn)
}

// OnTransition registers fn to observe region state changes. fn runs with
// the engine locked and must not call back into it.
func (e *Engine) OnTransition(fn func(Transition)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitionHook = fn
}

// ReportError classifies a failure signal and runs it through aggregation
// and escalation. It never panics on behalf of collaborators.
func (e *Engine) ReportError(sig Signal) {
	if sig == nil {
		return
	}
	e.record(Classify(sig, e.clock.Now()))
}

// CatchPanic reports a recovered panic as an uncaught fault. It must be
// deferred directly: defer engine.CatchPanic().
func (e *Engine) CatchPanic() {
	if p := recover(); p != nil {
		e.ReportError(UncaughtFault{Panic: p, Stack: debug.Stack()})
	}
}

// Go runs fn on its own goroutine. A returned error is reported as a
// rejected operation and a panic as an uncaught fault.
func (e *Engine) Go(ctx context.Context, operation string, fn func(ctx context.Context) error) {
	go func() {
		defer e.CatchPanic()
		if err := fn(ctx); err != nil {
			e.ReportError(RejectedOperation{Operation: operation, Reason: err})
		}
	}()
}

func (e *Engine) record(rec domain.ErrorRecord) {
	e.mu.Lock()
	var fx effects

	e.global.Append(rec)
	if rec.HasRegion() {
		if r, ok := e.regions[rec.SourceRegion]; ok {
			r.log.Append(rec)
			last := rec
			r.lastError = &last
			fx = e.evaluateRegion(r, fx)
		} else {
			e.log.Debug("Error for unknown region", "region", rec.SourceRegion)
		}
	}
	fx = e.evaluateGlobal(fx)
	handlers := append([]GlobalErrorHandler(nil), e.handlers...)
	e.mu.Unlock()

	metrics.ErrorsRecorded.WithLabelValues(string(rec.Kind), rec.SourceRegion).Inc()
	e.log.Warn("Error recorded",
		"kind", rec.Kind,
		"region", rec.SourceRegion,
		"message", rec.Message,
	)

	for _, h := range handlers {
		e.callHandler(h, rec)
	}
	fx.run()
}

func (e *Engine) callHandler(h GlobalErrorHandler, rec domain.ErrorRecord) {
	defer func() {
		if p := recover(); p != nil {
			metrics.HandlerFailures.Inc()
			e.log.Error("Global error handler failed", "error", fmt.Sprint(p), "record", rec.ID)
		}
	}()
	h(rec)
}

// GetErrorStats returns a read-only snapshot.
func (e *Engine) GetErrorStats() domain.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	stats := domain.Stats{
		TotalErrors:   e.global.Len(),
		RecentErrors:  len(RecentErrors(e.global.Records(), e.cfg.SlidingWindow, now)),
		EmergencyMode: e.emergency,
		Regions:       make([]domain.RegionStats, 0, len(e.order)),
	}
	for _, name := range e.order {
		stats.Regions = append(stats.Regions, e.regions[name].stats())
	}
	return stats
}

// EmergencyMode reports whether the application is in emergency mode.
func (e *Engine) EmergencyMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emergency
}

// ClearErrorLog drops the global and per-region logs. Region states are
// left as they are.
func (e *Engine) ClearErrorLog() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.global.Clear()
	for _, r := range e.regions {
		r.log.Clear()
	}
}

// ExportErrorLog returns the global log with textual timestamps.
func (e *Engine) ExportErrorLog() []domain.ExportedRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.global.Records()
	out := make([]domain.ExportedRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Export())
	}
	return out
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
