package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/faultline/internal/core/clock"
	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/observability/metrics"
)

// Monitor periodically checks whether emergency mode can be lifted.
type Monitor struct {
	engine   *Engine
	interval time.Duration

	mu      sync.Mutex
	timer   clock.Timer
	running bool
	checks  int
}

// NewMonitor creates a recovery monitor for engine.
func NewMonitor(engine *Engine, interval time.Duration) *Monitor {
	return &Monitor{engine: engine, interval: interval}
}

// Start begins periodic checks on the engine clock until ctx is done or
// Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.scheduleLocked()
	m.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			m.Stop()
		}()
	}
}

// Stop cancels the pending check.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Checks returns how many periodic checks have run.
func (m *Monitor) Checks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

func (m *Monitor) scheduleLocked() {
	m.timer = m.engine.clock.AfterFunc(m.interval, m.tick)
}

func (m *Monitor) tick() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.checks++
	m.mu.Unlock()

	m.engine.CheckRecovery()

	m.mu.Lock()
	if m.running {
		m.scheduleLocked()
	}
	m.mu.Unlock()
}

// CheckRecovery lifts emergency mode if no error arrived during the
// recovery window. Recovery is global: every region is reset together.
// It reports whether a recovery happened.
func (e *Engine) CheckRecovery() bool {
	e.mu.Lock()
	if !e.emergency {
		e.mu.Unlock()
		return false
	}
	if len(RecentErrors(e.global.Records(), e.cfg.RecoveryWindow, e.clock.Now())) > 0 {
		e.mu.Unlock()
		return false
	}

	e.emergency = false
	metrics.EmergencyMode.Set(0)
	metrics.Recoveries.Inc()

	var restored []string
	for _, name := range e.order {
		r := e.regions[name]
		if r.fallbackActive() {
			restored = append(restored, name)
		}
		e.resetRegion(r)
	}
	watches := append([]func(bool){}, e.emergencyWatches...)
	e.mu.Unlock()

	e.log.Info("Recovered from emergency mode", "restored_regions", len(restored))
	e.presenter.HideBanner()
	e.presenter.SetDecorations(true)
	for _, name := range restored {
		e.presenter.RestoreRegion(name)
	}
	e.presenter.Toast(ToastSuccess, "Everything is working again.")
	for _, w := range watches {
		w(false)
	}
	return true
}

// resetRegion returns r to its registration state, cancelling any pending
// retry so it cannot fire after recovery. Caller holds e.mu.
func (e *Engine) resetRegion(r *region) {
	r.cancelRetry()
	r.log.Clear()
	r.retryCount = 0
	r.noticesShown = 0
	r.lastRetryAt = time.Time{}
	if r.state != domain.RegionStateNormal {
		e.transition(r, domain.RegionStateNormal, "global recovery")
	}
	r.generation++
}
