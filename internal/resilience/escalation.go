package resilience

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/observability/metrics"
)

// evaluateRegion applies the per-region threshold after a record was
// appended. Caller holds e.mu.
func (e *Engine) evaluateRegion(r *region, fx effects) effects {
	if r.cfg.Critical && r.noticesShown < e.cfg.CriticalNoticeLimit &&
		r.state != domain.RegionStateEmergencyFallback {
		r.noticesShown++
		name := r.name
		fx = append(fx, func() {
			e.presenter.Toast(ToastWarning, fmt.Sprintf("%s is having trouble. Some features may be limited.", name))
		})
	}

	if r.fallbackActive() {
		return fx
	}

	now := e.clock.Now()
	recent := RecentErrors(r.log.Records(), e.cfg.SlidingWindow, now)
	if len(recent) < e.cfg.PerRegionThreshold {
		return fx
	}

	// Tripping again within one window of a retry means that retry failed.
	if !r.lastRetryAt.IsZero() && now.Sub(r.lastRetryAt) <= e.cfg.SlidingWindow &&
		r.retryCount < r.maxRetries {
		r.retryCount++
	}

	if r.cfg.Retryable && r.retryCount >= r.maxRetries {
		return e.enterEmergencyFallback(r, "retries exhausted", fx)
	}

	return e.activateFallback(r, "error threshold reached", fx)
}

// activateFallback degrades r and, for retryable regions, schedules a
// retry. Caller holds e.mu.
func (e *Engine) activateFallback(r *region, reason string, fx effects) effects {
	if !e.transition(r, domain.RegionStateDegraded, reason) {
		return fx
	}
	r.generation++
	metrics.FallbackActivations.WithLabelValues(r.name).Inc()

	gen := r.generation
	name := r.name
	strategy := r.cfg.Fallback
	view := RegionView{
		Name:       r.name,
		ErrorCount: r.log.Len(),
		LastError:  r.lastError,
		Presenter:  e.presenter,
	}
	ctx := e.ctx
	fx = append(fx, func() {
		e.applyFallback(ctx, name, gen, strategy, view)
	})

	if r.cfg.Retryable && e.strategy.ShouldRetry(r.retryCount) && r.retryCount < r.maxRetries {
		fx = e.scheduleRetry(r, fx)
	}
	return fx
}

// applyFallback runs the renderer outside the lock. A failing renderer
// sends the region to EmergencyFallback unless the activation is stale.
func (e *Engine) applyFallback(ctx context.Context, name string, gen uint64, strategy FallbackStrategy, view RegionView) {
	err := render(ctx, strategy, view)
	if err == nil {
		e.log.Info("Region fallback active", "region", name)
		return
	}

	e.log.Error("Fallback renderer failed", "region", name, "error", err)

	e.mu.Lock()
	var fx effects
	if r, ok := e.regions[name]; ok && r.generation == gen &&
		r.state != domain.RegionStateEmergencyFallback {
		fx = e.enterEmergencyFallback(r, "fallback renderer failed", fx)
	}
	e.mu.Unlock()
	fx.run()
}

// scheduleRetry arms the backoff timer for r. Caller holds e.mu.
func (e *Engine) scheduleRetry(r *region, fx effects) effects {
	r.cancelRetry()

	delay := e.strategy.Delay(r.retryCount)
	gen := r.generation
	name := r.name
	r.retryTimer = e.clock.AfterFunc(delay, func() {
		e.fireRetry(name, gen)
	})
	e.transition(r, domain.RegionStateRetryScheduled, fmt.Sprintf("retry in %s", delay))

	metrics.RetriesScheduled.WithLabelValues(name).Inc()
	metrics.RetryDelay.WithLabelValues(name).Observe(delay.Seconds())

	attempt := r.retryCount + 1
	fx = append(fx, func() {
		e.log.Info("Region retry scheduled", "region", name, "attempt", attempt, "delay", delay)
	})
	return fx
}

// fireRetry clears the region and re-initialises it. If that raises, the
// retry counts as failed.
func (e *Engine) fireRetry(name string, gen uint64) {
	e.mu.Lock()
	r, ok := e.regions[name]
	if !ok || r.generation != gen || r.state != domain.RegionStateRetryScheduled {
		e.mu.Unlock()
		return
	}
	r.retryTimer = nil
	r.log.Clear()
	r.noticesShown = 0
	r.lastRetryAt = e.clock.Now()
	e.transition(r, domain.RegionStateNormal, "retry fired")
	r.generation++
	gen = r.generation
	ctx := e.ctx
	reinit := e.reinit
	e.mu.Unlock()

	e.presenter.RestoreRegion(name)
	err := e.runReinit(ctx, reinit, name)
	if err == nil {
		e.log.Info("Region retry succeeded", "region", name)
		return
	}

	e.log.Warn("Region retry failed", "region", name, "error", err)

	e.mu.Lock()
	var fx effects
	r, ok = e.regions[name]
	if ok && r.generation == gen && r.state == domain.RegionStateNormal {
		if r.retryCount < r.maxRetries {
			r.retryCount++
		}
		if r.retryCount >= r.maxRetries {
			fx = e.enterEmergencyFallback(r, "retries exhausted", fx)
		} else {
			fx = e.activateFallback(r, "retry failed", fx)
		}
	}
	e.mu.Unlock()
	fx.run()
}

func (e *Engine) runReinit(ctx context.Context, reinit ReinitFunc, name string) (err error) {
	if reinit == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("re-initialisation panicked: %v\n%s", p, debug.Stack())
		}
	}()
	return reinit(ctx, name)
}

// enterEmergencyFallback is terminal for the region until global recovery.
// Caller holds e.mu.
func (e *Engine) enterEmergencyFallback(r *region, reason string, fx effects) effects {
	r.cancelRetry()
	if !e.transition(r, domain.RegionStateEmergencyFallback, reason) {
		return fx
	}
	r.generation++

	name := r.name
	notice := e.cfg.UnavailableNotice
	fx = append(fx, func() {
		e.log.Error("Region in emergency fallback", "region", name, "reason", reason)
		e.presenter.ReplaceRegion(name, notice)
	})
	return fx
}

// evaluateGlobal enters emergency mode when the global window overflows.
// Caller holds e.mu.
func (e *Engine) evaluateGlobal(fx effects) effects {
	if e.emergency {
		return fx
	}

	recent := RecentErrors(e.global.Records(), e.cfg.SlidingWindow, e.clock.Now())
	if len(recent) < e.cfg.GlobalThreshold {
		return fx
	}

	e.emergency = true
	metrics.EmergencyMode.Set(1)

	count := len(recent)
	msg := e.cfg.BannerMessage
	watches := append([]func(bool){}, e.emergencyWatches...)
	fx = append(fx, func() {
		e.log.Error("Entering emergency mode", "recent_errors", count)
		e.presenter.ShowBanner(msg, BannerAction{Label: "Refresh", Reload: true})
		e.presenter.SetDecorations(false)
		for _, w := range watches {
			w(true)
		}
	})
	return fx
}

// transition moves r to a new state if the table allows it. Caller holds
// e.mu.
func (e *Engine) transition(r *region, to domain.RegionState, reason string) bool {
	from := r.state
	if from == to {
		return true
	}
	if !CanTransition(from, to) {
		e.log.Error("Rejected region transition",
			"region", r.name,
			"error", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to),
		)
		return false
	}
	r.state = to
	setStateGauge(r.name, to)

	if e.transitionHook != nil {
		e.transitionHook(Transition{
			Region:    r.name,
			From:      from,
			To:        to,
			Reason:    reason,
			Timestamp: e.clock.Now(),
		})
	}
	return true
}
