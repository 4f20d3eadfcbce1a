package resilience

import (
	"errors"
	"time"

	"github.com/vietddude/faultline/internal/core/clock"
	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/observability/metrics"
	"github.com/vietddude/faultline/internal/ui"
)

var (
	// ErrEmptyRegionName is returned when registering a region without a name.
	ErrEmptyRegionName = errors.New("region name is empty")

	// ErrNilMatcher is returned when registering a region without a matcher.
	ErrNilMatcher = errors.New("region matcher is nil")
)

// RegionConfig declares how a region is matched and degraded.
type RegionConfig struct {
	Match     ui.Matcher
	Fallback  FallbackStrategy
	Critical  bool
	Retryable bool
}

type region struct {
	name       string
	cfg        RegionConfig
	maxRetries int

	log          *ErrorLog
	state        domain.RegionState
	retryCount   int
	lastError    *domain.ErrorRecord
	lastRetryAt  time.Time
	noticesShown int
	retryTimer   clock.Timer
	elements     int

	// generation changes on every activation and reset so callbacks started
	// for an earlier activation can tell they are stale.
	generation uint64
}

func (r *region) fallbackActive() bool {
	return r.state.FallbackActive()
}

func (r *region) cancelRetry() {
	if r.retryTimer != nil {
		r.retryTimer.Stop()
		r.retryTimer = nil
	}
}

func (r *region) stats() domain.RegionStats {
	s := domain.RegionStats{
		Name:           r.name,
		State:          r.state,
		ErrorCount:     r.log.Len(),
		FallbackActive: r.fallbackActive(),
		RetryCount:     r.retryCount,
		MaxRetries:     r.maxRetries,
		Critical:       r.cfg.Critical,
	}
	if r.lastError != nil {
		last := *r.lastError
		s.LastError = &last
	}
	return s
}

// RegisterRegion declares a region and binds the interceptor to every
// currently mounted element it matches. Elements mounted later are not
// bound. Re-registering a name replaces the region.
func (e *Engine) RegisterRegion(name string, cfg RegionConfig) error {
	if name == "" {
		return ErrEmptyRegionName
	}
	if cfg.Match == nil {
		return ErrNilMatcher
	}

	var elements []*ui.Element
	if e.surface != nil {
		elements = e.surface.Query(cfg.Match)
	}

	maxRetries := 0
	if cfg.Retryable {
		maxRetries = e.cfg.MaxRetries
	}

	logCap := max(e.cfg.GlobalLogCapacity, e.cfg.PerRegionThreshold)
	r := &region{
		name:       name,
		cfg:        cfg,
		maxRetries: maxRetries,
		log:        NewErrorLog(logCap),
		state:      domain.RegionStateNormal,
		elements:   len(elements),
	}

	e.mu.Lock()
	if old, ok := e.regions[name]; ok {
		old.cancelRetry()
		old.generation++
		e.log.Info("Replacing region", "region", name)
	} else {
		e.order = append(e.order, name)
	}
	e.regions[name] = r
	e.mu.Unlock()

	for _, el := range elements {
		e.interceptor.Bind(el, name)
	}

	setStateGauge(name, r.state)

	if len(elements) == 0 {
		e.log.Warn("Region matched no elements", "region", name)
		return nil
	}
	e.log.Debug("Region registered",
		"region", name,
		"elements", len(elements),
		"critical", cfg.Critical,
		"retryable", cfg.Retryable,
	)
	return nil
}

var allStates = []domain.RegionState{
	domain.RegionStateNormal,
	domain.RegionStateDegraded,
	domain.RegionStateRetryScheduled,
	domain.RegionStateEmergencyFallback,
}

func setStateGauge(name string, state domain.RegionState) {
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		metrics.RegionState.WithLabelValues(name, string(s)).Set(v)
	}
}
