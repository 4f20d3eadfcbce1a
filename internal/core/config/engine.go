package config

import (
	"fmt"

	"github.com/vietddude/faultline/internal/resilience"
	"github.com/vietddude/faultline/internal/ui"
)

// EngineSettings overlays the configured overrides on the engine defaults.
func (c EngineConfig) EngineSettings() resilience.Config {
	out := resilience.DefaultConfig()
	if c.PerRegionThreshold > 0 {
		out.PerRegionThreshold = c.PerRegionThreshold
	}
	if c.GlobalThreshold > 0 {
		out.GlobalThreshold = c.GlobalThreshold
	}
	if c.SlidingWindow > 0 {
		out.SlidingWindow = c.SlidingWindow
	}
	if c.GlobalLogCapacity > 0 {
		out.GlobalLogCapacity = c.GlobalLogCapacity
	}
	if c.HealthCheckInterval > 0 {
		out.HealthCheckInterval = c.HealthCheckInterval
	}
	if c.RecoveryWindow > 0 {
		out.RecoveryWindow = c.RecoveryWindow
	}
	if c.BackoffBase > 0 {
		out.BackoffBase = c.BackoffBase
	}
	if c.BackoffMax > 0 {
		out.BackoffMax = c.BackoffMax
	}
	if c.MaxRetries > 0 {
		out.MaxRetries = c.MaxRetries
	}
	return out
}

// EngineRegion converts a declared region into engine registration options.
func (r RegionConfig) EngineRegion() (resilience.RegionConfig, error) {
	out := resilience.RegionConfig{
		Match:     ui.ParseSelector(r.Selector),
		Critical:  r.Critical,
		Retryable: r.Retryable,
	}
	switch r.Fallback {
	case FallbackRedirect:
		out.Fallback = resilience.Redirect{Path: r.Path}
	case FallbackNotice, "":
		out.Fallback = resilience.StaticNotice{Message: r.Message}
	default:
		return out, fmt.Errorf("%w: %q", resilience.ErrUnknownFallback, r.Fallback)
	}
	return out, nil
}
