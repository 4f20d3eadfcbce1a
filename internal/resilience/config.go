package resilience

import "time"

// Config holds engine thresholds and timings.
type Config struct {
	PerRegionThreshold  int
	GlobalThreshold     int
	SlidingWindow       time.Duration
	GlobalLogCapacity   int
	HealthCheckInterval time.Duration
	RecoveryWindow      time.Duration
	BackoffBase         time.Duration
	BackoffMax          time.Duration
	MaxRetries          int // applied to retryable regions
	CriticalNoticeLimit int // warnings per activation of a critical region

	UnavailableNotice string
	BannerMessage     string
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		PerRegionThreshold:  5,
		GlobalThreshold:     20,
		SlidingWindow:       60 * time.Second,
		GlobalLogCapacity:   100,
		HealthCheckInterval: 30 * time.Second,
		RecoveryWindow:      300 * time.Second,
		BackoffBase:         1 * time.Second,
		BackoffMax:          30 * time.Second,
		MaxRetries:          3,
		CriticalNoticeLimit: 2,
		UnavailableNotice:   "This section is unavailable. Please refresh the page.",
		BannerMessage:       "We're experiencing problems. Some features have been disabled.",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PerRegionThreshold <= 0 {
		c.PerRegionThreshold = d.PerRegionThreshold
	}
	if c.GlobalThreshold <= 0 {
		c.GlobalThreshold = d.GlobalThreshold
	}
	if c.SlidingWindow <= 0 {
		c.SlidingWindow = d.SlidingWindow
	}
	if c.GlobalLogCapacity <= 0 {
		c.GlobalLogCapacity = d.GlobalLogCapacity
	}
	if c.HealthCheckInterval <= 0 {
		c.HealthCheckInterval = d.HealthCheckInterval
	}
	if c.RecoveryWindow <= 0 {
		c.RecoveryWindow = d.RecoveryWindow
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = d.BackoffMax
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.CriticalNoticeLimit <= 0 {
		c.CriticalNoticeLimit = d.CriticalNoticeLimit
	}
	if c.UnavailableNotice == "" {
		c.UnavailableNotice = d.UnavailableNotice
	}
	if c.BannerMessage == "" {
		c.BannerMessage = d.BannerMessage
	}
	return c
}
