// Package backoff computes retry delays for degraded regions.
package backoff

import (
	"math"
	"time"
)

// Strategy defines how retries should be spaced and bounded.
type Strategy interface {
	// Delay returns the delay before the retry following attempt (0-indexed).
	Delay(attempt int) time.Duration

	// ShouldRetry reports whether another attempt is allowed.
	ShouldRetry(attempt int) bool
}

// Exponential implements base * 2^attempt capped at MaxDelay.
type Exponential struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

// Default returns the region retry policy: 1s, 2s, 4s, ... capped at 30s,
// three attempts.
func Default() *Exponential {
	return &Exponential{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  3,
	}
}

// Delay calculates InitialDelay * 2^attempt.
func (s *Exponential) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(s.InitialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(s.MaxDelay) {
		return s.MaxDelay
	}
	return time.Duration(delay)
}

// ShouldRetry checks the attempt budget.
func (s *Exponential) ShouldRetry(attempt int) bool {
	return attempt < s.MaxAttempts
}
