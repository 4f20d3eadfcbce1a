package resilience

import (
	"testing"

	"github.com/vietddude/faultline/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.RegionState
		want     bool
	}{
		{domain.RegionStateNormal, domain.RegionStateDegraded, true},
		{domain.RegionStateNormal, domain.RegionStateRetryScheduled, false},
		{domain.RegionStateDegraded, domain.RegionStateRetryScheduled, true},
		{domain.RegionStateDegraded, domain.RegionStateEmergencyFallback, true},
		{domain.RegionStateRetryScheduled, domain.RegionStateNormal, true},
		{domain.RegionStateRetryScheduled, domain.RegionStateDegraded, true},
		{domain.RegionStateEmergencyFallback, domain.RegionStateDegraded, false},
		{domain.RegionStateEmergencyFallback, domain.RegionStateRetryScheduled, false},
		{domain.RegionStateEmergencyFallback, domain.RegionStateNormal, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
