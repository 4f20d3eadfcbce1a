package resilience

import (
	"errors"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
)

// ErrInvalidTransition is returned when a region state change is not allowed.
var ErrInvalidTransition = errors.New("invalid region state transition")

// ValidTransitions defines allowed region state changes.
// Edges back to Normal from Degraded and EmergencyFallback are used only by
// global recovery.
var ValidTransitions = map[domain.RegionState][]domain.RegionState{
	domain.RegionStateNormal: {
		domain.RegionStateDegraded,
		domain.RegionStateEmergencyFallback,
	},
	domain.RegionStateDegraded: {
		domain.RegionStateRetryScheduled,
		domain.RegionStateEmergencyFallback,
		domain.RegionStateNormal,
	},
	domain.RegionStateRetryScheduled: {
		domain.RegionStateNormal,
		domain.RegionStateDegraded,
		domain.RegionStateEmergencyFallback,
	},
	domain.RegionStateEmergencyFallback: {domain.RegionStateNormal},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to domain.RegionState) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Transition records a region state change.
type Transition struct {
	Region    string
	From      domain.RegionState
	To        domain.RegionState
	Reason    string
	Timestamp time.Time
}
