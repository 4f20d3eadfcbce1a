package domain

// RegionState is the escalation state of a fault-isolated region.
type RegionState string

const (
	RegionStateNormal            RegionState = "normal"
	RegionStateDegraded          RegionState = "degraded"
	RegionStateRetryScheduled    RegionState = "retry_scheduled"
	RegionStateEmergencyFallback RegionState = "emergency_fallback"
)

// FallbackActive reports whether the region is showing degraded content.
func (s RegionState) FallbackActive() bool {
	return s == RegionStateDegraded || s == RegionStateRetryScheduled ||
		s == RegionStateEmergencyFallback
}
