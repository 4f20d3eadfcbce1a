package domain

// RegionStats is a read-only view of one region.
type RegionStats struct {
	Name           string       `json:"name"`
	State          RegionState  `json:"state"`
	ErrorCount     int          `json:"error_count"`
	FallbackActive bool         `json:"fallback_active"`
	RetryCount     int          `json:"retry_count"`
	MaxRetries     int          `json:"max_retries"`
	Critical       bool         `json:"critical"`
	LastError      *ErrorRecord `json:"last_error,omitempty"`
}

// Stats is a snapshot of the engine published to collaborators.
type Stats struct {
	TotalErrors   int           `json:"total_errors"`
	RecentErrors  int           `json:"recent_errors"`
	EmergencyMode bool          `json:"emergency_mode"`
	Regions       []RegionStats `json:"regions"`
}
