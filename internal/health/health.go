// Package health reports engine and dependency health over HTTP and gRPC.
package health

import (
	"context"
	"sort"

	"github.com/vietddude/faultline/internal/core/domain"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// StatsSource exposes engine state.
type StatsSource interface {
	GetErrorStats() domain.Stats
	ExportErrorLog() []domain.ExportedRecord
}

// Checker is an external dependency probe, e.g. the database or Redis.
type Checker interface {
	Health(ctx context.Context) error
}

// RegionHealth contains health data for one region.
type RegionHealth struct {
	Name           string             `json:"name"`
	Status         SystemStatus       `json:"status"`
	State          domain.RegionState `json:"state"`
	ErrorCount     int                `json:"error_count"`
	RetryCount     int                `json:"retry_count"`
	FallbackActive bool               `json:"fallback_active"`
	Critical       bool               `json:"critical"`
	LastError      string             `json:"last_error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus  SystemStatus            `json:"system_status"`
	EmergencyMode bool                    `json:"emergency_mode"`
	TotalErrors   int                     `json:"total_errors"`
	RecentErrors  int                     `json:"recent_errors"`
	Regions       []RegionHealth          `json:"regions"`
	Dependencies  map[string]SystemStatus `json:"dependencies,omitempty"`
}

// RegionStatus maps a region state to a health status.
func RegionStatus(state domain.RegionState) SystemStatus {
	switch state {
	case domain.RegionStateEmergencyFallback:
		return StatusCritical
	case domain.RegionStateDegraded, domain.RegionStateRetryScheduled:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// BuildReport derives a report from engine stats and dependency results.
// Emergency mode is critical; any degraded region or failing dependency is
// degraded.
func BuildReport(stats domain.Stats, deps map[string]error) HealthReport {
	report := HealthReport{
		SystemStatus:  StatusHealthy,
		EmergencyMode: stats.EmergencyMode,
		TotalErrors:   stats.TotalErrors,
		RecentErrors:  stats.RecentErrors,
		Regions:       make([]RegionHealth, 0, len(stats.Regions)),
	}

	for _, r := range stats.Regions {
		rh := RegionHealth{
			Name:           r.Name,
			Status:         RegionStatus(r.State),
			State:          r.State,
			ErrorCount:     r.ErrorCount,
			RetryCount:     r.RetryCount,
			FallbackActive: r.FallbackActive,
			Critical:       r.Critical,
		}
		if r.LastError != nil {
			rh.LastError = r.LastError.Message
		}
		if rh.Status != StatusHealthy {
			report.SystemStatus = worst(report.SystemStatus, StatusDegraded)
		}
		report.Regions = append(report.Regions, rh)
	}

	if len(deps) > 0 {
		report.Dependencies = make(map[string]SystemStatus, len(deps))
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if deps[name] != nil {
				report.Dependencies[name] = StatusDegraded
				report.SystemStatus = worst(report.SystemStatus, StatusDegraded)
			} else {
				report.Dependencies[name] = StatusHealthy
			}
		}
	}

	if stats.EmergencyMode {
		report.SystemStatus = StatusCritical
	}
	return report
}

func worst(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
