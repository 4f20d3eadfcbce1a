package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsRecorded tracks classified errors per kind and region ("" = global)
	ErrorsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultline_errors_recorded_total",
			Help: "Total number of classified errors",
		},
		[]string{"kind", "region"},
	)

	// FallbackActivations tracks region fallback activations
	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultline_fallback_activations_total",
			Help: "Total number of region fallback activations",
		},
		[]string{"region"},
	)

	// RetriesScheduled tracks retries scheduled per region
	RetriesScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultline_retries_scheduled_total",
			Help: "Total number of region retries scheduled",
		},
		[]string{"region"},
	)

	// RetryDelay tracks backoff delays chosen for retries
	RetryDelay = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faultline_retry_delay_seconds",
			Help:    "Backoff delay before a region retry",
			Buckets: []float64{1, 2, 4, 8, 16, 30},
		},
		[]string{"region"},
	)

	// RegionState exposes 1 for the current state of each region
	RegionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "faultline_region_state",
			Help: "Current escalation state of a region (1 = active state)",
		},
		[]string{"region", "state"},
	)

	// EmergencyMode is 1 while the application is in emergency mode
	EmergencyMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faultline_emergency_mode",
			Help: "Whether the application is in emergency mode",
		},
	)

	// Recoveries tracks global recoveries out of emergency mode
	Recoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faultline_recoveries_total",
			Help: "Total number of global recoveries from emergency mode",
		},
	)

	// HandlerFailures tracks global error handler failures
	HandlerFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faultline_global_handler_failures_total",
			Help: "Total number of global error handler failures",
		},
	)

	// SinkDropped tracks records dropped by the sink forwarder
	SinkDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultline_sink_dropped_total",
			Help: "Total number of records dropped before reaching a sink",
		},
		[]string{"sink", "reason"},
	)

	// DBConnectionPoolUsage tracks archive connection pool usage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faultline_db_connection_pool_usage_percent",
			Help: "Archive database connection pool usage percentage",
		},
	)
)
