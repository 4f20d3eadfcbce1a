package config

import (
	"time"

	redisclient "github.com/vietddude/faultline/internal/infra/redis"
	"github.com/vietddude/faultline/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Engine   EngineConfig       `yaml:"engine"`
	Regions  []RegionConfig     `yaml:"regions"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Sink     SinkConfig         `yaml:"sink"`
}

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"` // 0 = disabled
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// EngineConfig overrides engine thresholds. Zero values keep the defaults.
type EngineConfig struct {
	PerRegionThreshold  int           `yaml:"per_region_threshold"`
	GlobalThreshold     int           `yaml:"global_threshold"`
	SlidingWindow       time.Duration `yaml:"sliding_window"`
	GlobalLogCapacity   int           `yaml:"global_log_capacity"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	RecoveryWindow      time.Duration `yaml:"recovery_window"`
	BackoffBase         time.Duration `yaml:"backoff_base"`
	BackoffMax          time.Duration `yaml:"backoff_max"`
	MaxRetries          int           `yaml:"max_retries"`
}

// FallbackKind selects how a degraded region is rendered.
type FallbackKind string

const (
	FallbackNotice   FallbackKind = "notice"
	FallbackRedirect FallbackKind = "redirect"
)

// RegionConfig declares a fault-isolation region.
type RegionConfig struct {
	Name      string       `yaml:"name"`
	Selector  string       `yaml:"selector"` // e.g. "#checkout, .ticket-form"
	Fallback  FallbackKind `yaml:"fallback"`
	Message   string       `yaml:"message"`
	Path      string       `yaml:"path"` // redirect target
	Critical  bool         `yaml:"critical"`
	Retryable bool         `yaml:"retryable"`
}

// SinkConfig holds settings for forwarding error records.
type SinkConfig struct {
	BufferSize int    `yaml:"buffer_size"`
	Stream     string `yaml:"stream"`     // redis stream key
	StreamMax  int64  `yaml:"stream_max"` // approximate stream length cap
}
