package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Engine defaults
	DefaultProviderTimeout        = 30 * time.Second
	DefaultExecutorTimeout        = 30 * time.Second
	DefaultMaxConcurrentCampaigns = 4

	// Scheduler defaults
	DefaultSchedule = "*/15 * * * *"

	// Rules defaults
	DefaultRulesDebounceInterval = 200 * time.Millisecond

	// Insights defaults
	DefaultInsightsMode         = "http"
	DefaultInsightsTimeout      = 30 * time.Second
	DefaultInsightsMaxRetries   = 2
	DefaultInsightsRetryBackoff = time.Second

	// Executor defaults
	DefaultExecutorCallTimeout = 10 * time.Second

	// Audit defaults
	DefaultAuditCapacity      = 1000
	DefaultArchivePath        = "data/audit.db"
	DefaultArchiveBusyTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "meridian"
	DefaultMetricsSubsystem = "engine"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values and is safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Engine defaults
	if cfg.Engine.ProviderTimeout == 0 {
		cfg.Engine.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.Engine.ExecutorTimeout == 0 {
		cfg.Engine.ExecutorTimeout = DefaultExecutorTimeout
	}
	if cfg.Engine.MaxConcurrentCampaigns == 0 {
		cfg.Engine.MaxConcurrentCampaigns = DefaultMaxConcurrentCampaigns
	}

	// Scheduler defaults
	if cfg.Scheduler.Enabled == nil {
		enabled := true
		cfg.Scheduler.Enabled = &enabled
	}
	if cfg.Scheduler.Schedule == "" {
		cfg.Scheduler.Schedule = DefaultSchedule
	}

	// Rules defaults
	if cfg.Rules.DebounceInterval == 0 {
		cfg.Rules.DebounceInterval = DefaultRulesDebounceInterval
	}

	// Insights defaults
	if cfg.Insights.Mode == "" {
		cfg.Insights.Mode = DefaultInsightsMode
	}
	if cfg.Insights.Timeout == 0 {
		cfg.Insights.Timeout = DefaultInsightsTimeout
	}
	if cfg.Insights.MaxRetries == 0 {
		cfg.Insights.MaxRetries = DefaultInsightsMaxRetries
	}
	if cfg.Insights.RetryBackoff == 0 {
		cfg.Insights.RetryBackoff = DefaultInsightsRetryBackoff
	}

	// Executor defaults
	if cfg.Executor.Timeout == 0 {
		cfg.Executor.Timeout = DefaultExecutorCallTimeout
	}

	// Audit defaults
	if cfg.Audit.Capacity == 0 {
		cfg.Audit.Capacity = DefaultAuditCapacity
	}
	if cfg.Audit.Archive.Path == "" {
		cfg.Audit.Archive.Path = DefaultArchivePath
	}
	if cfg.Audit.Archive.BusyTimeout == 0 {
		cfg.Audit.Archive.BusyTimeout = DefaultArchiveBusyTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		enabled := true
		cfg.Telemetry.Metrics.Enabled = &enabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
