package config

import "time"

// Config is the root configuration structure for Meridian. It contains all
// configuration sections for the admin server, evaluation engine, scheduler,
// rule loading, metrics provider, action executor, audit log, and telemetry.
type Config struct {
	// Server contains admin HTTP server configuration including listen
	// address and timeouts.
	Server ServerConfig `yaml:"server"`

	// Engine contains evaluation engine configuration including external
	// call timeouts and campaign concurrency.
	Engine EngineConfig `yaml:"engine"`

	// Scheduler contains the evaluation pass schedule.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Rules contains rule file loading and watch settings.
	Rules RulesConfig `yaml:"rules"`

	// Insights contains metrics provider configuration.
	Insights InsightsConfig `yaml:"insights"`

	// Executor contains action executor configuration.
	Executor ExecutorConfig `yaml:"executor"`

	// Audit contains execution log store configuration.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// EngineConfig contains configuration for the evaluation engine.
type EngineConfig struct {
	// ProviderTimeout bounds each metrics snapshot fetch.
	// Default: 30s
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	// ExecutorTimeout bounds each action dispatch.
	// Default: 30s
	ExecutorTimeout time.Duration `yaml:"executor_timeout"`

	// MaxConcurrentCampaigns caps how many campaigns are evaluated in
	// parallel during a pass.
	// Default: 4
	MaxConcurrentCampaigns int `yaml:"max_concurrent_campaigns"`
}

// SchedulerConfig contains the evaluation pass schedule.
type SchedulerConfig struct {
	// Enabled controls whether scheduled evaluation runs. When disabled,
	// passes only run on demand through the API or CLI.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Schedule is a standard five-field cron expression (or an "@every"
	// descriptor) selecting when evaluation passes run.
	// Default: "*/15 * * * *" (every fifteen minutes)
	Schedule string `yaml:"schedule"`
}

// SchedulerEnabled reports whether scheduled evaluation is on. A nil
// Enabled field means the default (true).
func (c SchedulerConfig) SchedulerEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RulesConfig contains rule file loading settings.
type RulesConfig struct {
	// Path is the rule file or directory loaded at startup. Directories
	// are scanned for *.yaml and *.yml files. Empty means no rules are
	// loaded from disk.
	Path string `yaml:"path"`

	// Watch enables automatic reloading when rule files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after a file event before
	// rules reload.
	// Default: 200ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// InsightsConfig contains metrics provider configuration.
type InsightsConfig struct {
	// Mode selects the snapshot source.
	// Options: "http" (delivery platform API), "static" (fixed fixtures,
	// for demos and tests)
	// Default: "http"
	Mode string `yaml:"mode"`

	// BaseURL is the root of the metrics API. Required when Mode is
	// "http".
	BaseURL string `yaml:"base_url"`

	// FixturesPath is a YAML snapshot fixture file preloading the static
	// provider. Only read when Mode is "static"; empty means the provider
	// starts with no snapshots.
	FixturesPath string `yaml:"fixtures_path"`

	// APIToken is sent as a bearer token on metrics API calls. This
	// should typically be supplied through MERIDIAN_INSIGHTS_API_TOKEN.
	APIToken string `yaml:"api_token"`

	// Timeout bounds each snapshot request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient upstream errors.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the base delay before the first retry; it doubles
	// per attempt.
	// Default: 1s
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ExecutorConfig contains action executor configuration.
type ExecutorConfig struct {
	// DryRun disables all external side effects. Actions are logged and
	// reported as executed.
	// Default: false
	DryRun bool `yaml:"dry_run"`

	// CampaignAPIBase is the root of the campaign management API used by
	// PAUSE_CAMPAIGN and ADJUST_BUDGET.
	CampaignAPIBase string `yaml:"campaign_api_base"`

	// APIToken is sent as a bearer token on campaign API calls.
	APIToken string `yaml:"api_token"`

	// WebhookURL receives SEND_NOTIFICATION payloads. When empty,
	// notifications degrade to log lines.
	WebhookURL string `yaml:"webhook_url"`

	// Timeout bounds each outbound call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// AuditConfig contains execution log store configuration.
type AuditConfig struct {
	// Capacity is the maximum number of log entries held in memory.
	// Oldest entries are evicted first.
	// Default: 1000
	Capacity int `yaml:"capacity"`

	// Archive contains the optional SQLite archive for evicted entries.
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig contains the SQLite audit archive settings.
type ArchiveConfig struct {
	// Enabled controls whether evicted log entries are archived.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "meridian"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// PassDurationBuckets are the histogram buckets, in seconds, for
	// campaign pass durations. A pass spans the metrics fetch, rule
	// evaluation, and any action dispatch.
	// Default: 0.01 to 60 seconds
	PassDurationBuckets []float64 `yaml:"pass_duration_buckets"`
}

// MetricsEnabled reports whether metrics collection is on. A nil Enabled
// field means the default (true).
func (c MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
