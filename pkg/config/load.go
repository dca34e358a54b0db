package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention MERIDIAN_SECTION_FIELD (e.g.,
// MERIDIAN_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// MERIDIAN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("MERIDIAN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("MERIDIAN_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Engine overrides
	if val := os.Getenv("MERIDIAN_ENGINE_PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ProviderTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_ENGINE_EXECUTOR_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ExecutorTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_ENGINE_MAX_CONCURRENT_CAMPAIGNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxConcurrentCampaigns = i
		}
	}

	// Scheduler overrides
	if val := os.Getenv("MERIDIAN_SCHEDULER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Scheduler.Enabled = &b
		}
	}
	if val := os.Getenv("MERIDIAN_SCHEDULER_SCHEDULE"); val != "" {
		cfg.Scheduler.Schedule = val
	}

	// Rules overrides
	if val := os.Getenv("MERIDIAN_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("MERIDIAN_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	// Insights overrides
	if val := os.Getenv("MERIDIAN_INSIGHTS_MODE"); val != "" {
		cfg.Insights.Mode = val
	}
	if val := os.Getenv("MERIDIAN_INSIGHTS_BASE_URL"); val != "" {
		cfg.Insights.BaseURL = val
	}
	if val := os.Getenv("MERIDIAN_INSIGHTS_API_TOKEN"); val != "" {
		cfg.Insights.APIToken = val
	}
	if val := os.Getenv("MERIDIAN_INSIGHTS_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Insights.Timeout = d
		}
	}

	// Executor overrides
	if val := os.Getenv("MERIDIAN_EXECUTOR_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Executor.DryRun = b
		}
	}
	if val := os.Getenv("MERIDIAN_EXECUTOR_CAMPAIGN_API_BASE"); val != "" {
		cfg.Executor.CampaignAPIBase = val
	}
	if val := os.Getenv("MERIDIAN_EXECUTOR_API_TOKEN"); val != "" {
		cfg.Executor.APIToken = val
	}
	if val := os.Getenv("MERIDIAN_EXECUTOR_WEBHOOK_URL"); val != "" {
		cfg.Executor.WebhookURL = val
	}

	// Audit overrides
	if val := os.Getenv("MERIDIAN_AUDIT_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Capacity = i
		}
	}
	if val := os.Getenv("MERIDIAN_AUDIT_ARCHIVE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Archive.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_AUDIT_ARCHIVE_PATH"); val != "" {
		cfg.Audit.Archive.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
}
