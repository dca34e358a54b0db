package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/helios-hq/meridian/pkg/telemetry/logging"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateScheduler(&cfg.Scheduler)...)
	errs = append(errs, validateInsights(&cfg.Insights)...)
	errs = append(errs, validateExecutor(&cfg.Executor)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates admin server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}

// validateEngine validates evaluation engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.ProviderTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.provider_timeout",
			Message: "provider timeout must be positive",
		})
	}
	if cfg.ExecutorTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.executor_timeout",
			Message: "executor timeout must be positive",
		})
	}
	if cfg.MaxConcurrentCampaigns <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.max_concurrent_campaigns",
			Message: "max concurrent campaigns must be positive",
		})
	}

	return errs
}

// validateScheduler validates the evaluation schedule.
func validateScheduler(cfg *SchedulerConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "scheduler.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
			})
		}
	}

	return errs
}

// validateInsights validates metrics provider configuration.
func validateInsights(cfg *InsightsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "http":
		if cfg.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   "insights.base_url",
				Message: "base URL is required in http mode",
			})
		} else if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "insights.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	case "static":
	default:
		errs = append(errs, FieldError{
			Field:   "insights.mode",
			Message: fmt.Sprintf("unknown mode %q (options: http, static)", cfg.Mode),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "insights.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "insights.max_retries",
			Message: "max retries must be non-negative",
		})
	}

	return errs
}

// validateExecutor validates action executor configuration.
func validateExecutor(cfg *ExecutorConfig) []FieldError {
	var errs []FieldError

	if cfg.CampaignAPIBase != "" {
		if _, err := url.ParseRequestURI(cfg.CampaignAPIBase); err != nil {
			errs = append(errs, FieldError{
				Field:   "executor.campaign_api_base",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if cfg.WebhookURL != "" {
		if _, err := url.ParseRequestURI(cfg.WebhookURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "executor.webhook_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "executor.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

// validateAudit validates execution log store configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if cfg.Capacity < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.capacity",
			Message: "capacity must be non-negative",
		})
	}
	if cfg.Archive.Enabled && cfg.Archive.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.archive.path",
			Message: "archive path is required when archiving is enabled",
		})
	}

	return errs
}

// validateTelemetry validates logging and metrics configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: err.Error(),
		})
	}
	if _, err := logging.ParseFormat(cfg.Logging.Format); err != nil {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: err.Error(),
		})
	}

	if cfg.Metrics.MetricsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}
