// Package telemetry groups Meridian's observability packages.
//
// Subpackages:
//
//   - logging: structured slog logger construction and process-wide setup
//   - metrics: Prometheus metric collection for rule evaluation, action
//     dispatch, campaign passes, and the execution log
//
// Both are wired from the telemetry section of the configuration; see
// pkg/config. Components derive their loggers with
// logger.With("component", ...), so every log line identifies its
// subsystem.
package telemetry
