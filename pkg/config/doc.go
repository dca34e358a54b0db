// Package config defines the configuration structures and loading logic
// for the Meridian automation service.
//
// # Overview
//
// Configuration is read from a YAML file, filled with defaults, optionally
// overridden by environment variables, and validated before use:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("meridian.yaml")
//	if err != nil {
//	    return err
//	}
//
// # Environment Variables
//
// Environment variables follow the MERIDIAN_SECTION_FIELD convention and
// always win over file values:
//
//	MERIDIAN_SERVER_LISTEN_ADDRESS=0.0.0.0:9090
//	MERIDIAN_SCHEDULER_SCHEDULE="*/5 * * * *"
//	MERIDIAN_INSIGHTS_API_TOKEN=...
//	MERIDIAN_EXECUTOR_DRY_RUN=true
//
// Secrets (API tokens) should be supplied through the environment rather
// than the file.
//
// # Validation
//
// Validate collects every problem into a single ValidationError listing
// dotted field paths, so one load attempt reports all mistakes at once.
package config
