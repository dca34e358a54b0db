// Package logging builds the structured loggers used across the service.
//
// # Overview
//
// The logging package is a thin construction layer over Go's standard
// log/slog package:
//   - JSON and text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Optional source file and line annotation
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("pass complete",
//	    "campaign_id", "camp-001",
//	    "rules_triggered", 2,
//	)
//
// Components derive their own loggers with logger.With("component", name)
// so every line carries its origin.
package logging
