// Package server provides the admin HTTP API for the rule engine.
//
// The server exposes rule management, on-demand evaluation, log queries,
// and operational endpoints, and manages its own lifecycle including
// graceful shutdown.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	srv, err := server.NewServer(&cfg.Server, server.Dependencies{
//	    Rules:       ruleStore,
//	    Logs:        logStore,
//	    Engine:      eng,
//	    Metrics:     collector,
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is cancelled; cancelling drains in-flight
// requests within the configured shutdown timeout. Signal handling lives in
// the cmd layer, which cancels the context on SIGINT or SIGTERM.
//
// # Routes
//
//	GET    /api/v1/rules        list rules
//	POST   /api/v1/rules        create a rule (400 on validation failure)
//	GET    /api/v1/rules/{id}   fetch one rule
//	PATCH  /api/v1/rules/{id}   partially update a rule
//	DELETE /api/v1/rules/{id}   delete a rule
//	POST   /api/v1/evaluate     run an evaluation pass now
//	GET    /api/v1/logs         query evaluation logs
//	GET    /api/v1/stats        rule and log statistics
//	GET    /healthz             liveness probe
//	GET    /metrics             Prometheus metrics (when a collector is wired)
//
// POST /api/v1/evaluate accepts an optional body {"campaignIds": [...]};
// without one it evaluates every campaign referenced by an active rule.
// Campaign-level failures are reported inside the returned summary, so the
// endpoint answers 200 even when individual campaigns fail.
//
// # Middleware Chain
//
// Requests pass through, outermost first: Recovery (panic to 500),
// RequestID (X-Request-ID assignment), Logging (structured per-request
// line). Handlers rely on the request ID already being in the context.
//
// # Errors
//
// Non-2xx responses carry a JSON envelope:
//
//	{"error": {"message": "...", "details": ["...", "..."]}}
//
// where details appears only for validation failures with per-field
// messages.
package server
