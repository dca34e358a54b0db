// Package metrics provides Prometheus instrumentation for the rule engine.
//
// The Collector is the single registration point: it owns the registry,
// groups metrics by concern (rule evaluations, campaign passes, action
// dispatches, the evaluation log), and exposes recording methods that the
// engine and scheduler call through. When metrics are disabled in the
// configuration every recording method is a no-op.
//
// Exported metric families (with the default namespace and subsystem):
//
//	meridian_engine_rule_evaluations_total{rule_id, outcome}
//	meridian_engine_rules{state}
//	meridian_engine_campaign_passes_total{campaign_id}
//	meridian_engine_campaign_pass_duration_seconds{campaign_id}
//	meridian_engine_provider_failures_total{campaign_id}
//	meridian_engine_scheduler_skipped_ticks_total
//	meridian_engine_action_executions_total{action_type, status}
//	meridian_engine_audit_log_entries
//
// Rule and campaign identifiers come from user data, so the collector caps
// label cardinality and folds overflow into an "other" label value.
//
// Typical wiring:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, err := engine.New(engine.Dependencies{
//		// ...
//		Metrics: collector,
//	})
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
