// Package engine evaluates campaign automation rules against metric
// snapshots and dispatches their actions.
//
// This is the core of the system: the component that takes one campaign's
// metrics, the active rules bound to that campaign, and produces trigger
// decisions plus an audit trail.
//
// # Architecture
//
// The engine uses a three-layer design:
//
//  1. Metric Resolver - Maps a condition's field name to a numeric value,
//     including derived metrics (roas, costPerAction, conversionRate)
//  2. Rule Evaluator - Evaluates every condition and folds the results
//     left to right using each condition's logical operator
//  3. Execution Orchestrator - Fetches snapshots, runs the evaluator,
//     dispatches actions, and records log entries
//
// # Evaluation Flow
//
//	Provider.FetchSnapshot(campaignID)
//	       ↓
//	Compute derived metrics
//	       ↓
//	For each active rule bound to the campaign (store order):
//	  Evaluate all conditions → fold left to right
//	    Triggered → Execute action → log "action executed"
//	    Not triggered → log "conditions not met"
//	       ↓
//	One LogEntry per rule, every pass
//
// # Basic Usage
//
//	eng, err := engine.New(engine.DefaultConfig(), engine.Dependencies{
//	    Rules:    ruleStore,
//	    Logs:     logStore,
//	    Provider: provider,
//	    Executor: executor,
//	    Logger:   logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := eng.ProcessAllCampaigns(ctx)
//
// # Failure Isolation
//
// Failures stay local to the smallest scope that produced them:
//
//   - Unknown field or undefined derived metric: the condition is false,
//     the rest of the rule still evaluates
//   - Action dispatch failure: logged against the rule, remaining rules
//     still run, LastTriggeredAt is not updated
//   - Provider failure: only that campaign's pass is aborted
//
// Rule validation errors are the one hard rejection, raised synchronously
// at creation time by the rules package.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Campaigns within one pass run in
// parallel (bounded); rules within a campaign stay sequential so the log
// order is deterministic.
package engine
