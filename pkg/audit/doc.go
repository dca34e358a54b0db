// Package audit provides the evaluation log for the rule engine.
//
// # Overview
//
// Every evaluation pass writes exactly one LogEntry per active rule,
// recording whether the rule triggered and why. Entries are held in a
// bounded in-memory window (1000 entries by default); when the window is
// full the oldest entries are evicted, optionally into an ArchiveSink for
// durable retention.
//
// # Basic Usage
//
//	store := audit.NewStore()
//
//	_ = store.Append(ctx, &audit.LogEntry{
//		RuleID:     rule.ID,
//		CampaignID: rule.CampaignID,
//		ActionType: string(rule.Action.Type),
//		Triggered:  true,
//		Reason:     "action executed",
//	})
//
//	recent := store.Query(audit.Query{CampaignID: "camp-123", Limit: 20})
//	stats := store.Stats()
//
// The sub-package archive provides a SQLite-backed ArchiveSink.
package audit
