package audit

import (
	"context"
	"time"
)

// LogEntry records the outcome of evaluating a single rule against a
// campaign during one evaluation pass. Exactly one entry is written per
// active rule per pass, whether or not the rule triggered.
type LogEntry struct {
	// ID uniquely identifies this entry (UUID v4).
	ID string `json:"id"`

	// RuleID is the identifier of the evaluated rule.
	RuleID string `json:"ruleId"`

	// RuleName is the rule's human-readable name at evaluation time.
	RuleName string `json:"ruleName,omitempty"`

	// CampaignID is the campaign the rule was evaluated against.
	CampaignID string `json:"campaignId"`

	// ActionType is the action the rule carries, recorded even when the
	// rule did not trigger (for example "PAUSE_CAMPAIGN").
	ActionType string `json:"actionType"`

	// Triggered reports whether the conditions were met and the action
	// was dispatched successfully.
	Triggered bool `json:"triggered"`

	// Reason is a human-readable explanation of the outcome.
	Reason string `json:"reason"`

	// Timestamp is when the entry was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Metadata carries additional evaluation context, such as the
	// per-condition outcomes behind the decision.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e *LogEntry) Clone() *LogEntry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Metadata != nil {
		clone.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// Query defines filter parameters for reading back log entries.
// Zero-valued fields are ignored.
type Query struct {
	// RuleID filters to entries for a single rule.
	RuleID string

	// CampaignID filters to entries for a single campaign.
	CampaignID string

	// Triggered filters by trigger outcome when non-nil.
	Triggered *bool

	// Since excludes entries recorded before the given time when non-nil.
	Since *time.Time

	// Limit caps the number of entries returned. Zero means
	// DefaultQueryLimit; negative means no limit.
	Limit int
}

// Stats summarizes the entries currently retained by a Store.
type Stats struct {
	// TotalLogs is the number of entries currently retained.
	TotalLogs int `json:"totalLogs"`

	// TriggeredCount is the number of retained entries with Triggered set.
	TriggeredCount int `json:"triggeredCount"`

	// RecentLogs is the number of entries recorded within the last
	// 24 hours.
	RecentLogs int `json:"recentLogs"`

	// SuccessRate is TriggeredCount over TotalLogs as a percentage, or 0
	// when the store is empty.
	SuccessRate float64 `json:"successRate"`
}

// ArchiveSink receives entries evicted from the in-memory store when it
// reaches capacity. Implementations must be safe for concurrent use.
type ArchiveSink interface {
	// Archive persists the given evicted entries. Entries are passed in
	// eviction order (oldest first).
	Archive(ctx context.Context, entries []*LogEntry) error
}
