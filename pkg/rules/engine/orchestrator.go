package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/insights"
	"github.com/helios-hq/meridian/pkg/rules"
)

// ActionResult is the outcome of a successful action dispatch.
type ActionResult struct {
	// Detail is a human-readable description of what the executor did,
	// e.g. "campaign paused".
	Detail string

	// Metadata carries executor-specific context merged into the rule's
	// log entry.
	Metadata map[string]string
}

// ActionExecutor dispatches the side effect a triggered rule requests.
// Implementations must be safe for concurrent use across campaigns.
type ActionExecutor interface {
	// Execute performs the rule's action against its campaign. A non-nil
	// error marks the dispatch as failed; the rule is then logged as not
	// triggered and its LastTriggeredAt is left unchanged.
	Execute(ctx context.Context, rule *rules.Rule) (*ActionResult, error)
}

// EvaluationRecorder receives engine telemetry. All methods must be safe
// for concurrent use. telemetry/metrics.Collector satisfies this
// interface.
type EvaluationRecorder interface {
	RecordRuleEvaluation(ruleID, outcome string)
	RecordActionExecution(actionType, status string)
	RecordProviderFailure(campaignID string)
	RecordCampaignPass(campaignID string, duration time.Duration)
	UpdateLogCount(count int)
	UpdateRuleCounts(total, active int)
}

type noopRecorder struct{}

func (noopRecorder) RecordRuleEvaluation(string, string)      {}
func (noopRecorder) RecordActionExecution(string, string)     {}
func (noopRecorder) RecordProviderFailure(string)             {}
func (noopRecorder) RecordCampaignPass(string, time.Duration) {}
func (noopRecorder) UpdateLogCount(int)                       {}
func (noopRecorder) UpdateRuleCounts(int, int)                {}

// Dependencies bundles the collaborators an Engine needs.
type Dependencies struct {
	// Rules is the rule store consulted on every pass.
	Rules *rules.Store

	// Logs receives one entry per active rule per pass.
	Logs *audit.Store

	// Provider supplies campaign metric snapshots.
	Provider insights.Provider

	// Executor dispatches triggered actions.
	Executor ActionExecutor

	// Logger is used for structured engine logging. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Metrics receives engine telemetry. Optional.
	Metrics EvaluationRecorder
}

// Engine is the execution orchestrator. It pulls metric snapshots,
// evaluates every active rule against its campaign, dispatches actions
// for triggered rules, and records exactly one log entry per active rule
// per pass.
type Engine struct {
	config   *Config
	store    *rules.Store
	logs     *audit.Store
	provider insights.Provider
	executor ActionExecutor
	logger   *slog.Logger
	metrics  EvaluationRecorder
}

// New creates an engine. A nil config uses DefaultConfig.
func New(config *Config, deps Dependencies) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Rules == nil {
		return nil, fmt.Errorf("rule store cannot be nil")
	}
	if deps.Logs == nil {
		return nil, fmt.Errorf("log store cannot be nil")
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("metrics provider cannot be nil")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("action executor cannot be nil")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Engine{
		config:   config,
		store:    deps.Rules,
		logs:     deps.Logs,
		provider: deps.Provider,
		executor: deps.Executor,
		logger:   logger.With("component", "engine"),
		metrics:  recorder,
	}, nil
}

// CampaignSummary reports one campaign's evaluation outcome.
type CampaignSummary struct {
	CampaignID     string `json:"campaignId"`
	RulesEvaluated int    `json:"rulesEvaluated"`
	RulesTriggered int    `json:"rulesTriggered"`
}

// ProcessCampaign runs one evaluation pass for a single campaign: it
// fetches the campaign's snapshot, evaluates every active rule bound to
// the campaign in store order, dispatches actions for triggered rules,
// and appends one log entry per rule.
//
// A campaign with no active rules is a no-op: nothing is fetched,
// nothing is logged. A provider failure aborts the campaign and returns
// a ProviderError with no entries written. Executor failures are
// absorbed into the affected rule's log entry and never stop the
// remaining rules.
func (e *Engine) ProcessCampaign(ctx context.Context, campaignID string) (*CampaignSummary, error) {
	summary := &CampaignSummary{CampaignID: campaignID}

	active := e.store.ActiveForCampaign(campaignID)
	if len(active) == 0 {
		return summary, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.ProviderTimeout)
	snap, err := e.provider.FetchSnapshot(fetchCtx, campaignID)
	cancel()
	if err != nil {
		provErr := &ProviderError{CampaignID: campaignID, Cause: err}
		e.metrics.RecordProviderFailure(campaignID)
		e.logger.Error("metrics fetch failed, campaign pass aborted",
			"campaign_id", campaignID,
			"error", err)
		return summary, provErr
	}

	derived := insights.ComputeDerived(snap)

	// Rules stay sequential within a campaign so log order and
	// LastTriggeredAt updates are deterministic.
	for _, rule := range active {
		triggered := e.processRule(ctx, rule, snap, derived)
		summary.RulesEvaluated++
		if triggered {
			summary.RulesTriggered++
		}
	}

	e.metrics.UpdateLogCount(e.logs.Len())
	return summary, nil
}

// processRule evaluates one rule, dispatches its action when triggered,
// and appends the rule's log entry. It reports whether the rule ended the
// pass triggered (conditions met and action dispatched).
func (e *Engine) processRule(ctx context.Context, rule *rules.Rule, snap *insights.Snapshot, derived *insights.Derived) bool {
	evaluation := EvaluateRule(rule, snap, derived)

	entry := &audit.LogEntry{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		CampaignID: rule.CampaignID,
		ActionType: string(rule.Action.Type),
		Metadata:   map[string]string{"conditions": evaluation.Summary()},
	}

	triggered := false
	if !evaluation.Triggered {
		entry.Reason = "conditions not met"
		if resErr := evaluation.FirstError(); resErr != nil {
			entry.Reason = fmt.Sprintf("conditions not met: %v", resErr)
		}
		e.metrics.RecordRuleEvaluation(rule.ID, "not_triggered")
	} else {
		execCtx, cancel := context.WithTimeout(ctx, e.config.ExecutorTimeout)
		result, err := e.executor.Execute(execCtx, rule)
		cancel()

		if err != nil {
			execErr := &ExecutorError{
				RuleID:     rule.ID,
				CampaignID: rule.CampaignID,
				ActionType: string(rule.Action.Type),
				Cause:      err,
			}
			entry.Reason = fmt.Sprintf("action failed: %v", err)
			e.metrics.RecordActionExecution(string(rule.Action.Type), "failure")
			e.metrics.RecordRuleEvaluation(rule.ID, "trigger_failed")
			e.logger.Warn("action dispatch failed",
				"rule_id", rule.ID,
				"campaign_id", rule.CampaignID,
				"action", rule.Action.Type,
				"error", execErr)
		} else {
			triggered = true
			entry.Triggered = true
			entry.Reason = "action executed"
			if result != nil {
				if result.Detail != "" {
					entry.Metadata["detail"] = result.Detail
				}
				for k, v := range result.Metadata {
					entry.Metadata[k] = v
				}
			}
			if !e.store.MarkTriggered(rule.ID, time.Now()) {
				// Rule deleted mid-pass; the log entry still stands.
				e.logger.Warn("could not record trigger time",
					"rule_id", rule.ID)
			}
			e.metrics.RecordActionExecution(string(rule.Action.Type), "success")
			e.metrics.RecordRuleEvaluation(rule.ID, "triggered")
			e.logger.Info("rule triggered",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"campaign_id", rule.CampaignID,
				"action", rule.Action.Type)
		}
	}

	if err := e.logs.Append(ctx, entry); err != nil {
		e.logger.Warn("failed to append log entry",
			"rule_id", rule.ID,
			"error", err)
	}
	return triggered
}

// PassSummary reports the outcome of one full evaluation pass.
type PassSummary struct {
	StartedAt          time.Time     `json:"startedAt"`
	Duration           time.Duration `json:"duration"`
	CampaignsProcessed int           `json:"campaignsProcessed"`
	CampaignsFailed    int           `json:"campaignsFailed"`
	RulesEvaluated     int           `json:"rulesEvaluated"`
	RulesTriggered     int           `json:"rulesTriggered"`
	Errors             []string      `json:"errors,omitempty"`
}

// ProcessAllCampaigns evaluates every distinct campaign that has at least
// one active rule. Campaigns run concurrently, bounded by
// MaxConcurrentCampaigns; rules within one campaign stay sequential.
//
// A failing campaign never stops the others. Per-campaign failures are
// collected into the summary and joined into the returned error; the
// summary is always non-nil.
func (e *Engine) ProcessAllCampaigns(ctx context.Context) (*PassSummary, error) {
	start := time.Now()
	summary := &PassSummary{StartedAt: start}

	campaignIDs := e.store.CampaignIDs()
	if len(campaignIDs) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
		sem  = make(chan struct{}, e.config.MaxConcurrentCampaigns)
	)

	for _, campaignID := range campaignIDs {
		wg.Add(1)
		go func(campaignID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			campaignStart := time.Now()
			cs, err := e.ProcessCampaign(ctx, campaignID)
			e.metrics.RecordCampaignPass(campaignID, time.Since(campaignStart))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.CampaignsFailed++
				summary.Errors = append(summary.Errors, err.Error())
				errs = append(errs, err)
				return
			}
			summary.CampaignsProcessed++
			summary.RulesEvaluated += cs.RulesEvaluated
			summary.RulesTriggered += cs.RulesTriggered
		}(campaignID)
	}
	wg.Wait()

	total, active := e.store.Counts()
	e.metrics.UpdateRuleCounts(total, active)
	summary.Duration = time.Since(start)

	e.logger.Info("evaluation pass complete",
		"campaigns_processed", summary.CampaignsProcessed,
		"campaigns_failed", summary.CampaignsFailed,
		"rules_evaluated", summary.RulesEvaluated,
		"rules_triggered", summary.RulesTriggered,
		"duration", summary.Duration)

	return summary, errors.Join(errs...)
}

// Stats reports combined rule and log statistics.
type Stats struct {
	TotalRules     int     `json:"totalRules"`
	ActiveRules    int     `json:"activeRules"`
	TotalLogs      int     `json:"totalLogs"`
	TriggeredCount int     `json:"triggeredCount"`
	RecentLogs     int     `json:"recentLogs"`
	SuccessRate    float64 `json:"successRate"`
}

// Stats returns a point-in-time snapshot of rule and log counts.
func (e *Engine) Stats() Stats {
	total, active := e.store.Counts()
	logStats := e.logs.Stats()
	return Stats{
		TotalRules:     total,
		ActiveRules:    active,
		TotalLogs:      logStats.TotalLogs,
		TriggeredCount: logStats.TriggeredCount,
		RecentLogs:     logStats.RecentLogs,
		SuccessRate:    logStats.SuccessRate,
	}
}
