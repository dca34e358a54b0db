package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/insights"
	"github.com/helios-hq/meridian/pkg/rules"
)

func TestNew_Validation(t *testing.T) {
	store := rules.NewStore()
	logs := audit.NewStore()
	provider := &stubProvider{}
	executor := &stubExecutor{}

	tests := []struct {
		name    string
		config  *Config
		deps    Dependencies
		wantErr bool
	}{
		{
			name:   "valid",
			config: nil,
			deps:   Dependencies{Rules: store, Logs: logs, Provider: provider, Executor: executor},
		},
		{
			name:    "invalid config",
			config:  &Config{ProviderTimeout: -1},
			deps:    Dependencies{Rules: store, Logs: logs, Provider: provider, Executor: executor},
			wantErr: true,
		},
		{
			name:    "nil rule store",
			deps:    Dependencies{Logs: logs, Provider: provider, Executor: executor},
			wantErr: true,
		},
		{
			name:    "nil log store",
			deps:    Dependencies{Rules: store, Provider: provider, Executor: executor},
			wantErr: true,
		},
		{
			name:    "nil provider",
			deps:    Dependencies{Rules: store, Logs: logs, Executor: executor},
			wantErr: true,
		},
		{
			name:    "nil executor",
			deps:    Dependencies{Rules: store, Logs: logs, Provider: provider},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config, tt.deps)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcessCampaign_TriggeredRule(t *testing.T) {
	eng, store, logs, provider, executor := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{
		CampaignID: "camp-001",
		Spend:      150,
		Actions:    []insights.ActionStat{{Kind: "initiate_checkout", Count: 3.6}},
	})

	rule := mustAdd(t, store, rules.CreateRule{
		Name:       "pause on overspend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{
			{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100, LogicalOperatorToNext: rules.LogicalAnd},
			{Field: rules.FieldROAS, Operator: rules.OperatorLessThan, Threshold: 1.5},
		},
		Action: rules.Action{Type: rules.ActionPauseCampaign},
	})

	summary, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err != nil {
		t.Fatalf("ProcessCampaign() error = %v", err)
	}
	if summary.RulesEvaluated != 1 || summary.RulesTriggered != 1 {
		t.Errorf("summary = %+v, want 1 evaluated, 1 triggered", summary)
	}

	if got := executor.callCount(); got != 1 {
		t.Fatalf("executor called %d times, want 1", got)
	}
	if executor.calls[0].ID != rule.ID {
		t.Errorf("executor got rule %s, want %s", executor.calls[0].ID, rule.ID)
	}

	entries := logs.Query(audit.Query{})
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if !entry.Triggered {
		t.Error("entry.Triggered = false, want true")
	}
	if entry.Reason != "action executed" {
		t.Errorf("entry.Reason = %q, want %q", entry.Reason, "action executed")
	}
	if entry.ActionType != string(rules.ActionPauseCampaign) {
		t.Errorf("entry.ActionType = %q, want PAUSE_CAMPAIGN", entry.ActionType)
	}
	if !strings.Contains(entry.Metadata["conditions"], "spend(150) > 100 => true") {
		t.Errorf("conditions metadata = %q, want the spend comparison trail", entry.Metadata["conditions"])
	}

	stored, _ := store.Get(rule.ID)
	if stored.LastTriggeredAt == nil {
		t.Error("LastTriggeredAt = nil after successful trigger, want set")
	}
}

func TestProcessCampaign_ConditionsNotMet(t *testing.T) {
	eng, store, logs, provider, executor := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 50})

	rule := mustAdd(t, store, rules.CreateRule{
		Name:       "overspend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{
			{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100},
		},
		Action: rules.Action{Type: rules.ActionPauseCampaign},
	})

	summary, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err != nil {
		t.Fatalf("ProcessCampaign() error = %v", err)
	}
	if summary.RulesEvaluated != 1 || summary.RulesTriggered != 0 {
		t.Errorf("summary = %+v, want 1 evaluated, 0 triggered", summary)
	}
	if executor.callCount() != 0 {
		t.Error("executor called for a rule whose conditions were not met")
	}

	entries := logs.Query(audit.Query{})
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if entries[0].Triggered {
		t.Error("entry.Triggered = true, want false")
	}
	if entries[0].Reason != "conditions not met" {
		t.Errorf("entry.Reason = %q, want %q", entries[0].Reason, "conditions not met")
	}

	stored, _ := store.Get(rule.ID)
	if stored.LastTriggeredAt != nil {
		t.Error("LastTriggeredAt set without a trigger")
	}
}

// TestProcessCampaign_NoActiveRules verifies a campaign without active
// rules produces no log entries and touches neither collaborator.
func TestProcessCampaign_NoActiveRules(t *testing.T) {
	eng, store, logs, provider, executor := newTestEngine(t)

	// One inactive rule on the campaign, one active rule elsewhere.
	inactive := false
	mustAdd(t, store, rules.CreateRule{
		Name:       "disabled",
		CampaignID: "camp-001",
		IsActive:   &inactive,
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 0}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})
	mustAdd(t, store, rules.CreateRule{
		Name:       "other campaign",
		CampaignID: "camp-999",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 0}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	summary, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err != nil {
		t.Fatalf("ProcessCampaign() error = %v", err)
	}
	if summary.RulesEvaluated != 0 {
		t.Errorf("RulesEvaluated = %d, want 0", summary.RulesEvaluated)
	}
	if logs.Len() != 0 {
		t.Errorf("log entries = %d, want 0", logs.Len())
	}
	if executor.callCount() != 0 {
		t.Error("executor called with no active rules")
	}
	if provider.callCount() != 0 {
		t.Error("provider called with no active rules")
	}
}

// TestProcessCampaign_ExecutorFailure verifies a failed dispatch logs
// triggered=false, leaves LastTriggeredAt unset, and does not stop the
// remaining rules.
func TestProcessCampaign_ExecutorFailure(t *testing.T) {
	eng, store, logs, provider, executor := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 150})
	executor.failFor = "pause on overspend"

	failing := mustAdd(t, store, rules.CreateRule{
		Name:       "pause on overspend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionPauseCampaign},
	})
	healthy := mustAdd(t, store, rules.CreateRule{
		Name:       "log overspend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	summary, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err != nil {
		t.Fatalf("ProcessCampaign() error = %v, executor failures must stay local", err)
	}
	if summary.RulesEvaluated != 2 {
		t.Errorf("RulesEvaluated = %d, want 2 (failure must not stop the pass)", summary.RulesEvaluated)
	}
	if summary.RulesTriggered != 1 {
		t.Errorf("RulesTriggered = %d, want 1 (only the healthy rule)", summary.RulesTriggered)
	}

	entries := logs.Query(audit.Query{RuleID: failing.ID})
	if len(entries) != 1 {
		t.Fatalf("entries for failing rule = %d, want 1", len(entries))
	}
	if entries[0].Triggered {
		t.Error("entry.Triggered = true for failed dispatch, want false")
	}
	if !strings.Contains(entries[0].Reason, "action failed") {
		t.Errorf("entry.Reason = %q, want failure detail", entries[0].Reason)
	}

	storedFailing, _ := store.Get(failing.ID)
	if storedFailing.LastTriggeredAt != nil {
		t.Error("LastTriggeredAt set despite executor failure")
	}
	storedHealthy, _ := store.Get(healthy.ID)
	if storedHealthy.LastTriggeredAt == nil {
		t.Error("LastTriggeredAt = nil for the healthy rule, want set")
	}
}

func TestProcessCampaign_ProviderFailure(t *testing.T) {
	eng, store, logs, provider, executor := newTestEngine(t)
	provider.failWith = errors.New("upstream 503")

	mustAdd(t, store, rules.CreateRule{
		Name:       "overspend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 0}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	_, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err == nil {
		t.Fatal("ProcessCampaign() error = nil, want ProviderError")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %T, want *ProviderError", err)
	}
	if provErr.CampaignID != "camp-001" {
		t.Errorf("CampaignID = %q, want camp-001", provErr.CampaignID)
	}
	if logs.Len() != 0 {
		t.Errorf("log entries = %d after provider failure, want 0", logs.Len())
	}
	if executor.callCount() != 0 {
		t.Error("executor called after provider failure")
	}
}

// TestProcessCampaign_AbsentSnapshot verifies the window-without-data
// case: raw fields resolve to 0 and derived conditions cannot trigger.
func TestProcessCampaign_AbsentSnapshot(t *testing.T) {
	eng, store, logs, provider, _ := newTestEngine(t)
	provider.set("camp-001", nil) // provider responds with no data

	mustAdd(t, store, rules.CreateRule{
		Name:       "low spend",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorLessEqual, Threshold: 10}},
		Action:     rules.Action{Type: rules.ActionSendNotification},
	})
	mustAdd(t, store, rules.CreateRule{
		Name:       "roas watch",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldROAS, Operator: rules.OperatorGreaterThan, Threshold: 0}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	summary, err := eng.ProcessCampaign(context.Background(), "camp-001")
	if err != nil {
		t.Fatalf("ProcessCampaign() error = %v, absent snapshot is not a failure", err)
	}
	if summary.RulesEvaluated != 2 {
		t.Errorf("RulesEvaluated = %d, want 2", summary.RulesEvaluated)
	}
	// spend 0 <= 10 holds; roas is undefined so that rule cannot trigger.
	if summary.RulesTriggered != 1 {
		t.Errorf("RulesTriggered = %d, want 1", summary.RulesTriggered)
	}

	roasEntries := logs.Query(audit.Query{CampaignID: "camp-001", Limit: -1})
	if len(roasEntries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(roasEntries))
	}
}

// TestProcessCampaign_OneEntryPerRulePerPass verifies the log contract
// across repeated passes.
func TestProcessCampaign_OneEntryPerRulePerPass(t *testing.T) {
	eng, store, logs, provider, _ := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 150})

	for _, name := range []string{"rule a", "rule b", "rule c"} {
		mustAdd(t, store, rules.CreateRule{
			Name:       name,
			CampaignID: "camp-001",
			Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
			Action:     rules.Action{Type: rules.ActionLogEvent},
		})
	}

	for pass := 1; pass <= 2; pass++ {
		if _, err := eng.ProcessCampaign(context.Background(), "camp-001"); err != nil {
			t.Fatal(err)
		}
		if got := logs.Len(); got != 3*pass {
			t.Errorf("after pass %d: log entries = %d, want %d", pass, got, 3*pass)
		}
	}
}

// TestProcessCampaign_LogsSurviveRuleDeletion verifies past entries stay
// queryable after their rule is removed.
func TestProcessCampaign_LogsSurviveRuleDeletion(t *testing.T) {
	eng, store, logs, provider, _ := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 150})

	rule := mustAdd(t, store, rules.CreateRule{
		Name:       "short lived",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	if _, err := eng.ProcessCampaign(context.Background(), "camp-001"); err != nil {
		t.Fatal(err)
	}
	if !store.Delete(rule.ID) {
		t.Fatal("Delete() = false, want true")
	}

	entries := logs.Query(audit.Query{RuleID: rule.ID})
	if len(entries) != 1 {
		t.Fatalf("entries after rule deletion = %d, want 1", len(entries))
	}
	if entries[0].RuleID != rule.ID {
		t.Errorf("entry.RuleID = %q, want %q", entries[0].RuleID, rule.ID)
	}
}

func TestProcessAllCampaigns(t *testing.T) {
	eng, store, logs, provider, _ := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 150})
	provider.set("camp-002", &insights.Snapshot{CampaignID: "camp-002", Spend: 20})

	mustAdd(t, store, rules.CreateRule{
		Name:       "overspend one",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})
	mustAdd(t, store, rules.CreateRule{
		Name:       "overspend two",
		CampaignID: "camp-002",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	summary, err := eng.ProcessAllCampaigns(context.Background())
	if err != nil {
		t.Fatalf("ProcessAllCampaigns() error = %v", err)
	}
	if summary.CampaignsProcessed != 2 {
		t.Errorf("CampaignsProcessed = %d, want 2", summary.CampaignsProcessed)
	}
	if summary.RulesEvaluated != 2 {
		t.Errorf("RulesEvaluated = %d, want 2", summary.RulesEvaluated)
	}
	if summary.RulesTriggered != 1 {
		t.Errorf("RulesTriggered = %d, want 1", summary.RulesTriggered)
	}
	if logs.Len() != 2 {
		t.Errorf("log entries = %d, want 2", logs.Len())
	}
}

// TestProcessAllCampaigns_FailureIsolation verifies one campaign's
// provider failure leaves the other campaigns' passes intact.
func TestProcessAllCampaigns_FailureIsolation(t *testing.T) {
	eng, store, logs, provider, _ := newTestEngine(t)
	provider.set("camp-ok", &insights.Snapshot{CampaignID: "camp-ok", Spend: 150})
	provider.failFor = "camp-bad"

	for _, campaignID := range []string{"camp-ok", "camp-bad"} {
		mustAdd(t, store, rules.CreateRule{
			Name:       "overspend " + campaignID,
			CampaignID: campaignID,
			Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
			Action:     rules.Action{Type: rules.ActionLogEvent},
		})
	}

	summary, err := eng.ProcessAllCampaigns(context.Background())
	if err == nil {
		t.Fatal("ProcessAllCampaigns() error = nil, want joined campaign error")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("error = %v, want to unwrap *ProviderError", err)
	}

	if summary.CampaignsProcessed != 1 {
		t.Errorf("CampaignsProcessed = %d, want 1", summary.CampaignsProcessed)
	}
	if summary.CampaignsFailed != 1 {
		t.Errorf("CampaignsFailed = %d, want 1", summary.CampaignsFailed)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1", len(summary.Errors))
	}

	entries := logs.Query(audit.Query{CampaignID: "camp-ok"})
	if len(entries) != 1 {
		t.Errorf("entries for healthy campaign = %d, want 1", len(entries))
	}
	if got := logs.Query(audit.Query{CampaignID: "camp-bad"}); len(got) != 0 {
		t.Errorf("entries written for the failed campaign: %d", len(got))
	}
}

func TestProcessAllCampaigns_NoCampaigns(t *testing.T) {
	eng, _, _, _, _ := newTestEngine(t)

	summary, err := eng.ProcessAllCampaigns(context.Background())
	if err != nil {
		t.Fatalf("ProcessAllCampaigns() error = %v", err)
	}
	if summary.CampaignsProcessed != 0 || summary.RulesEvaluated != 0 {
		t.Errorf("summary = %+v, want zeros", summary)
	}
}

func TestEngineStats(t *testing.T) {
	eng, store, _, provider, _ := newTestEngine(t)
	provider.set("camp-001", &insights.Snapshot{CampaignID: "camp-001", Spend: 150})

	inactive := false
	mustAdd(t, store, rules.CreateRule{
		Name:       "triggers",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 100}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})
	mustAdd(t, store, rules.CreateRule{
		Name:       "does not trigger",
		CampaignID: "camp-001",
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 1000}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})
	mustAdd(t, store, rules.CreateRule{
		Name:       "disabled",
		CampaignID: "camp-001",
		IsActive:   &inactive,
		Conditions: []rules.Condition{{Field: rules.FieldSpend, Operator: rules.OperatorGreaterThan, Threshold: 0}},
		Action:     rules.Action{Type: rules.ActionLogEvent},
	})

	if _, err := eng.ProcessCampaign(context.Background(), "camp-001"); err != nil {
		t.Fatal(err)
	}

	stats := eng.Stats()
	if stats.TotalRules != 3 {
		t.Errorf("TotalRules = %d, want 3", stats.TotalRules)
	}
	if stats.ActiveRules != 2 {
		t.Errorf("ActiveRules = %d, want 2", stats.ActiveRules)
	}
	if stats.TotalLogs != 2 {
		t.Errorf("TotalLogs = %d, want 2", stats.TotalLogs)
	}
	if stats.TriggeredCount != 1 {
		t.Errorf("TriggeredCount = %d, want 1", stats.TriggeredCount)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("SuccessRate = %v, want 50", stats.SuccessRate)
	}
}

// Helper functions

type stubProvider struct {
	mu        sync.Mutex
	snapshots map[string]*insights.Snapshot
	failWith  error
	failFor   string
	calls     []string
}

func (p *stubProvider) set(campaignID string, snap *insights.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshots == nil {
		p.snapshots = make(map[string]*insights.Snapshot)
	}
	p.snapshots[campaignID] = snap
}

func (p *stubProvider) FetchSnapshot(_ context.Context, campaignID string) (*insights.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, campaignID)
	if p.failWith != nil {
		return nil, p.failWith
	}
	if p.failFor != "" && p.failFor == campaignID {
		return nil, errors.New("upstream 503")
	}
	return p.snapshots[campaignID], nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type stubExecutor struct {
	mu      sync.Mutex
	calls   []*rules.Rule
	failFor string // rule name that fails dispatch
}

func (x *stubExecutor) Execute(_ context.Context, rule *rules.Rule) (*ActionResult, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, rule)
	if x.failFor != "" && rule.Name == x.failFor {
		return nil, errors.New("campaign api rejected the request")
	}
	return &ActionResult{Detail: "done"}, nil
}

func (x *stubExecutor) callCount() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.calls)
}

func newTestEngine(t *testing.T) (*Engine, *rules.Store, *audit.Store, *stubProvider, *stubExecutor) {
	t.Helper()

	store := rules.NewStore()
	logs := audit.NewStore()
	provider := &stubProvider{}
	executor := &stubExecutor{}

	cfg := DefaultConfig().
		WithProviderTimeout(time.Second).
		WithExecutorTimeout(time.Second)

	eng, err := New(cfg, Dependencies{
		Rules:    store,
		Logs:     logs,
		Provider: provider,
		Executor: executor,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng, store, logs, provider, executor
}

func mustAdd(t *testing.T, store *rules.Store, spec rules.CreateRule) *rules.Rule {
	t.Helper()
	rule, err := store.Add(spec)
	if err != nil {
		t.Fatalf("Add(%s) error = %v", spec.Name, err)
	}
	return rule
}
