package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

// Helper functions

func testRule() *rules.Rule {
	return &rules.Rule{
		ID:         "a1b2c3d4-0000-0000-0000-000000000000",
		Name:       "high spend low roas",
		CampaignID: "camp-1",
		Conditions: []rules.Condition{
			{Field: "spend", Operator: rules.OperatorGreaterThan, Threshold: 100, LogicalOperatorToNext: rules.LogicalAnd},
			{Field: "roas", Operator: rules.OperatorLessThan, Threshold: 1.5},
		},
		Action:    rules.Action{Type: rules.ActionPauseCampaign},
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestRenderRules(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRules(&buf, []*rules.Rule{testRule()}); err != nil {
		t.Fatalf("RenderRules() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"high spend low roas", "camp-1", "spend > 100 AND roas < 1.5", "PAUSE_CAMPAIGN", "never"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderRules_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRules(&buf, nil); err != nil {
		t.Fatalf("RenderRules() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No rules loaded.") {
		t.Errorf("empty list output = %q", buf.String())
	}
}

func TestRenderConditions_DefaultsToAnd(t *testing.T) {
	conditions := []rules.Condition{
		{Field: "cpc", Operator: rules.OperatorGreaterThan, Threshold: 2},
		{Field: "costPerAction", Operator: rules.OperatorGreaterThan, Threshold: 10},
	}

	got := renderConditions(conditions)
	want := "cpc > 2 AND costPerAction > 10"
	if got != want {
		t.Errorf("renderConditions() = %q, want %q", got, want)
	}
}

func TestRenderLogs(t *testing.T) {
	entries := []*audit.LogEntry{
		{
			RuleName:   "pause rule",
			CampaignID: "camp-1",
			ActionType: "PAUSE_CAMPAIGN",
			Triggered:  true,
			Reason:     "action executed",
			Timestamp:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := RenderLogs(&buf, entries); err != nil {
		t.Fatalf("RenderLogs() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"pause rule", "camp-1", "action executed", "2026-08-01T12:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	err := RenderStats(&buf, engine.Stats{
		TotalRules:     4,
		ActiveRules:    3,
		TotalLogs:      10,
		TriggeredCount: 5,
		SuccessRate:    50,
	})
	if err != nil {
		t.Fatalf("RenderStats() error = %v", err)
	}
	if !strings.Contains(buf.String(), "50.0%") {
		t.Errorf("output missing success rate:\n%s", buf.String())
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("a1b2c3d4-0000"); got != "a1b2c3d4" {
		t.Errorf("shortID() = %q, want %q", got, "a1b2c3d4")
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q, want %q", got, "abc")
	}
}
