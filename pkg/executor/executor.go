// Package executor dispatches the side effects triggered rules request:
// campaign pauses and budget changes against the campaign management API,
// webhook notifications, and structured log events.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

// Config contains configuration for the default action executor.
type Config struct {
	// DryRun disables all external side effects. Every action is logged
	// and reported as executed. Default: false.
	DryRun bool

	// CampaignAPIBase is the root of the campaign management API used by
	// PAUSE_CAMPAIGN and ADJUST_BUDGET, e.g. "https://ads.example.com/v1".
	// When empty and DryRun is off, those actions fail.
	CampaignAPIBase string

	// APIToken is sent as a bearer token on campaign API calls.
	APIToken string

	// WebhookURL receives SEND_NOTIFICATION payloads as JSON POSTs. When
	// empty, notifications degrade to a log line.
	WebhookURL string

	// Timeout bounds each outbound HTTP call. Default: 10s.
	Timeout time.Duration
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}

// DefaultExecutor is the default implementation of engine.ActionExecutor.
// It dispatches on the rule's action type: campaign state changes go to the
// campaign management API, notifications to a webhook, and log events to
// the structured logger.
type DefaultExecutor struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewDefaultExecutor creates a new default action executor.
func NewDefaultExecutor(config Config, logger *slog.Logger) *DefaultExecutor {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultExecutor{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With("component", "executor"),
	}
}

// Execute performs the rule's action and returns the result. A non-nil
// error reports a failed dispatch; the caller decides how to record it.
func (e *DefaultExecutor) Execute(ctx context.Context, rule *rules.Rule) (*engine.ActionResult, error) {
	if rule == nil {
		return nil, fmt.Errorf("rule cannot be nil")
	}

	e.logger.Debug("executing action",
		"type", rule.Action.Type,
		"rule_id", rule.ID,
		"campaign_id", rule.CampaignID,
	)

	switch rule.Action.Type {
	case rules.ActionPauseCampaign:
		return e.executePause(ctx, rule)

	case rules.ActionAdjustBudget:
		return e.executeAdjustBudget(ctx, rule)

	case rules.ActionLogEvent:
		return e.executeLogEvent(rule)

	case rules.ActionSendNotification:
		return e.executeSendNotification(ctx, rule)

	default:
		return nil, fmt.Errorf("unknown action type: %q", rule.Action.Type)
	}
}

// executePause sets the campaign status to PAUSED through the campaign API.
func (e *DefaultExecutor) executePause(ctx context.Context, rule *rules.Rule) (*engine.ActionResult, error) {
	if e.config.DryRun {
		e.logger.Info("dry run: campaign pause skipped",
			"rule_id", rule.ID,
			"campaign_id", rule.CampaignID,
		)
		return &engine.ActionResult{
			Detail:   "campaign pause skipped (dry run)",
			Metadata: map[string]string{"dryRun": "true"},
		}, nil
	}

	if e.config.CampaignAPIBase == "" {
		return nil, fmt.Errorf("campaign API base URL not configured")
	}

	url := fmt.Sprintf("%s/campaigns/%s/status", strings.TrimRight(e.config.CampaignAPIBase, "/"), rule.CampaignID)
	if err := e.postJSON(ctx, url, map[string]string{"status": "PAUSED"}); err != nil {
		return nil, fmt.Errorf("pause campaign %s: %w", rule.CampaignID, err)
	}

	e.logger.Info("campaign paused",
		"rule_id", rule.ID,
		"campaign_id", rule.CampaignID,
	)

	return &engine.ActionResult{Detail: "campaign paused"}, nil
}

// executeAdjustBudget sets the campaign's daily budget through the campaign
// API. The budgetAmount parameter is required and must be positive.
func (e *DefaultExecutor) executeAdjustBudget(ctx context.Context, rule *rules.Rule) (*engine.ActionResult, error) {
	amount := rule.Action.GetNumberParameter("budgetAmount")
	if amount <= 0 {
		return nil, fmt.Errorf("budgetAmount parameter must be positive, got %v", amount)
	}

	formatted := strconv.FormatFloat(amount, 'f', -1, 64)

	if e.config.DryRun {
		e.logger.Info("dry run: budget adjustment skipped",
			"rule_id", rule.ID,
			"campaign_id", rule.CampaignID,
			"budget_amount", amount,
		)
		return &engine.ActionResult{
			Detail: "budget adjustment skipped (dry run)",
			Metadata: map[string]string{
				"dryRun":       "true",
				"budgetAmount": formatted,
			},
		}, nil
	}

	if e.config.CampaignAPIBase == "" {
		return nil, fmt.Errorf("campaign API base URL not configured")
	}

	url := fmt.Sprintf("%s/campaigns/%s/budget", strings.TrimRight(e.config.CampaignAPIBase, "/"), rule.CampaignID)
	if err := e.postJSON(ctx, url, map[string]float64{"dailyBudget": amount}); err != nil {
		return nil, fmt.Errorf("adjust budget for campaign %s: %w", rule.CampaignID, err)
	}

	e.logger.Info("campaign budget adjusted",
		"rule_id", rule.ID,
		"campaign_id", rule.CampaignID,
		"budget_amount", amount,
	)

	return &engine.ActionResult{
		Detail:   fmt.Sprintf("budget adjusted to %s", formatted),
		Metadata: map[string]string{"budgetAmount": formatted},
	}, nil
}

// executeLogEvent writes a structured log line. The message parameter
// defaults to a generic notice; level selects the log level.
func (e *DefaultExecutor) executeLogEvent(rule *rules.Rule) (*engine.ActionResult, error) {
	message := rule.Action.GetStringParameter("message")
	if message == "" {
		message = fmt.Sprintf("rule %q triggered", rule.Name)
	}

	level := rule.Action.GetStringParameter("level")
	if level == "" {
		level = "info"
	}

	args := []any{
		"rule_id", rule.ID,
		"rule_name", rule.Name,
		"campaign_id", rule.CampaignID,
	}

	switch level {
	case "debug":
		e.logger.Debug(message, args...)
	case "warn":
		e.logger.Warn(message, args...)
	case "error":
		e.logger.Error(message, args...)
	default:
		e.logger.Info(message, args...)
	}

	return &engine.ActionResult{
		Detail:   "event logged",
		Metadata: map[string]string{"level": level},
	}, nil
}

// notificationPayload is the wire shape of a webhook notification.
type notificationPayload struct {
	RuleID     string    `json:"ruleId"`
	RuleName   string    `json:"ruleName"`
	CampaignID string    `json:"campaignId"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// executeSendNotification POSTs a notification to the configured webhook.
// Without a webhook URL the notification degrades to a log line and still
// counts as executed.
func (e *DefaultExecutor) executeSendNotification(ctx context.Context, rule *rules.Rule) (*engine.ActionResult, error) {
	message := rule.Action.GetStringParameter("message")
	if message == "" {
		message = fmt.Sprintf("rule %q triggered for campaign %s", rule.Name, rule.CampaignID)
	}

	severity := rule.Action.GetStringParameter("severity")
	if severity == "" {
		severity = "info"
	}

	if e.config.DryRun {
		e.logger.Info("dry run: notification skipped",
			"rule_id", rule.ID,
			"campaign_id", rule.CampaignID,
			"message", message,
		)
		return &engine.ActionResult{
			Detail:   "notification skipped (dry run)",
			Metadata: map[string]string{"dryRun": "true"},
		}, nil
	}

	if e.config.WebhookURL == "" {
		e.logger.Info("notification (no webhook configured)",
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"campaign_id", rule.CampaignID,
			"severity", severity,
			"message", message,
		)
		return &engine.ActionResult{
			Detail:   "notification logged (no webhook configured)",
			Metadata: map[string]string{"severity": severity},
		}, nil
	}

	payload := notificationPayload{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		CampaignID: rule.CampaignID,
		Severity:   severity,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.postJSON(ctx, e.config.WebhookURL, payload); err != nil {
		return nil, fmt.Errorf("send notification for rule %s: %w", rule.ID, err)
	}

	e.logger.Info("notification sent",
		"rule_id", rule.ID,
		"campaign_id", rule.CampaignID,
		"severity", severity,
	)

	return &engine.ActionResult{
		Detail:   "notification sent",
		Metadata: map[string]string{"severity": severity},
	}, nil
}

// postJSON sends a JSON POST and expects a 2xx response.
func (e *DefaultExecutor) postJSON(ctx context.Context, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
