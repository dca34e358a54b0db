package rules

import (
	"fmt"
	"strings"
	"time"
)

// Operator is a numeric comparison operator in a rule condition.
type Operator string

const (
	OperatorGreaterThan  Operator = ">"
	OperatorLessThan     Operator = "<"
	OperatorGreaterEqual Operator = ">="
	OperatorLessEqual    Operator = "<="
	OperatorEqual        Operator = "="
	OperatorNotEqual     Operator = "!="
)

// Valid reports whether the operator is one of the recognized comparisons.
func (o Operator) Valid() bool {
	switch o {
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterEqual,
		OperatorLessEqual, OperatorEqual, OperatorNotEqual:
		return true
	default:
		return false
	}
}

// LogicalOperator combines a condition's result with the next condition's
// result in the evaluation fold.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// ActionType identifies the side effect a rule triggers.
type ActionType string

const (
	ActionPauseCampaign    ActionType = "PAUSE_CAMPAIGN"
	ActionAdjustBudget     ActionType = "ADJUST_BUDGET"
	ActionLogEvent         ActionType = "LOG_EVENT"
	ActionSendNotification ActionType = "SEND_NOTIFICATION"
)

// Valid reports whether the action type is recognized.
func (a ActionType) Valid() bool {
	switch a {
	case ActionPauseCampaign, ActionAdjustBudget, ActionLogEvent, ActionSendNotification:
		return true
	default:
		return false
	}
}

// Metric fields a condition may reference. The set is closed: conditions
// referencing any other field are rejected at validation time.
const (
	FieldSpend       = "spend"
	FieldClicks      = "clicks"
	FieldImpressions = "impressions"
	FieldCTR         = "ctr"
	FieldCPC         = "cpc"
	FieldCPM         = "cpm"
	FieldReach       = "reach"
	FieldFrequency   = "frequency"

	FieldROAS           = "roas"
	FieldCostPerAction  = "costPerAction"
	FieldConversionRate = "conversionRate"
)

// KnownFields returns the supported condition fields in display order.
func KnownFields() []string {
	return []string{
		FieldSpend, FieldClicks, FieldImpressions, FieldCTR, FieldCPC,
		FieldCPM, FieldReach, FieldFrequency,
		FieldROAS, FieldCostPerAction, FieldConversionRate,
	}
}

// IsKnownField reports whether conditions may reference the given field.
func IsKnownField(field string) bool {
	switch field {
	case FieldSpend, FieldClicks, FieldImpressions, FieldCTR, FieldCPC,
		FieldCPM, FieldReach, FieldFrequency,
		FieldROAS, FieldCostPerAction, FieldConversionRate:
		return true
	default:
		return false
	}
}

// Condition is one comparison inside a rule: a metric field, an operator,
// and a threshold.
type Condition struct {
	// ID uniquely identifies the condition within its rule. Assigned by
	// the store at creation.
	ID string `json:"id" yaml:"id,omitempty"`

	// Field is the metric name to resolve, e.g. "spend" or "roas".
	Field string `json:"field" yaml:"field"`

	// Operator is the comparison applied to the resolved value.
	Operator Operator `json:"operator" yaml:"operator"`

	// Threshold is the right-hand side of the comparison.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// LogicalOperatorToNext combines this condition's result with the NEXT
	// condition's result in the left-to-right fold. It has no effect on
	// the last condition. Empty defaults to AND.
	LogicalOperatorToNext LogicalOperator `json:"logicalOperatorToNext,omitempty" yaml:"logicalOperatorToNext,omitempty"`
}

// Action is the side effect a rule requests when it triggers.
type Action struct {
	// Type selects the executor behavior.
	Type ActionType `json:"type" yaml:"type"`

	// Parameters carries action-specific settings, e.g. the budget amount
	// for ADJUST_BUDGET or the message for SEND_NOTIFICATION.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// GetStringParameter returns a string parameter value, or "" if absent or
// not a string.
func (a Action) GetStringParameter(key string) string {
	v, ok := a.Parameters[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetNumberParameter returns a numeric parameter value, or 0 if absent or
// not numeric.
func (a Action) GetNumberParameter(key string) float64 {
	v, ok := a.Parameters[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Rule is an operator-defined automation rule bound to one campaign.
// Rules are owned exclusively by the Store; callers always receive copies.
type Rule struct {
	// ID uniquely identifies the rule. Assigned by the store.
	ID string `json:"id" yaml:"id,omitempty"`

	// Name is a human-readable label. Required.
	Name string `json:"name" yaml:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// CampaignID binds the rule to one campaign. Required.
	CampaignID string `json:"campaignId" yaml:"campaignId"`

	// Conditions is the ordered, non-empty condition sequence.
	Conditions []Condition `json:"conditions" yaml:"conditions"`

	// Action is executed when the conditions fold to true.
	Action Action `json:"action" yaml:"action"`

	// IsActive gates evaluation; inactive rules are skipped entirely.
	IsActive bool `json:"isActive" yaml:"isActive"`

	// CreatedAt is set once at creation and never changes.
	CreatedAt time.Time `json:"createdAt" yaml:"-"`

	// UpdatedAt is refreshed on every user update.
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`

	// LastTriggeredAt records the most recent successful triggered
	// execution. Set only by the evaluation pass, never by user edits.
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty" yaml:"-"`
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}

	c := *r
	c.Conditions = make([]Condition, len(r.Conditions))
	copy(c.Conditions, r.Conditions)

	if r.Action.Parameters != nil {
		c.Action.Parameters = make(map[string]any, len(r.Action.Parameters))
		for k, v := range r.Action.Parameters {
			c.Action.Parameters[k] = v
		}
	}

	if r.LastTriggeredAt != nil {
		t := *r.LastTriggeredAt
		c.LastTriggeredAt = &t
	}

	return &c
}

// CreateRule is the input for Store.Add. The store assigns the rule ID,
// condition IDs, and timestamps.
type CreateRule struct {
	// ID optionally fixes the rule ID; file-defined rules use it to stay
	// stable across reloads. Empty means the store assigns one.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	CampaignID  string      `json:"campaignId" yaml:"campaignId"`
	Conditions  []Condition `json:"conditions" yaml:"conditions"`
	Action      Action      `json:"action" yaml:"action"`

	// IsActive defaults to true when nil.
	IsActive *bool `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

// UpdateRule is the partial-update input for Store.Update. Nil fields are
// left unchanged; ID and CreatedAt can never change.
type UpdateRule struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	CampaignID  *string     `json:"campaignId,omitempty"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Action      *Action     `json:"action,omitempty"`
	IsActive    *bool       `json:"isActive,omitempty"`
}

// ValidationError reports why a rule specification was rejected. It is the
// only error surfaced synchronously to callers as a hard rejection; nothing
// is stored or logged for a rejected rule.
type ValidationError struct {
	RuleName string
	Errors   []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	name := e.RuleName
	if name == "" {
		name = "(unnamed)"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("rule %s: validation error: %s", name, e.Errors[0])
	}
	return fmt.Sprintf("rule %s: %d validation errors: %v", name, len(e.Errors), e.Errors)
}

// Validate checks the specification and returns a ValidationError listing
// every problem found, or nil when the spec is acceptable.
func (s *CreateRule) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if strings.TrimSpace(s.CampaignID) == "" {
		errs = append(errs, "campaignId cannot be empty")
	}
	if len(s.Conditions) == 0 {
		errs = append(errs, "conditions cannot be empty")
	}

	for i, c := range s.Conditions {
		if strings.TrimSpace(c.Field) == "" {
			errs = append(errs, fmt.Sprintf("condition %d: field cannot be empty", i))
		} else if !IsKnownField(c.Field) {
			errs = append(errs, fmt.Sprintf("condition %d: unknown field %q", i, c.Field))
		}
		if !c.Operator.Valid() {
			errs = append(errs, fmt.Sprintf("condition %d: unknown operator %q", i, c.Operator))
		}
		switch c.LogicalOperatorToNext {
		case "", LogicalAnd, LogicalOr:
		default:
			errs = append(errs, fmt.Sprintf("condition %d: unknown logical operator %q", i, c.LogicalOperatorToNext))
		}
	}

	if !s.Action.Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown action type %q", s.Action.Type))
	}

	if len(errs) > 0 {
		return &ValidationError{RuleName: s.Name, Errors: errs}
	}
	return nil
}
