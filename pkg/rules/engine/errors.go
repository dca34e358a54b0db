package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrUnknownField indicates a condition references a field the
	// resolver does not know.
	ErrUnknownField = errors.New("unknown metric field")

	// ErrMissingValue indicates a derived metric is undefined for the
	// current snapshot (for example roas with zero spend).
	ErrMissingValue = errors.New("metric value unavailable")
)

// UnknownFieldError indicates a condition references a field outside the
// supported metric set. The condition evaluates to false; evaluation of
// the rest of the rule continues.
type UnknownFieldError struct {
	Field string
}

// Error returns the error message.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown metric field: %q", e.Field)
}

// Unwrap returns ErrUnknownField so callers can match with errors.Is.
func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

// MissingValueError indicates a derived metric has no defined value for
// the current snapshot. The condition evaluates to false; evaluation of
// the rest of the rule continues.
type MissingValueError struct {
	Field  string
	Reason string
}

// Error returns the error message.
func (e *MissingValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no value for %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("no value for %q", e.Field)
}

// Unwrap returns ErrMissingValue so callers can match with errors.Is.
func (e *MissingValueError) Unwrap() error {
	return ErrMissingValue
}

// ProviderError indicates the metrics provider failed for a campaign.
// Processing of that campaign is aborted; other campaigns are unaffected.
type ProviderError struct {
	CampaignID string
	Cause      error
}

// Error returns the error message.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("metrics fetch failed for campaign %s: %v", e.CampaignID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ExecutorError indicates an action dispatch failure. The failure is
// recorded against the rule's log entry; processing of remaining rules
// continues.
type ExecutorError struct {
	RuleID     string
	CampaignID string
	ActionType string
	Cause      error
}

// Error returns the error message.
func (e *ExecutorError) Error() string {
	return fmt.Sprintf("rule %s: action %s failed for campaign %s: %v",
		e.RuleID, e.ActionType, e.CampaignID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExecutorError) Unwrap() error {
	return e.Cause
}
