package engine

import (
	"strconv"
	"strings"

	"github.com/helios-hq/meridian/pkg/insights"
	"github.com/helios-hq/meridian/pkg/rules"
)

// ConditionOutcome records how a single condition evaluated, including
// the resolved metric value, for the audit trail.
type ConditionOutcome struct {
	ConditionID string         `json:"conditionId,omitempty"`
	Field       string         `json:"field"`
	Operator    rules.Operator `json:"operator"`
	Threshold   float64        `json:"threshold"`

	// Value is the resolved metric value. Meaningless when Err is set.
	Value float64 `json:"value"`

	// Met reports whether the comparison held. Always false when Err is set.
	Met bool `json:"met"`

	// Err is the resolution failure, if any (unknown field or undefined
	// derived metric).
	Err error `json:"-"`

	// LogicalOperatorToNext is the operator folding this condition's
	// result with the next condition's.
	LogicalOperatorToNext rules.LogicalOperator `json:"logicalOperatorToNext,omitempty"`
}

// Evaluation is the outcome of evaluating one rule against one snapshot.
type Evaluation struct {
	Triggered bool               `json:"triggered"`
	Outcomes  []ConditionOutcome `json:"outcomes"`
}

// EvaluateRule evaluates every condition of the rule against the snapshot
// and folds the results left to right into a single trigger decision.
//
// All conditions are evaluated first, whatever the running result; field
// resolution is side-effect free and the audit trail needs every
// condition's value, so there is no lazy evaluation. The fold then
// combines the running result with condition i using condition i-1's
// LogicalOperatorToNext. There is no operator precedence and no
// grouping: "A OR B AND C" folds as "(A OR B) AND C".
//
// A rule with no conditions never triggers.
func EvaluateRule(rule *rules.Rule, snap *insights.Snapshot, derived *insights.Derived) Evaluation {
	if rule == nil || len(rule.Conditions) == 0 {
		return Evaluation{}
	}

	outcomes := make([]ConditionOutcome, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		outcome := ConditionOutcome{
			ConditionID:           cond.ID,
			Field:                 cond.Field,
			Operator:              cond.Operator,
			Threshold:             cond.Threshold,
			LogicalOperatorToNext: cond.LogicalOperatorToNext,
		}
		value, err := ResolveField(cond.Field, snap, derived)
		if err != nil {
			outcome.Err = err
		} else {
			outcome.Value = value
			outcome.Met = CompareValues(cond.Operator, value, cond.Threshold)
		}
		outcomes = append(outcomes, outcome)
	}

	result := outcomes[0].Met
	for i := 1; i < len(outcomes); i++ {
		switch rule.Conditions[i-1].LogicalOperatorToNext {
		case rules.LogicalOr:
			result = result || outcomes[i].Met
		default:
			// AND is the default combinator.
			result = result && outcomes[i].Met
		}
	}

	return Evaluation{Triggered: result, Outcomes: outcomes}
}

// Summary renders the per-condition trail as a single line, e.g.
// "spend(154.3) > 150 => true AND roas(n/a) < 1.5 => false".
func (e Evaluation) Summary() string {
	if len(e.Outcomes) == 0 {
		return "no conditions"
	}

	var b strings.Builder
	for i, o := range e.Outcomes {
		if i > 0 {
			op := e.Outcomes[i-1].LogicalOperatorToNext
			if op == "" {
				op = rules.LogicalAnd
			}
			b.WriteString(" ")
			b.WriteString(string(op))
			b.WriteString(" ")
		}

		value := "n/a"
		if o.Err == nil {
			value = strconv.FormatFloat(o.Value, 'f', -1, 64)
		}
		b.WriteString(o.Field)
		b.WriteString("(")
		b.WriteString(value)
		b.WriteString(") ")
		b.WriteString(string(o.Operator))
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(o.Threshold, 'f', -1, 64))
		b.WriteString(" => ")
		b.WriteString(strconv.FormatBool(o.Met))
	}
	return b.String()
}

// FirstError returns the first resolution failure among the outcomes, or
// nil if every condition resolved.
func (e Evaluation) FirstError() error {
	for _, o := range e.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}
