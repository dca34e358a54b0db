package metrics

import (
	"github.com/helios-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks rule evaluation outcomes and the rule inventory.
//
// Metrics:
//   - meridian_engine_rule_evaluations_total: evaluations by rule and outcome
//   - meridian_engine_rules: stored rules by state (total, active)
type EvaluationMetrics struct {
	// Evaluations by rule and outcome
	evaluationsTotal *prometheus.CounterVec

	// Stored rule counts by state
	rules *prometheus.GaugeVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations by outcome",
			},
			[]string{"rule_id", "outcome"},
		),

		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules",
				Help:      "Number of stored rules by state",
			},
			[]string{"state"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.rules,
	)

	return em
}

// RecordEvaluation records one rule evaluation.
//
// Parameters:
//   - ruleID: rule identifier
//   - outcome: "triggered" when the conditions matched and the action was
//     dispatched, "trigger_failed" when the conditions matched but the
//     action failed, "not_triggered" otherwise
func (em *EvaluationMetrics) RecordEvaluation(ruleID, outcome string) {
	em.evaluationsTotal.WithLabelValues(ruleID, outcome).Inc()
}

// UpdateRuleCounts updates the rule inventory gauges.
func (em *EvaluationMetrics) UpdateRuleCounts(total, active int) {
	em.rules.WithLabelValues("total").Set(float64(total))
	em.rules.WithLabelValues("active").Set(float64(active))
}
