package metrics

import (
	"github.com/helios-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ActionMetrics tracks action dispatches performed for triggered rules.
//
// Metrics:
//   - meridian_engine_action_executions_total: dispatches by action type and status
type ActionMetrics struct {
	// Dispatches by action type and status
	executionsTotal *prometheus.CounterVec
}

// NewActionMetrics creates and registers action metrics with the provided
// registry.
func NewActionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ActionMetrics {
	am := &ActionMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "action_executions_total",
				Help:      "Total number of action dispatches by type and status",
			},
			[]string{"action_type", "status"},
		),
	}

	registry.MustRegister(am.executionsTotal)

	return am
}

// RecordExecution records one action dispatch.
//
// Parameters:
//   - actionType: the rule's action type
//   - status: "success" or "failure"
func (am *ActionMetrics) RecordExecution(actionType, status string) {
	am.executionsTotal.WithLabelValues(actionType, status).Inc()
}
