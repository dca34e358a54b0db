package metrics

import (
	"github.com/helios-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the in-memory evaluation log.
//
// Metrics:
//   - meridian_engine_audit_log_entries: entries currently held in the log
type AuditMetrics struct {
	// Entries currently held in the bounded log
	logEntries prometheus.Gauge
}

// NewAuditMetrics creates and registers audit metrics with the provided
// registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		logEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_log_entries",
				Help:      "Number of entries currently held in the evaluation log",
			},
		),
	}

	registry.MustRegister(am.logEntries)

	return am
}

// UpdateLogEntries updates the log size gauge.
func (am *AuditMetrics) UpdateLogEntries(count int) {
	am.logEntries.Set(float64(count))
}
