package metrics

import (
	"time"

	"github.com/helios-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PassMetrics tracks evaluation passes over campaigns, including metrics
// provider failures and scheduler ticks skipped under overlap.
//
// Metrics:
//   - meridian_engine_campaign_passes_total: passes by campaign
//   - meridian_engine_campaign_pass_duration_seconds: pass duration histogram
//   - meridian_engine_provider_failures_total: aborted passes by campaign
//   - meridian_engine_scheduler_skipped_ticks_total: ticks skipped while a
//     pass was still running
type PassMetrics struct {
	// Completed passes by campaign
	passesTotal *prometheus.CounterVec

	// Pass duration histogram
	passDuration *prometheus.HistogramVec

	// Metrics fetch failures that aborted a campaign's pass
	providerFailures *prometheus.CounterVec

	// Scheduler ticks skipped because a pass was still running
	skippedTicks prometheus.Counter
}

// NewPassMetrics creates and registers pass metrics with the provided
// registry.
func NewPassMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PassMetrics {
	pm := &PassMetrics{
		passesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "campaign_passes_total",
				Help:      "Total number of evaluation passes by campaign",
			},
			[]string{"campaign_id"},
		),

		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "campaign_pass_duration_seconds",
				Help:      "Duration of one campaign's evaluation pass in seconds",
				Buckets:   cfg.PassDurationBuckets,
			},
			[]string{"campaign_id"},
		),

		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_failures_total",
				Help:      "Total number of campaign passes aborted by a metrics fetch failure",
			},
			[]string{"campaign_id"},
		),

		skippedTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scheduler_skipped_ticks_total",
				Help:      "Total number of scheduler ticks skipped while a pass was still running",
			},
		),
	}

	registry.MustRegister(
		pm.passesTotal,
		pm.passDuration,
		pm.providerFailures,
		pm.skippedTicks,
	)

	return pm
}

// RecordPass records one campaign's evaluation pass.
func (pm *PassMetrics) RecordPass(campaignID string, duration time.Duration) {
	pm.passesTotal.WithLabelValues(campaignID).Inc()
	pm.passDuration.WithLabelValues(campaignID).Observe(duration.Seconds())
}

// RecordProviderFailure records a metrics fetch failure for a campaign.
func (pm *PassMetrics) RecordProviderFailure(campaignID string) {
	pm.providerFailures.WithLabelValues(campaignID).Inc()
}

// RecordSkippedTick records one skipped scheduler tick.
func (pm *PassMetrics) RecordSkippedTick() {
	pm.skippedTicks.Inc()
}
