package metrics

import (
	"sync"
	"time"

	"github.com/helios-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the single registration point for all Prometheus metrics in
// Meridian. It owns the registry, groups metrics by concern, and exposes
// recording methods that the engine, scheduler, and stores call through.
//
// All recording methods are safe for concurrent use and become no-ops when
// metrics are disabled in the configuration. Rule and campaign identifiers
// are used as label values, so the collector caps label cardinality and
// folds overflow into an "other" bucket rather than growing without bound.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Rule evaluation metrics
	evaluationMetrics *EvaluationMetrics

	// Campaign pass metrics
	passMetrics *PassMetrics

	// Action dispatch metrics
	actionMetrics *ActionMetrics

	// Evaluation log metrics
	auditMetrics *AuditMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Namespace: "meridian",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Fill defaults for configs built by hand rather than loaded.
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "engine"
	}
	if len(cfg.PassDurationBuckets) == 0 {
		// A pass spans a metrics fetch plus rule evaluation plus any
		// action dispatch, each with a 30s ceiling.
		cfg.PassDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)
	c.passMetrics = NewPassMetrics(cfg, registry)
	c.actionMetrics = NewActionMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)

	return c
}

// RecordRuleEvaluation records the outcome of evaluating one rule against
// one campaign snapshot.
//
// Parameters:
//   - ruleID: rule identifier
//   - outcome: "triggered", "not_triggered", or "trigger_failed"
func (c *Collector) RecordRuleEvaluation(ruleID, outcome string) {
	if !c.config.MetricsEnabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("rule:" + ruleID) {
		ruleID = "other"
	}

	c.evaluationMetrics.RecordEvaluation(ruleID, outcome)
}

// RecordActionExecution records an action dispatch attempt.
//
// Parameters:
//   - actionType: "PAUSE_CAMPAIGN", "ADJUST_BUDGET", "LOG_EVENT", or
//     "SEND_NOTIFICATION"
//   - status: "success" or "failure"
func (c *Collector) RecordActionExecution(actionType, status string) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.actionMetrics.RecordExecution(actionType, status)
}

// RecordProviderFailure records a metrics fetch failure that aborted a
// campaign's pass.
func (c *Collector) RecordProviderFailure(campaignID string) {
	if !c.config.MetricsEnabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("campaign:" + campaignID) {
		campaignID = "other"
	}

	c.passMetrics.RecordProviderFailure(campaignID)
}

// RecordCampaignPass records a completed evaluation pass over one campaign,
// including passes that were aborted by a provider failure.
//
// Example:
//
//	collector.RecordCampaignPass("camp-001", 340*time.Millisecond)
func (c *Collector) RecordCampaignPass(campaignID string, duration time.Duration) {
	if !c.config.MetricsEnabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("campaign:" + campaignID) {
		campaignID = "other"
	}

	c.passMetrics.RecordPass(campaignID, duration)
}

// RecordSchedulerSkip records a scheduled tick that was skipped because the
// previous evaluation pass was still running.
func (c *Collector) RecordSchedulerSkip() {
	if !c.config.MetricsEnabled() {
		return
	}

	c.passMetrics.RecordSkippedTick()
}

// UpdateLogCount updates the gauge tracking how many entries the evaluation
// log currently holds.
func (c *Collector) UpdateLogCount(count int) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.auditMetrics.UpdateLogEntries(count)
}

// UpdateRuleCounts updates the gauges tracking how many rules are stored
// and how many of them are active.
func (c *Collector) UpdateRuleCounts(total, active int) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.evaluationMetrics.UpdateRuleCounts(total, active)
}

// Registry returns the Prometheus registry used by this collector. The
// server mounts it through Handler; tests can scrape it directly.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of unique label values the collector
// will emit. Rule and campaign ids come from user data, so an unbounded
// label set would grow the metric families with every new id.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter that admits at most
// maxCardinality distinct label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether the label set may be emitted. Known label sets are
// always allowed; new ones are admitted until the limit is reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Re-check under the write lock.
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current number of admitted label sets.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
