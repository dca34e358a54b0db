// Package scheduler triggers evaluation passes on a fixed cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/helios-hq/meridian/pkg/rules/engine"
)

// DefaultSchedule runs an evaluation pass every fifteen minutes.
const DefaultSchedule = "*/15 * * * *"

// Runner executes one full evaluation pass. engine.Engine satisfies this
// interface.
type Runner interface {
	ProcessAllCampaigns(ctx context.Context) (*engine.PassSummary, error)
}

// Scheduler runs evaluation passes on a cron schedule. At most one pass is
// in flight at a time: a tick that fires while the previous pass is still
// running is skipped and counted, never queued.
type Scheduler struct {
	runner   Runner
	schedule string
	logger   *slog.Logger
	onSkip   func()

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	passActive atomic.Bool
	skipped    atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger.With("component", "scheduler")
		}
	}
}

// WithOnSkip registers a hook invoked each time a tick is skipped because
// the previous pass is still running.
func WithOnSkip(fn func()) Option {
	return func(s *Scheduler) {
		s.onSkip = fn
	}
}

// NewScheduler creates a scheduler driving the given runner. An empty
// schedule falls back to DefaultSchedule; the expression is validated at
// Start.
func NewScheduler(runner Runner, schedule string, opts ...Option) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Scheduler{
		runner:   runner,
		schedule: schedule,
		logger:   slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins scheduled evaluation based on the cron expression.
//
// Common expressions:
//   - "*/15 * * * *" - Every fifteen minutes
//   - "0 * * * *"    - Hourly on the hour
//   - "@every 5m"    - Every five minutes
//
// The scheduler stops when ctx is cancelled or Stop is called. Start
// returns an error when the scheduler is already running or the schedule
// does not parse.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner == nil {
		return fmt.Errorf("runner cannot be nil")
	}
	if s.running {
		return fmt.Errorf("scheduler already started")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	// A fresh cron per Start keeps restarts from accumulating entries.
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		s.runPass(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule evaluation: %w", err)
	}

	c.Start()
	s.cron = c
	s.running = true

	s.logger.Info("evaluation scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPass executes one evaluation pass, skipping the tick when the
// previous pass is still in flight.
func (s *Scheduler) runPass(ctx context.Context) {
	if !s.passActive.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		if s.onSkip != nil {
			s.onSkip()
		}
		s.logger.Warn("previous evaluation pass still running, skipping tick")
		return
	}
	defer s.passActive.Store(false)

	s.logger.Debug("evaluation tick")

	summary, err := s.runner.ProcessAllCampaigns(ctx)
	if err != nil {
		s.logger.Error("scheduled evaluation pass finished with errors",
			"error", err,
		)
	}
	if summary != nil {
		s.logger.Debug("scheduled evaluation pass finished",
			"campaigns_processed", summary.CampaignsProcessed,
			"campaigns_failed", summary.CampaignsFailed,
			"rules_triggered", summary.RulesTriggered,
		)
	}
}

// Stop stops the scheduler and waits for a running pass to complete. It is
// safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for a running pass to finish
		s.running = false
		s.logger.Info("evaluation scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Skipped returns the number of ticks skipped because a pass was still in
// flight.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// NextRun returns the next scheduled evaluation time, or nil when the
// scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil || !s.running {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
