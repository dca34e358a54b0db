package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helios-hq/meridian/pkg/rules/engine"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid fifteen minute schedule",
			schedule:    "*/15 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule falls back to default",
			schedule:    "",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			schedule:    "every full moon",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&stubRunner{}, tt.schedule, WithLogger(testLogger()))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)

			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				if next := s.NextRun(); next == nil {
					t.Error("NextRun() returned nil for running scheduler")
				}
			}

			s.Stop()

			if s.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

// TestScheduler_SkipsOverlappingPass verifies that a tick firing while the
// previous pass is still in flight is skipped, counted, and reported to the
// skip hook.
func TestScheduler_SkipsOverlappingPass(t *testing.T) {
	runner := &stubRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}, 2),
	}

	var hookCalls atomic.Int32
	s := NewScheduler(runner, DefaultSchedule,
		WithLogger(testLogger()),
		WithOnSkip(func() { hookCalls.Add(1) }),
	)

	done := make(chan struct{})
	go func() {
		s.runPass(context.Background())
		close(done)
	}()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never started")
	}

	// Second tick while the first pass is blocked.
	s.runPass(context.Background())

	if got := s.Skipped(); got != 1 {
		t.Errorf("Skipped() = %d, want 1", got)
	}
	if got := hookCalls.Load(); got != 1 {
		t.Errorf("skip hook calls = %d, want 1", got)
	}
	if got := runner.callCount(); got != 1 {
		t.Errorf("runner calls = %d, want 1 while first pass blocked", got)
	}

	close(runner.block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never finished")
	}

	// With the first pass finished the next tick runs normally.
	s.runPass(context.Background())

	if got := runner.callCount(); got != 2 {
		t.Errorf("runner calls = %d, want 2 after first pass finished", got)
	}
	if got := s.Skipped(); got != 1 {
		t.Errorf("Skipped() = %d, want 1 after normal tick", got)
	}
}

func TestScheduler_DoubleStart(t *testing.T) {
	s := NewScheduler(&stubRunner{}, "0 * * * *", WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want error")
	}
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	s := NewScheduler(&stubRunner{}, "0 * * * *", WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := s.Start(ctx); err != nil {
			t.Fatalf("Start() iteration %d error = %v", i, err)
		}

		if !s.IsRunning() {
			t.Errorf("IsRunning() = false after Start() iteration %d", i)
		}

		s.Stop()

		if s.IsRunning() {
			t.Errorf("IsRunning() = true after Stop() iteration %d", i)
		}
	}
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	s := NewScheduler(&stubRunner{}, "0 * * * *", WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Context cancellation triggers shutdown.
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancelled")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_NextRun(t *testing.T) {
	s := NewScheduler(&stubRunner{}, "0 * * * *", WithLogger(testLogger()))

	if next := s.NextRun(); next != nil {
		t.Errorf("NextRun() before start = %v, want nil", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	next := s.NextRun()
	if next == nil {
		t.Fatal("NextRun() after start returned nil")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want time in future", next)
	}

	s.Stop()

	if next := s.NextRun(); next != nil {
		t.Errorf("NextRun() after stop = %v, want nil", next)
	}
}

func TestScheduler_NilRunner(t *testing.T) {
	s := NewScheduler(nil, "0 * * * *", WithLogger(testLogger()))

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() with nil runner error = nil, want error")
	}
}

// Helper functions

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRunner counts passes and optionally blocks in flight so tests can
// hold a pass open.
type stubRunner struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	started chan struct{}
}

func (r *stubRunner) ProcessAllCampaigns(ctx context.Context) (*engine.PassSummary, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	return &engine.PassSummary{CampaignsProcessed: 1}, nil
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
