package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/config"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
	"github.com/helios-hq/meridian/pkg/telemetry/metrics"
)

// Evaluator runs evaluation passes on demand. *engine.Engine satisfies
// this interface.
type Evaluator interface {
	ProcessCampaign(ctx context.Context, campaignID string) (*engine.CampaignSummary, error)
	ProcessAllCampaigns(ctx context.Context) (*engine.PassSummary, error)
	Stats() engine.Stats
}

// Dependencies bundles the collaborators the server's handlers use.
type Dependencies struct {
	// Rules is the rule store behind the CRUD endpoints. Required.
	Rules *rules.Store

	// Logs is the evaluation log behind the logs endpoint. Required.
	Logs *audit.Store

	// Engine runs evaluate-now requests and serves stats. Required.
	Engine Evaluator

	// Metrics mounts the Prometheus endpoint when non-nil.
	Metrics *metrics.Collector

	// MetricsPath is the path for the Prometheus endpoint. Defaults to
	// "/metrics".
	MetricsPath string

	// Logger is used for server lifecycle events. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Server is the admin HTTP API for the rule engine: rule CRUD, on-demand
// evaluation, log queries, stats, liveness, and Prometheus metrics.
type Server struct {
	config       *config.ServerConfig
	deps         Dependencies
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the admin API server.
func NewServer(cfg *config.ServerConfig, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Rules == nil {
		return nil, errors.New("server: rule store is required")
	}
	if deps.Logs == nil {
		return nil, errors.New("server: log store is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}, nil
}

// Start starts the HTTP server and blocks until the context is cancelled
// or the listener fails. On cancellation it drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin API server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests. It is safe to call more than
// once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin API server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler with the full middleware
// chain applied. Exposed for tests and for embedding the API in another
// server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/rules", s.handleListRules)
	mux.HandleFunc("POST /api/v1/rules", s.handleCreateRule)
	mux.HandleFunc("GET /api/v1/rules/{id}", s.handleGetRule)
	mux.HandleFunc("PATCH /api/v1/rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /api/v1/rules/{id}", s.handleDeleteRule)
	mux.HandleFunc("POST /api/v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /api/v1/logs", s.handleListLogs)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	if s.deps.Metrics != nil {
		mux.Handle("GET "+s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	// Request IDs are assigned before logging so every log line carries one.
	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)

	return handler
}
