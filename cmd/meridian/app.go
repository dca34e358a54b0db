package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/audit/archive"
	"github.com/helios-hq/meridian/pkg/config"
	"github.com/helios-hq/meridian/pkg/executor"
	"github.com/helios-hq/meridian/pkg/insights"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
	"github.com/helios-hq/meridian/pkg/telemetry/logging"
	"github.com/helios-hq/meridian/pkg/telemetry/metrics"
)

// app bundles the wired subsystems shared by the run and evaluate commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	ruleStore *rules.Store
	logStore  *audit.Store
	engine    *engine.Engine
	collector *metrics.Collector

	closers []func() error
}

// loadConfig loads and validates the config file, honoring MERIDIAN_*
// environment overrides and the global --verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", cfgFile, err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// newApp wires the stores, provider, executor, telemetry, and engine from
// the configuration, and loads rule files when a rules path is set.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, ruleStore: rules.NewStore()}

	provider, err := buildProvider(&cfg.Insights, logger)
	if err != nil {
		return nil, err
	}

	logOpts := []audit.Option{
		audit.WithCapacity(cfg.Audit.Capacity),
		audit.WithLogger(logger),
	}
	if cfg.Audit.Archive.Enabled {
		sink, err := archive.NewSQLiteArchiveWithConfig(archive.SQLiteArchiveConfig{
			DBPath:      cfg.Audit.Archive.Path,
			BusyTimeout: cfg.Audit.Archive.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open audit archive: %w", err)
		}
		a.closers = append(a.closers, sink.Close)
		logOpts = append(logOpts, audit.WithArchiveSink(sink))
	}
	a.logStore = audit.NewStore(logOpts...)

	deps := engine.Dependencies{
		Rules:    a.ruleStore,
		Logs:     a.logStore,
		Provider: provider,
		Executor: executor.NewDefaultExecutor(executor.Config{
			DryRun:          cfg.Executor.DryRun,
			CampaignAPIBase: cfg.Executor.CampaignAPIBase,
			APIToken:        cfg.Executor.APIToken,
			WebhookURL:      cfg.Executor.WebhookURL,
			Timeout:         cfg.Executor.Timeout,
		}, logger),
		Logger: logger,
	}
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		deps.Metrics = a.collector
	}

	engineCfg := &engine.Config{
		ProviderTimeout:        cfg.Engine.ProviderTimeout,
		ExecutorTimeout:        cfg.Engine.ExecutorTimeout,
		MaxConcurrentCampaigns: cfg.Engine.MaxConcurrentCampaigns,
	}
	a.engine, err = engine.New(engineCfg, deps)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if cfg.Rules.Path != "" {
		if err := a.loadRules(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// buildProvider creates the snapshot source selected by insights.mode.
func buildProvider(cfg *config.InsightsConfig, logger *slog.Logger) (insights.Provider, error) {
	switch cfg.Mode {
	case "static":
		if cfg.FixturesPath == "" {
			return insights.NewStaticProvider(), nil
		}
		provider, err := insights.NewStaticProviderFromFile(cfg.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot fixtures: %w", err)
		}
		return provider, nil
	default:
		return insights.NewHTTPProvider(insights.HTTPConfig{
			BaseURL:      cfg.BaseURL,
			APIToken:     cfg.APIToken,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		}, logger)
	}
}

// loadRules replaces the store contents with the rule files at the
// configured path.
func (a *app) loadRules(ctx context.Context) error {
	source := rules.NewFileSource(a.cfg.Rules.Path, a.logger)
	specs, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules from %q: %w", a.cfg.Rules.Path, err)
	}
	if err := a.ruleStore.Replace(specs); err != nil {
		return fmt.Errorf("invalid rules in %q: %w", a.cfg.Rules.Path, err)
	}
	return nil
}

// Close releases resources acquired during wiring, last acquired first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error during shutdown", "error", err)
		}
	}
}
