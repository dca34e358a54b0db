package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helios-hq/meridian/pkg/cli"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/scheduler"
	"github.com/helios-hq/meridian/pkg/server"
)

var runFlags struct {
	listenAddress string
	schedule      string
	dryRun        bool
	noScheduler   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian engine",
	Long: `Start the Meridian engine with the specified configuration.

The engine loads rules from the configured path, starts the evaluation
scheduler and the admin API server, and runs until interrupted. Rule files
are reloaded automatically when rules.watch is enabled.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override the listen address and evaluation schedule
  meridian run --listen 0.0.0.0:8080 --schedule "@every 5m"

  # Evaluate without side effects
  meridian run --dry-run`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin API listen address")
	runCmd.Flags().StringVar(&runFlags.schedule, "schedule", "", "override evaluation cron schedule")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "disable action side effects")
	runCmd.Flags().BoolVar(&runFlags.noScheduler, "no-scheduler", false, "disable scheduled passes (evaluate on demand only)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.schedule != "" {
		cfg.Scheduler.Schedule = runFlags.schedule
	}
	if runFlags.dryRun {
		cfg.Executor.DryRun = true
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Meridian %s\n", Version)
	fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)
	total, active := a.ruleStore.Counts()
	fmt.Printf("✓ Rules loaded (%d total, %d active)\n", total, active)
	if cfg.Executor.DryRun {
		fmt.Println("✓ Dry-run mode: actions are logged, not executed")
	}

	// Rule file hot reload
	if cfg.Rules.Watch && cfg.Rules.Path != "" {
		watcher, err := rules.NewWatcher(cfg.Rules.Path, cfg.Rules.DebounceInterval, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create rule watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func() error {
				return a.loadRules(ctx)
			}); err != nil {
				a.logger.Error("rule watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Watching %s for rule changes\n", cfg.Rules.Path)
	}

	// Evaluation scheduler
	if cfg.Scheduler.SchedulerEnabled() && !runFlags.noScheduler {
		opts := []scheduler.Option{scheduler.WithLogger(a.logger)}
		if a.collector != nil {
			opts = append(opts, scheduler.WithOnSkip(a.collector.RecordSchedulerSkip))
		}
		sched := scheduler.NewScheduler(a.engine, cfg.Scheduler.Schedule, opts...)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
		if next := sched.NextRun(); next != nil {
			fmt.Printf("✓ Scheduler started (%s, next pass %s)\n",
				cfg.Scheduler.Schedule, next.Format(time.RFC3339))
		}
	}

	// Admin API server
	srv, err := server.NewServer(&cfg.Server, server.Dependencies{
		Rules:       a.ruleStore,
		Logs:        a.logStore,
		Engine:      a.engine,
		Metrics:     a.collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
		close(errChan)
	}()

	fmt.Printf("✓ Admin API listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		fmt.Println("✓ Stopped")
		return nil
	}
}
