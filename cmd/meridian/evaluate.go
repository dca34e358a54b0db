package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/cli"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

var evaluateFlags struct {
	showLogs bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [campaignID...]",
	Short: "Run one evaluation pass",
	Long: `Run a single evaluation pass and print the outcome.

Rules are loaded from the configured rules path. Without arguments every
campaign that has at least one active rule is evaluated; with arguments
only the named campaigns are.

Examples:
  # Evaluate all campaigns with active rules
  meridian evaluate

  # Evaluate two specific campaigns, without side effects
  meridian evaluate camp-001 camp-002 --dry-run

  # Print the execution log entries the pass produced
  meridian evaluate --show-logs`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolVar(&evaluateFlags.showLogs, "show-logs", false, "print the log entries the pass produced")
	evaluateCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "disable action side effects")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	summary := &engine.PassSummary{StartedAt: time.Now()}
	if len(args) == 0 {
		summary, err = a.engine.ProcessAllCampaigns(ctx)
		if err != nil {
			// Per-campaign failures are already collected in the summary;
			// still render it so partial results are visible.
			a.logger.Warn("evaluation pass finished with errors", "error", err)
		}
	} else {
		for _, campaignID := range args {
			cs, err := a.engine.ProcessCampaign(ctx, campaignID)
			if err != nil {
				summary.CampaignsFailed++
				summary.Errors = append(summary.Errors, err.Error())
				continue
			}
			summary.CampaignsProcessed++
			summary.RulesEvaluated += cs.RulesEvaluated
			summary.RulesTriggered += cs.RulesTriggered
		}
		summary.Duration = time.Since(summary.StartedAt)
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		if err := cli.RenderPassSummary(os.Stdout, summary); err != nil {
			return err
		}
	}

	if evaluateFlags.showLogs {
		fmt.Println()
		entries := a.logStore.Query(audit.Query{Limit: a.logStore.Capacity()})
		if format == cli.FormatJSON {
			return cli.NewFormatter(format).FormatTo(os.Stdout, entries)
		}
		return cli.RenderLogs(os.Stdout, entries)
	}
	return nil
}
