package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helios-hq/meridian/pkg/cli"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show engine statistics",
	Long: `Show rule and execution log statistics of a running Meridian engine.

Examples:
  meridian stats
  meridian stats --output json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&logsFlags.serverAddr, "server", "", "admin API address (defaults to the configured listen address)")
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	var stats engine.Stats
	if err := adminGet("/api/v1/stats", &stats); err != nil {
		return err
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, stats)
	}
	return cli.RenderStats(os.Stdout, stats)
}
