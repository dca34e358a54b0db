package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - campaign rule automation engine",
	Long: `Meridian evaluates operator-defined conditional rules against advertising
campaign performance metrics and triggers actions when conditions are met.

It periodically pulls metric snapshots for each campaign with active rules,
evaluates every rule's conditions against raw and derived metrics, and:
  - Pauses campaigns or adjusts budgets through the campaign management API
  - Sends webhook notifications
  - Records an immutable execution log entry for every rule evaluated

For more information, visit: https://github.com/helios-hq/meridian`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json")
}
