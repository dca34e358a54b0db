package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helios-hq/meridian/pkg/cli"
	"github.com/helios-hq/meridian/pkg/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect loaded rules",
	Long: `Inspect the rules Meridian would load from the configured rules path.

Examples:
  # List all rules
  meridian rules list

  # Show one rule in detail (ID or name)
  meridian rules show pause-on-low-roas

  # List rules as JSON
  meridian rules list --output json`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules",
	RunE:  runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show one rule in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesShowCmd)
}

// loadRuleStore loads the configured rule files into a fresh store.
func loadRuleStore(cmd *cobra.Command) (*rules.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Rules.Path == "" {
		return nil, fmt.Errorf("no rules path configured (set rules.path in %s)", cfgFile)
	}

	source := rules.NewFileSource(cfg.Rules.Path, nil)
	specs, err := source.Load(cmd.Context())
	if err != nil {
		return nil, err
	}

	store := rules.NewStore()
	if err := store.Replace(specs); err != nil {
		return nil, err
	}
	return store, nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	store, err := loadRuleStore(cmd)
	if err != nil {
		return err
	}

	list := store.List()
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, list)
	}
	return cli.RenderRules(os.Stdout, list)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	store, err := loadRuleStore(cmd)
	if err != nil {
		return err
	}

	rule, ok := store.Get(args[0])
	if !ok {
		// Fall back to name matching; file-defined rules usually have
		// generated IDs the operator never sees.
		for _, r := range store.List() {
			if strings.EqualFold(r.Name, args[0]) {
				rule, ok = r, true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("no rule with id or name %q", args[0])
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, rule)
	}
	return cli.RenderRule(os.Stdout, rule)
}
