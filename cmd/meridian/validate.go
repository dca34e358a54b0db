package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helios-hq/meridian/pkg/rules"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate rule files",
	Long: `Validate rule files without loading them into an engine.

Every rule in every file is checked against the same validation rules the
store applies at creation: non-empty name and campaign, at least one
condition, known fields, operators, and action types. Without an argument
the configured rules path is validated.

Examples:
  # Validate the configured rules path
  meridian validate

  # Validate one file or directory
  meridian validate rules/production.yaml
  meridian validate rules/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Rules.Path
	}
	if path == "" {
		return fmt.Errorf("no path given and no rules path configured")
	}

	files, err := collectRuleFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule files (*.yaml, *.yml) under %q", path)
	}

	failures := 0
	total := 0
	for _, file := range files {
		count, err := validateRuleFile(file)
		if err != nil {
			failures++
			fmt.Printf("✗ %s: %v\n", file, err)
			continue
		}
		total += count
		fmt.Printf("✓ %s (%d rules)\n", file, count)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed validation", failures, len(files))
	}
	fmt.Printf("\n%d rules across %d files are valid\n", total, len(files))
	return nil
}

// collectRuleFiles returns the YAML files at path, which may name a single
// file or a directory tree.
func collectRuleFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// validateRuleFile parses one rule file and validates every rule in it,
// returning the rule count.
func validateRuleFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var file struct {
		Rules []rules.CreateRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse error: %w", err)
	}

	for i := range file.Rules {
		if err := file.Rules[i].Validate(); err != nil {
			return 0, err
		}
	}
	return len(file.Rules), nil
}
