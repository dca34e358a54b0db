package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSource loads rule definitions from YAML files on disk.
//
// A rule file has the shape:
//
//	rules:
//	  - name: pause-on-low-roas
//	    campaignId: camp-001
//	    conditions:
//	      - field: spend
//	        operator: ">"
//	        threshold: 100
//	        logicalOperatorToNext: AND
//	      - field: roas
//	        operator: "<"
//	        threshold: 1.5
//	    action:
//	      type: PAUSE_CAMPAIGN
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a new file-based rule source. The path can be either
// a single file or a directory; for a directory, all .yaml and .yml files
// are loaded.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "rules.source"),
	}
}

// Path returns the configured file or directory path.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads all rule specifications from the configured path.
//
// A single file that fails to parse or validate is a hard error. Within a
// directory, invalid files are skipped with a warning so one broken edit
// cannot unload every other file's rules during hot reload.
func (s *FileSource) Load(ctx context.Context) ([]CreateRule, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var specs []CreateRule
	if info.IsDir() {
		specs, err = s.loadDirectory(ctx)
	} else {
		specs, err = s.loadFile(s.path)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded rules from source",
		"path", s.path,
		"rule_count", len(specs),
	)

	return specs, nil
}

// loadDirectory loads all rule files from a directory tree.
func (s *FileSource) loadDirectory(ctx context.Context) ([]CreateRule, error) {
	var specs []CreateRule

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fileSpecs, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("failed to load rule file, skipping",
				"path", path,
				"error", err,
			)
			return nil
		}

		specs = append(specs, fileSpecs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return specs, nil
}

// loadFile loads and validates a single rule file.
func (s *FileSource) loadFile(path string) ([]CreateRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var file struct {
		Rules []CreateRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %q: %w", path, err)
	}

	for i := range file.Rules {
		if err := file.Rules[i].Validate(); err != nil {
			return nil, fmt.Errorf("rule file %q: %w", path, err)
		}
	}

	s.logger.Debug("loaded rule file",
		"path", path,
		"rule_count", len(file.Rules),
	)

	return file.Rules, nil
}
