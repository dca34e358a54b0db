package main

import (
	"os"
	"path/filepath"
	"testing"
)

const validRuleFile = `rules:
  - name: pause-on-low-roas
    campaignId: camp-001
    conditions:
      - field: spend
        operator: ">"
        threshold: 100
        logicalOperatorToNext: AND
      - field: roas
        operator: "<"
        threshold: 1.5
    action:
      type: PAUSE_CAMPAIGN
`

const invalidRuleFile = `rules:
  - name: broken
    campaignId: camp-001
    conditions: []
    action:
      type: PAUSE_CAMPAIGN
`

func TestValidateRuleFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		wantCount int
		wantErr   bool
	}{
		{name: "valid file", content: validRuleFile, wantCount: 1},
		{name: "zero conditions rejected", content: invalidRuleFile, wantErr: true},
		{name: "parse error", content: "rules: [', broken", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "rules.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			count, err := validateRuleFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateRuleFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && count != tt.wantCount {
				t.Errorf("validateRuleFile() count = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestCollectRuleFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(validRuleFile), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	files, err := collectRuleFiles(dir)
	if err != nil {
		t.Fatalf("collectRuleFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("collectRuleFiles() found %d files, want 2: %v", len(files), files)
	}

	single, err := collectRuleFiles(filepath.Join(dir, "a.yaml"))
	if err != nil {
		t.Fatalf("collectRuleFiles(file) error = %v", err)
	}
	if len(single) != 1 {
		t.Errorf("collectRuleFiles(file) found %d files, want 1", len(single))
	}
}

func TestCollectRuleFiles_Missing(t *testing.T) {
	if _, err := collectRuleFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing path")
	}
}
