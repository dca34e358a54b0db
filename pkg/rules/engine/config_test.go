package engine

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ProviderTimeout != 30*time.Second {
		t.Errorf("ProviderTimeout = %v, want 30s", cfg.ProviderTimeout)
	}
	if cfg.ExecutorTimeout != 30*time.Second {
		t.Errorf("ExecutorTimeout = %v, want 30s", cfg.ExecutorTimeout)
	}
	if cfg.MaxConcurrentCampaigns != 4 {
		t.Errorf("MaxConcurrentCampaigns = %d, want 4", cfg.MaxConcurrentCampaigns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero provider timeout", func(c *Config) { c.ProviderTimeout = 0 }, true},
		{"negative executor timeout", func(c *Config) { c.ExecutorTimeout = -time.Second }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentCampaigns = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigBuilders(t *testing.T) {
	cfg := DefaultConfig().
		WithProviderTimeout(10 * time.Second).
		WithExecutorTimeout(5 * time.Second).
		WithMaxConcurrentCampaigns(8)

	if cfg.ProviderTimeout != 10*time.Second {
		t.Errorf("ProviderTimeout = %v, want 10s", cfg.ProviderTimeout)
	}
	if cfg.ExecutorTimeout != 5*time.Second {
		t.Errorf("ExecutorTimeout = %v, want 5s", cfg.ExecutorTimeout)
	}
	if cfg.MaxConcurrentCampaigns != 8 {
		t.Errorf("MaxConcurrentCampaigns = %d, want 8", cfg.MaxConcurrentCampaigns)
	}
}
