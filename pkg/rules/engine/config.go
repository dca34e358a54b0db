package engine

import (
	"fmt"
	"time"
)

// Config contains configuration for the rule evaluation engine.
type Config struct {
	// ProviderTimeout is the maximum time allowed for a single metrics
	// snapshot fetch.
	// Default: 30s.
	ProviderTimeout time.Duration

	// ExecutorTimeout is the maximum time allowed for a single action
	// dispatch.
	// Default: 30s.
	ExecutorTimeout time.Duration

	// MaxConcurrentCampaigns bounds how many campaigns are processed in
	// parallel during a pass.
	// Default: 4.
	MaxConcurrentCampaigns int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		ProviderTimeout:        30 * time.Second,
		ExecutorTimeout:        30 * time.Second,
		MaxConcurrentCampaigns: 4,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("%w: provider timeout must be positive", ErrInvalidConfig)
	}
	if c.ExecutorTimeout <= 0 {
		return fmt.Errorf("%w: executor timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxConcurrentCampaigns <= 0 {
		return fmt.Errorf("%w: max concurrent campaigns must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithProviderTimeout sets the metrics fetch timeout.
func (c *Config) WithProviderTimeout(timeout time.Duration) *Config {
	c.ProviderTimeout = timeout
	return c
}

// WithExecutorTimeout sets the action dispatch timeout.
func (c *Config) WithExecutorTimeout(timeout time.Duration) *Config {
	c.ExecutorTimeout = timeout
	return c
}

// WithMaxConcurrentCampaigns sets the campaign processing parallelism.
func (c *Config) WithMaxConcurrentCampaigns(n int) *Config {
	c.MaxConcurrentCampaigns = n
	return c
}
