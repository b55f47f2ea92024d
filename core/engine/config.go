// Package engine holds the tunables shared by every run.
package engine

import (
	"time"

	"flow-vault/core/models"
	"flow-vault/core/reconcile"
)

// Config holds engine defaults. CLI flags override them per run.
type Config struct {
	// Concurrency bounds parallel reconcile calls.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// MaxAttempts bounds attempts per object, including the first.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// BaseDelayMs is the first retry delay; it doubles per attempt.
	BaseDelayMs int `mapstructure:"base_delay_ms" default:"500"`
	// MaxDelayMs caps any single retry delay.
	MaxDelayMs int `mapstructure:"max_delay_ms" default:"30000"`
	// Strategy is the default merge strategy.
	Strategy string `mapstructure:"strategy" default:"source-wins"`
	// RequestTimeoutSeconds bounds each platform HTTP request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"30"`
	// PageSize is the platform list page size.
	PageSize int `mapstructure:"page_size" default:"100"`
	// CacheTTLSeconds is how long a fetched target state is reused.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"30"`
}

// RetryPolicy builds the reconciler retry policy for maxAttempts
// (falling back to the configured value when zero).
func (c Config) RetryPolicy(maxAttempts int) reconcile.RetryPolicy {
	p := reconcile.DefaultRetryPolicy()
	if maxAttempts <= 0 {
		maxAttempts = c.MaxAttempts
	}
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if c.BaseDelayMs > 0 {
		p.BaseDelay = time.Duration(c.BaseDelayMs) * time.Millisecond
	}
	if c.MaxDelayMs > 0 {
		p.MaxDelay = time.Duration(c.MaxDelayMs) * time.Millisecond
	}
	return p
}

// RequestTimeout returns the per-request HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the target-state cache TTL.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Defaults fills zero run options from the configuration.
func (c Config) Defaults(opts models.RunOptions) models.RunOptions {
	if opts.Strategy == "" {
		opts.Strategy = c.Strategy
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = c.Concurrency
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = c.MaxAttempts
	}
	return opts
}
