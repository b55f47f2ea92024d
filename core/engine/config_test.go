package engine

import (
	"testing"
	"time"

	"flow-vault/core/models"

	"github.com/stretchr/testify/assert"
)

func TestConfig_RetryPolicy(t *testing.T) {
	c := Config{MaxAttempts: 5, BaseDelayMs: 100, MaxDelayMs: 2000}

	p := c.RetryPolicy(0)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 2*time.Second, p.MaxDelay)

	assert.Equal(t, 2, c.RetryPolicy(2).MaxAttempts)
	assert.Equal(t, 3, Config{}.RetryPolicy(0).MaxAttempts)
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{Concurrency: 8, MaxAttempts: 4, Strategy: "source-wins"}

	got := c.Defaults(models.RunOptions{})
	assert.Equal(t, "source-wins", got.Strategy)
	assert.Equal(t, 8, got.Concurrency)
	assert.Equal(t, 4, got.MaxAttempts)

	got = c.Defaults(models.RunOptions{Strategy: "add-missing", Concurrency: 2})
	assert.Equal(t, "add-missing", got.Strategy)
	assert.Equal(t, 2, got.Concurrency)

	assert.Equal(t, 1, Config{}.Defaults(models.RunOptions{}).Concurrency)
}

func TestConfig_Timeouts(t *testing.T) {
	assert.Equal(t, 30*time.Second, Config{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, Config{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Equal(t, time.Minute, Config{CacheTTLSeconds: 60}.CacheTTL())
}
