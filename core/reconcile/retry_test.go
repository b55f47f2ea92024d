package reconcile

import (
	"context"
	"net/http"
	"testing"
	"time"

	"flow-vault/core/errs"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1, nil))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2, nil))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3, nil))
	assert.Equal(t, 500*time.Millisecond, p.Delay(4, nil), "capped at MaxDelay")

	hinted := errs.FromStatus(http.StatusTooManyRequests, 250*time.Millisecond, "")
	assert.Equal(t, 250*time.Millisecond, p.Delay(4, hinted))
}

func TestRetryPolicy_DelaySaturatesAtLargeAttempts(t *testing.T) {
	p := RetryPolicy{BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second}
	for _, attempt := range []int{10, 35, 36, 40, 60, 63, 64, 70, 1000} {
		assert.Equal(t, 30*time.Second, p.Delay(attempt, nil), "attempt %d", attempt)
	}

	jittered := RetryPolicy{BaseDelay: time.Second, MaxDelay: time.Minute, Jitter: 0.25}
	assert.Equal(t, time.Minute, jittered.Delay(100, nil))

	uncapped := RetryPolicy{BaseDelay: time.Second, Jitter: 0.25}
	for _, attempt := range []int{40, 64, 200} {
		assert.Positive(t, uncapped.Delay(attempt, nil), "attempt %d", attempt)
	}
}

func TestRetryPolicy_Jitter(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Minute, Jitter: 0.25}
	for i := 0; i < 50; i++ {
		d := p.Delay(1, nil)
		assert.GreaterOrEqual(t, d, 750*time.Millisecond)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}

func TestRetryPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 1, RetryPolicy{}.attempts())
	assert.Equal(t, 4, RetryPolicy{MaxAttempts: 4}.attempts())
	assert.Equal(t, 3, DefaultRetryPolicy().attempts())
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
