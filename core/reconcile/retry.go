package reconcile

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"flow-vault/core/errs"
)

// RetryPolicy bounds attempts per object and computes the delay between them.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt; it doubles each time.
	BaseDelay time.Duration

	// MaxDelay caps any single delay, including server Retry-After hints.
	MaxDelay time.Duration

	// Jitter is the +/- fraction applied to each delay (0.25 means +/-25%).
	Jitter float64
}

// DefaultRetryPolicy returns three attempts starting at 500ms with 25% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Jitter:      0.25,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns how long to wait after the given failed attempt (1-based).
// A Retry-After hint carried by err takes precedence over the computed backoff.
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	if hint := errs.RetryAfter(err); hint > 0 {
		return p.cap(hint)
	}

	ceiling := p.ceiling()
	delay, saturated := p.backoff(attempt, ceiling)
	if saturated {
		return delay
	}
	if p.Jitter > 0 {
		jitterRange := int64(float64(delay) * p.Jitter)
		if jitterRange > 0 {
			delay += time.Duration(rand.Int64N(2*jitterRange) - jitterRange)
		}
	}
	return p.cap(delay)
}

// backoff returns BaseDelay * 2^(attempt-1), or ceiling once the product would exceed it.
func (p RetryPolicy) backoff(attempt int, ceiling time.Duration) (time.Duration, bool) {
	if p.BaseDelay <= 0 {
		return 0, false
	}
	shift := max(attempt-1, 0)
	// Uncapped delays stop at half of MaxInt64 so jitter stays in range.
	limit := ceiling
	if p.MaxDelay <= 0 {
		limit = ceiling / 2
	}
	if shift >= 62 || p.BaseDelay > limit>>shift {
		return ceiling, true
	}
	return p.BaseDelay << shift, false
}

func (p RetryPolicy) ceiling() time.Duration {
	if p.MaxDelay > 0 {
		return p.MaxDelay
	}
	return time.Duration(math.MaxInt64)
}

func (p RetryPolicy) cap(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d < 0 {
		d = 0
	}
	return d
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
