package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"Timeout", http.StatusRequestTimeout, KindTransient},
		{"RateLimited", http.StatusTooManyRequests, KindTransient},
		{"ServerError", http.StatusInternalServerError, KindTransient},
		{"BadGateway", http.StatusBadGateway, KindTransient},
		{"BadRequest", http.StatusBadRequest, KindValidation},
		{"Unprocessable", http.StatusUnprocessableEntity, KindValidation},
		{"Unauthorized", http.StatusUnauthorized, KindPermission},
		{"Forbidden", http.StatusForbidden, KindPermission},
		{"NotFound", http.StatusNotFound, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, 0, "body")
			assert.Equal(t, tt.want, Classify(err))
			assert.Equal(t, tt.want == KindTransient, IsRetryable(err))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("push: %w", FromStatus(http.StatusTooManyRequests, 3*time.Second, ""))
	assert.Equal(t, 3*time.Second, RetryAfter(err))
	assert.Zero(t, RetryAfter(errors.New("plain")))
}

func TestFromTransport(t *testing.T) {
	t.Run("CancelPassesThrough", func(t *testing.T) {
		err := FromTransport(context.Canceled)
		assert.Equal(t, KindCancelled, Classify(err))
	})

	t.Run("DeadlineIsTransient", func(t *testing.T) {
		err := FromTransport(context.DeadlineExceeded)
		assert.True(t, IsRetryable(err))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, FromTransport(nil))
	})
}

func TestPersistence(t *testing.T) {
	assert.NoError(t, Persistence("commit", nil))
	err := Persistence("commit", errors.New("disk full"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
}
