package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flow-vault/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	delay time.Duration
	objs  []Object
	err   error
}

func (s *countingSource) FetchObjects(ctx context.Context) ([]Object, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.objs, s.err
}

func TestIndexCache_Reuse(t *testing.T) {
	src := &countingSource{objs: []Object{{Type: models.ResourceTag, ID: "t1", Data: map[string]any{}}}}
	cache := NewIndexCache(time.Minute)

	for i := 0; i < 3; i++ {
		idx, err := cache.GetOrFetch(context.Background(), "profile-1", src)
		require.NoError(t, err)
		assert.True(t, idx.Has(Key{Type: models.ResourceTag, ID: "t1"}))
	}
	assert.Equal(t, int32(1), src.calls.Load())

	cache.Invalidate("profile-1")
	_, err := cache.GetOrFetch(context.Background(), "profile-1", src)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestIndexCache_Expiry(t *testing.T) {
	src := &countingSource{}
	cache := NewIndexCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, _ = cache.GetOrFetch(context.Background(), "p", src)
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetOrFetch(context.Background(), "p", src)

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestIndexCache_ConcurrentCallersShareFetch(t *testing.T) {
	src := &countingSource{delay: 50 * time.Millisecond}
	cache := NewIndexCache(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrFetch(context.Background(), "p", src)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, src.calls.Load(), int32(8))
}

func TestIndexCache_Error(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cache := NewIndexCache(time.Minute)

	_, err := cache.GetOrFetch(context.Background(), "p", src)
	assert.EqualError(t, err, "boom")

	src.err = nil
	_, err = cache.GetOrFetch(context.Background(), "p", src)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}
