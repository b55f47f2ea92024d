package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedIndex holds a fetched target-state index.
type cachedIndex struct {
	// Index is the fetched object index.
	Index Index

	// Built is when the index was fetched.
	Built time.Time
}

// IndexCache caches target-state indices per key (usually a profile id) with a TTL.
// Concurrent callers for the same key share a single fetch.
type IndexCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*cachedIndex
	sf      singleflight.Group
}

// NewIndexCache creates a cache. A zero TTL disables reuse across calls but still
// collapses concurrent fetches.
func NewIndexCache(ttl time.Duration) *IndexCache {
	return &IndexCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cachedIndex),
	}
}

// GetOrFetch returns the cached index for key or fetches it with src.
func (c *IndexCache) GetOrFetch(ctx context.Context, key string, src Source) (Index, error) {
	if idx, ok := c.lookup(key); ok {
		return idx, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if idx, ok := c.lookup(key); ok {
			return idx, nil
		}
		objs, err := src.FetchObjects(ctx)
		if err != nil {
			return nil, err
		}
		idx := NewIndex(objs)
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = &cachedIndex{Index: idx, Built: c.now()}
			c.mu.Unlock()
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Index), nil
}

// Invalidate drops the cached index for key, typically after mutating that target.
func (c *IndexCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *IndexCache) lookup(key string) (Index, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(entry.Built) > c.ttl {
		return nil, false
	}
	return entry.Index, true
}
