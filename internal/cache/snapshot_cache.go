package cache

import (
	"sync"
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/engine"
)

// SnapshotCache keeps the current catalog snapshot in process for ttl.
// Invalidate bumps the generation so loads that started before it cannot
// store what they read.
type SnapshotCache struct {
	mu       sync.RWMutex
	gen      uint64
	snap     *engine.Snapshot
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, now: time.Now}
}

func (c *SnapshotCache) Get() (*engine.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	return c.snap, true
}

func (c *SnapshotCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores snap unless the cache was invalidated since gen
// was read, and reports whether it did.
func (c *SnapshotCache) SetIfGeneration(snap *engine.Snapshot, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.snap = snap
	c.storedAt = c.now()
	return true
}

func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.snap = nil
}
