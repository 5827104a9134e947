package environment

import (
	"fmt"
	"sync"
	"time"
)

// SnapshotCache keeps recent snapshots per location in memory
type SnapshotCache struct {
	data    map[string]*cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
	cleanup *time.Ticker
	done    chan struct{}
	stop    sync.Once
}

// cacheEntry represents a cache entry with expiration
type cacheEntry struct {
	value      Snapshot
	expiration time.Time
}

// NewSnapshotCache creates a cache whose entries live for ttl
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	interval := time.Minute
	if ttl > 0 && ttl < interval {
		interval = ttl
	}

	cache := &SnapshotCache{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		cleanup: time.NewTicker(interval),
		done:    make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// CacheKey identifies a location in the cache.
func CacheKey(loc Location) string {
	return fmt.Sprintf("%s|%.4f|%.4f", loc.Name, loc.Lat(), loc.Lon())
}

// Get retrieves a snapshot if present and not expired
func (c *SnapshotCache) Get(key string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || c.now().After(entry.expiration) {
		return Snapshot{}, false
	}
	return entry.value, true
}

// Set stores a snapshot
func (c *SnapshotCache) Set(key string, value Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Delete removes a snapshot
func (c *SnapshotCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

// Size returns the number of entries, expired ones included until cleanup
func (c *SnapshotCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

func (c *SnapshotCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *SnapshotCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *SnapshotCache) Stop() {
	c.stop.Do(func() {
		c.cleanup.Stop()
		close(c.done)
	})
}
