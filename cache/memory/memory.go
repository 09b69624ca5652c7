// Package memory provides an in-memory implementation of the discovery
// cache. It is suitable for development, testing, and single-instance
// deployments.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indienet/indieauth"
	"github.com/indienet/indieauth/instrumentation"
)

// entry holds a cached discovery result with its expiry time.
type entry struct {
	result    *indieauth.DiscoveryResult
	expiresAt time.Time
}

// Cache is a mutex-guarded in-memory discovery cache. Expiry is lazy,
// checked on read; an optional background sweep keeps memory bounded
// under high key churn.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable for deterministic TTL tests.
	now func() time.Time

	entriesCount atomic.Int64

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	logger          *slog.Logger
}

// Compile-time interface check.
var _ indieauth.Cache = (*Cache)(nil)

// New creates an in-memory cache with no background sweep. Expired
// entries are dropped lazily when read.
func New() *Cache {
	return &Cache{
		entries:     make(map[string]entry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
		logger:      slog.Default(),
	}
}

// NewWithCleanup creates an in-memory cache that additionally sweeps
// expired entries every interval. Call Close to stop the sweeper.
func NewWithCleanup(interval time.Duration) *Cache {
	if interval <= 0 {
		interval = time.Minute
	}

	c := New()
	c.cleanupInterval = interval
	go c.cleanupLoop()
	return c
}

// SetLogger sets a custom logger.
func (c *Cache) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// SetInstrumentation registers the cache size gauge with the given
// instrumentation.
func (c *Cache) SetInstrumentation(inst *instrumentation.Instrumentation) error {
	if inst == nil {
		return nil
	}
	return inst.RegisterCacheSizeCallback(func() int64 {
		return c.entriesCount.Load()
	})
}

// Get returns the cached result for a profile URL, treating expired
// entries as absent. The returned result is a copy; the stored entry is
// never handed out directly.
func (c *Cache) Get(_ context.Context, profileURL string) (*indieauth.DiscoveryResult, bool, error) {
	key := indieauth.CacheKey(profileURL)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have
		// refreshed the entry meanwhile.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
			c.entriesCount.Store(int64(len(c.entries)))
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return e.result.Clone(), true, nil
}

// Set stores a result under the profile URL. The result is cloned on
// write so later caller mutations cannot reach the cache.
func (c *Cache) Set(_ context.Context, profileURL string, result *indieauth.DiscoveryResult, ttl time.Duration) error {
	key := indieauth.CacheKey(profileURL)

	c.mu.Lock()
	c.entries[key] = entry{
		result:    result.Clone(),
		expiresAt: c.now().Add(ttl),
	}
	c.entriesCount.Store(int64(len(c.entries)))
	c.mu.Unlock()

	c.logger.Debug("Discovery result cached", "key", key, "ttl", ttl)
	return nil
}

// Delete removes the entry for a profile URL.
func (c *Cache) Delete(_ context.Context, profileURL string) error {
	key := indieauth.CacheKey(profileURL)

	c.mu.Lock()
	delete(c.entries, key)
	c.entriesCount.Store(int64(len(c.entries)))
	c.mu.Unlock()

	return nil
}

// Clear removes all entries.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.entriesCount.Store(0)
	c.mu.Unlock()

	return nil
}

// Len returns the number of entries currently stored, expired entries
// included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweep, if one was started.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.entriesCount.Store(int64(len(c.entries)))
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("Swept expired discovery cache entries", "removed", removed)
	}
}
