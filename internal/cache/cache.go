// Package cache provides a bounded in-process cache of conversion results
// keyed by the SHA-256 of the raw input bytes.
//
// Eviction is oldest-insertion-time, not LRU: reads never refresh an
// entry's timestamp. Callers that have come to depend on the FIFO-like
// behavior would observe different evictions under true LRU, so the
// policy is kept explicit here.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no capacity is configured.
const DefaultMaxEntries = 20

// Key returns the cache key for content: the hex-encoded SHA-256 digest.
// Identical bytes always map to the same key regardless of filename.
func Key(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}

type entry struct {
	data      []byte
	createdAt time.Time
}

// ResultCache maps content hashes to conversion output. Safe for
// concurrent use; the check-capacity/evict/insert sequence runs as a
// single critical section so the size bound holds under parallel writers.
type ResultCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]entry
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a ResultCache bounded at max entries.
// A max of zero or less falls back to DefaultMaxEntries.
func New(max int) *ResultCache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &ResultCache{
		max:     max,
		entries: make(map[string]entry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
}

// WithLogger sets a custom logger for the cache.
func (c *ResultCache) WithLogger(logger *slog.Logger) *ResultCache {
	c.logger = logger
	return c
}

// Get returns the cached result for key, if present. A hit has no side
// effect on the entry's recorded timestamp.
func (c *ResultCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Put inserts a result under key, evicting the single entry with the
// smallest insertion timestamp first when the cache is at capacity.
// Re-inserting an existing key replaces it without evicting.
func (c *ResultCache) Put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{data: data, createdAt: c.now()}
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked removes the entry with the smallest createdAt.
// Ties are broken by map iteration order. Caller holds c.mu.
func (c *ResultCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
			first = false
		}
	}
	if oldestKey == "" {
		return
	}
	delete(c.entries, oldestKey)
	c.logger.DebugContext(context.Background(), "cache entry evicted",
		"key", oldestKey,
		"created_at", oldestAt,
	)
}
