// Package cache holds recently fetched page content so a fallback strategy
// does not re-request a URL the primary already pulled within the politeness
// window.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/coachscout/coachscout/models"
)

// entry holds cached content with its creation timestamp.
type entry struct {
	content   models.RawContent
	createdAt time.Time
}

// Cache is an in-memory page-content cache. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
}

// New creates a Cache. A background goroutine evicts expired entries every
// 5 minutes.
func New(maxEntries int, maxAge time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the URL.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get retrieves cached content if it is younger than the cache's max age.
func (c *Cache) Get(key string) (models.RawContent, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok || time.Since(e.createdAt) > c.maxAge {
		return models.RawContent{}, false
	}
	return e.content, true
}

// Put stores content. When the cache is full the oldest entry is evicted.
func (c *Cache) Put(key string, content models.RawContent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		if oldestKey != "" {
			delete(c.store, oldestKey)
		}
	}

	c.store[key] = &entry{content: content, createdAt: time.Now()}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.maxAge)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
