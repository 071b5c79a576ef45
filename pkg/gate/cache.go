package gate

import (
	"sync"
	"time"
)

// Cache stores license validation outcomes to avoid a remote call per request.
type Cache interface {
	// Get returns the cached outcome for key.
	// Returns the outcome and true if found, false and false otherwise.
	Get(key string) (valid bool, found bool)

	// Set stores an outcome with TTL.
	Set(key string, valid bool, ttl time.Duration)

	// Invalidate removes key from the cache.
	Invalidate(key string)

	// Clear removes all entries from the cache.
	Clear()

	// Stats returns cache statistics.
	Stats() CacheStats
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// cacheEntry wraps a cached outcome with expiration time and access time for LRU
type cacheEntry struct {
	valid      bool
	expiration time.Time
	accessTime time.Time
	sequence   int64 // tiebreak when access times are equal
}

// NoopCache is a cache implementation that does nothing.
// Used when caching is disabled.
type NoopCache struct{}

// NewNoopCache creates a new no-op cache
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(_ string) (valid, found bool)       { return false, false }
func (c *NoopCache) Set(_ string, _ bool, _ time.Duration) {}
func (c *NoopCache) Invalidate(_ string)                   {}
func (c *NoopCache) Clear()                                {}
func (c *NoopCache) Stats() CacheStats                     { return CacheStats{} }

// DefaultCacheSize is used by NewLRUCache for a non-positive size.
const DefaultCacheSize = 10000

// LRUCache implements Cache using an in-memory LRU cache with TTL support
type LRUCache struct {
	entries   map[string]*cacheEntry
	maxSize   int
	now       func() time.Time
	mu        sync.Mutex
	hits      int64
	misses    int64
	evictions int64
	sequence  int64
}

// NewLRUCache creates a new LRU cache holding at most maxSize outcomes.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &LRUCache{
		entries: make(map[string]*cacheEntry, maxSize),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (c *LRUCache) Get(key string) (valid, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, exists := c.entries[key]
	if !exists || now.After(entry.expiration) {
		if exists {
			delete(c.entries, key)
		}
		c.misses++
		return false, false
	}

	entry.accessTime = now
	entry.sequence = c.nextSequence()
	c.hits++
	return entry.valid, true
}

func (c *LRUCache) Set(key string, valid bool, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		valid:      valid,
		expiration: now.Add(ttl),
		accessTime: now,
		sequence:   c.nextSequence(),
	}
}

// evictOldest drops the least recently used entry (oldest accessTime, then
// oldest sequence). Callers hold c.mu.
func (c *LRUCache) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
		oldestSeq  int64
		first      = true
	)
	for key, entry := range c.entries {
		if first || entry.accessTime.Before(oldestTime) ||
			(entry.accessTime.Equal(oldestTime) && entry.sequence < oldestSeq) {
			oldestKey = key
			oldestTime = entry.accessTime
			oldestSeq = entry.sequence
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

func (c *LRUCache) nextSequence() int64 {
	seq := c.sequence
	c.sequence++
	return seq
}

func (c *LRUCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry, c.maxSize)
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}
