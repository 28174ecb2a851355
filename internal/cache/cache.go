package cache

import "sync"

// Cache is a generic thread-safe LRU cache.
// A capacity of 0 means unlimited.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*cacheEntry[V]
	capacity int
	tick     uint64 // Monotonic access counter

	hits      uint64
	misses    uint64
	evictions uint64
}

// cacheEntry holds a cached value with its access time.
type cacheEntry[V any] struct {
	value V
	atime uint64 // Access time (tick value)
}

// New creates a new cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[K, V]{
		entries:  make(map[K]*cacheEntry[V]),
		capacity: capacity,
	}
}

// Get retrieves a value from the cache and refreshes its recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	entry.atime = c.tick
	return entry.value, true
}

// Peek reports whether key is cached without touching recency or stats.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value, evicting the least recently used entries if needed.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.insert(key, value)
}

// GetOrCreate returns the cached value for key, or calls create and caches
// its result. The second result reports a hit.
//
// create runs under the cache lock so concurrent callers never build the
// same entry twice; it must not call back into c.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits++
		c.tick++
		entry.atime = c.tick
		return entry.value, true
	}

	c.misses++
	value := create()
	c.insert(key, value)
	return value, false
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		return true
	}
	return false
}

// Clear removes all entries and resets the tick and statistics.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*cacheEntry[V])
	c.tick = 0
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns the configured capacity.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// insert stores value and evicts down to capacity.
// Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) {
	c.tick++
	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.atime = c.tick
		return
	}
	c.entries[key] = &cacheEntry[V]{value: value, atime: c.tick}

	for c.capacity > 0 && len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the entry with the smallest access tick.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	var (
		oldest K
		atime  uint64
		found  bool
	)
	for key, e := range c.entries {
		if !found || e.atime < atime {
			oldest, atime, found = key, e.atime, true
		}
	}
	if found {
		delete(c.entries, oldest)
		c.evictions++
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the configured capacity (0 = unlimited).
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// Evictions is the number of entries dropped for capacity.
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
