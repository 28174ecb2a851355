// Package cache provides the generic LRU cache shared by the noise tile,
// atlas and grain caches.
//
//	c := cache.New[string, *Tile](6)
//	tile, hit := c.GetOrCreate(key, func() *Tile { return build(params) })
//
// Recency is tracked with a monotonic tick counter updated on every hit and
// insertion. When the cache grows past its capacity the entries with the
// oldest ticks are evicted until it fits again.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
