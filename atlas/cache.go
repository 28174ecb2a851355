package atlas

import (
	"context"
	"image/color"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/cache"
)

// DefaultCacheCapacity is the default number of atlases kept.
const DefaultCacheCapacity = 64

// CacheStats reports atlas cache activity.
type CacheStats struct {
	Atlases   int
	Builds    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache memoizes atlases by Key. Parameter changes produce new keys;
// font and render-scale changes clear the cache, because every cell size
// changes with them.
//
// Cache is safe for concurrent use. Concurrent requests for the same key
// share one build.
type Cache struct {
	mu         sync.RWMutex
	builder    *Builder
	params     *effect.Params
	generation uint64

	atlases *cache.Cache[Key, *Atlas]
	flight  singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithParams sets the effect parameters used for effect atlases.
// Without it the resolved default configuration is used.
func WithParams(p effect.Params) Option {
	return func(c *Cache) {
		c.params = &p
	}
}

// WithCapacity bounds the number of cached atlases. 0 means unlimited.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		c.atlases = cache.New[Key, *Atlas](n)
	}
}

// NewCache creates an atlas cache over b.
func NewCache(b *Builder, opts ...Option) *Cache {
	c := &Cache{
		builder: b,
		atlases: cache.New[Key, *Atlas](DefaultCacheCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.params == nil {
		p := effect.Resolve(effect.DefaultConfig())
		c.params = &p
	}
	return c
}

// Ensure returns the atlas for ink, variant and effects, building it on a
// miss. Repeated calls with an equal key return the same *Atlas.
func (c *Cache) Ensure(ink color.RGBA, variant int, effects bool) (*Atlas, error) {
	c.mu.RLock()
	b, p, gen := c.builder, c.params, c.generation
	c.mu.RUnlock()

	key := NewKey(ink, variant, effects, p)
	if a, ok := c.atlases.Get(key); ok {
		return a, nil
	}

	v, err, _ := c.flight.Do(strconv.FormatUint(gen, 10)+"|"+key.String(), func() (any, error) {
		if a, ok := c.atlases.Peek(key); ok {
			return a, nil
		}
		a, err := b.Build(key, p)
		if err != nil {
			return nil, err
		}
		c.mu.RLock()
		current := c.generation == gen
		c.mu.RUnlock()
		if current {
			c.atlases.Set(key, a)
		}
		return a, nil
	})
	if err != nil {
		typewriter.LoggerFor("atlas").Warn("build failed", "key", key.String(), "error", err)
		return nil, err
	}
	return v.(*Atlas), nil
}

// Params returns the current effect parameters.
func (c *Cache) Params() *effect.Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// SetParams replaces the effect parameters. Existing atlases stay cached
// under their old keys.
func (c *Cache) SetParams(p effect.Params) {
	c.mu.Lock()
	c.params = &p
	c.mu.Unlock()
}

// Builder returns the current builder.
func (c *Cache) Builder() *Builder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builder
}

// SetFont switches the font and clears the cache.
func (c *Cache) SetFont(f *Font) {
	c.mu.Lock()
	c.builder = c.builder.withFont(f)
	c.mu.Unlock()
	c.Clear()
}

// SetRenderScale switches the device density and clears the cache.
func (c *Cache) SetRenderScale(scale float64) {
	c.mu.Lock()
	if c.builder.RenderScale() == scale {
		c.mu.Unlock()
		return
	}
	c.builder = c.builder.withRenderScale(scale)
	c.mu.Unlock()
	c.Clear()
}

// Clear drops every atlas. Builds in flight are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
	c.atlases.Clear()
	typewriter.LoggerFor("atlas").Debug("cache cleared")
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	s := c.atlases.Stats()
	return CacheStats{
		Atlases:   s.Len,
		Builds:    c.Builder().Stats().Builds,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
}

// Prewarm builds the effect atlases of every ink and variant in [0,
// variants) in parallel. It stops at the first error or when ctx is done.
func (c *Cache) Prewarm(ctx context.Context, inks []color.RGBA, variants int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, ink := range inks {
		for v := 0; v < variants; v++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				_, err := c.Ensure(ink, v, true)
				return err
			})
		}
	}
	return g.Wait()
}
