package noise

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/typewriter/internal/cache"
)

// DefaultTileCapacity is the number of tiles kept per detail-density bucket.
const DefaultTileCapacity = 6

// TileParams identifies a noise tile.
type TileParams struct {
	// Density buckets tiles by rendering fidelity, in noise features per
	// CSS pixel. Tiles of one density share an eviction budget.
	Density float64

	// Width and Height are the tile size in device pixels.
	Width, Height int

	// DPPerCSS converts device pixels to CSS pixels.
	DPPerCSS float64

	// Scale is the lattice spacing in CSS pixels.
	Scale float64

	Seed uint32

	// AxisX and AxisY stretch the sample space per axis (1 = isotropic).
	AxisX, AxisY float64

	// OffsetX and OffsetY shift the sample space, in CSS pixels.
	OffsetX, OffsetY float64
}

// SamplePoint returns the noise-space coordinate sampled for pixel (x, y).
func (p TileParams) SamplePoint(x, y int) (float64, float64) {
	dp := p.DPPerCSS
	if !(dp > 0) {
		dp = 1
	}
	ax, ay := p.AxisX, p.AxisY
	if ax == 0 {
		ax = 1
	}
	if ay == 0 {
		ay = 1
	}
	sx := (float64(x)+0.5)/dp*ax + p.OffsetX
	sy := (float64(y)+0.5)/dp*ay + p.OffsetY
	return sx, sy
}

// key quantizes every parameter to 6 decimals so float jitter does not
// split identical requests.
func (p TileParams) key() string {
	return fmt.Sprintf("%.6f|%d|%d|%.6f|%.6f|%d|%.6f|%.6f|%.6f|%.6f",
		p.Density, p.Width, p.Height, p.DPPerCSS, p.Scale, p.Seed,
		p.AxisX, p.AxisY, p.OffsetX, p.OffsetY)
}

func (p TileParams) bucket() string {
	return fmt.Sprintf("%.6f", p.Density)
}

// Tile is an immutable grid of Noise2 samples. Do not modify Data.
type Tile struct {
	TileParams
	Data []float32
}

// At returns the sample at pixel (x, y), clamped to the tile.
func (t *Tile) At(x, y int) float32 {
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)
	return t.Data[y*t.Width+x]
}

// newTile evaluates Noise2 for every pixel of p.
func newTile(p TileParams) *Tile {
	w, h := max(p.Width, 0), max(p.Height, 0)
	p.Width, p.Height = w, h
	data := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := p.SamplePoint(x, y)
			data[y*w+x] = Noise2(sx, sy, p.Scale, p.Seed)
		}
	}
	return &Tile{TileParams: p, Data: data}
}

// TileStats reports TileCache activity.
type TileStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int // tiles currently cached across all buckets
	Buckets   int // distinct density buckets
}

// TileCache caches noise tiles in per-density LRU buckets.
// TileCache is safe for concurrent use.
type TileCache struct {
	mu       sync.Mutex
	capacity int
	buckets  map[string]*cache.Cache[string, *Tile]
	flight   singleflight.Group
}

// NewTileCache creates a cache holding up to capacity tiles per bucket.
// A non-positive capacity selects DefaultTileCapacity.
func NewTileCache(capacity int) *TileCache {
	if capacity <= 0 {
		capacity = DefaultTileCapacity
	}
	return &TileCache{
		capacity: capacity,
		buckets:  make(map[string]*cache.Cache[string, *Tile]),
	}
}

// Get returns the tile for p, computing it on a miss. Identical params
// return the identical *Tile while it stays cached. Concurrent misses on
// one key compute the tile once, outside the bucket lock.
func (c *TileCache) Get(p TileParams) *Tile {
	c.mu.Lock()
	b, ok := c.buckets[p.bucket()]
	if !ok {
		b = cache.New[string, *Tile](c.capacity)
		c.buckets[p.bucket()] = b
	}
	c.mu.Unlock()

	key := p.key()
	if t, ok := b.Get(key); ok {
		return t
	}
	v, _, _ := c.flight.Do(key, func() (any, error) {
		if t, ok := b.Peek(key); ok {
			return t, nil
		}
		t := newTile(p)
		b.Set(key, t)
		return t, nil
	})
	return v.(*Tile)
}

// Clear drops every bucket and resets all counters.
func (c *TileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buckets = make(map[string]*cache.Cache[string, *Tile])
}

// Stats returns aggregated statistics over all buckets.
func (c *TileCache) Stats() TileStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := TileStats{Buckets: len(c.buckets)}
	for _, b := range c.buckets {
		bs := b.Stats()
		st.Hits += bs.Hits
		st.Misses += bs.Misses
		st.Evictions += bs.Evictions
		st.Size += bs.Len
	}
	return st
}

// Capacity returns the per-bucket capacity.
func (c *TileCache) Capacity() int {
	return c.capacity
}

// defaultTiles is the process-wide tile cache.
var defaultTiles = NewTileCache(DefaultTileCapacity)

// DefaultTiles returns the process-wide tile cache used when callers do
// not inject their own.
func DefaultTiles() *TileCache {
	return defaultTiles
}
