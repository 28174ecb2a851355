// Package stage implements the per-glyph ink compositing stages.
//
// A stage reads a glyph's alpha mask and distance maps from a Context and
// mutates a coverage buffer of the same size in place. Stages are pure
// functions of their inputs: the same Context and coverage always produce
// the same output, which is what lets atlases be built on any goroutine.
package stage

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/distfield"
	"github.com/gogpu/typewriter/internal/noise"
)

// Context describes one glyph cell being composited.
type Context struct {
	// W and H are the cell size in device pixels.
	W, H int

	// Alpha is the rasterized glyph mask, W*H bytes.
	Alpha []uint8

	// Dist provides the distance maps of Alpha, built on first use.
	Dist *distfield.Lazy

	// Seed is the per-glyph seed.
	Seed uint32

	// TileSeed seeds the detail noise tiles. It is shared by every glyph
	// of an atlas so the tiles are reused across glyphs and rebuilds.
	TileSeed uint32

	// Variant is the overstrike variant index.
	Variant int

	// DPPerCSS is the device-pixel density of the cell.
	DPPerCSS float32

	// Quality is the sampling effort of the running stage, set per stage.
	Quality float32

	Params *effect.Params

	// Tiles caches detail noise. Nil means noise.DefaultTiles().
	Tiles *noise.TileCache
}

// Func is a stage: it mutates cov, which has c.W*c.H entries.
type Func func(cov []float32, c *Context)

// Salts separating the noise streams of the stages.
const (
	saltPressureLow  uint32 = 0x1b873593
	saltPressureHigh uint32 = 0xcc9e2d51
	saltDropout      uint32 = 0x85ebca6b
	saltDropoutHash  uint32 = 0xc2b2ae35
	saltTexture      uint32 = 0x27d4eb2f
	saltFuzz         uint32 = 0x165667b1
	saltFuzzHash     uint32 = 0xd3a2646c
	saltSmudge       uint32 = 0xfd7046c5
)

func (c *Context) tiles() *noise.TileCache {
	if c.Tiles != nil {
		return c.Tiles
	}
	return noise.DefaultTiles()
}

// tile returns the detail noise tile covering the cell with lattice
// spacing scale CSS px.
func (c *Context) tile(scale float32, salt uint32) *noise.Tile {
	return c.tiles().Get(noise.TileParams{
		Density:  float64(c.DPPerCSS),
		Width:    c.W,
		Height:   c.H,
		DPPerCSS: float64(c.DPPerCSS),
		Scale:    float64(scale),
		Seed:     noise.Mix(c.TileSeed, salt),
	})
}

// alphaAt returns the mask value at index i in [0, 1].
func (c *Context) alphaAt(i int) float32 {
	return float32(c.Alpha[i]) / 255
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func smoothstep(e0, e1, x float32) float32 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func roundInt(v float32) int {
	return int(math32.Floor(v + 0.5))
}
