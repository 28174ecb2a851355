// Package grain renders the paper grain overlaid on typed pages.
//
// A grain image is plain noise encoded relative to the neutral value of its
// blend mode: white for multiply and darken, mid grey for overlay and
// soft-light, transparent for normal. Blending it with Apply therefore
// leaves the page unchanged wherever the noise is neutral.
//
// Overlay caches at two levels. In tiled mode a seamless base tile is
// rendered once per density and reused by every page, each page taking it
// at its own offset. Composed page images are cached by page index, size
// and options.
package grain

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"golang.org/x/image/draw"

	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/cache"
	"github.com/gogpu/typewriter/internal/noise"
)

// Default cache capacities.
const (
	DefaultPageCapacity = 8
	DefaultTileCapacity = 4
)

// Options describes one grain look.
type Options struct {
	// Octaves of fractal noise, at least 1.
	Octaves int

	// Scale is the coarsest noise feature size in CSS px.
	Scale float64

	// Amount is the grain strength in [0, 1]. Zero disables grain.
	Amount float64

	Seed uint32

	// Tiled builds the page from a repeating base tile of TileSize CSS px.
	Tiled    bool
	TileSize float64

	// Blend is one of the effect.Blend* modes.
	Blend string
}

// FromParams derives grain options from resolved effect parameters. The
// amount is scaled by the grain section and overall strengths, and is zero
// when the section is disabled.
func FromParams(p *effect.Params) Options {
	g := p.Grain
	amount := float64(g.Amount * g.Section.Strength * p.Strength)
	if !g.Section.Enabled {
		amount = 0
	}
	return Options{
		Octaves:  g.Octaves,
		Scale:    float64(g.Scale),
		Amount:   amount,
		Seed:     noise.Mix(p.Noise.Seed, 0x67a1),
		Tiled:    g.Tiled,
		TileSize: float64(g.TileSize),
		Blend:    g.Blend,
	}
}

func (o Options) key() string {
	return fmt.Sprintf("%d|%.6f|%.6f|%d|%t|%.6f|%s",
		o.Octaves, o.Scale, o.Amount, o.Seed, o.Tiled, o.TileSize, o.Blend)
}

// Stats reports overlay cache activity.
type Stats struct {
	Tiles      int
	Pages      int
	TileHits   uint64
	TileMisses uint64
	PageHits   uint64
	PageMisses uint64
}

// Overlay renders and caches grain images. It is safe for concurrent use.
type Overlay struct {
	tiles *cache.Cache[string, *image.Gray]
	pages *cache.Cache[string, *image.RGBA]
}

// NewOverlay creates an overlay with the default cache capacities.
func NewOverlay() *Overlay {
	return NewOverlayWithCapacity(DefaultPageCapacity, DefaultTileCapacity)
}

// NewOverlayWithCapacity creates an overlay keeping at most pages composed
// page images and tiles base tiles.
func NewOverlayWithCapacity(pages, tiles int) *Overlay {
	return &Overlay{
		tiles: cache.New[string, *image.Gray](tiles),
		pages: cache.New[string, *image.RGBA](pages),
	}
}

// ForPage returns the w×h device-pixel grain image of page index. It
// returns nil when opt.Amount is zero or the page is empty. The returned
// image is shared and must not be modified.
func (o *Overlay) ForPage(index, w, h int, dpPerCSS float64, opt Options) *image.RGBA {
	if !(opt.Amount > 0) || w <= 0 || h <= 0 {
		return nil
	}
	if !(dpPerCSS > 0) {
		dpPerCSS = 1
	}
	opt.Octaves = max(opt.Octaves, 1)
	if !(opt.Scale > 0) {
		opt.Scale = 1
	}

	key := fmt.Sprintf("%d|%d|%d|%.6f|%s", index, w, h, dpPerCSS, opt.key())
	img, hit := o.pages.GetOrCreate(key, func() *image.RGBA {
		return o.compose(index, w, h, dpPerCSS, opt)
	})
	if !hit {
		typewriter.LoggerFor("grain").Debug("composed page", "page", index, "size", fmt.Sprintf("%dx%d", w, h))
	}
	return img
}

func (o *Overlay) compose(index, w, h int, dp float64, opt Options) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if opt.Tiled {
		tile := o.baseTile(dp, opt)
		size := tile.Rect.Dx()
		//nolint:gosec // G115: page index is small
		ox := int(noise.Hash2(int32(index), 0, opt.Seed) % uint32(size))
		//nolint:gosec // G115: page index is small
		oy := int(noise.Hash2(int32(index), 1, opt.Seed) % uint32(size))
		for y := 0; y < h; y++ {
			row := tile.Pix[((y+oy)%size)*tile.Stride:]
			for x := 0; x < w; x++ {
				setGrain(out, x, y, float32(row[(x+ox)%size])/255, opt)
			}
		}
		return out
	}

	//nolint:gosec // G115: page index is small
	seed := noise.Mix(opt.Seed, uint32(index))
	for y := 0; y < h; y++ {
		py := (float64(y) + 0.5) / dp
		for x := 0; x < w; x++ {
			px := (float64(x) + 0.5) / dp
			setGrain(out, x, y, noise.FBM(px, py, opt.Scale, opt.Octaves, seed), opt)
		}
	}
	return out
}

// baseTile returns the seamless square noise tile for dp and opt.
func (o *Overlay) baseTile(dp float64, opt Options) *image.Gray {
	size := max(8, int(math.Round(opt.TileSize*dp)))
	featureDP := opt.Scale * dp
	period := max(1, int(math.Round(float64(size)/featureDP)))
	scale := float64(size) / float64(period)

	key := fmt.Sprintf("%d|%d|%d|%d", size, period, opt.Octaves, opt.Seed)
	tile, _ := o.tiles.GetOrCreate(key, func() *image.Gray {
		g := image.NewGray(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				v := noise.PeriodicFBM(float64(x)+0.5, float64(y)+0.5, scale, period, opt.Octaves, opt.Seed)
				g.Pix[y*g.Stride+x] = uint8(v*255 + 0.5)
			}
		}
		return g
	})
	return tile
}

// setGrain encodes noise n in [0, 1] relative to the neutral value of the
// blend mode.
func setGrain(dst *image.RGBA, x, y int, n float32, opt Options) {
	a := float32(opt.Amount)
	var c color.RGBA
	switch opt.Blend {
	case effect.BlendOverlay, effect.BlendSoftLight:
		v := uint8(clamp01(0.5+a*(n-0.5))*255 + 0.5)
		c = color.RGBA{R: v, G: v, B: v, A: 255}
	case effect.BlendNormal:
		c = color.RGBA{A: uint8(clamp01(a*n)*255 + 0.5)}
	default:
		v := uint8(clamp01(1-a*n)*255 + 0.5)
		c = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	dst.SetRGBA(x, y, c)
}

// Apply blends the part of g covering rect onto dst. g is aligned with
// dst: pixel (x, y) of g lands on pixel (x, y) of dst.
func Apply(dst *image.RGBA, rect image.Rectangle, g *image.RGBA, mode string) {
	if g == nil {
		return
	}
	r := rect.Intersect(dst.Bounds()).Intersect(g.Bounds())
	if r.Empty() {
		return
	}
	local := image.Rect(0, 0, r.Dx(), r.Dy())
	bg := image.NewRGBA(local)
	draw.Draw(bg, local, dst, r.Min, draw.Src)
	fg := image.NewRGBA(local)
	draw.Draw(fg, local, g, r.Min, draw.Src)

	var out *image.RGBA
	switch mode {
	case effect.BlendOverlay:
		out = blend.Overlay(bg, fg)
	case effect.BlendSoftLight:
		out = blend.SoftLight(bg, fg)
	case effect.BlendDarken:
		out = blend.Darken(bg, fg)
	case effect.BlendNormal:
		out = blend.Normal(bg, fg)
	default:
		out = blend.Multiply(bg, fg)
	}
	draw.Draw(dst, r, out, image.Point{}, draw.Src)
}

// Stats returns cache statistics.
func (o *Overlay) Stats() Stats {
	ts, ps := o.tiles.Stats(), o.pages.Stats()
	return Stats{
		Tiles:      ts.Len,
		Pages:      ps.Len,
		TileHits:   ts.Hits,
		TileMisses: ts.Misses,
		PageHits:   ps.Hits,
		PageMisses: ps.Misses,
	}
}

// Clear drops every cached tile and page image.
func (o *Overlay) Clear() {
	o.tiles.Clear()
	o.pages.Clear()
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
