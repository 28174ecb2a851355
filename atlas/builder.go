package atlas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/distfield"
	"github.com/gogpu/typewriter/internal/noise"
	"github.com/gogpu/typewriter/internal/stage"
)

// overstrikeShiftCSS is the horizontal offset between overstrike copies.
const overstrikeShiftCSS = 0.12

// variantSeedStep separates the seeds of overstrike variants.
const variantSeedStep uint32 = 0x9E3779B1

// CanvasFunc creates a w×h drawing surface.
type CanvasFunc func(w, h int) (*image.RGBA, error)

// NewCanvas is the default CanvasFunc.
func NewCanvas(w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// BuilderStats reports cumulative builder work.
type BuilderStats struct {
	Builds uint64
	Glyphs uint64
}

type builderCounters struct {
	builds atomic.Uint64
	glyphs atomic.Uint64
}

// Builder renders atlases. It holds no mutable state besides its
// counters and is safe for concurrent use.
type Builder struct {
	font        *Font
	renderScale float64
	ssFactor    int
	ssFrom      float64
	canvas      CanvasFunc
	tiles       *noise.TileCache
	counters    *builderCounters
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRenderScale sets the device pixels per CSS pixel. Default 1.
func WithRenderScale(scale float64) BuilderOption {
	return func(b *Builder) {
		if scale > 0 {
			b.renderScale = scale
		}
	}
}

// WithSupersample rasterizes at factor times the render scale once the
// render scale reaches minScale, then box-filters down. Some rasterizers
// lose stem weight at high zoom.
func WithSupersample(factor int, minScale float64) BuilderOption {
	return func(b *Builder) {
		b.ssFactor = max(factor, 1)
		b.ssFrom = minScale
	}
}

// WithCanvas replaces the canvas constructor.
func WithCanvas(fn CanvasFunc) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.canvas = fn
		}
	}
}

// WithTiles sets the noise tile cache shared by the stages.
func WithTiles(tiles *noise.TileCache) BuilderOption {
	return func(b *Builder) {
		b.tiles = tiles
	}
}

// NewBuilder creates a builder for f.
func NewBuilder(f *Font, opts ...BuilderOption) *Builder {
	b := &Builder{
		font:        f,
		renderScale: 1,
		ssFactor:    1,
		canvas:      NewCanvas,
		counters:    &builderCounters{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tiles == nil {
		b.tiles = noise.DefaultTiles()
	}
	return b
}

// Font returns the builder's font.
func (b *Builder) Font() *Font { return b.font }

// RenderScale returns the device pixels per CSS pixel.
func (b *Builder) RenderScale() float64 { return b.renderScale }

// Stats returns the cumulative counters, shared with derived builders.
func (b *Builder) Stats() BuilderStats {
	return BuilderStats{
		Builds: b.counters.builds.Load(),
		Glyphs: b.counters.glyphs.Load(),
	}
}

// withFont returns a copy of b using f.
func (b *Builder) withFont(f *Font) *Builder {
	nb := *b
	nb.font = f
	return &nb
}

// withRenderScale returns a copy of b at scale.
func (b *Builder) withRenderScale(scale float64) *Builder {
	nb := *b
	if scale > 0 {
		nb.renderScale = scale
	}
	return &nb
}

// sampleScale returns the rasterization density and the supersample factor.
func (b *Builder) sampleScale() (float64, int) {
	ss := 1
	if b.ssFactor > 1 && b.renderScale >= b.ssFrom {
		ss = b.ssFactor
	}
	return b.renderScale * float64(ss), ss
}

// Build renders the atlas of key with p. p may be nil when key has no
// effects.
func (b *Builder) Build(key Key, p *effect.Params) (*Atlas, error) {
	m, err := b.font.Metrics()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	sample, ss := b.sampleScale()

	a := &Atlas{
		Key:         key,
		CellWCSS:    m.Advance,
		CellHCSS:    m.LineHeight,
		CellWDrawDP: max(1, int(math.Ceil(m.Advance*b.renderScale))),
		CellHDrawDP: max(1, int(math.Ceil(m.LineHeight*b.renderScale))),
		OriginYCSS:  m.Ascent,
		SampleScale: sample,
	}
	sw, sh := a.CellWDrawDP*ss, a.CellHDrawDP*ss

	img, err := b.canvas(Columns*(a.CellWDrawDP+2*gutter), Rows*(a.CellHDrawDP+2*gutter))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanvas, err)
	}
	a.Image = img

	face, err := b.font.face(sample)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	defer func() { _ = face.Close() }()

	variant := clampVariant(key.Variant)
	runStages := key.Effects && p != nil && p.Strength > 0
	var order []effect.StageID
	var seed uint32
	if p != nil {
		order = p.ActiveOrder()
		seed = p.Noise.Seed + uint32(variant)*variantSeedStep
	}

	mask := image.NewAlpha(image.Rect(0, 0, sw, sh))
	cov := make([]float32, sw*sh)
	for i := 0; i < numCodes; i++ {
		code := firstCode + i
		clear(mask.Pix)
		drawOverstrike(mask, face, rune(code), variant, m.Ascent*sample, overstrikeShiftCSS*sample)

		alpha := make([]uint8, len(mask.Pix))
		copy(alpha, mask.Pix)
		for j, v := range alpha {
			cov[j] = float32(v) / 255
		}
		if runStages {
			c := &stage.Context{
				W:        sw,
				H:        sh,
				Alpha:    alpha,
				Dist:     distfield.NewLazy(alpha, sw, sh),
				Seed:     seed ^ uint32(code),
				TileSeed: seed,
				Variant:  variant,
				DPPerCSS: float32(sample),
				Quality:  1,
				Params:   p,
				Tiles:    b.tiles,
			}
			stage.Run(cov, c, order)
		}

		glyph, err := b.canvas(sw, sh)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanvas, err)
		}
		colorize(glyph, cov, key.Ink)
		if ss > 1 {
			glyph = transform.Resize(glyph, a.CellWDrawDP, a.CellHDrawDP, transform.Box)
		}

		r := slotRect(i, a.CellWDrawDP, a.CellHDrawDP)
		draw.Draw(img, r, glyph, image.Point{}, draw.Src)
		a.rects[i] = r
		b.counters.glyphs.Add(1)
	}

	b.counters.builds.Add(1)
	typewriter.LoggerFor("atlas").Debug("built",
		"key", key.String(), "cell", fmt.Sprintf("%dx%d", a.CellWDrawDP, a.CellHDrawDP),
		"sampleScale", sample)
	return a, nil
}

// drawOverstrike strikes r variant+1 times, each copy shifted left of the
// next so the last one sits on the origin.
func drawOverstrike(dst *image.Alpha, face font.Face, r rune, variant int, baseline, shift float64) {
	d := &font.Drawer{Dst: dst, Src: image.Opaque, Face: face}
	s := string(r)
	for k := 0; k <= variant; k++ {
		dx := -float64(variant-k) * shift
		d.Dot = fixed.Point26_6{X: floatToFixed(dx), Y: floatToFixed(baseline)}
		d.DrawString(s)
	}
}

// colorize writes ink scaled by coverage into dst. ink is already
// premultiplied, so scaling every channel keeps dst premultiplied.
func colorize(dst *image.RGBA, cov []float32, ink color.RGBA) {
	w := dst.Rect.Dx()
	for y := 0; y < dst.Rect.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+4*w]
		for x := 0; x < w; x++ {
			c := cov[y*w+x]
			if c <= 0 {
				row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = 0, 0, 0, 0
				continue
			}
			c = min(c, 1)
			row[4*x] = uint8(float32(ink.R)*c + 0.5)
			row[4*x+1] = uint8(float32(ink.G)*c + 0.5)
			row[4*x+2] = uint8(float32(ink.B)*c + 0.5)
			row[4*x+3] = uint8(float32(ink.A)*c + 0.5)
		}
	}
}
