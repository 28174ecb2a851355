package page

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/atlas"
	"github.com/gogpu/typewriter/grain"
	"github.com/gogpu/typewriter/internal/noise"
)

// Renderer defaults.
const (
	DefaultVariants = 4
	DefaultSeed     = 0x7e57
)

// DefaultPaper is the default page background.
var DefaultPaper = color.RGBA{R: 0xfb, G: 0xf8, B: 0xf1, A: 0xff}

// Stats reports renderer activity.
type Stats struct {
	Paints        uint64
	FullPaints    uint64
	PartialPaints uint64
	Failures      uint64
}

// Renderer paints pages from their grids through an atlas cache. It is
// driven by a FrameLoop and is not safe for concurrent use.
type Renderer struct {
	metrics Metrics
	atlases *atlas.Cache
	loop    FrameLoop

	background color.RGBA
	variants   int
	seed       uint32
	effects    bool
	grain      *grain.Overlay

	batchDepth int
	touched    []*Page
	stats      Stats
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithBackground sets the paper colour.
func WithBackground(c color.Color) RendererOption {
	return func(r *Renderer) {
		r.background = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

// WithVariants sets how many overstrike variants cells pick from, in
// [1, atlas.MaxVariant+1].
func WithVariants(n int) RendererOption {
	return func(r *Renderer) {
		r.variants = min(max(n, 1), atlas.MaxVariant+1)
	}
}

// WithSeed sets the seed of the per-cell variant choice.
func WithSeed(seed uint32) RendererOption {
	return func(r *Renderer) {
		r.seed = seed
	}
}

// WithEffects turns the ink stages on or off. Default on.
func WithEffects(on bool) RendererOption {
	return func(r *Renderer) {
		r.effects = on
	}
}

// WithGrain overlays page grain from o. The grain look follows the grain
// section of the atlas cache parameters.
func WithGrain(o *grain.Overlay) RendererOption {
	return func(r *Renderer) {
		r.grain = o
	}
}

// NewRenderer creates a renderer drawing glyphs from atlases and
// scheduling paints on loop.
func NewRenderer(m Metrics, atlases *atlas.Cache, loop FrameLoop, opts ...RendererOption) *Renderer {
	r := &Renderer{
		metrics:    m,
		atlases:    atlases,
		loop:       loop,
		background: DefaultPaper,
		variants:   DefaultVariants,
		seed:       DefaultSeed,
		effects:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the metrics provider.
func (r *Renderer) Metrics() Metrics { return r.metrics }

// Stats returns paint counters.
func (r *Renderer) Stats() Stats { return r.stats }

// NewPage creates an inactive page that needs a full paint.
func (r *Renderer) NewPage(index int, layout Layout) *Page {
	return newPage(index, layout)
}

// Activate marks p visible and schedules a paint if it is dirty.
func (r *Renderer) Activate(p *Page) {
	p.active = true
	if p.IsDirty() {
		r.SchedulePaint(p)
	}
}

// Deactivate marks p hidden and cancels its pending paint.
func (r *Renderer) Deactivate(p *Page) {
	p.active = false
	if p.pending {
		r.loop.CancelFrame(p.frame)
		p.pending = false
		p.frame = 0
	}
}

// MarkRowDirty adds row to the dirty range of p and schedules a paint
// unless a batch is open.
func (r *Renderer) MarkRowDirty(p *Page, row int) {
	p.markRow(row)
	r.touch(p)
}

// MarkAllDirty marks every row of p dirty.
func (r *Renderer) MarkAllDirty(p *Page) {
	p.markAll()
	r.touch(p)
}

func (r *Renderer) touch(p *Page) {
	if r.batchDepth > 0 {
		for _, t := range r.touched {
			if t == p {
				return
			}
		}
		r.touched = append(r.touched, p)
		return
	}
	r.SchedulePaint(p)
}

// BeginBatch opens a batch. Until the matching EndBatch no paint is
// scheduled. Batches nest.
func (r *Renderer) BeginBatch() {
	r.batchDepth++
}

// EndBatch closes a batch. Closing the outermost batch schedules one paint
// for every page touched inside it.
func (r *Renderer) EndBatch() {
	if r.batchDepth == 0 {
		return
	}
	r.batchDepth--
	if r.batchDepth > 0 {
		return
	}
	touched := r.touched
	r.touched = nil
	for _, p := range touched {
		r.SchedulePaint(p)
	}
}

// SchedulePaint requests a frame to paint p. A page has at most one
// pending frame, and inactive pages are not scheduled.
func (r *Renderer) SchedulePaint(p *Page) {
	if !p.active || p.pending {
		return
	}
	p.pending = true
	p.frame = r.loop.RequestFrame(func() {
		p.pending = false
		p.frame = 0
		if !p.active {
			return
		}
		if err := r.PaintPage(p); err != nil {
			typewriter.LoggerFor("page").Warn("paint skipped", "page", p.Index, "error", err)
		}
	})
}

// Type strikes ch in ink on top of the cell at row, col.
func (r *Renderer) Type(p *Page, row, col int, ch rune, ink color.RGBA) {
	p.Grid.Push(row, col, Layer{Char: ch, Ink: ink})
	r.MarkRowDirty(p, row)
}

// Erase removes the top layer of the cell at row, col. It reports whether
// there was one.
func (r *Renderer) Erase(p *Page, row, col int) bool {
	if _, ok := p.Grid.Pop(row, col); !ok {
		return false
	}
	r.MarkRowDirty(p, row)
	return true
}

// Variant returns the overstrike variant of layer of the cell at row, col.
func (r *Renderer) Variant(row, col, layer int) int {
	//nolint:gosec // G115: grid indices and layer depth fit in int32/uint32
	h := noise.Hash2(int32(row), int32(col), r.seed^uint32(layer))
	//nolint:gosec // G115: variants is at most atlas.MaxVariant+1
	return int(h % uint32(r.variants))
}

// Scale returns the current device px per CSS px.
func (r *Renderer) Scale() float64 {
	return r.metrics.RenderScale() * r.metrics.Zoom()
}

// Band returns the CSS px vertical extent repainted for the dirty rows
// [minRow, maxRow] of a page laid out by l.
func (r *Renderer) Band(l Layout, minRow, maxRow int) (top, bottom float64) {
	gh := r.metrics.LineHeight()
	top = l.MarginTop + float64(minRow)*gh - gh - r.metrics.Ascent()
	bottom = l.MarginTop + float64(maxRow)*gh + gh + r.metrics.Descent()
	return top, bottom
}

// PaintPage repaints whatever p has marked dirty and blits it to the
// visible canvas. On failure p stays dirty and the error is returned.
func (r *Renderer) PaintPage(p *Page) error {
	scale := r.Scale()
	r.atlases.SetRenderScale(scale)
	if p.ensureBuffers(scale) {
		p.markAll()
	}
	if !p.IsDirty() {
		return nil
	}

	bounds := p.back.Bounds()
	region := bounds
	full := p.dirtyAll
	if !full {
		top, bottom := r.Band(p.Layout, p.dirtyMin, p.dirtyMax)
		region = image.Rect(0, int(math.Floor(top*scale)), bounds.Dx(), int(math.Ceil(bottom*scale))).Intersect(bounds)
	}

	if err := r.redraw(p, region, full, scale); err != nil {
		r.stats.Failures++
		return fmt.Errorf("page %d: %w", p.Index, err)
	}

	if r.grain != nil {
		opt := grain.FromParams(r.atlases.Params())
		if g := r.grain.ForPage(p.Index, bounds.Dx(), bounds.Dy(), scale, opt); g != nil {
			grain.Apply(p.back, region, g, opt.Blend)
		}
	}

	draw.Draw(p.visible, region, p.back, region.Min, draw.Src)
	p.lastBlit = region
	p.clean()

	r.stats.Paints++
	if full {
		r.stats.FullPaints++
	} else {
		r.stats.PartialPaints++
	}
	typewriter.LoggerFor("page").Debug("painted", "page", p.Index, "full", full, "rect", region.String())
	return nil
}

type atlasKey struct {
	ink     color.RGBA
	variant int
}

// redraw clears region of the back buffer and draws every row that
// overlaps it, in ascending order, clipped to region.
func (r *Renderer) redraw(p *Page, region image.Rectangle, full bool, scale float64) error {
	draw.Draw(p.back, region, image.NewUniform(r.background), image.Point{}, draw.Src)

	gh := r.metrics.LineHeight()
	gw := r.metrics.CharWidth()
	atlases := make(map[atlasKey]*atlas.Atlas)

	for _, row := range p.Grid.Rows() {
		y := int(math.Round((p.Layout.MarginTop + float64(row)*gh) * scale))
		if !full {
			rowRect := image.Rect(region.Min.X, y, region.Max.X, y+int(math.Ceil(gh*scale)))
			if !rowRect.Overlaps(region) {
				continue
			}
		}
		for _, col := range p.Grid.Cols(row) {
			x := int(math.Round((p.Layout.MarginLeft + float64(col)*gw) * scale))
			layers := p.Grid.Cell(row, col)
			for i, l := range layers {
				key := atlasKey{ink: l.Ink, variant: r.Variant(row, col, i)}
				a, ok := atlases[key]
				if !ok {
					var err error
					a, err = r.atlases.Ensure(l.Ink, key.variant, r.effects)
					if err != nil {
						return err
					}
					atlases[key] = a
				}
				drawLayer(p.back, region, a, l.Char, image.Pt(x, y), LayerOpacity(layers, i))
			}
		}
	}
	return nil
}

// drawLayer composites the atlas cell of ch at at, scaled by opacity and
// clipped to clip.
func drawLayer(dst *image.RGBA, clip image.Rectangle, a *atlas.Atlas, ch rune, at image.Point, opacity float64) {
	src := a.Rect(ch)
	dr := image.Rectangle{Min: at, Max: at.Add(src.Size())}
	clipped := dr.Intersect(clip)
	if clipped.Empty() {
		return
	}
	sp := src.Min.Add(clipped.Min.Sub(dr.Min))
	if opacity >= 1 {
		draw.Draw(dst, clipped, a.Image, sp, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, clipped, a.Image, sp, mask, image.Point{}, draw.Over)
}
