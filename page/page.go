package page

import (
	"image"
	"math"
)

// Layout places a page and its text area. Lengths are in CSS px.
type Layout struct {
	Width, Height         float64
	MarginTop, MarginLeft float64
}

// Page is one typed page with double-buffered device-pixel canvases.
//
// The repaint state is either dirtyAll, a dirty row range, or clean.
// dirtyAll takes precedence over a row range.
type Page struct {
	Index  int
	Layout Layout
	Grid   Grid

	visible *image.RGBA
	back    *image.RGBA
	scale   float64

	dirtyAll           bool
	hasRows            bool
	dirtyMin, dirtyMax int

	active   bool
	pending  bool
	frame    FrameID
	lastBlit image.Rectangle
}

func newPage(index int, layout Layout) *Page {
	return &Page{Index: index, Layout: layout, dirtyAll: true}
}

// Canvas returns the visible canvas. It is nil before the first paint.
func (p *Page) Canvas() *image.RGBA { return p.visible }

// Active reports whether the page is active.
func (p *Page) Active() bool { return p.active }

// Pending reports whether a paint frame is scheduled.
func (p *Page) Pending() bool { return p.pending }

// LastBlit returns the device rectangle copied to the visible canvas by the
// last paint.
func (p *Page) LastBlit() image.Rectangle { return p.lastBlit }

// Dirty reports the repaint state. rows is false when no row range is set.
func (p *Page) Dirty() (all bool, minRow, maxRow int, rows bool) {
	return p.dirtyAll, p.dirtyMin, p.dirtyMax, p.hasRows
}

// IsDirty reports whether the page needs a paint.
func (p *Page) IsDirty() bool { return p.dirtyAll || p.hasRows }

func (p *Page) markRow(row int) {
	if p.dirtyAll {
		return
	}
	if !p.hasRows {
		p.dirtyMin, p.dirtyMax, p.hasRows = row, row, true
		return
	}
	p.dirtyMin = min(p.dirtyMin, row)
	p.dirtyMax = max(p.dirtyMax, row)
}

func (p *Page) markAll() {
	p.dirtyAll = true
	p.hasRows = false
}

func (p *Page) clean() {
	p.dirtyAll = false
	p.hasRows = false
}

// ensureBuffers sizes both canvases for scale. It reports whether they
// were reallocated, in which case the page must be repainted in full.
func (p *Page) ensureBuffers(scale float64) bool {
	w := max(1, int(math.Ceil(p.Layout.Width*scale)))
	h := max(1, int(math.Ceil(p.Layout.Height*scale)))
	want := image.Rect(0, 0, w, h)
	if p.back != nil && p.back.Rect == want && p.scale == scale {
		return false
	}
	p.visible = image.NewRGBA(want)
	p.back = image.NewRGBA(want)
	p.scale = scale
	return true
}
