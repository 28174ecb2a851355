package atlas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/typewriter/effect"
)

// Code range covered by an atlas: printable ASCII.
const (
	firstCode = 32
	lastCode  = 126
	numCodes  = lastCode - firstCode + 1

	// Columns is the number of glyph slots per atlas row.
	Columns = 32

	// Rows is the number of glyph slot rows.
	Rows = (numCodes + Columns - 1) / Columns

	// gutter is the empty border around each slot, in device pixels.
	gutter = 1
)

// Key identifies an atlas. Two atlases with equal keys are pixel-identical.
type Key struct {
	Ink            color.RGBA
	Variant        int
	Effects        bool
	StrengthBucket int
	Order          string
	Stage          string
	Quality        string
}

// NewKey builds the key of an atlas rendered with p. Without effects the
// parameter signatures are irrelevant and left empty, so every parameter
// set shares the plain atlases.
func NewKey(ink color.RGBA, variant int, effects bool, p *effect.Params) Key {
	k := Key{Ink: ink, Variant: clampVariant(variant), Effects: effects}
	if effects && p != nil {
		k.StrengthBucket = p.StrengthBucket()
		k.Order = p.OrderSignature()
		k.Stage = p.StageSignature()
		k.Quality = p.QualitySignature()
	}
	return k
}

func (k Key) String() string {
	return fmt.Sprintf("%02x%02x%02x%02x/v%d/e%t/s%d/%s/%s/%s",
		k.Ink.R, k.Ink.G, k.Ink.B, k.Ink.A, k.Variant, k.Effects, k.StrengthBucket,
		k.Order, k.Stage, k.Quality)
}

// MaxVariant is the highest overstrike variant.
const MaxVariant = 8

func clampVariant(v int) int {
	return min(max(v, 0), MaxVariant)
}

// Atlas is a packed bitmap of every printable ASCII glyph rendered in one
// ink with one set of effect parameters. The bitmap is premultiplied RGBA
// with the ink colour and the glyph coverage as alpha.
//
// An Atlas is immutable once built.
type Atlas struct {
	Key   Key
	Image *image.RGBA

	rects [numCodes]image.Rectangle

	// CellWCSS and CellHCSS are the cell size in CSS px.
	CellWCSS, CellHCSS float64

	// CellWDrawDP and CellHDrawDP are the drawn cell size in device px.
	CellWDrawDP, CellHDrawDP int

	// OriginYCSS is the baseline offset from the top of the cell.
	OriginYCSS float64

	// SampleScale is the device px per CSS px the glyphs were rasterized at,
	// including supersampling.
	SampleScale float64
}

// Rect returns the device rectangle of r in Image. Runes outside printable
// ASCII are folded to it, falling back to '?'.
func (a *Atlas) Rect(r rune) image.Rectangle {
	return a.rects[Fold(r)-firstCode]
}

// RectsByCode returns every glyph rectangle keyed by character code.
func (a *Atlas) RectsByCode() map[int]image.Rectangle {
	out := make(map[int]image.Rectangle, numCodes)
	for i, r := range a.rects {
		out[firstCode+i] = r
	}
	return out
}

// slotRect returns the device rectangle of slot i for a cell of w×h.
func slotRect(i, w, h int) image.Rectangle {
	col, row := i%Columns, i/Columns
	x := col*(w+2*gutter) + gutter
	y := row*(h+2*gutter) + gutter
	return image.Rect(x, y, x+w, y+h)
}
