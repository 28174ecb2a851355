package page

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/typewriter/atlas"
	"github.com/gogpu/typewriter/grain"
)

var testFont = atlas.DefaultFont(8)

func newTestRenderer(t *testing.T, opts ...RendererOption) (*Renderer, *ManualLoop) {
	t.Helper()
	loop := NewManualLoop()
	atlases := atlas.NewCache(atlas.NewBuilder(testFont))
	opts = append([]RendererOption{WithEffects(false)}, opts...)
	return NewRenderer(MetricsFor(testFont, 1), atlases, loop, opts...), loop
}

var testLayout = Layout{Width: 200, Height: 300, MarginTop: 20, MarginLeft: 10}

func TestLayerOpacity(t *testing.T) {
	black := Layer{Char: 'x', Ink: DefaultInk}
	white := Layer{Char: 'x', Ink: WhiteInk}

	tests := []struct {
		name   string
		layers []Layer
		want   []float64
	}{
		{"single", []Layer{black}, []float64{1}},
		{"three", []Layer{black, black, black}, []float64{0.92 * 0.92, 0.92, 1}},
		{"white below", []Layer{white, black}, []float64{1, 1}},
		{"white middle", []Layer{black, white, black}, []float64{0.92 * 0.92, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				if got := LayerOpacity(tt.layers, i); math.Abs(got-want) > 1e-9 {
					t.Errorf("layer %d opacity = %v, want %v", i, got, want)
				}
			}
		})
	}

	stack := []Layer{black, black, black, black}
	if LayerOpacity(stack, 0) >= LayerOpacity(stack, 3) {
		t.Error("bottom layer is not fainter than the top layer")
	}
	if LayerOpacity(stack, -1) != 0 || LayerOpacity(stack, 4) != 0 {
		t.Error("out of range layers should have zero opacity")
	}
}

func TestDrawLayerFades(t *testing.T) {
	atlases := atlas.NewCache(atlas.NewBuilder(testFont))
	a, err := atlases.Ensure(DefaultInk, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	darkness := func(opacity float64) int {
		size := a.Rect('M').Size()
		dst := image.NewRGBA(image.Rectangle{Max: size})
		for i := range dst.Pix {
			dst.Pix[i] = 0xff
		}
		drawLayer(dst, dst.Bounds(), a, 'M', image.Point{}, opacity)
		sum := 0
		for i := 0; i < len(dst.Pix); i += 4 {
			sum += 255 - int(dst.Pix[i])
		}
		return sum
	}
	top, below := darkness(1), darkness(math.Pow(LayerFalloff, 3))
	if top == 0 {
		t.Fatal("glyph drew nothing")
	}
	if below >= top {
		t.Errorf("faded layer darkness %d, want less than %d", below, top)
	}
}

func TestGrid(t *testing.T) {
	var g Grid
	g.Push(3, 1, Layer{Char: 'a'})
	g.Push(3, 1, Layer{Char: 'b'})
	g.Push(1, 7, Layer{Char: 'c'})
	g.Push(3, 0, Layer{Char: 'd'})

	if got := g.Rows(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Rows = %v, want [1 3]", got)
	}
	if got := g.Cols(3); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Cols(3) = %v, want [0 1]", got)
	}
	if got := g.Cell(3, 1); len(got) != 2 || got[0].Char != 'a' || got[1].Char != 'b' {
		t.Errorf("Cell(3, 1) = %v", got)
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}

	if l, ok := g.Pop(3, 1); !ok || l.Char != 'b' {
		t.Errorf("Pop = %v, %v", l, ok)
	}
	g.Pop(1, 7)
	if got := g.Rows(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Rows after pop = %v, want [3]", got)
	}
	if _, ok := g.Pop(9, 9); ok {
		t.Error("Pop of empty cell succeeded")
	}
}

func TestManualLoop(t *testing.T) {
	l := NewManualLoop()
	var ran []int
	l.RequestFrame(func() { ran = append(ran, 1) })
	id := l.RequestFrame(func() { ran = append(ran, 2) })
	l.RequestFrame(func() {
		ran = append(ran, 3)
		l.RequestFrame(func() { ran = append(ran, 4) })
	})
	l.CancelFrame(id)

	if n := l.Flush(); n != 2 {
		t.Errorf("first Flush ran %d, want 2", n)
	}
	if n := l.Flush(); n != 1 {
		t.Errorf("second Flush ran %d, want 1", n)
	}
	want := []int{1, 3, 4}
	if len(ran) != len(want) {
		t.Fatalf("ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("ran %v, want %v", ran, want)
		}
	}
}

func TestParseInk(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#00f", color.RGBA{0, 0, 255, 255}, false},
		{" Red ", RedInk, false},
		{"white", WhiteInk, false},
		{"#zzzzzz", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInk(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInk = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant(t *testing.T) {
	r, _ := newTestRenderer(t, WithVariants(3))
	seen := map[int]bool{}
	for row := 0; row < 20; row++ {
		for col := 0; col < 20; col++ {
			v := r.Variant(row, col, 0)
			if v < 0 || v >= 3 {
				t.Fatalf("Variant = %d, want [0, 3)", v)
			}
			if v != r.Variant(row, col, 0) {
				t.Fatal("Variant is not deterministic")
			}
			seen[v] = true
		}
	}
	if len(seen) != 3 {
		t.Errorf("saw variants %v, want all of 0..2", seen)
	}
}

func TestBand(t *testing.T) {
	m := StaticMetrics{AscentCSS: 12, DescentCSS: 4, CharWidthCSS: 8, LineHeightCSS: 16}
	r := NewRenderer(m, nil, NewManualLoop())
	top, bottom := r.Band(Layout{MarginTop: 20}, 3, 4)
	if top != 40 || bottom != 104 {
		t.Errorf("Band = [%v, %v], want [40, 104]", top, bottom)
	}
}

func TestNewPageFullPaint(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	if !p.Pending() {
		t.Fatal("activating a new page did not schedule a paint")
	}
	loop.Flush()

	if p.IsDirty() {
		t.Error("page still dirty after paint")
	}
	if got, want := p.LastBlit(), image.Rect(0, 0, 200, 300); got != want {
		t.Errorf("LastBlit = %v, want %v", got, want)
	}
	if got := p.Canvas().RGBAAt(5, 5); got != DefaultPaper {
		t.Errorf("background = %v, want %v", got, DefaultPaper)
	}
	if s := r.Stats(); s.FullPaints != 1 || s.PartialPaints != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDirtyRowBand(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	r.Type(p, 5, 0, 'A', DefaultInk)
	loop.Flush()

	before := image.NewRGBA(p.Canvas().Bounds())
	copy(before.Pix, p.Canvas().Pix)

	r.Type(p, 5, 2, 'W', DefaultInk)
	if all, lo, hi, rows := p.Dirty(); all || !rows || lo != 5 || hi != 5 {
		t.Fatalf("Dirty = %v %d %d %v, want rows 5..5", all, lo, hi, rows)
	}
	loop.Flush()

	top, bottom := r.Band(testLayout, 5, 5)
	want := image.Rect(0, int(math.Floor(top)), 200, int(math.Ceil(bottom))).Intersect(p.Canvas().Bounds())
	got := p.LastBlit()
	if got != want {
		t.Fatalf("LastBlit = %v, want %v", got, want)
	}
	if got.Dy() >= p.Canvas().Bounds().Dy() {
		t.Errorf("partial paint covered the whole page: %v", got)
	}

	changed := false
	for y := 0; y < before.Rect.Dy(); y++ {
		for x := 0; x < before.Rect.Dx(); x++ {
			a, b := before.RGBAAt(x, y), p.Canvas().RGBAAt(x, y)
			if a == b {
				continue
			}
			if !image.Pt(x, y).In(want) {
				t.Fatalf("pixel %d,%d outside the band changed", x, y)
			}
			changed = true
		}
	}
	if !changed {
		t.Error("typing a glyph changed no pixels")
	}
	if s := r.Stats(); s.PartialPaints != 1 {
		t.Errorf("partial paints = %d, want 1", s.PartialPaints)
	}
}

func TestBatchFlushesOnce(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	q := r.NewPage(1, testLayout)
	r.Activate(p)
	r.Activate(q)
	loop.Flush()

	r.BeginBatch()
	r.Type(p, 1, 0, 'a', DefaultInk)
	r.BeginBatch()
	r.Type(p, 3, 0, 'b', DefaultInk)
	r.Type(q, 2, 0, 'c', DefaultInk)
	r.EndBatch()
	if loop.Pending() != 0 {
		t.Fatal("inner EndBatch scheduled a paint")
	}
	r.Type(p, 2, 0, 'd', DefaultInk)
	r.EndBatch()

	if got := loop.Pending(); got != 2 {
		t.Fatalf("pending frames = %d, want one per page", got)
	}
	if all, lo, hi, _ := p.Dirty(); all || lo != 1 || hi != 3 {
		t.Errorf("page 0 dirty = %v %d..%d, want rows 1..3", all, lo, hi)
	}
	loop.Flush()
	if s := r.Stats(); s.PartialPaints != 2 {
		t.Errorf("partial paints = %d, want 2", s.PartialPaints)
	}
	r.EndBatch()
}

func TestSchedulePaintDebounces(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	for i := 0; i < 5; i++ {
		r.Type(p, i, 0, 'x', DefaultInk)
	}
	if got := loop.Pending(); got != 1 {
		t.Errorf("pending frames = %d, want 1", got)
	}
}

func TestDeactivateCancelsPaint(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	r.Type(p, 0, 0, 'x', DefaultInk)
	r.Deactivate(p)

	if loop.Pending() != 0 {
		t.Error("pending frame survived Deactivate")
	}
	if n := loop.Flush(); n != 0 {
		t.Errorf("Flush ran %d callbacks", n)
	}
	if r.Stats().Paints != 0 {
		t.Error("inactive page was painted")
	}

	r.Type(p, 1, 0, 'y', DefaultInk)
	if loop.Pending() != 0 {
		t.Error("inactive page scheduled a paint")
	}
	r.Activate(p)
	loop.Flush()
	if p.IsDirty() || r.Stats().FullPaints != 1 {
		t.Errorf("reactivated page not painted: dirty=%v stats=%+v", p.IsDirty(), r.Stats())
	}
}

func TestEraseMarksRow(t *testing.T) {
	r, loop := newTestRenderer(t)
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	r.Type(p, 4, 4, 'x', DefaultInk)
	loop.Flush()

	if !r.Erase(p, 4, 4) {
		t.Fatal("Erase found no layer")
	}
	if _, lo, hi, rows := p.Dirty(); !rows || lo != 4 || hi != 4 {
		t.Errorf("Erase did not mark row 4")
	}
	loop.Flush()
	if r.Erase(p, 4, 4) {
		t.Error("second Erase found a layer")
	}
}

func TestPaintFailureKeepsPageDirty(t *testing.T) {
	b := atlas.NewBuilder(testFont, atlas.WithCanvas(func(int, int) (*image.RGBA, error) {
		return nil, errors.New("denied")
	}))
	r := NewRenderer(MetricsFor(testFont, 1), atlas.NewCache(b), NewManualLoop(), WithEffects(false))
	p := r.NewPage(0, testLayout)
	p.Grid.Push(0, 0, Layer{Char: 'x', Ink: DefaultInk})

	err := r.PaintPage(p)
	if !errors.Is(err, atlas.ErrCanvas) {
		t.Fatalf("PaintPage error = %v, want ErrCanvas", err)
	}
	if !p.IsDirty() {
		t.Error("failed paint cleaned the page")
	}
	if s := r.Stats(); s.Failures != 1 || s.Paints != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestZoomChangeRepaintsFully(t *testing.T) {
	m := MetricsFor(testFont, 1)
	loop := NewManualLoop()
	r := NewRenderer(&m, atlas.NewCache(atlas.NewBuilder(testFont)), loop, WithEffects(false))
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	loop.Flush()

	m.ZoomFactor = 2
	r.Type(p, 0, 0, 'x', DefaultInk)
	loop.Flush()

	if got, want := p.Canvas().Bounds(), image.Rect(0, 0, 400, 600); got != want {
		t.Errorf("canvas = %v, want %v", got, want)
	}
	if p.LastBlit() != p.Canvas().Bounds() {
		t.Errorf("LastBlit = %v, want the whole canvas", p.LastBlit())
	}
	if s := r.Stats(); s.FullPaints != 2 {
		t.Errorf("full paints = %d, want 2", s.FullPaints)
	}
}

func TestGrainOverlay(t *testing.T) {
	r, loop := newTestRenderer(t, WithGrain(grain.NewOverlay()))
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	loop.Flush()

	darker := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if p.Canvas().RGBAAt(x, y).R < DefaultPaper.R {
				darker++
			}
		}
	}
	if darker == 0 {
		t.Error("grain did not darken the paper")
	}
}

func TestPartialPaintMatchesFullWithEffects(t *testing.T) {
	type strike struct {
		row, col int
		ch       rune
		ink      color.RGBA
	}
	base := []strike{
		{1, 0, 'T', DefaultInk}, {1, 1, 'y', DefaultInk}, {1, 2, 'p', DefaultInk},
		{2, 0, 'e', RedInk}, {2, 1, 'w', RedInk},
		{3, 0, 'g', DefaultInk}, {3, 0, '_', DefaultInk},
		{4, 3, 'Q', BlueInk},
	}
	edit := []strike{{2, 1, 'X', DefaultInk}, {2, 5, 'j', DefaultInk}, {3, 4, 'q', DefaultInk}}

	newRenderer := func(scale float64) (*Renderer, *ManualLoop) {
		loop := NewManualLoop()
		atlases := atlas.NewCache(atlas.NewBuilder(testFont, atlas.WithRenderScale(scale)))
		r := NewRenderer(MetricsFor(testFont, scale), atlases, loop, WithGrain(grain.NewOverlay()))
		return r, loop
	}

	for _, scale := range []float64{1, 1.5, 3} {
		t.Run(fmt.Sprint(scale), func(t *testing.T) {
			r, loop := newRenderer(scale)
			partial := r.NewPage(0, testLayout)
			r.Activate(partial)
			r.BeginBatch()
			for _, s := range base {
				r.Type(partial, s.row, s.col, s.ch, s.ink)
			}
			r.EndBatch()
			loop.Flush()

			r.BeginBatch()
			for _, s := range edit {
				r.Type(partial, s.row, s.col, s.ch, s.ink)
			}
			r.EndBatch()
			loop.Flush()
			if st := r.Stats(); st.PartialPaints != 1 {
				t.Fatalf("stats = %+v, want one partial paint", st)
			}

			r2, loop2 := newRenderer(scale)
			full := r2.NewPage(0, testLayout)
			r2.Activate(full)
			for _, s := range append(base, edit...) {
				r2.Type(full, s.row, s.col, s.ch, s.ink)
			}
			loop2.Flush()
			if st := r2.Stats(); st.FullPaints != 1 {
				t.Fatalf("stats = %+v, want one full paint", st)
			}

			a, b := partial.Canvas().Pix, full.Canvas().Pix
			if len(a) != len(b) {
				t.Fatalf("canvas sizes differ: %d vs %d", len(a), len(b))
			}
			diff := 0
			for i := range a {
				if a[i] != b[i] {
					diff++
				}
			}
			if diff != 0 {
				t.Errorf("partial repaint differs from full repaint in %d bytes", diff)
			}
		})
	}
}

func BenchmarkPartialPaint(b *testing.B) {
	loop := NewManualLoop()
	r := NewRenderer(MetricsFor(testFont, 1), atlas.NewCache(atlas.NewBuilder(testFont)), loop, WithEffects(false))
	p := r.NewPage(0, testLayout)
	r.Activate(p)
	for col := 0; col < 20; col++ {
		r.Type(p, 3, col, 'a'+rune(col), DefaultInk)
	}
	loop.Flush()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.MarkRowDirty(p, 3)
		loop.Flush()
	}
}
