package grain

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"

	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/noise"
)

func testOptions(tiled bool) Options {
	return Options{
		Octaves:  3,
		Scale:    3,
		Amount:   0.5,
		Seed:     42,
		Tiled:    tiled,
		TileSize: 16,
		Blend:    effect.BlendMultiply,
	}
}

func TestFromParams(t *testing.T) {
	p := effect.Resolve(effect.DefaultConfig())
	opt := FromParams(&p)
	if opt.Amount <= 0 {
		t.Fatalf("default amount = %v, want > 0", opt.Amount)
	}
	if opt.Blend != effect.BlendMultiply {
		t.Errorf("blend = %q, want %q", opt.Blend, effect.BlendMultiply)
	}

	cfg := effect.DefaultConfig()
	cfg.Sections.Grain.Enabled = false
	p = effect.Resolve(cfg)
	if got := FromParams(&p).Amount; got != 0 {
		t.Errorf("disabled amount = %v, want 0", got)
	}

	cfg = effect.DefaultConfig()
	cfg.Sections.Grain.Strength = 50
	p = effect.Resolve(cfg)
	half := FromParams(&p).Amount
	if want := opt.Amount / 2; half < want-1e-6 || half > want+1e-6 {
		t.Errorf("half strength amount = %v, want %v", half, want)
	}
}

func TestForPageDisabled(t *testing.T) {
	o := NewOverlay()
	tests := []struct {
		name string
		w, h int
		opt  Options
	}{
		{"zero amount", 10, 10, Options{Amount: 0}},
		{"empty page", 0, 10, testOptions(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g := o.ForPage(0, tt.w, tt.h, 1, tt.opt); g != nil {
				t.Errorf("ForPage = %v, want nil", g.Bounds())
			}
		})
	}
}

func TestForPageCacheReuse(t *testing.T) {
	for _, tiled := range []bool{false, true} {
		name := "direct"
		if tiled {
			name = "tiled"
		}
		t.Run(name, func(t *testing.T) {
			o := NewOverlay()
			opt := testOptions(tiled)
			a := o.ForPage(0, 40, 30, 2, opt)
			b := o.ForPage(0, 40, 30, 2, opt)
			if a == nil || a != b {
				t.Fatal("second ForPage did not return the cached image")
			}
			if got := a.Bounds(); got != image.Rect(0, 0, 40, 30) {
				t.Errorf("bounds = %v", got)
			}
			s := o.Stats()
			if s.Pages != 1 || s.PageHits != 1 || s.PageMisses != 1 {
				t.Errorf("stats = %+v", s)
			}

			o.Clear()
			if c := o.ForPage(0, 40, 30, 2, opt); c == a {
				t.Error("Clear kept the page image")
			}
		})
	}
}

func TestTiledPagesShareBaseTile(t *testing.T) {
	o := NewOverlay()
	opt := testOptions(true)
	p0 := o.ForPage(0, 64, 64, 1, opt)
	p1 := o.ForPage(1, 64, 64, 1, opt)

	s := o.Stats()
	if s.Tiles != 1 || s.TileMisses != 1 || s.TileHits != 1 {
		t.Errorf("tile stats = %+v, want one tile reused", s)
	}
	if s.Pages != 2 {
		t.Errorf("pages = %d, want 2", s.Pages)
	}
	if string(p0.Pix) == string(p1.Pix) {
		t.Error("pages 0 and 1 have identical grain")
	}
}

func TestBaseTileIsSeamless(t *testing.T) {
	o := NewOverlay()
	opt := testOptions(true)
	tile := o.baseTile(1.5, opt)
	size := tile.Rect.Dx()
	if size != 24 {
		t.Fatalf("tile size = %d, want 24", size)
	}
	period := max(1, int(float64(size)/(opt.Scale*1.5)+0.5))
	scale := float64(size) / float64(period)
	for _, p := range []image.Point{{0, 0}, {3, 17}, {23, 5}} {
		x, y := float64(p.X)+0.5, float64(p.Y)+0.5
		want := noise.PeriodicFBM(x, y, scale, period, opt.Octaves, opt.Seed)
		wrapped := noise.PeriodicFBM(x+float64(size), y+float64(size), scale, period, opt.Octaves, opt.Seed)
		if d := want - wrapped; d > 1e-5 || d < -1e-5 {
			t.Errorf("noise at %v does not repeat: %v vs %v", p, want, wrapped)
		}
	}
}

func TestForPageDeterministic(t *testing.T) {
	opt := testOptions(false)
	a := NewOverlay().ForPage(3, 32, 32, 1.25, opt)
	b := NewOverlay().ForPage(3, 32, 32, 1.25, opt)
	if string(a.Pix) != string(b.Pix) {
		t.Error("same page and options rendered different grain")
	}
}

func TestGrainEncoding(t *testing.T) {
	tests := []struct {
		mode    string
		neutral color.RGBA
		opaque  bool
	}{
		{effect.BlendMultiply, color.RGBA{255, 255, 255, 255}, true},
		{effect.BlendDarken, color.RGBA{255, 255, 255, 255}, true},
		{effect.BlendOverlay, color.RGBA{128, 128, 128, 255}, true},
		{effect.BlendNormal, color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			opt := Options{Amount: 1, Blend: tt.mode}
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			setGrain(img, 0, 0, zeroFor(tt.mode), opt)
			if got := img.RGBAAt(0, 0); got != tt.neutral {
				t.Errorf("neutral grain = %v, want %v", got, tt.neutral)
			}
			if tt.opaque {
				setGrain(img, 0, 0, 1, opt)
				if got := img.RGBAAt(0, 0); got.A != 255 {
					t.Errorf("alpha = %d, want 255", got.A)
				}
			}
		})
	}
}

// zeroFor returns the noise value that encodes to the neutral colour.
func zeroFor(mode string) float32 {
	if mode == effect.BlendOverlay || mode == effect.BlendSoftLight {
		return 0.5
	}
	return 0
}

func TestApply(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)

	g := image.NewRGBA(dst.Bounds())
	draw.Draw(g, g.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)

	band := image.Rect(0, 2, 8, 5)
	Apply(dst, band, g, effect.BlendMultiply)

	for y := 0; y < 8; y++ {
		got := dst.RGBAAt(3, y)
		inside := y >= band.Min.Y && y < band.Max.Y
		switch {
		case inside && got.R != 0:
			t.Errorf("row %d = %v, want black", y, got)
		case !inside && got.R != 255:
			t.Errorf("row %d = %v, want untouched white", y, got)
		}
	}
}

func TestApplyNil(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	dst.Pix[0] = 7
	Apply(dst, dst.Bounds(), nil, effect.BlendMultiply)
	Apply(dst, image.Rect(10, 10, 12, 12), image.NewRGBA(dst.Bounds()), effect.BlendMultiply)
	if dst.Pix[0] != 7 {
		t.Error("Apply modified dst without grain")
	}
}

func BenchmarkForPage(b *testing.B) {
	opt := testOptions(true)
	for i := 0; i < b.N; i++ {
		o := NewOverlay()
		o.ForPage(i, 300, 400, 2, opt)
	}
}
