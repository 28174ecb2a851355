package atlas

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/typewriter"
)

// Font is a monospaced typewriter font at a fixed CSS pixel size.
//
// Rasterization goes through x/image/font/opentype. The cell advance is
// measured once with HarfBuzz shaping from go-text/typesetting.
// Font is safe for concurrent use.
type Font struct {
	name string
	size float64
	ot   *opentype.Font
	gt   *gotext.Font

	metricsOnce sync.Once
	metrics     Metrics
	metricsErr  error
}

// Metrics holds font measurements in CSS pixels.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
	Advance    float64
}

// NewFont parses TrueType/OpenType data for use at size CSS px.
func NewFont(name string, data []byte, size float64) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	if !(size > 0) {
		return nil, fmt.Errorf("atlas: invalid font size %v", size)
	}
	ot, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("atlas: parse font %q: %w", name, err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("atlas: parse font %q for shaping: %w", name, err)
	}
	return &Font{name: name, size: size, ot: ot, gt: face.Font}, nil
}

// LoadFont reads a font file.
func LoadFont(path string, size float64) (*Font, error) {
	// #nosec G304 -- font path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: read font: %w", err)
	}
	f, err := NewFont(path, data, size)
	if err != nil {
		return nil, err
	}
	typewriter.LoggerFor("atlas").Info("font loaded", "path", path, "size", size)
	return f, nil
}

// DefaultFont returns Go Mono at size CSS px.
func DefaultFont(size float64) *Font {
	f, err := NewFont("Go Mono", gomono.TTF, size)
	if err != nil {
		panic("atlas: embedded Go Mono font failed to parse: " + err.Error())
	}
	return f
}

// Name returns the font name.
func (f *Font) Name() string { return f.name }

// Size returns the font size in CSS px.
func (f *Font) Size() float64 { return f.size }

// Probe reports whether the font can rasterize glyphs. It returns
// ErrFontUnavailable wrapped with the cause when it cannot.
func (f *Font) Probe() error {
	if f == nil || f.ot == nil || f.gt == nil {
		return ErrFontUnavailable
	}
	face, err := f.face(1)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	defer func() { _ = face.Close() }()
	if _, ok := face.GlyphAdvance('M'); !ok {
		return fmt.Errorf("%w: no glyph for 'M'", ErrFontUnavailable)
	}
	if _, err := f.Metrics(); err != nil {
		return fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	return nil
}

// Metrics returns the font measurements, computing them on first use.
func (f *Font) Metrics() (Metrics, error) {
	f.metricsOnce.Do(func() {
		f.metrics, f.metricsErr = f.measure()
	})
	return f.metrics, f.metricsErr
}

func (f *Font) measure() (Metrics, error) {
	face, err := f.face(1)
	if err != nil {
		return Metrics{}, err
	}
	defer func() { _ = face.Close() }()

	fm := face.Metrics()
	m := Metrics{
		Ascent:     fixedToFloat(fm.Ascent),
		Descent:    fixedToFloat(fm.Descent),
		LineHeight: fixedToFloat(fm.Height),
	}
	if m.LineHeight < m.Ascent+m.Descent {
		m.LineHeight = m.Ascent + m.Descent
	}

	m.Advance = f.shapedAdvance('M')
	if !(m.Advance > 0) {
		adv, ok := face.GlyphAdvance('M')
		if !ok {
			return Metrics{}, fmt.Errorf("atlas: font %q has no advance for 'M'", f.name)
		}
		m.Advance = fixedToFloat(adv)
	}
	return m, nil
}

// shapedAdvance shapes r with HarfBuzz and returns its advance in CSS px.
func (f *Font) shapedAdvance(r rune) float64 {
	input := shaping.Input{
		Text:      []rune{r},
		RunStart:  0,
		RunEnd:    1,
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.gt),
		Size:      floatToFixed(f.size),
		Script:    language.LookupScript(r),
		Language:  language.NewLanguage("en"),
	}
	var shaper shaping.HarfbuzzShaper
	out := shaper.Shape(input)
	if len(out.Glyphs) == 0 {
		return 0
	}
	return fixedToFloat(out.Glyphs[0].Advance)
}

// face returns an x/image face at scale device px per CSS px.
// Faces are not safe for concurrent use; the caller closes it.
func (f *Font) face(scale float64) (font.Face, error) {
	return opentype.NewFace(f.ot, &opentype.FaceOptions{
		Size:    f.size * scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
