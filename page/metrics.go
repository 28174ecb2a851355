package page

import (
	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/atlas"
)

// Metrics provides the layout measurements the renderer consults on every
// frame. Lengths are in CSS px.
type Metrics interface {
	Ascent() float64
	Descent() float64
	CharWidth() float64
	LineHeight() float64

	// RenderScale is the device px per CSS px at zoom 1.
	RenderScale() float64

	FontName() string
	FontSize() float64
	Zoom() float64
}

// StaticMetrics is a fixed Metrics value.
type StaticMetrics struct {
	AscentCSS     float64
	DescentCSS    float64
	CharWidthCSS  float64
	LineHeightCSS float64
	Scale         float64
	Font          string
	Size          float64
	ZoomFactor    float64
}

var _ Metrics = StaticMetrics{}

func (m StaticMetrics) Ascent() float64     { return m.AscentCSS }
func (m StaticMetrics) Descent() float64    { return m.DescentCSS }
func (m StaticMetrics) CharWidth() float64  { return m.CharWidthCSS }
func (m StaticMetrics) LineHeight() float64 { return m.LineHeightCSS }
func (m StaticMetrics) FontName() string    { return m.Font }
func (m StaticMetrics) FontSize() float64   { return m.Size }

// RenderScale returns Scale, or 1 when unset.
func (m StaticMetrics) RenderScale() float64 {
	if m.Scale > 0 {
		return m.Scale
	}
	return 1
}

// Zoom returns ZoomFactor, or 1 when unset.
func (m StaticMetrics) Zoom() float64 {
	if m.ZoomFactor > 0 {
		return m.ZoomFactor
	}
	return 1
}

// MetricsFor measures f at renderScale device px per CSS px. A font that
// cannot be measured gets proportional estimates from its size.
func MetricsFor(f *atlas.Font, renderScale float64) StaticMetrics {
	m := StaticMetrics{
		Scale:      renderScale,
		Font:       f.Name(),
		Size:       f.Size(),
		ZoomFactor: 1,
	}
	fm, err := f.Metrics()
	if err != nil {
		typewriter.LoggerFor("page").Warn("font metrics unavailable, estimating", "font", f.Name(), "error", err)
		m.AscentCSS = 0.8 * f.Size()
		m.DescentCSS = 0.2 * f.Size()
		m.CharWidthCSS = 0.6 * f.Size()
		m.LineHeightCSS = 1.2 * f.Size()
		return m
	}
	m.AscentCSS = fm.Ascent
	m.DescentCSS = fm.Descent
	m.CharWidthCSS = fm.Advance
	m.LineHeightCSS = fm.LineHeight
	return m
}
