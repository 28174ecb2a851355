package stage

import (
	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/internal/distfield"
)

var registry = map[effect.StageID]Func{
	effect.StageFill:       Fill,
	effect.StageDropouts:   Dropouts,
	effect.StageTexture:    Texture,
	effect.StageCenterEdge: CenterEdge,
	effect.StagePunch:      Punch,
	effect.StageFuzz:       Fuzz,
	effect.StageSmudge:     Smudge,
}

// Lookup returns the stage registered under id, or nil.
func Lookup(id effect.StageID) Func {
	return registry[id]
}

// Run applies the stages of order to cov in sequence. Disabled sections
// and sections with zero strength are skipped. Each stage runs at its
// section's effective detail scale and is blended with the coverage it
// started from by the section strength times the overall strength.
//
// A stage that panics is logged and leaves cov as it found it.
func Run(cov []float32, c *Context, order []effect.StageID) {
	run(cov, c, order, Lookup)
}

func run(cov []float32, c *Context, order []effect.StageID, lookup func(effect.StageID) Func) {
	p := c.Params
	if p == nil || p.Strength <= 0 {
		return
	}
	snapshot := make([]float32, len(cov))
	for _, id := range order {
		sec := p.Stage(id)
		strength := sec.Strength * p.Strength
		if !sec.Enabled || strength <= 0 {
			continue
		}
		fn := lookup(id)
		if fn == nil {
			continue
		}
		copy(snapshot, cov)
		scale := sec.Detail.EffectiveScale(c.DPPerCSS, p.Noise.DetailThreshold)
		if !runGuarded(id, fn, cov, c, scale, sec.Detail.Quality) {
			copy(cov, snapshot)
			continue
		}
		if strength < 1 {
			for i, after := range cov {
				before := snapshot[i]
				cov[i] = before + strength*(after-before)
			}
		}
	}
}

func runGuarded(id effect.StageID, fn Func, cov []float32, c *Context, scale, quality float32) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			typewriter.LoggerFor("stage").Warn("recovered panic", "stage", string(id), "panic", r)
			ok = false
		}
	}()
	RunAtScale(fn, cov, c, scale, quality)
	return true
}

// RunAtScale runs fn with the given quality at a working resolution of
// scale times the cell size. Below scale 1 the mask, coverage and distance
// maps are downsampled, fn runs on the small buffers and the change it
// made is upsampled and added back onto cov.
func RunAtScale(fn Func, cov []float32, c *Context, scale, quality float32) {
	if !(scale < 1) {
		child := *c
		child.Quality = quality
		fn(cov, &child)
		return
	}

	nw := max(1, roundInt(float32(c.W)*scale))
	nh := max(1, roundInt(float32(c.H)*scale))

	low := distfield.Resize(cov, c.W, c.H, nw, nh)
	before := make([]float32, len(low))
	copy(before, low)

	child := *c
	child.W, child.H = nw, nh
	child.Alpha = distfield.ResizeAlpha(c.Alpha, c.W, c.H, nw, nh)
	parent := c.Dist
	child.Dist = distfield.Derive(func() *distfield.Map {
		return distfield.Resample(parent.Ensure(), nw, nh, scale)
	})
	child.DPPerCSS = c.DPPerCSS * scale
	child.Quality = quality

	fn(low, &child)

	for i := range low {
		low[i] -= before[i]
	}
	delta := distfield.Resize(low, nw, nh, c.W, c.H)
	for i := range cov {
		cov[i] = clamp01(cov[i] + delta[i])
	}
}

