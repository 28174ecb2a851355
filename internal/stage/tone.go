package stage

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/typewriter/internal/noise"
)

// Fill establishes the base tone: alpha shaped by key pressure, ribbon
// banding and an edge rim, then passed through the ink gamma.
func Fill(cov []float32, c *Context) {
	p := c.Params
	ink := p.Ink
	gamma := noise.GammaLUT(float64(ink.Gamma))

	var low, high *noise.Tile
	if p.Enable.ToneCore && ink.Pressure > 0 {
		low = c.tile(ink.PressureLowScale, saltPressureLow)
		high = c.tile(ink.PressureHighScale, saltPressureHigh)
	}
	ribbon := p.Enable.Ribbon && p.Ribbon.Amount != 0
	rim := p.Enable.Rim && ink.RimStrength > 0

	for y := 0; y < c.H; y++ {
		band := float32(1)
		if ribbon {
			t := (float32(y) + 0.5) / float32(c.H)
			wave := 0.5 - 0.5*math32.Cos(2*math32.Pi*(p.Ribbon.Bands*t+p.Ribbon.Phase))
			band = 1 - p.Ribbon.Amount*wave
		}
		for x := 0; x < c.W; x++ {
			i := y*c.W + x
			a := c.alphaAt(i)
			if a == 0 {
				cov[i] = 0
				continue
			}
			v := a * band
			if low != nil {
				n := lerp(low.At(x, y), high.At(x, y), ink.PressureMix)
				v *= 1 - ink.Pressure*n
			}
			if rim {
				g := noise.EdgeGradient(c.Alpha, c.W, c.H, x, y)
				v *= 1 + ink.RimStrength*noise.RimLUT.At(g)
			}
			cov[i] = gamma.At(v)
		}
	}
}

// Dropouts removes ink where the ribbon missed: a mix of smooth streaks and
// per-pixel pinholes, concentrated toward stroke edges by the dropout bias.
func Dropouts(cov []float32, c *Context) {
	d := c.Params.Dropouts
	if d.Amount <= 0 {
		return
	}
	m := c.Dist.Ensure()
	if !m.HasInside() {
		return
	}
	tile := c.tile(d.Scale, saltDropout)
	edgeWidth := max(d.EdgeWidth*c.DPPerCSS, 1)
	bias := c.Params.Bias.Dropout
	hashSeed := c.Seed ^ saltDropoutHash

	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			i := y*c.W + x
			if c.Alpha[i] == 0 {
				continue
			}
			gap := 0.75*tile.At(x, y) + 0.25*noise.Hash01(x, y, hashSeed)
			if gap <= d.Threshold {
				continue
			}
			s := smoothstep(d.Threshold, 1, gap)
			depth := min(m.Inside[i]/edgeWidth, 1)
			edge := 1 - bias*depth
			cov[i] *= 1 - d.Amount*edge*s
		}
	}
}

var (
	textureOffsets = [4][2]float64{{-0.25, -0.25}, {0.25, -0.25}, {-0.25, 0.25}, {0.25, 0.25}}
	textureCenter  = [1][2]float64{{0, 0}}
)

// Texture scatters small dark and light specks inside the stroke. It reads
// only the alpha mask.
func Texture(cov []float32, c *Context) {
	tx := c.Params.Texture
	if tx.Density <= 0 || (tx.Dark <= 0 && tx.Light <= 0) {
		return
	}
	offsets := textureOffsets[:]
	if c.Quality < 0.5 {
		offsets = textureCenter[:]
	}
	scale := float64(max(tx.Scale*c.DPPerCSS, 0.5))
	seed := c.Seed ^ saltTexture
	half := tx.Density / 2
	hi := 1 - half

	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			i := y*c.W + x
			if c.Alpha[i] == 0 {
				continue
			}
			var f float32
			for _, o := range offsets {
				f += noise.FBM(float64(x)+0.5+o[0], float64(y)+0.5+o[1], scale, 3, seed)
			}
			f /= float32(len(offsets))

			switch {
			case f > hi:
				s := (f - hi) / half
				a := c.alphaAt(i)
				cov[i] += (a - cov[i]) * tx.Dark * clamp01(s)
			case f < half:
				s := (half - f) / half
				cov[i] *= 1 - tx.Light*clamp01(s)
			}
		}
	}
}

// CenterEdge scales coverage by quantized depth inside the stroke, so
// stroke centres and edges take different ink weights.
func CenterEdge(cov []float32, c *Context) {
	ce := c.Params.CenterEdge
	m := c.Dist.Ensure()
	if !m.HasInside() {
		return
	}
	levels := max(2, roundInt(float32(ce.Levels)*c.Quality))
	steps := float32(levels - 1)
	norm := m.NormInside()

	for i := range cov {
		if c.Alpha[i] == 0 || cov[i] == 0 {
			continue
		}
		t := min(m.Inside[i]/norm, 1)
		tq := math32.Floor(t*steps+0.5) / steps
		f := lerp(ce.Edge, ce.Center, math32.Pow(tq, ce.Falloff))
		cov[i] = clamp01(cov[i] * f)
	}
}
