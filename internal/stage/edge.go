package stage

import "github.com/gogpu/typewriter/internal/noise"

// Fuzz roughens the stroke boundary with a noisy band straddling the edge.
// InwardShare of the band lies inside the ink, the rest outside.
func Fuzz(cov []float32, c *Context) {
	f := c.Params.EdgeFuzz
	if f.Amount <= 0 || f.Width <= 0 {
		return
	}
	m := c.Dist.Ensure()
	if !m.HasInside() && !m.HasOutside() {
		return
	}
	band := f.Width * c.DPPerCSS
	inward := band * f.InwardShare
	outward := band - inward
	tile := c.tile(f.Scale, saltFuzz)
	hashSeed := c.Seed ^ saltFuzzHash

	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			i := y*c.W + x
			var d, side float32
			if c.Alpha[i] > 0 {
				d, side = m.Inside[i], inward
			} else {
				d, side = m.Outside[i], outward
			}
			// Distance 1 is the pixel touching the boundary; 0 means unreached.
			if d <= 0 || side <= 0 || d-1 > side {
				continue
			}
			edge := 1 - (d-1)/max(side, 1)
			n := lerp(tile.At(x, y), noise.Hash01(x, y, hashSeed), f.HashMix)
			fa := clamp01(f.Amount * edge * n)
			cov[i] = 1 - (1-cov[i])*(1-fa)
		}
	}
}

// Smudge adds a faint directional halo on the paper around the stroke,
// strongest where the edge faces the smudge direction.
func Smudge(cov []float32, c *Context) {
	s := c.Params.Smudge
	if s.Amount <= 0 || s.Radius <= 0 {
		return
	}
	m := c.Dist.Ensure()
	if !m.HasOutside() {
		return
	}
	radius := s.Radius * c.DPPerCSS
	tile := c.tile(s.Scale, saltSmudge)

	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			i := y*c.W + x
			if c.Alpha[i] != 0 {
				continue
			}
			d := m.Outside[i]
			if d <= 0 || d > radius {
				continue
			}
			fall := 1 - d/radius
			fall *= fall
			gx, gy := m.OutsideGradient(x, y)
			align := max(0, gx*s.DirX+gy*s.DirY)
			w := s.Amount * fall * (1 - s.Spread + s.Spread*align) * (0.5 + 0.5*tile.At(x, y))
			cov[i] = max(cov[i], clamp01(w))
		}
	}
}
