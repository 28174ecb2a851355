package stage

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/typewriter/internal/distfield"
	"github.com/gogpu/typewriter/internal/noise"
)

const (
	// punchSalt decorrelates the hole stream from the glyph seed.
	punchSalt uint32 = 0x9e3779b9

	// punchAttempts bounds the search for a hole centre on ink.
	punchAttempts = 60
)

// Punch knocks soft superellipse holes into the stroke, as a worn type
// slug does.
func Punch(cov []float32, c *Context) {
	pp := c.Params.Punch
	if pp.Intensity <= 0 || pp.Count <= 0 {
		return
	}
	rng := noise.NewMulberry32(c.Seed ^ punchSalt)
	if float32(rng.Next()) >= pp.Chance {
		return
	}
	n := int(pp.Count)
	if float32(rng.Next()) < pp.Count-float32(n) {
		n++
	}
	if n == 0 {
		return
	}

	bias := c.Params.Bias.Punch
	var m *distfield.Map
	if bias != 0 {
		if dm := c.Dist.Ensure(); dm.HasInside() {
			m = dm
		}
	}

	for h := 0; h < n; h++ {
		cx, cy := pickHoleCenter(rng, c.Alpha, c.W, c.H, m, bias)
		r := max(lerp(pp.RadiusMin, pp.RadiusMax, float32(rng.Next()))*c.DPPerCSS, 0.5)
		ecc := 1 + pp.Eccentricity*float32(rng.Next())
		rot := float32(rng.Next()) * math32.Pi
		exp := 2 + 2*float32(rng.Next())
		stampHole(cov, c.W, c.H, hole{
			cx: cx, cy: cy,
			rx: r * ecc, ry: r / ecc,
			sin: math32.Sin(rot), cos: math32.Cos(rot),
			exp:       exp,
			soft:      max(pp.Softness, 0.05),
			intensity: pp.Intensity,
		})
	}
}

// pickHoleCenter draws candidate centres until one lands on ink, and with
// a non-zero bias until one passes the depth test. After punchAttempts
// failures it returns an unconstrained point.
func pickHoleCenter(rng *noise.Mulberry32, alpha []uint8, w, h int, m *distfield.Map, bias float32) (float32, float32) {
	for attempt := 0; attempt < punchAttempts; attempt++ {
		x := int(rng.Next() * float64(w))
		y := int(rng.Next() * float64(h))
		i := y*w + x
		if alpha[i] == 0 {
			continue
		}
		if bias != 0 && m != nil {
			t := min(m.Inside[i]/m.NormInside(), 1)
			want := t
			if bias < 0 {
				want = 1 - t
			}
			accept := lerp(1, want, math32.Abs(bias))
			if float32(rng.Next()) >= accept {
				continue
			}
		}
		return float32(x) + 0.5, float32(y) + 0.5
	}
	return float32(rng.Next()) * float32(w), float32(rng.Next()) * float32(h)
}

type hole struct {
	cx, cy    float32
	rx, ry    float32
	sin, cos  float32
	exp       float32
	soft      float32
	intensity float32
}

func stampHole(cov []float32, w, h int, o hole) {
	ext := max(o.rx, o.ry) + 1
	x0 := max(int(math32.Floor(o.cx-ext)), 0)
	x1 := min(int(math32.Ceil(o.cx+ext)), w-1)
	y0 := max(int(math32.Floor(o.cy-ext)), 0)
	y1 := min(int(math32.Ceil(o.cy+ext)), h-1)
	inner := 1 - o.soft

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float32(x) + 0.5 - o.cx
			dy := float32(y) + 0.5 - o.cy
			u := (dx*o.cos + dy*o.sin) / o.rx
			v := (-dx*o.sin + dy*o.cos) / o.ry
			d := math32.Pow(math32.Pow(math32.Abs(u), o.exp)+math32.Pow(math32.Abs(v), o.exp), 1/o.exp)
			if d >= 1 {
				continue
			}
			wgt := 1 - smoothstep(inner, 1, d)
			i := y*w + x
			cov[i] *= 1 - o.intensity*wgt
		}
	}
}
