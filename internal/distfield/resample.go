package distfield

import "math"

// Resize bilinearly resamples a w×h float grid to nw×nh using pixel-center
// alignment. Samples outside the source clamp to the edge.
func Resize(src []float32, w, h, nw, nh int) []float32 {
	dst := make([]float32, nw*nh)
	if w <= 0 || h <= 0 || nw <= 0 || nh <= 0 {
		return dst
	}
	if w == nw && h == nh {
		copy(dst, src)
		return dst
	}
	sx := float64(w) / float64(nw)
	sy := float64(h) / float64(nh)
	for y := 0; y < nh; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ty := float32(fy - float64(y0))
		y1 := clamp(y0+1, 0, h-1)
		y0 = clamp(y0, 0, h-1)
		for x := 0; x < nw; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			tx := float32(fx - float64(x0))
			x1 := clamp(x0+1, 0, w-1)
			x0 = clamp(x0, 0, w-1)

			v00 := src[y0*w+x0]
			v10 := src[y0*w+x1]
			v01 := src[y1*w+x0]
			v11 := src[y1*w+x1]
			top := v00 + (v10-v00)*tx
			bot := v01 + (v11-v01)*tx
			dst[y*nw+x] = top + (bot-top)*ty
		}
	}
	return dst
}

// ResizeAlpha resamples an 8-bit mask the same way Resize does.
func ResizeAlpha(src []uint8, w, h, nw, nh int) []uint8 {
	f := make([]float32, len(src))
	for i, a := range src {
		f[i] = float32(a)
	}
	r := Resize(f, w, h, nw, nh)
	out := make([]uint8, len(r))
	for i, v := range r {
		out[i] = uint8(min(max(v+0.5, 0), 255))
	}
	return out
}

// Resample resizes both maps of m to nw×nh and multiplies every distance,
// including the maxima, by factor. Distances are lengths in pixels, so a
// map shrunk by s must also have its values shrunk by s.
func Resample(m *Map, nw, nh int, factor float32) *Map {
	in := Resize(m.Inside, m.W, m.H, nw, nh)
	out := Resize(m.Outside, m.W, m.H, nw, nh)
	for i := range in {
		in[i] *= factor
		out[i] *= factor
	}
	return &Map{
		W:          nw,
		H:          nh,
		Inside:     in,
		Outside:    out,
		MaxInside:  m.MaxInside * factor,
		MaxOutside: m.MaxOutside * factor,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
