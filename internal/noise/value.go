package noise

import "math"

// Noise2 samples bilinear value noise at (x, y).
//
// The lattice spacing is scale units, so features are roughly scale units
// wide. Lattice values come from Hash2 and are blended with a smoothstep
// fade. A non-positive scale is treated as 1. Result is in [0, 1).
func Noise2(x, y, scale float64, seed uint32) float32 {
	if !(scale > 0) {
		scale = 1
	}
	fx := x / scale
	fy := y / scale
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fade(fx - x0)
	ty := fade(fy - y0)

	ix, iy := int(x0), int(y0)
	v00 := Hash01(ix, iy, seed)
	v10 := Hash01(ix+1, iy, seed)
	v01 := Hash01(ix, iy+1, seed)
	v11 := Hash01(ix+1, iy+1, seed)
	return lerp2D(v00, v10, v01, v11, tx, ty)
}

// PeriodicNoise2 is Noise2 with the lattice wrapped every period cells in
// both axes, so a tile of period*scale units repeats seamlessly.
func PeriodicNoise2(x, y, scale float64, period int, seed uint32) float32 {
	if period <= 0 {
		return Noise2(x, y, scale, seed)
	}
	if !(scale > 0) {
		scale = 1
	}
	fx := x / scale
	fy := y / scale
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fade(fx - x0)
	ty := fade(fy - y0)

	ix0 := wrap(int(x0), period)
	iy0 := wrap(int(y0), period)
	ix1 := wrap(int(x0)+1, period)
	iy1 := wrap(int(y0)+1, period)
	v00 := Hash01(ix0, iy0, seed)
	v10 := Hash01(ix1, iy0, seed)
	v01 := Hash01(ix0, iy1, seed)
	v11 := Hash01(ix1, iy1, seed)
	return lerp2D(v00, v10, v01, v11, tx, ty)
}

// FBM sums octaves of Noise2 with gain 0.5 and lacunarity 2, normalized
// back to [0, 1). Each octave uses its own derived seed.
func FBM(x, y, scale float64, octaves int, seed uint32) float32 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float32
	amp := float32(1)
	s := scale
	for o := 0; o < octaves; o++ {
		//nolint:gosec // G115: octave index is small
		sum += amp * Noise2(x, y, s, Mix(seed, uint32(o)))
		norm += amp
		amp *= 0.5
		s *= 0.5
	}
	return sum / norm
}

// PeriodicFBM is FBM over PeriodicNoise2. The period doubles with every
// octave so all octaves tile over the same extent.
func PeriodicFBM(x, y, scale float64, period, octaves int, seed uint32) float32 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float32
	amp := float32(1)
	s := scale
	p := period
	for o := 0; o < octaves; o++ {
		//nolint:gosec // G115: octave index is small
		sum += amp * PeriodicNoise2(x, y, s, p, Mix(seed, uint32(o)))
		norm += amp
		amp *= 0.5
		s *= 0.5
		p *= 2
	}
	return sum / norm
}

// fade is the smoothstep curve 3t^2 - 2t^3.
func fade(t float64) float32 {
	return float32(t * t * (3 - 2*t))
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float32) float32 {
	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
