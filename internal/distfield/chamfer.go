// Package distfield computes chamfer distance fields over glyph alpha masks.
//
// Two maps are derived from a binary mask (alpha > 0 is ink):
//   - inside distance: for ink pixels, the distance to the nearest void pixel
//   - outside distance: for void pixels, the distance to the nearest ink pixel
//
// Both use a two-pass 3x3 chamfer (orthogonal cost 1, diagonal cost √2),
// which is close enough to Euclidean distance for soft ink-edge effects.
package distfield

import "math"

const diag = math.Sqrt2

// Epsilon is the floor used when normalizing by a maximum distance.
const Epsilon = 1e-6

// Inside returns the inside distance map of alpha and its maximum.
// Void pixels are 0. Ink pixels that cannot reach any void pixel (a fully
// inked mask) are also 0, and the maximum is then 0.
func Inside(alpha []uint8, w, h int) ([]float32, float32) {
	return chamfer(alpha, w, h, func(a uint8) bool { return a == 0 })
}

// Outside returns the outside distance map of alpha and its maximum.
// Ink pixels are 0. Void pixels that cannot reach any ink (an empty mask)
// are also 0, and the maximum is then 0.
func Outside(alpha []uint8, w, h int) ([]float32, float32) {
	return chamfer(alpha, w, h, func(a uint8) bool { return a > 0 })
}

// chamfer propagates distances from seed pixels over the rest of the mask.
func chamfer(alpha []uint8, w, h int, seed func(uint8) bool) ([]float32, float32) {
	if w <= 0 || h <= 0 {
		return nil, 0
	}
	inf := math.Inf(1)
	d := make([]float64, w*h)
	for i := range d {
		if seed(alpha[i]) {
			d[i] = 0
		} else {
			d[i] = inf
		}
	}

	relax := func(i, x, y int, cost float64) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		if v := d[y*w+x] + cost; v < d[i] {
			d[i] = v
		}
	}

	// Forward pass: left, up-left, up, up-right.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if d[i] == 0 {
				continue
			}
			relax(i, x-1, y, 1)
			relax(i, x-1, y-1, diag)
			relax(i, x, y-1, 1)
			relax(i, x+1, y-1, diag)
		}
	}

	// Backward pass: right, down-right, down, down-left.
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if d[i] == 0 {
				continue
			}
			relax(i, x+1, y, 1)
			relax(i, x+1, y+1, diag)
			relax(i, x, y+1, 1)
			relax(i, x-1, y+1, diag)
		}
	}

	out := make([]float32, w*h)
	var maxDist float64
	for i, v := range d {
		if math.IsInf(v, 1) {
			continue
		}
		out[i] = float32(v)
		if v > maxDist {
			maxDist = v
		}
	}
	return out, float32(maxDist)
}
