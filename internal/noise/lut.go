package noise

import (
	"math"
	"sync"

	"github.com/chewxy/math32"
)

// lutSize is the resolution of the coverage lookup tables.
const lutSize = 1024

// LUT maps a coverage value in [0, 1] through a precomputed curve.
type LUT [lutSize]float32

// At returns the curve value at v, clamping v to [0, 1].
func (l *LUT) At(v float32) float32 {
	if !(v > 0) {
		return l[0]
	}
	if v >= 1 {
		return l[lutSize-1]
	}
	return l[int(v*(lutSize-1)+0.5)]
}

// gammaLUTs memoizes gamma curves keyed by gamma quantized to 1/1000.
var gammaLUTs sync.Map // map[int]*LUT

// GammaLUT returns the lookup table for v^gamma.
// Entries 0 and 1 are exact, so gamma never changes empty or solid coverage.
func GammaLUT(gamma float64) *LUT {
	key := int(math.Round(gamma * 1000))
	if l, ok := gammaLUTs.Load(key); ok {
		return l.(*LUT)
	}
	g := float64(key) / 1000
	l := new(LUT)
	for i := range l {
		l[i] = float32(math.Pow(float64(i)/(lutSize-1), g))
	}
	l[0] = 0
	l[lutSize-1] = 1
	actual, _ := gammaLUTs.LoadOrStore(key, l)
	return actual.(*LUT)
}

// RimLUT maps an edge gradient magnitude in [0, 1] to a rim boost in
// [0, 1]. It rises smoothly and saturates, so only real edges are boosted.
var RimLUT = func() *LUT {
	l := new(LUT)
	for i := range l {
		t := float64(i) / (lutSize - 1)
		s := math.Min(1, t*1.6)
		l[i] = float32(s * s * (3 - 2*s))
	}
	return l
}()

// EdgeGradient returns the central-difference gradient magnitude of the
// alpha mask at (x, y), normalized to [0, 1]. Out-of-range samples clamp
// to the edge.
func EdgeGradient(alpha []uint8, w, h, x, y int) float32 {
	at := func(px, py int) float32 {
		px = clampInt(px, 0, w-1)
		py = clampInt(py, 0, h-1)
		return float32(alpha[py*w+px]) / 255
	}
	gx := (at(x+1, y) - at(x-1, y)) * 0.5
	gy := (at(x, y+1) - at(x, y-1)) * 0.5
	m := math32.Sqrt(gx*gx + gy*gy)
	if m > 1 {
		m = 1
	}
	return m
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
