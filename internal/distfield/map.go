package distfield

import (
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
)

// Map holds both distance maps of one mask.
type Map struct {
	W, H       int
	Inside     []float32
	Outside    []float32
	MaxInside  float32
	MaxOutside float32
}

// Build computes the Map of an alpha mask.
func Build(alpha []uint8, w, h int) *Map {
	in, maxIn := Inside(alpha, w, h)
	out, maxOut := Outside(alpha, w, h)
	return &Map{W: w, H: h, Inside: in, Outside: out, MaxInside: maxIn, MaxOutside: maxOut}
}

// HasInside reports whether the mask has an ink-to-void transition seen
// from the inside.
func (m *Map) HasInside() bool { return m.MaxInside > 0 }

// HasOutside reports whether any void pixel has a finite distance to ink.
func (m *Map) HasOutside() bool { return m.MaxOutside > 0 }

// NormInside returns MaxInside floored at Epsilon.
func (m *Map) NormInside() float32 { return max(m.MaxInside, Epsilon) }

// NormOutside returns MaxOutside floored at Epsilon.
func (m *Map) NormOutside() float32 { return max(m.MaxOutside, Epsilon) }

// OutsideGradient returns the normalized central-difference gradient of the
// outside distance at (x, y). It points away from the ink. A flat
// neighbourhood returns (0, 0).
func (m *Map) OutsideGradient(x, y int) (float32, float32) {
	at := func(px, py int) float32 {
		px = min(max(px, 0), m.W-1)
		py = min(max(py, 0), m.H-1)
		return m.Outside[py*m.W+px]
	}
	gx := at(x+1, y) - at(x-1, y)
	gy := at(x, y+1) - at(x, y-1)
	l := math32.Sqrt(gx*gx + gy*gy)
	if l == 0 {
		return 0, 0
	}
	return gx / l, gy / l
}

// Lazy defers building a Map until a consumer asks for it.
// The zero value is not usable; construct with NewLazy or Derive.
type Lazy struct {
	once  sync.Once
	build func() *Map
	m     *Map
	built atomic.Bool
}

// NewLazy returns a provider that builds the Map of alpha on first use.
// alpha must not be modified afterwards.
func NewLazy(alpha []uint8, w, h int) *Lazy {
	return Derive(func() *Map { return Build(alpha, w, h) })
}

// Derive returns a provider backed by an arbitrary build function.
func Derive(build func() *Map) *Lazy {
	return &Lazy{build: build}
}

// Ensure builds the Map if needed and returns it.
func (l *Lazy) Ensure() *Map {
	l.once.Do(func() {
		l.m = l.build()
		l.build = nil
		l.built.Store(true)
	})
	return l.m
}

// Built reports whether Ensure has already run.
func (l *Lazy) Built() bool {
	return l.built.Load()
}
