package noise

import (
	"math"
	"testing"
)

func TestHash2Deterministic(t *testing.T) {
	tests := []struct {
		x, y int32
		seed uint32
	}{
		{0, 0, 0},
		{1, 2, 3},
		{-17, 42, 0xdeadbeef},
		{math.MaxInt32, math.MinInt32, 7},
	}
	for _, tt := range tests {
		a := Hash2(tt.x, tt.y, tt.seed)
		b := Hash2(tt.x, tt.y, tt.seed)
		if a != b {
			t.Errorf("Hash2(%d,%d,%d) not deterministic: %d vs %d", tt.x, tt.y, tt.seed, a, b)
		}
	}
	if Hash2(1, 2, 3) == Hash2(2, 1, 3) {
		t.Error("Hash2 should not be symmetric in x and y")
	}
	if Hash2(1, 2, 3) == Hash2(1, 2, 4) {
		t.Error("Hash2 should depend on the seed")
	}
}

func TestHash01Range(t *testing.T) {
	for x := -50; x < 50; x++ {
		for y := -50; y < 50; y++ {
			v := Hash01(x, y, 99)
			if v < 0 || v >= 1 {
				t.Fatalf("Hash01(%d,%d) = %v out of [0,1)", x, y, v)
			}
		}
	}
}

func TestNoise2Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		x := float64(i)*1.37 - 20
		y := float64(i)*0.71 + 3
		a := Noise2(x, y, 3.5, 11)
		b := Noise2(x, y, 3.5, 11)
		if math.Float32bits(a) != math.Float32bits(b) {
			t.Fatalf("Noise2(%v,%v) differs between calls", x, y)
		}
		if a < 0 || a >= 1 {
			t.Fatalf("Noise2(%v,%v) = %v out of range", x, y, a)
		}
	}
}

func TestNoise2LatticeValues(t *testing.T) {
	// On integer lattice points the fade weights are zero, so the value is
	// exactly the lattice hash.
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			got := Noise2(float64(x)*2, float64(y)*2, 2, 5)
			want := Hash01(x, y, 5)
			if got != want {
				t.Errorf("Noise2 at lattice (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestNoise2NonPositiveScale(t *testing.T) {
	if Noise2(1.5, 2.5, 0, 1) != Noise2(1.5, 2.5, 1, 1) {
		t.Error("scale 0 should behave as scale 1")
	}
	if Noise2(1.5, 2.5, math.NaN(), 1) != Noise2(1.5, 2.5, 1, 1) {
		t.Error("NaN scale should behave as scale 1")
	}
}

func TestPeriodicNoise2Tiles(t *testing.T) {
	const scale, period = 4.0, 8
	extent := scale * period
	for i := 0; i < 40; i++ {
		x := float64(i) * 0.9
		y := float64(i) * 1.3
		a := PeriodicNoise2(x, y, scale, period, 3)
		b := PeriodicNoise2(x+extent, y-extent, scale, period, 3)
		if math.Abs(float64(a-b)) > 1e-6 {
			t.Fatalf("PeriodicNoise2 not periodic at (%v,%v): %v vs %v", x, y, a, b)
		}
	}
}

func TestFBMRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		v := FBM(float64(i)*0.37, float64(i)*0.11, 5, 3, 21)
		if v < 0 || v >= 1 {
			t.Fatalf("FBM out of range: %v", v)
		}
	}
	if FBM(1, 1, 5, 0, 1) != FBM(1, 1, 5, 1, 1) {
		t.Error("octaves < 1 should behave as one octave")
	}
}

func TestMulberry32Sequence(t *testing.T) {
	// Reference values of the classic mulberry32 for seed 12345.
	want := []float64{0.9797282677609473, 0.3067522644996643, 0.484205421525985}
	r := NewMulberry32(12345)
	for i, w := range want {
		if got := r.Next(); math.Abs(got-w) > 1e-15 {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestMulberry32Range(t *testing.T) {
	r := NewMulberry32(1)
	for i := 0; i < 10000; i++ {
		v := r.Range(-2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("Range out of bounds: %v", v)
		}
	}
}

func TestGammaLUT(t *testing.T) {
	l := GammaLUT(2.2)
	if l.At(0) != 0 || l.At(1) != 1 {
		t.Errorf("gamma endpoints = %v, %v; want 0, 1", l.At(0), l.At(1))
	}
	if got := l.At(0.5); math.Abs(float64(got)-math.Pow(0.5, 2.2)) > 2e-3 {
		t.Errorf("At(0.5) = %v, want about %v", got, math.Pow(0.5, 2.2))
	}
	if GammaLUT(2.2) != l {
		t.Error("GammaLUT should memoize tables")
	}
	if l.At(-1) != 0 || l.At(7) != 1 {
		t.Error("At should clamp its input")
	}
}

func TestRimLUTMonotonic(t *testing.T) {
	prev := float32(-1)
	for i := range RimLUT {
		if RimLUT[i] < prev {
			t.Fatalf("RimLUT decreases at %d", i)
		}
		prev = RimLUT[i]
	}
	if RimLUT[0] != 0 || RimLUT[len(RimLUT)-1] != 1 {
		t.Errorf("RimLUT endpoints = %v, %v", RimLUT[0], RimLUT[len(RimLUT)-1])
	}
}

func TestEdgeGradient(t *testing.T) {
	// 4x1 mask: 0 0 255 255
	alpha := []uint8{0, 0, 255, 255}
	if g := EdgeGradient(alpha, 4, 1, 0, 0); g != 0 {
		t.Errorf("flat region gradient = %v, want 0", g)
	}
	if g := EdgeGradient(alpha, 4, 1, 1, 0); g != 0.5 {
		t.Errorf("edge gradient = %v, want 0.5", g)
	}
}
