package noise

// Mulberry32 is a tiny seeded generator with 32 bits of state.
// It reproduces the widely used mulberry32 sequence exactly, so hole
// placement is stable for a given glyph seed.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 returns a generator seeded with seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next returns the next value in [0, 1).
func (r *Mulberry32) Next() float64 {
	r.state += 0x6D2B79F5
	a := r.state
	t := (a ^ a>>15) * (a | 1)
	t = (t + (t^t>>7)*(t|61)) ^ t
	return float64(t^t>>14) / 4294967296
}

// Range returns a value in [lo, hi).
func (r *Mulberry32) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Next()
}
