// Package noise provides the deterministic noise primitives used by the ink
// stages and the grain overlay: integer lattice hashing, value noise, a small
// seeded RNG, lookup tables, and a cache of precomputed noise tiles.
//
// Every function is a pure function of its inputs. The same coordinates,
// scale and seed produce bit-identical results across calls, processes and
// goroutines, which is what allows atlases to be rebuilt on a worker and
// still match the synchronous path byte for byte.
package noise

// Hash2 returns an avalanche hash of the lattice point (x, y) under seed.
func Hash2(x, y int32, seed uint32) uint32 {
	h := uint32(x)*0x27d4eb2d ^ uint32(y)*0x165667b1 ^ seed*0x9e3779b9
	h ^= h >> 15
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// Hash01 returns Hash2 mapped to [0, 1).
func Hash01(x, y int, seed uint32) float32 {
	//nolint:gosec // G115: lattice coordinates wrap intentionally
	return float32(Hash2(int32(x), int32(y), seed)>>8) / (1 << 24)
}

// Mix combines a seed with a salt so separate consumers of one glyph seed
// draw from unrelated streams.
func Mix(seed, salt uint32) uint32 {
	return Hash2(int32(salt), int32(seed), 0x5bd1e995) //nolint:gosec // G115: bit reinterpretation
}
