// Package effect holds the typewriter effect configuration.
//
// A Config is what users write, usually as TOML:
//
//	strength = 80
//	order = ["fill", "dropouts", "texture", "centerEdge", "punch", "fuzz", "smudge"]
//
//	[sections.punch]
//	enabled = true
//	strength = 60
//	quality = 100
//
//	[ink]
//	gamma = 1.2
//
// Resolve turns a Config into Params, the clamped form every renderer
// consumes. The signature methods on Params feed glyph atlas cache keys.
package effect
