// Package typewriter is the rendering core of a typewriter-style document
// editor. It turns a sparse character grid into raster pages whose glyphs
// carry simulated ink defects: pressure variation, edge bleed, grain,
// punch-through and smudging.
//
// # Architecture
//
// The work is split across packages, leaves first:
//   - internal/noise: hash noise, value noise, RNG, lookup tables, noise tile cache
//   - internal/distfield: chamfer distance transforms over glyph masks
//   - internal/stage: the per-glyph compositing stages and adaptive detail
//   - effect: effect configuration, normalization and cache signatures
//   - atlas: glyph atlas building, caching and the worker adapter
//   - grain: page level grain overlay
//   - page: dirty-row tracking, frame scheduling and page painting
//
// # Quick Start
//
//	font := atlas.DefaultFont(14)
//	params := effect.Resolve(effect.DefaultConfig())
//	atlases := atlas.NewCache(atlas.NewBuilder(font), atlas.WithParams(params))
//
//	loop := page.NewManualLoop()
//	r := page.NewRenderer(page.MetricsFor(font, 2), atlases, loop)
//	p := r.NewPage(0, page.Layout{Width: 600, Height: 800})
//	r.Activate(p)
//	r.Type(p, 0, 0, 'A', page.DefaultInk)
//	loop.Flush()
//
// # Logging
//
// All packages log through [Logger]; see [SetLogger].
package typewriter
