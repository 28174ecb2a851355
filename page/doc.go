// Package page paints typed pages.
//
// A Page holds a sparse Grid of struck characters and two device-pixel
// canvases. Edits mark rows dirty through the Renderer, which schedules at
// most one paint per page on a FrameLoop. A paint redraws either the whole
// page or only the band of rows that changed, widened by one grid step
// and the glyph ascent and descent, into the back buffer, then copies just
// that band to the visible canvas.
//
// Overtyped layers are drawn bottom to top. Each layer below the top fades
// by LayerFalloff per level of depth, except white ink, which always
// covers at full opacity.
//
//	loop := page.NewManualLoop()
//	r := page.NewRenderer(page.MetricsFor(font, 2), atlases, loop)
//	p := r.NewPage(0, page.Layout{Width: 600, Height: 800, MarginTop: 48, MarginLeft: 48})
//	r.Activate(p)
//
//	r.BeginBatch()
//	for i, ch := range "hello" {
//		r.Type(p, 0, i, ch, page.DefaultInk)
//	}
//	r.EndBatch()
//	loop.Flush() // one paint
package page
