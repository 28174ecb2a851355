// Package atlas renders and caches glyph atlases.
//
// An Atlas packs the 95 printable ASCII glyphs of one font, ink colour and
// overstrike variant into a single premultiplied RGBA bitmap, 32 slots per
// row with a one device-pixel gutter around each slot. When effects are on,
// every glyph goes through the ink stages before it is coloured.
//
// Builds are deterministic: a Key and its effect parameters always produce
// the same pixels. Cache builds synchronously on the caller's goroutine;
// Worker and AsyncCache run the same Builder in the background and exchange
// Request and Reply messages with the caller.
//
//	font := atlas.DefaultFont(14)
//	atlases := atlas.NewCache(atlas.NewBuilder(font, atlas.WithRenderScale(2)))
//	a, err := atlases.Ensure(color.RGBA{A: 255}, 0, true)
//	if err != nil {
//		return err
//	}
//	r := a.Rect('A')
package atlas
