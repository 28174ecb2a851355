package atlas

import "errors"

// Sentinel errors for the atlas package.
var (
	// ErrCanvas is returned when a drawing surface cannot be created.
	ErrCanvas = errors.New("atlas: canvas unavailable")

	// ErrFontUnavailable is returned when the font cannot rasterize glyphs.
	ErrFontUnavailable = errors.New("atlas: font unavailable")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("atlas: empty font data")

	// ErrWorkerClosed is returned when submitting to a closed Worker.
	ErrWorkerClosed = errors.New("atlas: worker closed")
)
