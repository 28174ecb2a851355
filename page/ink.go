package page

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// LayerFalloff is the opacity factor applied per layer of depth below the
// top of a cell.
const LayerFalloff = 0.92

// Common inks.
var (
	DefaultInk = color.RGBA{R: 0x1b, G: 0x1b, B: 0x1f, A: 0xff}
	RedInk     = color.RGBA{R: 0xb0, G: 0x1e, B: 0x23, A: 0xff}
	BlueInk    = color.RGBA{R: 0x1f, G: 0x3a, B: 0x93, A: 0xff}
	WhiteInk   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var namedInks = map[string]color.RGBA{
	"black": DefaultInk,
	"red":   RedInk,
	"blue":  BlueInk,
	"white": WhiteInk,
}

// ParseInk parses an ink name (black, red, blue, white) or a "#rgb" or
// "#rrggbb" hex colour. The leading '#' is optional.
func ParseInk(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedInks[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("page: invalid ink %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// IsWhite reports whether ink is opaque white. White ink covers what is
// below it and never fades with depth.
func IsWhite(ink color.RGBA) bool {
	return ink == WhiteInk
}

// LayerOpacity returns the opacity of layer i of a cell. Layer i of n is
// drawn at LayerFalloff^(n-1-i), so the top layer is opaque; white layers
// are always opaque.
func LayerOpacity(layers []Layer, i int) float64 {
	if i < 0 || i >= len(layers) {
		return 0
	}
	if IsWhite(layers[i].Ink) {
		return 1
	}
	return math.Pow(LayerFalloff, float64(len(layers)-1-i))
}
