package datmant

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA8 represents a non-premultiplied color with 8 bits per channel.
// Mask pixels carry their class color in R, G, B and use A as the occupancy
// channel: a mask pixel is painted exactly when A is nonzero.
type RGBA8 struct {
	R, G, B, A uint8
}

// Color converts RGBA8 to the standard color.Color interface.
func (c RGBA8) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts a standard color.Color to RGBA8.
func FromColor(c color.Color) RGBA8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA8{R: n.R, G: n.G, B: n.B, A: n.A}
}

// MatchesRGB reports whether the R, G and B channels of c and o are each
// within tol of one another. Alpha is ignored: it encodes occupancy, not
// identity.
func (c RGBA8) MatchesRGB(o RGBA8, tol uint8) bool {
	return absDiff(c.R, o.R) <= tol &&
		absDiff(c.G, o.G) <= tol &&
		absDiff(c.B, o.B) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without a
// leading '#'. Invalid input yields opaque black; use ParseHex when the
// input is untrusted.
func Hex(hex string) RGBA8 {
	c, err := ParseHex(hex)
	if err != nil {
		return RGBA8{A: 255}
	}
	return c
}

// ParseHex parses a hex color string, reporting malformed input.
// Accepted formats match [Hex].
func ParseHex(hex string) (RGBA8, error) {
	s := strings.TrimPrefix(hex, "#")

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return RGBA8{}, fmt.Errorf("datmant: invalid hex color %q", hex)
	}

	var r, g, b, a uint64
	a = 255

	switch len(s) {
	case 3: // RGB
		r, g, b = (v>>8&0xF)*17, (v>>4&0xF)*17, (v&0xF)*17
	case 4: // RGBA
		r, g, b, a = (v>>12&0xF)*17, (v>>8&0xF)*17, (v>>4&0xF)*17, (v&0xF)*17
	case 6: // RRGGBB
		r, g, b = v>>16&0xFF, v>>8&0xFF, v&0xFF
	case 8: // RRGGBBAA
		r, g, b, a = v>>24&0xFF, v>>16&0xFF, v>>8&0xFF, v&0xFF
	default:
		return RGBA8{}, fmt.Errorf("datmant: invalid hex color %q", hex)
	}

	return RGBA8{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, nil
}

// HexString formats the color as "#RRGGBB" when fully opaque and
// "#RRGGBBAA" otherwise. ParseHex(c.HexString()) round-trips exactly.
func (c RGBA8) HexString() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Common colors.
var (
	Transparent = RGBA8{}
	Black       = RGBA8{A: 255}
	White       = RGBA8{R: 255, G: 255, B: 255, A: 255}
)
