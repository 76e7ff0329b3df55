package core

import (
	"fmt"
	"image/color"
	"math"
)

// RGBA is a packed 8-bit-per-channel color, the only color type that
// appears in GPU cell records. Alpha is straight, not premultiplied.
type RGBA struct {
	R, G, B, A uint8
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b uint8) RGBA {
	return RGBA{R: r, G: g, B: b, A: 0xFF}
}

// FromColor converts a standard library color to a packed RGBA.
func FromColor(c color.Color) RGBA {
	if c == nil {
		return RGBA{}
	}
	r, g, b, a := c.RGBA()
	return RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}

// WithAlpha returns the color with the alpha channel replaced.
func (c RGBA) WithAlpha(a uint8) RGBA {
	c.A = a
	return c
}

// ScaleAlpha returns the color with alpha scaled by factor, rounding
// up so a nonzero alpha never scales to fully transparent.
func (c RGBA) ScaleAlpha(factor float64) RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	c.A = uint8(math.Ceil(float64(c.A) * factor))
	return c
}

// Packed returns the color packed as 0xRRGGBBAA for upload.
func (c RGBA) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// RGBA implements color.Color.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// String returns a hex representation for diagnostics.
func (c RGBA) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
