package theme

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/glint/internal/renderer/core"
)

// Blend mixes two colors in Lab space. Software backends use it to
// composite alpha-carrying records onto opaque cells.
func Blend(a, b core.RGBA, t float64) core.RGBA {
	ca := toColorful(a)
	cb := toColorful(b)
	mixed := ca.BlendLab(cb, t).Clamped()
	r, g, bl := mixed.RGB255()
	return core.RGB(r, g, bl)
}

// Composite draws fg over bg honoring the fg alpha channel.
func Composite(fg, bg core.RGBA) core.RGBA {
	if fg.A == 0xFF {
		return fg
	}
	if fg.A == 0 {
		return bg
	}
	return Blend(bg, fg.WithAlpha(0xFF), float64(fg.A)/255.0)
}

// Luminance returns the perceived luminance of a color in [0, 1].
func Luminance(c core.RGBA) float64 {
	_, _, l := toColorful(c).Hcl()
	return l
}

func toColorful(c core.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
