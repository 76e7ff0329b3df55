// Package theme provides screen colors for the renderer: default
// foreground/background, selection and cursor colors, the 256-entry
// palette, and the alpha rules applied during cell building.
package theme

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
)

// FaintAlpha is the foreground alpha applied to faint (dim) cells,
// roughly 69% of full opacity.
const FaintAlpha = 175

// Theme holds the resolved screen colors used during cell building.
type Theme struct {
	// Foreground and Background are the default text colors.
	Foreground core.RGBA
	Background core.RGBA

	// Cursor is the cursor block color.
	Cursor core.RGBA

	// SelectionForeground and SelectionBackground override the
	// selection colors when non-nil; otherwise selection inverts the
	// theme default pair.
	SelectionForeground *core.RGBA
	SelectionBackground *core.RGBA

	// Palette is the 256-color lookup table for indexed cell colors.
	Palette [256]core.RGBA

	// BackgroundOpacity scales the alpha of unmodified default
	// backgrounds, in (0, 1].
	BackgroundOpacity float64
}

// Default returns a theme with the standard xterm palette and a dark
// default color scheme.
func Default() *Theme {
	t := &Theme{
		Foreground:        core.RGB(0xD8, 0xD8, 0xD8),
		Background:        core.RGB(0x18, 0x18, 0x18),
		Cursor:            core.RGB(0xD8, 0xD8, 0xD8),
		BackgroundOpacity: 1.0,
	}
	for i := 0; i < 256; i++ {
		t.Palette[i] = core.FromColor(ansi.ExtendedColor(i))
	}
	return t
}

// Resolve maps a cell-space color to a packed RGBA. Default colors
// resolve to the given fallback; indexed colors go through the
// palette.
func (t *Theme) Resolve(c grid.Color, fallback core.RGBA) core.RGBA {
	switch {
	case c.Default:
		return fallback
	case c.Indexed:
		return t.Palette[c.R]
	default:
		return core.RGB(c.R, c.G, c.B)
	}
}

// SelectionColors returns the fg/bg pair for selected cells.
// Selection always inverts relative to the theme: without explicit
// overrides, bg becomes the default foreground and fg the default
// background.
func (t *Theme) SelectionColors() (fg, bg core.RGBA) {
	fg = t.Background
	bg = t.Foreground
	if t.SelectionForeground != nil {
		fg = *t.SelectionForeground
	}
	if t.SelectionBackground != nil {
		bg = *t.SelectionBackground
	}
	return fg, bg
}
