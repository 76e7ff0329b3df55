// Package shape provides the font shaping boundary of the renderer:
// the Shaper contract, a shelf-packed glyph atlas, and a monospace
// fallback shaper for environments without a real font engine.
package shape

import (
	"errors"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
)

// Sentinel errors for the shaping layer.
var (
	// ErrAtlasFull is returned when the atlas has no room for a glyph.
	ErrAtlasFull = errors.New("glyph atlas is full")

	// ErrNoGlyph is returned when a codepoint cannot be rendered.
	ErrNoGlyph = errors.New("no glyph for codepoint")
)

// Glyph is one shaped glyph cluster positioned on a row.
type Glyph struct {
	// Col is the leading column of the cluster.
	Col int

	// Width is the cell-width multiplier (1 or 2).
	Width int

	// Rune is the cluster's base codepoint.
	Rune rune

	// Rect locates the rendered glyph in the atlas.
	Rect core.GlyphRect

	// Color is true for color-font (emoji) presentation; such glyphs
	// are drawn as-is instead of being tinted with the foreground.
	Color bool
}

// Shaper converts a row of cells into positioned glyph clusters.
//
// ShapeRow returns one Glyph per printable cluster; blank cells yield
// no glyph. A shaping failure for one row is transient: callers log
// it and render the row without glyphs rather than failing the frame.
//
// RenderCodepoint rasterizes a single codepoint on demand. It backs
// the preedit path, which needs a glyph for a codepoint that may not
// appear anywhere in the grid.
type Shaper interface {
	ShapeRow(cells []grid.Cell) ([]Glyph, error)
	RenderCodepoint(r rune) (Glyph, error)
}

// FeatureConfigurer is implemented by shapers whose feature flags can
// change at runtime (config-change path). Reconfiguring rebuilds any
// internal shaping state.
type FeatureConfigurer interface {
	SetFeatures(features []string)
}

// AtlasClearer is implemented by shapers that own a glyph atlas which
// can be cleared wholesale (font-thickening change path).
type AtlasClearer interface {
	ClearAtlas()
}
