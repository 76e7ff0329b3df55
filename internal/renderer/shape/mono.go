package shape

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/glint/internal/renderer/grid"
)

// MonoShaper is a monospace fallback shaper. It segments a row into
// grapheme clusters, classifies cluster widths, and reserves atlas
// slots per base codepoint. It performs no real rasterization, which
// makes it suitable for headless rendering and tests; a font-engine
// shaper plugs into the same Shaper contract.
type MonoShaper struct {
	mu sync.Mutex

	atlas *Atlas

	// cellW, cellH are the glyph cell dimensions in pixels.
	cellW int
	cellH int

	// features are the active shaping feature flags. The monospace
	// shaper keeps them only so reconfiguration round-trips.
	features []string
}

// NewMonoShaper creates a monospace shaper rendering into the given
// atlas at the given cell pixel dimensions.
func NewMonoShaper(atlas *Atlas, cellW, cellH int) *MonoShaper {
	return &MonoShaper{atlas: atlas, cellW: cellW, cellH: cellH}
}

// Atlas returns the shaper's atlas.
func (m *MonoShaper) Atlas() *Atlas {
	return m.atlas
}

// SetCellSize updates the glyph cell dimensions (font-size change).
// The atlas must be cleared separately since existing slots are stale.
func (m *MonoShaper) SetCellSize(cellW, cellH int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cellW = cellW
	m.cellH = cellH
}

// SetFeatures replaces the shaping feature flags.
func (m *MonoShaper) SetFeatures(features []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = append([]string(nil), features...)
}

// ClearAtlas releases every atlas slot.
func (m *MonoShaper) ClearAtlas() {
	m.atlas.Clear()
}

// ShapeRow segments the row into grapheme clusters and returns one
// glyph per printable cluster. Continuation cells yield nothing; the
// leading cell of a wide character carries the cluster.
func (m *MonoShaper) ShapeRow(cells []grid.Cell) ([]Glyph, error) {
	m.mu.Lock()
	cellW, cellH := m.cellW, m.cellH
	m.mu.Unlock()

	// Rebuild the row text with a column map so clusters that span
	// combining marks land on the right cell.
	var sb strings.Builder
	cols := make([]int, 0, len(cells))
	for col, c := range cells {
		if c.IsContinuation() || c.Rune == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
		cols = append(cols, col)
	}

	var glyphs []Glyph
	seg := uniseg.NewGraphemes(sb.String())
	idx := 0
	for seg.Next() {
		runes := seg.Runes()
		base := runes[0]
		col := cols[idx]
		idx += len(runes)

		if base == ' ' {
			continue
		}

		w := runewidth.RuneWidth(base)
		if w < 1 {
			w = 1
		}

		rect, _, err := m.atlas.Reserve(base, cellW*w, cellH)
		if err != nil {
			// A full atlas degrades this cluster to blank; the row
			// still shapes.
			continue
		}

		glyphs = append(glyphs, Glyph{
			Col:   col,
			Width: w,
			Rune:  base,
			Rect:  rect,
			Color: isColorRune(base),
		})
	}

	return glyphs, nil
}

// RenderCodepoint rasterizes a single codepoint on demand (preedit).
func (m *MonoShaper) RenderCodepoint(r rune) (Glyph, error) {
	m.mu.Lock()
	cellW, cellH := m.cellW, m.cellH
	m.mu.Unlock()

	if r == 0 || r == ' ' {
		return Glyph{}, ErrNoGlyph
	}

	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}

	rect, _, err := m.atlas.Reserve(r, cellW*w, cellH)
	if err != nil {
		return Glyph{}, err
	}

	return Glyph{
		Width: w,
		Rune:  r,
		Rect:  rect,
		Color: isColorRune(r),
	}, nil
}

// isColorRune reports whether a codepoint takes emoji (color font)
// presentation by default.
func isColorRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // extended-A
		return true
	case r >= 0x2600 && r <= 0x26FF: // misc symbols
		return true
	default:
		return false
	}
}

// Interface checks.
var (
	_ Shaper            = (*MonoShaper)(nil)
	_ FeatureConfigurer = (*MonoShaper)(nil)
	_ AtlasClearer      = (*MonoShaper)(nil)
)
