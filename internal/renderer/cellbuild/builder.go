// Package cellbuild converts one terminal cell plus its shaping
// result into GPU cell records, applying the color, selection,
// cursor, and transparency rules.
package cellbuild

import (
	"errors"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/shape"
	"github.com/dshills/glint/internal/renderer/theme"
)

// ErrCapacity is returned when the destination slice cannot hold the
// records a cell produces. Nothing is written in that case; the
// caller grows its buffer and retries.
var ErrCapacity = errors.New("destination buffer needs more capacity")

// MaxRecordsPerCell is the most records one cell can produce:
// background, glyph, underline, strikethrough.
const MaxRecordsPerCell = 4

// Builder builds GPU cell records against a theme. It performs no
// allocation of its own; records append into caller-owned buffers.
type Builder struct {
	theme *theme.Theme
}

// New creates a builder for the given theme.
func New(t *theme.Theme) *Builder {
	return &Builder{theme: t}
}

// SetTheme replaces the theme (color-change path).
func (b *Builder) SetTheme(t *theme.Theme) {
	b.theme = t
}

// Theme returns the active theme.
func (b *Builder) Theme() *theme.Theme {
	return b.theme
}

// Build appends the records for one cell to dst and returns the
// extended slice. glyph may be nil for cells without a printable
// character. If dst lacks capacity for the cell's records, dst is
// returned unchanged with ErrCapacity; Build never partially writes.
//
// Record order when applicable: background, glyph, underline,
// strikethrough.
func (b *Builder) Build(dst []core.Record, cell grid.Cell, glyph *shape.Glyph, col, row int, selected bool) ([]core.Record, error) {
	fg, bg, hasBG := b.resolveColors(cell, selected)

	width := uint8(1)
	if cell.Width == 2 {
		width = 2
	}

	needed := 0
	if hasBG {
		needed++
	}
	if glyph != nil {
		needed++
	}
	if cell.Underline != grid.UnderlineNone {
		needed++
	}
	if cell.Attrs.Has(grid.AttrStrikethrough) {
		needed++
	}
	if cap(dst)-len(dst) < needed {
		return dst, ErrCapacity
	}

	if hasBG {
		dst = append(dst, core.Record{
			Col:       uint16(col),
			Row:       uint16(row),
			Mode:      core.ModeBackground,
			CellWidth: width,
			BG:        bg,
		})
	}

	if glyph != nil {
		mode := core.ModeGlyph
		if glyph.Color {
			mode = core.ModeColorGlyph
		}
		dst = append(dst, core.Record{
			Col:       uint16(col),
			Row:       uint16(row),
			Mode:      mode,
			CellWidth: width,
			Glyph:     glyph.Rect,
			FG:        fg,
			BG:        bg,
		})
	}

	if cell.Underline != grid.UnderlineNone {
		ulColor := fg
		if !cell.UnderlineColor.IsDefault() {
			ulColor = b.theme.Resolve(cell.UnderlineColor, fg)
		}
		dst = append(dst, core.Record{
			Col:       uint16(col),
			Row:       uint16(row),
			Mode:      underlineMode(cell.Underline),
			CellWidth: width,
			FG:        ulColor,
		})
	}

	if cell.Attrs.Has(grid.AttrStrikethrough) {
		dst = append(dst, core.Record{
			Col:       uint16(col),
			Row:       uint16(row),
			Mode:      core.ModeStrikethrough,
			CellWidth: width,
			FG:        fg,
		})
	}

	return dst, nil
}

// BuildBackground appends only the cell's background record, if the
// cell paints one. The frame assembler uses this on row-cache hits:
// cached rows carry only foreground records because background
// records depend on viewport position, so the background pass is
// rebuilt every frame.
func (b *Builder) BuildBackground(dst []core.Record, cell grid.Cell, col, row int, selected bool) ([]core.Record, error) {
	_, bg, hasBG := b.resolveColors(cell, selected)
	if !hasBG {
		return dst, nil
	}
	if cap(dst)-len(dst) < 1 {
		return dst, ErrCapacity
	}

	width := uint8(1)
	if cell.Width == 2 {
		width = 2
	}
	return append(dst, core.Record{
		Col:       uint16(col),
		Row:       uint16(row),
		Mode:      core.ModeBackground,
		CellWidth: width,
		BG:        bg,
	}), nil
}

// resolveColors applies the ordered color resolution rules. hasBG is
// false when the cell paints no background of its own (screen clear
// color shows through, no background record).
func (b *Builder) resolveColors(cell grid.Cell, selected bool) (fg, bg core.RGBA, hasBG bool) {
	t := b.theme
	inverse := cell.Attrs.Has(grid.AttrInverse)

	switch {
	case selected:
		// Selection always inverts relative to the theme.
		fg, bg = t.SelectionColors()
		hasBG = true

	case inverse:
		bg = t.Resolve(cell.FG, t.Foreground)
		fg = t.Resolve(cell.BG, t.Background)
		hasBG = true

	default:
		fg = t.Resolve(cell.FG, t.Foreground)
		if !cell.BG.IsDefault() {
			bg = t.Resolve(cell.BG, core.RGBA{})
			hasBG = true
		}
	}

	// Invisible cells render the glyph in the background color so the
	// text stays selectable but not visually distinct.
	if cell.Attrs.Has(grid.AttrInvisible) {
		if hasBG {
			fg = bg
		} else {
			fg = t.Background
		}
	}

	if cell.Attrs.Has(grid.AttrFaint) {
		fg = fg.WithAlpha(theme.FaintAlpha)
	}

	// Background opacity applies only to an unmodified theme-default
	// background on a cell that is neither selected nor inverted.
	// Anything else stays fully opaque so selections and explicit
	// backgrounds never become semi-transparent holes.
	if hasBG {
		if t.BackgroundOpacity < 1 && bg == t.Background && !selected && !inverse {
			bg = bg.ScaleAlpha(t.BackgroundOpacity)
		}
	}

	return fg, bg, hasBG
}

// underlineMode maps an underline style to its record mode.
func underlineMode(s grid.UnderlineStyle) core.CellMode {
	switch s {
	case grid.UnderlineDouble:
		return core.ModeUnderlineDouble
	case grid.UnderlineDotted:
		return core.ModeUnderlineDotted
	case grid.UnderlineDashed:
		return core.ModeUnderlineDashed
	case grid.UnderlineCurly:
		return core.ModeUnderlineCurly
	default:
		return core.ModeUnderline
	}
}
