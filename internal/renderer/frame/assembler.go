// Package frame assembles a terminal snapshot into the two ordered
// GPU record sequences of one frame: the background pass and the
// foreground pass.
package frame

import (
	"fmt"

	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/renderer/cellbuild"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/rowcache"
	"github.com/dshills/glint/internal/renderer/shape"
)

// Assembler walks visible rows top to bottom, reusing cached row
// output where possible and rebuilding dirty rows through the cell
// builder. It owns its scratch buffers exclusively: one goroutine at
// a time may call Assemble, and the returned slices are valid only
// until the next call.
type Assembler struct {
	cache   *rowcache.Cache
	shaper  shape.Shaper
	builder *cellbuild.Builder
	log     *logging.Logger

	// Output sequences, reused across frames.
	bg []core.Record
	fg []core.Record

	// rowScratch collects one row's records during a rebuild before
	// they are split into passes.
	rowScratch []core.Record
}

// New creates an assembler over the given cache, shaper, and builder.
// logger may be nil.
func New(cache *rowcache.Cache, shaper shape.Shaper, builder *cellbuild.Builder, logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.Null
	}
	return &Assembler{
		cache:   cache,
		shaper:  shaper,
		builder: builder,
		log:     logger.WithComponent("frame"),
	}
}

// Builder returns the assembler's cell builder.
func (a *Assembler) Builder() *cellbuild.Builder {
	return a.builder
}

// Cache returns the assembler's row cache.
func (a *Assembler) Cache() *rowcache.Cache {
	return a.cache
}

// Assemble produces the frame's background and foreground record
// sequences for the snapshot. drawCursor requests the cursor overlay;
// preedit is a pending composing codepoint, or 0.
//
// The returned slices alias internal scratch buffers and are only
// valid until the next Assemble call.
func (a *Assembler) Assemble(snap *grid.Snapshot, drawCursor bool, preedit rune) (bg, fg []core.Record, err error) {
	if snap == nil {
		return nil, nil, fmt.Errorf("assemble: nil snapshot")
	}

	// Pre-size both sequences to the viewport cell count so appends
	// inside the row loop rarely reallocate.
	upper := snap.Cols * len(snap.Rows)
	a.bg = ensure(a.bg[:0], upper)
	a.fg = ensure(a.fg[:0], upper)

	for r := range snap.Rows {
		if err := a.assembleRow(snap, r); err != nil {
			return nil, nil, fmt.Errorf("assemble row %d: %w", r, err)
		}
	}

	if drawCursor && snap.Cursor.Visible {
		a.appendCursor(snap, preedit)
	}

	assertPasses(a.bg, a.fg)
	return a.bg, a.fg, nil
}

// assembleRow appends one row's records to the output sequences.
func (a *Assembler) assembleRow(snap *grid.Snapshot, r int) error {
	row := &snap.Rows[r]

	key := rowcache.Key{ID: row.ID, Screen: snap.Screen}
	if snap.Selection != nil {
		if span, ok := snap.Selection.RowSpan(r, snap.Cols); ok {
			key.Selected = true
			key.Span = span
		}
	}

	// The background pass is rebuilt every frame: background records
	// depend on viewport position and are cheap to resolve, so they
	// are never cached.
	if err := a.buildRowBackground(row, key, r); err != nil {
		return err
	}

	// A dirty row rebuilds unconditionally; probing the cache first
	// would record a bogus hit and promote an entry that is about to
	// be overwritten.
	if !row.Dirty {
		if cached, ok := a.cache.Get(key); ok {
			// Cache reuse is an O(width) copy. Column positions inside
			// a row stay valid; only the row coordinate changes under
			// scrolling.
			base := len(a.fg)
			a.fg = ensure(a.fg, len(a.fg)+len(cached))
			a.fg = append(a.fg, cached...)
			for i := base; i < len(a.fg); i++ {
				a.fg[i].Row = uint16(r)
			}
			return nil
		}
	}

	return a.rebuildRow(row, key, r)
}

// buildRowBackground appends the row's background records.
func (a *Assembler) buildRowBackground(row *grid.Row, key rowcache.Key, r int) error {
	for col := range row.Cells {
		cell := row.Cells[col]
		if cell.IsContinuation() {
			continue
		}
		selected := key.Selected && key.Span.Contains(col)

		a.bg = ensure(a.bg, len(a.bg)+1)
		var err error
		a.bg, err = a.builder.BuildBackground(a.bg, cell, col, r, selected)
		if err != nil {
			return err
		}
	}
	return nil
}

// rebuildRow shapes the row, builds its foreground records, stores
// them in the cache, and appends them to the output.
func (a *Assembler) rebuildRow(row *grid.Row, key rowcache.Key, r int) error {
	glyphs, err := a.shaper.ShapeRow(row.Cells)
	shapeFailed := err != nil
	if shapeFailed {
		// A shaping failure is transient: render the row without
		// glyphs rather than failing the frame.
		a.log.Warn("shaping failed for row %d: %v", r, err)
		glyphs = nil
	}

	glyphAt := make(map[int]*shape.Glyph, len(glyphs))
	for i := range glyphs {
		glyphAt[glyphs[i].Col] = &glyphs[i]
	}

	a.rowScratch = ensure(a.rowScratch[:0], len(row.Cells)*cellbuild.MaxRecordsPerCell)

	for col := range row.Cells {
		cell := row.Cells[col]
		if cell.IsContinuation() {
			continue
		}
		selected := key.Selected && key.Span.Contains(col)

		a.rowScratch, err = a.builder.Build(a.rowScratch, cell, glyphAt[col], col, r, selected)
		if err != nil {
			return err
		}
	}

	// Split passes: foreground records feed both the live output and
	// the row's new cache entry. The cache entry is a fresh slice
	// because the cache takes ownership.
	rowFG := make([]core.Record, 0, len(a.rowScratch))
	for _, rec := range a.rowScratch {
		if rec.Mode.IsBackground() {
			continue
		}
		rowFG = append(rowFG, rec)
	}

	a.fg = ensure(a.fg, len(a.fg)+len(rowFG))
	a.fg = append(a.fg, rowFG...)
	if !shapeFailed {
		a.cache.Put(key, rowFG)
	}
	// A glyphless row from a failed shape is never cached: the row's
	// identity is content-derived and would pin the blank output until
	// the content changed. The next frame retries.
	return nil
}

// appendCursor synthesizes the cursor overlay, appended last so it
// paints over any cell it overlaps. A pending preedit codepoint
// renders into the cursor cell with a black foreground for contrast,
// suppressing the usual character overlay; any preedit failure falls
// back silently to the plain cursor.
func (a *Assembler) appendCursor(snap *grid.Snapshot, preedit rune) {
	cur := snap.Cursor
	if cur.Row < 0 || cur.Row >= len(snap.Rows) || cur.Col < 0 || cur.Col >= snap.Cols {
		return
	}
	t := a.builder.Theme()

	width := uint8(1)
	if cell, ok := cellUnderCursor(snap); ok && cell.Width == 2 {
		width = 2
	}

	sprite, err := a.shaper.RenderCodepoint(cursorRune(cur.Style))
	if err != nil {
		a.log.Debug("cursor sprite unavailable: %v", err)
		return
	}

	a.fg = ensure(a.fg, len(a.fg)+2)
	a.fg = append(a.fg, core.Record{
		Col:       uint16(cur.Col),
		Row:       uint16(cur.Row),
		Mode:      core.ModeGlyph,
		CellWidth: width,
		Glyph:     sprite.Rect,
		FG:        t.Cursor,
	})

	if preedit != 0 {
		if g, err := a.shaper.RenderCodepoint(preedit); err == nil {
			a.fg = append(a.fg, core.Record{
				Col:       uint16(cur.Col),
				Row:       uint16(cur.Row),
				Mode:      core.ModeGlyph,
				CellWidth: uint8(g.Width),
				Glyph:     g.Rect,
				FG:        core.RGB(0, 0, 0),
			})
			return
		} else {
			a.log.Debug("preedit render failed for %q: %v", preedit, err)
		}
	}

	// Block cursors re-draw the character under them in the theme
	// background color so it stays legible inside the block.
	if cur.Style == grid.CursorBlock {
		if cell, ok := cellUnderCursor(snap); ok && cell.HasContent() {
			if g, err := a.shaper.RenderCodepoint(cell.Rune); err == nil {
				a.fg = append(a.fg, core.Record{
					Col:       uint16(cur.Col),
					Row:       uint16(cur.Row),
					Mode:      core.ModeGlyph,
					CellWidth: width,
					Glyph:     g.Rect,
					FG:        t.Background,
				})
			}
		}
	}
}

// cellUnderCursor returns the cell at the cursor position.
func cellUnderCursor(snap *grid.Snapshot) (grid.Cell, bool) {
	cur := snap.Cursor
	if cur.Row < 0 || cur.Row >= len(snap.Rows) {
		return grid.Cell{}, false
	}
	row := snap.Rows[cur.Row]
	if cur.Col < 0 || cur.Col >= len(row.Cells) {
		return grid.Cell{}, false
	}
	return row.Cells[cur.Col], true
}

// cursorRune maps a cursor style to its sprite codepoint.
func cursorRune(style grid.CursorStyle) rune {
	switch style {
	case grid.CursorUnderline:
		return '▁'
	case grid.CursorBar:
		return '▏'
	default:
		return '█'
	}
}

// ensure grows dst's capacity to hold at least n records.
func ensure(dst []core.Record, n int) []core.Record {
	if cap(dst) >= n {
		return dst
	}
	grown := make([]core.Record, len(dst), n)
	copy(grown, dst)
	return grown
}
