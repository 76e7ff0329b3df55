package frame

import (
	"errors"
	"testing"

	"github.com/dshills/glint/internal/renderer/cellbuild"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/rowcache"
	"github.com/dshills/glint/internal/renderer/shape"
	"github.com/dshills/glint/internal/renderer/theme"
)

// countingShaper wraps the monospace shaper and counts ShapeRow calls
// so tests can observe cache hits as avoided shaping work.
type countingShaper struct {
	*shape.MonoShaper
	shapeCalls int
}

func (c *countingShaper) ShapeRow(cells []grid.Cell) ([]shape.Glyph, error) {
	c.shapeCalls++
	return c.MonoShaper.ShapeRow(cells)
}

func newTestAssembler() (*Assembler, *countingShaper) {
	shaper := &countingShaper{
		MonoShaper: shape.NewMonoShaper(shape.NewAtlas(512, 512), 8, 16),
	}
	builder := cellbuild.New(theme.Default())
	asm := New(rowcache.New(rowcache.MinCapacity), shaper, builder, nil)
	return asm, shaper
}

// textSnapshot builds a snapshot whose rows hold the given lines,
// padded with empty cells to cols.
func textSnapshot(cols int, lines ...string) *grid.Snapshot {
	snap := &grid.Snapshot{
		Cols:         cols,
		Screen:       grid.ScreenPrimary,
		BottomPinned: true,
	}
	for i, line := range lines {
		cells := make([]grid.Cell, cols)
		for c := range cells {
			cells[c] = grid.EmptyCell()
		}
		col := 0
		for _, r := range line {
			if col >= cols {
				break
			}
			cells[col].Rune = r
			col++
		}
		snap.Rows = append(snap.Rows, grid.Row{
			ID:    grid.RowID(uint64(i) + 1),
			Cells: cells,
			Dirty: true,
		})
	}
	return snap
}

func markClean(snap *grid.Snapshot) {
	for i := range snap.Rows {
		snap.Rows[i].Dirty = false
	}
}

func TestAssemblePlainText(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")

	bg, fg, err := asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Default backgrounds paint nothing.
	if len(bg) != 0 {
		t.Errorf("expected no background records, got %d", len(bg))
	}
	if len(fg) != 3 {
		t.Fatalf("expected 3 glyph records, got %d", len(fg))
	}
	for i, rec := range fg {
		if rec.Mode != core.ModeGlyph {
			t.Errorf("record %d: expected glyph mode, got %s", i, rec.Mode)
		}
		if rec.Col != uint16(i) || rec.Row != 0 {
			t.Errorf("record %d: unexpected position (%d,%d)", i, rec.Col, rec.Row)
		}
	}
}

func TestAssembleSelection(t *testing.T) {
	asm, _ := newTestAssembler()
	th := asm.Builder().Theme()

	snap := textSnapshot(10, "abc")
	snap.Selection = &grid.Selection{
		Start: grid.Position{Row: 0, Col: 0},
		End:   grid.Position{Row: 0, Col: 2},
	}

	bg, fg, err := asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Columns 0..2 inclusive are selected and now paint backgrounds.
	if len(bg) != 3 {
		t.Fatalf("expected 3 selection backgrounds, got %d", len(bg))
	}
	for _, rec := range bg {
		if rec.BG != th.Foreground {
			t.Errorf("selection background should invert, got %v", rec.BG)
		}
	}
	for _, rec := range fg[:3] {
		if rec.FG != th.Background {
			t.Errorf("selected glyph should invert, got %v", rec.FG)
		}
	}
}

func TestAssembleCacheReuse(t *testing.T) {
	asm, shaper := newTestAssembler()
	snap := textSnapshot(10, "abc", "def")

	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != 2 {
		t.Fatalf("expected 2 shaped rows, got %d", shaper.shapeCalls)
	}

	markClean(snap)
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != 2 {
		t.Errorf("clean cached rows should not reshape, got %d calls", shaper.shapeCalls)
	}

	stats := asm.Cache().Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 cache hits, got %d", stats.Hits)
	}
}

// failingShaper wraps the monospace shaper with a switchable failure
// so tests can exercise shaping-error recovery.
type failingShaper struct {
	*shape.MonoShaper
	fail bool
}

func (f *failingShaper) ShapeRow(cells []grid.Cell) ([]shape.Glyph, error) {
	if f.fail {
		return nil, errors.New("shape backend unavailable")
	}
	return f.MonoShaper.ShapeRow(cells)
}

func TestAssembleShapingFailureNotCached(t *testing.T) {
	shaper := &failingShaper{
		MonoShaper: shape.NewMonoShaper(shape.NewAtlas(512, 512), 8, 16),
		fail:       true,
	}
	asm := New(rowcache.New(rowcache.MinCapacity), shaper, cellbuild.New(theme.Default()), nil)
	snap := textSnapshot(10, "abc")

	_, fg, err := asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(fg) != 0 {
		t.Fatalf("failed shaping should render a blank row, got %d records", len(fg))
	}

	// The blank output must not stick: the row's identity is
	// content-derived, so once shaping recovers the unchanged row has
	// to render its glyphs again.
	shaper.fail = false
	markClean(snap)
	_, fg, err = asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(fg) != 3 {
		t.Errorf("recovered shaping should rebuild the row, got %d records", len(fg))
	}
}

func TestAssembleDirtyRowSkipsCacheProbe(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")

	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Rows stay dirty: the rebuild must not probe the cache, so the
	// stats record no hit for output that is discarded anyway.
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	stats := asm.Cache().Stats()
	if stats.Hits != 0 {
		t.Errorf("dirty rows should never count cache hits, got %d", stats.Hits)
	}
}

func TestAssembleDirtyForcesRebuild(t *testing.T) {
	asm, shaper := newTestAssembler()
	snap := textSnapshot(10, "abc")

	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Same content, same key, but dirty: the cached entry must not be
	// used.
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != 2 {
		t.Errorf("dirty row should reshape, got %d calls", shaper.shapeCalls)
	}
}

func TestAssembleScrollRewritesRowCoord(t *testing.T) {
	asm, shaper := newTestAssembler()

	snap := textSnapshot(10, "abc", "")
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	callsAfterFirst := shaper.shapeCalls

	// The same row scrolls down one line: same identity, new position.
	scrolled := textSnapshot(10, "", "abc")
	scrolled.Rows[0].ID = 99
	scrolled.Rows[1].ID = snap.Rows[0].ID
	markClean(scrolled)

	_, fg, err := asm.Assemble(scrolled, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != callsAfterFirst+1 {
		// Only the empty row at index 0 lacks a cache entry.
		t.Errorf("scrolled row should hit the cache, got %d calls", shaper.shapeCalls-callsAfterFirst)
	}
	for _, rec := range fg {
		if rec.Row != 1 {
			t.Errorf("cached records should be rewritten to row 1, got %d", rec.Row)
		}
	}
}

func TestAssembleSelectionChangesKey(t *testing.T) {
	asm, shaper := newTestAssembler()
	snap := textSnapshot(10, "abc")

	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	markClean(snap)
	snap.Selection = &grid.Selection{
		Start: grid.Position{Row: 0, Col: 0},
		End:   grid.Position{Row: 0, Col: 1},
	}
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != 2 {
		t.Errorf("selection change should rebuild the row, got %d calls", shaper.shapeCalls)
	}

	// Dropping the selection afterwards hits the original entry.
	snap.Selection = nil
	if _, _, err := asm.Assemble(snap, false, 0); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if shaper.shapeCalls != 2 {
		t.Errorf("unselected variant should still be cached, got %d calls", shaper.shapeCalls)
	}
}

func TestAssembleCursorLast(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")
	snap.Cursor = grid.Cursor{Col: 1, Row: 0, Visible: true, Style: grid.CursorBlock}

	_, fg, err := asm.Assemble(snap, true, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(fg) < 4 {
		t.Fatalf("expected glyphs plus cursor overlay, got %d records", len(fg))
	}

	// The cursor sprite and the redrawn character sit at the end.
	cursorRec := fg[len(fg)-2]
	if cursorRec.Col != 1 || cursorRec.Row != 0 {
		t.Errorf("cursor at wrong position (%d,%d)", cursorRec.Col, cursorRec.Row)
	}
	if cursorRec.FG != asm.Builder().Theme().Cursor {
		t.Errorf("cursor should use the theme cursor color, got %v", cursorRec.FG)
	}

	redraw := fg[len(fg)-1]
	if redraw.FG != asm.Builder().Theme().Background {
		t.Errorf("block cursor should redraw the character in background color, got %v", redraw.FG)
	}
}

func TestAssembleCursorHiddenWhenBlinkedOff(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")
	snap.Cursor = grid.Cursor{Col: 1, Row: 0, Visible: true, Style: grid.CursorBlock}

	_, fg, err := asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(fg) != 3 {
		t.Errorf("no cursor overlay expected, got %d records", len(fg))
	}
}

func TestAssembleCursorOutOfBounds(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")
	snap.Cursor = grid.Cursor{Col: 50, Row: 0, Visible: true}

	_, fg, err := asm.Assemble(snap, true, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(fg) != 3 {
		t.Errorf("out-of-bounds cursor should render nothing, got %d records", len(fg))
	}
}

func TestAssemblePreedit(t *testing.T) {
	asm, _ := newTestAssembler()
	snap := textSnapshot(10, "abc")
	snap.Cursor = grid.Cursor{Col: 1, Row: 0, Visible: true, Style: grid.CursorBlock}

	_, fg, err := asm.Assemble(snap, true, 'あ')
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Preedit replaces the character redraw and renders black.
	last := fg[len(fg)-1]
	if last.FG != core.RGB(0, 0, 0) {
		t.Errorf("preedit glyph should be black, got %v", last.FG)
	}
	if last.CellWidth != 2 {
		t.Errorf("wide preedit should keep its width, got %d", last.CellWidth)
	}
}

func TestAssembleBackgroundBeforeForeground(t *testing.T) {
	asm, _ := newTestAssembler()

	snap := textSnapshot(10, "ab")
	for c := 0; c < 2; c++ {
		snap.Rows[0].Cells[c].BG = grid.ColorFromRGB(40, 40, 40)
	}

	bg, fg, err := asm.Assemble(snap, false, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(bg) != 2 {
		t.Fatalf("expected 2 background records, got %d", len(bg))
	}
	for _, rec := range bg {
		if !rec.Mode.IsBackground() {
			t.Errorf("background pass must hold only background records, got %s", rec.Mode)
		}
	}
	for _, rec := range fg {
		if rec.Mode.IsBackground() {
			t.Errorf("foreground pass must not hold background records")
		}
	}
}

func TestAssembleNilSnapshot(t *testing.T) {
	asm, _ := newTestAssembler()
	if _, _, err := asm.Assemble(nil, false, 0); err == nil {
		t.Error("nil snapshot should fail")
	}
}
