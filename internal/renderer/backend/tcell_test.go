package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/shape"
)

func newTestTcell(t *testing.T) (*Tcell, tcell.SimulationScreen, *shape.Atlas) {
	t.Helper()

	sim := tcell.NewSimulationScreen("UTF-8")
	atlas := shape.NewAtlas(256, 256)
	backend := NewTcell(sim, atlas)
	if err := backend.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(backend.Shutdown)
	sim.SetSize(20, 5)
	return backend, sim, atlas
}

func TestTcellDrawNotInitialized(t *testing.T) {
	backend := NewTcell(tcell.NewSimulationScreen("UTF-8"), shape.NewAtlas(64, 64))
	if err := backend.DrawFrame(nil, nil); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestTcellDrawGlyph(t *testing.T) {
	backend, sim, atlas := newTestTcell(t)

	rect, _, err := atlas.Reserve('A', 8, 16)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	fg := []core.Record{{
		Col:       2,
		Row:       1,
		Mode:      core.ModeGlyph,
		CellWidth: 1,
		Glyph:     rect,
		FG:        core.RGB(255, 255, 255),
	}}
	if err := backend.DrawFrame(nil, fg); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	mainc, _, _, _ := sim.GetContent(2, 1)
	if mainc != 'A' {
		t.Errorf("expected 'A' at (2,1), got %q", mainc)
	}
}

func TestTcellDrawBackground(t *testing.T) {
	backend, sim, _ := newTestTcell(t)

	bg := []core.Record{{
		Col:       0,
		Row:       0,
		Mode:      core.ModeBackground,
		CellWidth: 2,
		BG:        core.RGB(10, 20, 30),
	}}
	if err := backend.DrawFrame(bg, nil); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	for x := 0; x < 2; x++ {
		_, _, style, _ := sim.GetContent(x, 0)
		_, bgCol, _ := style.Decompose()
		r, g, b := bgCol.RGB()
		if r != 10 || g != 20 || b != 30 {
			t.Errorf("cell %d: expected background 10/20/30, got %d/%d/%d", x, r, g, b)
		}
	}
}

func TestTcellDrawOrder(t *testing.T) {
	backend, sim, atlas := newTestTcell(t)

	rect, _, err := atlas.Reserve('X', 8, 16)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	bg := []core.Record{{
		Col: 0, Row: 0,
		Mode:      core.ModeBackground,
		CellWidth: 1,
		BG:        core.RGB(100, 0, 0),
	}}
	fg := []core.Record{{
		Col: 0, Row: 0,
		Mode:      core.ModeGlyph,
		CellWidth: 1,
		Glyph:     rect,
		FG:        core.RGB(0, 255, 0),
	}}
	if err := backend.DrawFrame(bg, fg); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	// The glyph draws over the background and keeps it behind the text.
	mainc, _, style, _ := sim.GetContent(0, 0)
	if mainc != 'X' {
		t.Errorf("expected 'X', got %q", mainc)
	}
	_, bgCol, _ := style.Decompose()
	r, _, _ := bgCol.RGB()
	if r != 100 {
		t.Errorf("glyph should preserve the painted background, got red %d", r)
	}
}

func TestTcellUnknownRect(t *testing.T) {
	backend, sim, _ := newTestTcell(t)

	// A rect that was never reserved cannot resolve to a rune; the
	// draw succeeds and leaves the cell alone.
	fg := []core.Record{{
		Col: 0, Row: 0,
		Mode:      core.ModeGlyph,
		CellWidth: 1,
		Glyph:     core.GlyphRect{X: 200, Y: 200, W: 8, H: 16},
	}}
	if err := backend.DrawFrame(nil, fg); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	mainc, _, _, _ := sim.GetContent(0, 0)
	if mainc != ' ' {
		t.Errorf("unknown rect should leave the fill, got %q", mainc)
	}
}

func TestTcellCaps(t *testing.T) {
	backend := NewTcell(tcell.NewSimulationScreen("UTF-8"), shape.NewAtlas(64, 64))
	if backend.Caps().SingleThreadedDraw {
		t.Error("tcell backend draws from any thread")
	}
	if backend.NeedsAnimation() {
		t.Error("tcell backend has no animation")
	}
}
