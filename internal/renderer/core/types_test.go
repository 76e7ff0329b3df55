package core

import "testing"

func TestGridFor(t *testing.T) {
	screen := ScreenSize{Width: 800, Height: 600}
	cell := CellSize{Width: 10, Height: 20}
	pad := Padding{Left: 5, Top: 5, Right: 5, Bottom: 5}

	size := GridFor(screen, cell, pad)
	if size.Cols != 79 {
		t.Errorf("expected 79 cols, got %d", size.Cols)
	}
	if size.Rows != 29 {
		t.Errorf("expected 29 rows, got %d", size.Rows)
	}
}

func TestGridForNeverBelowOne(t *testing.T) {
	size := GridFor(ScreenSize{Width: 3, Height: 3}, CellSize{Width: 10, Height: 20}, Padding{})
	if size.Cols != 1 || size.Rows != 1 {
		t.Errorf("tiny surface should clamp to 1x1, got %dx%d", size.Cols, size.Rows)
	}

	size = GridFor(ScreenSize{Width: 100, Height: 100}, CellSize{}, Padding{})
	if size.Cols != 1 || size.Rows != 1 {
		t.Errorf("zero cell size should clamp to 1x1, got %dx%d", size.Cols, size.Rows)
	}
}

func TestGridSizeCells(t *testing.T) {
	g := GridSize{Cols: 80, Rows: 24}
	if g.Cells() != 1920 {
		t.Errorf("expected 1920 cells, got %d", g.Cells())
	}
}

func TestScaleAlphaRoundsUp(t *testing.T) {
	c := RGBA{R: 10, G: 20, B: 30, A: 255}

	scaled := c.ScaleAlpha(0.5)
	if scaled.A != 128 {
		t.Errorf("expected alpha 128, got %d", scaled.A)
	}
	if scaled.R != 10 || scaled.G != 20 || scaled.B != 30 {
		t.Error("scaling alpha should not touch color channels")
	}

	// A nonzero alpha must never scale to zero.
	low := RGBA{A: 1}.ScaleAlpha(0.01)
	if low.A == 0 {
		t.Error("nonzero alpha scaled to zero")
	}
}

func TestScaleAlphaClampsFactor(t *testing.T) {
	c := RGBA{A: 100}
	if got := c.ScaleAlpha(2.0).A; got != 100 {
		t.Errorf("factor above 1 should clamp, got alpha %d", got)
	}
	if got := c.ScaleAlpha(-1.0).A; got != 0 {
		t.Errorf("negative factor should clamp to 0, got alpha %d", got)
	}
}

func TestPacked(t *testing.T) {
	c := RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got := c.Packed(); got != 0x11223344 {
		t.Errorf("expected 0x11223344, got 0x%08X", got)
	}
}

func TestRGBAImplementsColor(t *testing.T) {
	c := RGB(255, 0, 0)
	r, g, b, a := c.RGBA()
	if r != 0xFFFF || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("unexpected color conversion: %d %d %d %d", r, g, b, a)
	}
}

func TestModeIsBackground(t *testing.T) {
	if !ModeBackground.IsBackground() {
		t.Error("ModeBackground should be background")
	}
	for _, m := range []CellMode{ModeGlyph, ModeColorGlyph, ModeStrikethrough, ModeUnderline, ModeUnderlineCurly} {
		if m.IsBackground() {
			t.Errorf("%s should not be background", m)
		}
	}
}

func TestGlyphRectIsZero(t *testing.T) {
	if !(GlyphRect{}).IsZero() {
		t.Error("zero rect should report IsZero")
	}
	if (GlyphRect{X: 1}).IsZero() {
		t.Error("non-zero rect should not report IsZero")
	}
}
