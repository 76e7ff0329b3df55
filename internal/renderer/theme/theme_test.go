package theme

import (
	"path/filepath"
	"testing"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
)

func TestDefaultPalette(t *testing.T) {
	th := Default()

	// Spot-check against the xterm table.
	if th.Palette[1] != core.RGB(0x80, 0x00, 0x00) {
		t.Errorf("palette 1 should be xterm red, got %v", th.Palette[1])
	}
	if th.Palette[15] != core.RGB(0xFF, 0xFF, 0xFF) {
		t.Errorf("palette 15 should be white, got %v", th.Palette[15])
	}
	if th.Palette[232] != core.RGB(0x08, 0x08, 0x08) {
		t.Errorf("palette 232 should start the gray ramp, got %v", th.Palette[232])
	}
}

func TestResolve(t *testing.T) {
	th := Default()

	fallback := core.RGB(1, 2, 3)
	if got := th.Resolve(grid.ColorDefault, fallback); got != fallback {
		t.Errorf("default color should resolve to fallback, got %v", got)
	}
	if got := th.Resolve(grid.ColorFromIndex(1), fallback); got != th.Palette[1] {
		t.Errorf("indexed color should resolve through palette, got %v", got)
	}
	if got := th.Resolve(grid.ColorFromRGB(9, 8, 7), fallback); got != core.RGB(9, 8, 7) {
		t.Errorf("true color should resolve to itself, got %v", got)
	}
}

func TestSelectionColorsInvert(t *testing.T) {
	th := Default()

	fg, bg := th.SelectionColors()
	if fg != th.Background {
		t.Errorf("selection fg should be theme background, got %v", fg)
	}
	if bg != th.Foreground {
		t.Errorf("selection bg should be theme foreground, got %v", bg)
	}
}

func TestSelectionColorsOverride(t *testing.T) {
	th := Default()
	selFG := core.RGB(1, 1, 1)
	th.SelectionForeground = &selFG

	fg, bg := th.SelectionColors()
	if fg != selFG {
		t.Errorf("expected overridden fg, got %v", fg)
	}
	if bg != th.Foreground {
		t.Errorf("bg should still invert, got %v", bg)
	}
}

func TestParseTheme(t *testing.T) {
	th, err := Parse([]byte(`{
		"foreground": "#FFFFFF",
		"background": "#000000",
		"cursor": "#ABC",
		"selection": {"background": "#112233"},
		"background_opacity": 0.9,
		"palette": ["#101010", "#CC0000"]
	}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if th.Foreground != core.RGB(0xFF, 0xFF, 0xFF) {
		t.Errorf("unexpected foreground %v", th.Foreground)
	}
	if th.Cursor != core.RGB(0xAA, 0xBB, 0xCC) {
		t.Errorf("short hex should expand, got %v", th.Cursor)
	}
	if th.SelectionBackground == nil || *th.SelectionBackground != core.RGB(0x11, 0x22, 0x33) {
		t.Error("selection.background not parsed")
	}
	if th.BackgroundOpacity != 0.9 {
		t.Errorf("unexpected opacity %v", th.BackgroundOpacity)
	}
	if th.Palette[1] != core.RGB(0xCC, 0x00, 0x00) {
		t.Errorf("palette override not applied, got %v", th.Palette[1])
	}
	// Entries past the given array keep their defaults.
	if th.Palette[2] != Default().Palette[2] {
		t.Error("unlisted palette entries should keep defaults")
	}
}

func TestParseThemePartial(t *testing.T) {
	th, err := Parse([]byte(`{"foreground": "#123456"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if th.Foreground != core.RGB(0x12, 0x34, 0x56) {
		t.Errorf("unexpected foreground %v", th.Foreground)
	}
	if th.Background != Default().Background {
		t.Error("unset keys should keep defaults")
	}
}

func TestParseThemeErrors(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := Parse([]byte(`{"foreground": "#XYZXYZ"}`)); err == nil {
		t.Error("bad hex should fail")
	}
	if _, err := Parse([]byte(`{"background_opacity": 1.5}`)); err == nil {
		t.Error("out-of-range opacity should fail")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	th := Default()
	th.Foreground = core.RGB(0x10, 0x20, 0x30)
	selBG := core.RGB(0x44, 0x55, 0x66)
	th.SelectionBackground = &selBG
	th.BackgroundOpacity = 0.8
	th.Palette[200] = core.RGB(1, 2, 3)

	path := filepath.Join(t.TempDir(), "theme.json")
	if err := Save(th, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Foreground != th.Foreground {
		t.Errorf("foreground mismatch: %v", loaded.Foreground)
	}
	if loaded.SelectionBackground == nil || *loaded.SelectionBackground != selBG {
		t.Error("selection background lost in round trip")
	}
	if loaded.BackgroundOpacity != 0.8 {
		t.Errorf("opacity mismatch: %v", loaded.BackgroundOpacity)
	}
	if loaded.Palette[200] != core.RGB(1, 2, 3) {
		t.Errorf("palette mismatch: %v", loaded.Palette[200])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestComposite(t *testing.T) {
	fg := core.RGB(100, 100, 100)
	bg := core.RGB(0, 0, 0)

	if got := Composite(fg, bg); got != fg {
		t.Errorf("opaque fg should win, got %v", got)
	}
	if got := Composite(fg.WithAlpha(0), bg); got != bg {
		t.Errorf("transparent fg should vanish, got %v", got)
	}

	mid := Composite(fg.WithAlpha(128), bg)
	if mid == fg || mid == bg {
		t.Errorf("half alpha should blend, got %v", mid)
	}
}

func TestLuminanceOrdering(t *testing.T) {
	dark := Luminance(core.RGB(0, 0, 0))
	light := Luminance(core.RGB(255, 255, 255))
	if dark >= light {
		t.Errorf("black (%v) should be darker than white (%v)", dark, light)
	}
}
