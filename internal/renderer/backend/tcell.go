package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/shape"
	"github.com/dshills/glint/internal/renderer/theme"
)

// Tcell is a software backend that renders record sequences into a
// tcell screen. It exists for headless debugging and CI: the same
// record stream a GPU backend would upload is replayed as terminal
// cells, which makes painter-ordering and color bugs visible without
// a GPU. Glyph rects are reverse-mapped to runes through the atlas.
type Tcell struct {
	mu     sync.Mutex
	screen tcell.Screen
	atlas  *shape.Atlas

	// clear is the screen clear color cells show where no background
	// record painted.
	clear core.RGBA

	inited bool
}

// NewTcell creates a tcell backend over the given screen and atlas.
// The screen must not be initialized yet.
func NewTcell(screen tcell.Screen, atlas *shape.Atlas) *Tcell {
	return &Tcell{screen: screen, atlas: atlas}
}

// Init initializes the underlying screen.
func (t *Tcell) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.inited = true
	return nil
}

// Shutdown finalizes the underlying screen.
func (t *Tcell) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inited {
		t.screen.Fini()
		t.inited = false
	}
}

// Screen returns the underlying tcell screen (event polling).
func (t *Tcell) Screen() tcell.Screen {
	return t.screen
}

// SetAtlas swaps the atlas used for reverse glyph lookup.
func (t *Tcell) SetAtlas(atlas *shape.Atlas) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.atlas = atlas
}

// SetClearColor sets the screen clear color.
func (t *Tcell) SetClearColor(c core.RGBA) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clear = c
}

// Caps implements Backend. Terminal output has no thread-bound
// context, so the render thread draws directly.
func (t *Tcell) Caps() Caps {
	return Caps{SingleThreadedDraw: false}
}

// DrawFrame implements Backend. Background records paint first, then
// foreground records resolve their runes through the atlas and paint
// on top.
func (t *Tcell) DrawFrame(bg, fg []core.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inited {
		return ErrNotInitialized
	}

	t.screen.Fill(' ', tcell.StyleDefault.Background(toTcellColor(t.clear)))

	for _, rec := range bg {
		color := rec.BG
		if color.A < 0xFF {
			// Terminals have no alpha; composite over the clear color.
			color = theme.Composite(color, t.clear)
		}
		style := tcell.StyleDefault.Background(toTcellColor(color))
		for i := 0; i < int(rec.CellWidth); i++ {
			t.screen.SetContent(int(rec.Col)+i, int(rec.Row), ' ', nil, style)
		}
	}

	for _, rec := range fg {
		t.drawForeground(rec)
	}

	t.screen.Show()
	return nil
}

// drawForeground paints one foreground-pass record.
func (t *Tcell) drawForeground(rec core.Record) {
	x, y := int(rec.Col), int(rec.Row)

	// Preserve whatever background already painted at this cell.
	_, _, prev, _ := t.screen.GetContent(x, y)
	_, bgColor, _ := prev.Decompose()
	style := tcell.StyleDefault.Background(bgColor)

	fgColor := rec.FG
	if fgColor.A < 0xFF {
		fgColor = theme.Composite(fgColor, colorOfTcell(bgColor))
	}
	style = style.Foreground(toTcellColor(fgColor))

	switch rec.Mode {
	case core.ModeGlyph, core.ModeColorGlyph:
		r, ok := t.atlas.Lookup(rec.Glyph)
		if !ok {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)

	case core.ModeUnderline, core.ModeUnderlineDouble, core.ModeUnderlineDotted,
		core.ModeUnderlineDashed, core.ModeUnderlineCurly:
		mainc, combc, prevStyle, _ := t.screen.GetContent(x, y)
		t.screen.SetContent(x, y, mainc, combc, prevStyle.Underline(true))

	case core.ModeStrikethrough:
		mainc, combc, prevStyle, _ := t.screen.GetContent(x, y)
		t.screen.SetContent(x, y, mainc, combc, prevStyle.StrikeThrough(true))
	}
}

// SetViewport implements Backend. tcell tracks its own size; the
// call only syncs the screen.
func (t *Tcell) SetViewport(_ core.ScreenSize, _ core.Padding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inited {
		t.screen.Sync()
	}
}

// UploadAtlas implements Backend. The software backend reads glyphs
// through the atlas reverse map, so the pixel upload is a no-op.
func (t *Tcell) UploadAtlas(_ []byte, _, _ int) error {
	return nil
}

// NeedsAnimation implements Backend.
func (t *Tcell) NeedsAnimation() bool {
	return false
}

// toTcellColor converts a packed RGBA to a tcell color.
func toTcellColor(c core.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// colorOfTcell converts a tcell color back to a packed RGBA.
func colorOfTcell(c tcell.Color) core.RGBA {
	r, g, b := c.RGB()
	return core.RGB(uint8(r), uint8(g), uint8(b))
}

var _ Backend = (*Tcell)(nil)
