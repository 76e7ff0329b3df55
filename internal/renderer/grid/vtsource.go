package grid

import (
	"hash/fnv"
	"image/color"
	"sync"

	"github.com/charmbracelet/x/vt"
)

// SGR attribute bits as exposed by the vt emulator's cell styles.
const (
	vtAttrBold          = 1 << 0
	vtAttrFaint         = 1 << 1
	vtAttrItalic        = 1 << 2
	vtAttrReverse       = 1 << 5
	vtAttrConceal       = 1 << 6
	vtAttrStrikethrough = 1 << 7
)

// VTSource adapts a charmbracelet/x/vt emulator to the Source
// contract. It derives row identity from a content hash, so a row
// that scrolls to a new viewport position keeps its identity and its
// cached render output stays reusable.
type VTSource struct {
	mu  sync.Mutex
	emu *vt.SafeEmulator

	// forceDirty marks every row dirty in the next snapshot. Set on
	// theme or config changes that alter rendering without changing
	// cell content.
	forceDirty bool

	// prev holds the row hashes present in the last snapshot. A row
	// whose hash was not on screen last frame is reported dirty once;
	// a scrolled row keeps its hash and stays clean.
	prev map[RowID]struct{}

	// sel is the active selection in viewport coordinates, nil when
	// nothing is selected.
	sel *Selection
}

// NewVTSource creates a terminal source over a new vt emulator with
// the given grid dimensions.
func NewVTSource(cols, rows int) *VTSource {
	return &VTSource{emu: vt.NewSafeEmulator(cols, rows)}
}

// Write feeds PTY output bytes into the emulator.
func (v *VTSource) Write(p []byte) (int, error) {
	return v.emu.Write(p)
}

// Resize changes the emulator grid dimensions.
func (v *VTSource) Resize(size GridSizeHint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.emu.Resize(size.Cols, size.Rows)
}

// ForceDirty marks all rows dirty for the next snapshot.
func (v *VTSource) ForceDirty() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.forceDirty = true
}

// SetSelection replaces the active selection. Snapshots carry their
// own clone, so the caller keeps ownership of s.
func (v *VTSource) SetSelection(s Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sel := s
	v.sel = &sel
}

// ClearSelection removes the active selection.
func (v *VTSource) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel = nil
}

// Snapshot clones the visible viewport under the adapter lock.
func (v *VTSource) Snapshot() (*Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols := v.emu.Width()
	rows := v.emu.Height()

	fgDefault := v.emu.ForegroundColor()
	bgDefault := v.emu.BackgroundColor()

	snap := &Snapshot{
		Rows:         make([]Row, rows),
		Cols:         cols,
		Screen:       ScreenPrimary,
		BottomPinned: true,
	}

	for y := 0; y < rows; y++ {
		cells := make([]Cell, cols)
		for x := 0; x < cols; {
			vc := v.emu.CellAt(x, y)
			cell := EmptyCell()
			w := 1

			if vc != nil {
				if vc.Width > 1 {
					w = vc.Width
				}
				for _, r := range vc.Content {
					cell.Rune = r
					break
				}
				if cell.Rune == 0 {
					cell.Rune = ' '
				}
				cell.Width = w
				cell.FG = convertVTColor(vc.Style.Fg, fgDefault)
				cell.BG = convertVTColor(vc.Style.Bg, bgDefault)
				cell.Attrs = convertVTAttrs(uint8(vc.Style.Attrs))
				cell.Underline = convertVTUnderline(uint8(vc.Style.Underline))
				cell.UnderlineColor = convertVTColor(vc.Style.UnderlineColor, nil)
			}

			cells[x] = cell
			for i := x + 1; i < x+w && i < cols; i++ {
				cells[i] = Cell{}
			}
			x += w
		}

		id := hashRow(cells, snap.Screen)
		dirty := v.forceDirty
		if _, seen := v.prev[id]; !seen {
			dirty = true
		}
		snap.Rows[y] = Row{
			ID:    id,
			Cells: cells,
			Dirty: dirty,
		}
	}
	v.forceDirty = false

	v.prev = make(map[RowID]struct{}, rows)
	for y := range snap.Rows {
		v.prev[snap.Rows[y].ID] = struct{}{}
	}

	if v.sel != nil {
		sel := *v.sel
		snap.Selection = &sel
	}

	pos := v.emu.CursorPosition()
	snap.Cursor = Cursor{
		Col:     pos.X,
		Row:     pos.Y,
		Visible: true,
		Style:   CursorBlock,
	}

	return snap, nil
}

// convertVTColor maps an emulator color to a cell-space color. A nil
// color, or one equal to the emulator default, stays ColorDefault so
// theme resolution and background skipping behave correctly.
func convertVTColor(c, def color.Color) Color {
	if c == nil {
		return ColorDefault
	}
	if def != nil {
		r1, g1, b1, _ := c.RGBA()
		r2, g2, b2, _ := def.RGBA()
		if r1 == r2 && g1 == g2 && b1 == b2 {
			return ColorDefault
		}
	}
	r, g, b, _ := c.RGBA()
	return ColorFromRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// convertVTUnderline maps the emulator's SGR 4 / 4:x underline styles
// to cell underline styles.
func convertVTUnderline(u uint8) UnderlineStyle {
	switch u {
	case 1:
		return UnderlineSingle
	case 2:
		return UnderlineDouble
	case 3:
		return UnderlineCurly
	case 4:
		return UnderlineDotted
	case 5:
		return UnderlineDashed
	default:
		return UnderlineNone
	}
}

// convertVTAttrs maps emulator SGR bits to cell attributes.
func convertVTAttrs(attrs uint8) Attribute {
	var a Attribute
	if attrs&vtAttrBold != 0 {
		a = a.With(AttrBold)
	}
	if attrs&vtAttrFaint != 0 {
		a = a.With(AttrFaint)
	}
	if attrs&vtAttrItalic != 0 {
		a = a.With(AttrItalic)
	}
	if attrs&vtAttrReverse != 0 {
		a = a.With(AttrInverse)
	}
	if attrs&vtAttrConceal != 0 {
		a = a.With(AttrInvisible)
	}
	if attrs&vtAttrStrikethrough != 0 {
		a = a.With(AttrStrikethrough)
	}
	return a
}

// hashRow computes a row identity from cell content using FNV-1a.
// Two rows with equal identity render identically, so a hash-derived
// identity satisfies the cache-key contract by construction.
func hashRow(cells []Cell, screen ScreenType) RowID {
	h := fnv.New64a()
	var buf [8]byte
	buf[0] = byte(screen)
	_, _ = h.Write(buf[:1])
	for _, c := range cells {
		buf[0] = byte(c.Rune)
		buf[1] = byte(c.Rune >> 8)
		buf[2] = byte(c.Rune >> 16)
		buf[3] = byte(c.Attrs)
		buf[4] = byte(c.Attrs >> 8)
		buf[5] = byte(c.Underline)
		buf[6] = byte(c.Width)
		_, _ = h.Write(buf[:7])
		_, _ = h.Write([]byte{c.FG.R, c.FG.G, c.FG.B, flagByte(c.FG), c.BG.R, c.BG.G, c.BG.B, flagByte(c.BG)})
		_, _ = h.Write([]byte{c.UnderlineColor.R, c.UnderlineColor.G, c.UnderlineColor.B, flagByte(c.UnderlineColor)})
	}
	return RowID(h.Sum64())
}

func flagByte(c Color) byte {
	var b byte
	if c.Indexed {
		b |= 1
	}
	if c.Default {
		b |= 2
	}
	return b
}
