// Package core provides shared types for the renderer subsystem.
// This package breaks import cycles between the frame assembler,
// the row cache, and graphics backends.
package core

// CellMode discriminates what a GPU cell record draws. The mode
// determines which record fields are semantically meaningful and
// which draw pass the record belongs to.
type CellMode uint8

// Cell record modes.
const (
	// ModeBackground fills the cell with its background color.
	// Background records are the only records in the background pass.
	ModeBackground CellMode = iota

	// ModeGlyph draws a monochrome glyph tinted with the foreground color.
	ModeGlyph

	// ModeColorGlyph draws a color glyph (emoji, color fonts) as-is.
	ModeColorGlyph

	// ModeStrikethrough draws a strikethrough bar across the cell.
	ModeStrikethrough

	// Underline variants. The sprite is selected by the mode.
	ModeUnderline
	ModeUnderlineDouble
	ModeUnderlineDotted
	ModeUnderlineDashed
	ModeUnderlineCurly
)

// String returns the mode name.
func (m CellMode) String() string {
	switch m {
	case ModeBackground:
		return "bg"
	case ModeGlyph:
		return "glyph"
	case ModeColorGlyph:
		return "color-glyph"
	case ModeStrikethrough:
		return "strikethrough"
	case ModeUnderline:
		return "underline"
	case ModeUnderlineDouble:
		return "underline-double"
	case ModeUnderlineDotted:
		return "underline-dotted"
	case ModeUnderlineDashed:
		return "underline-dashed"
	case ModeUnderlineCurly:
		return "underline-curly"
	default:
		return "unknown"
	}
}

// IsBackground returns true if records of this mode belong to the
// background pass.
func (m CellMode) IsBackground() bool {
	return m == ModeBackground
}

// GlyphRect locates a pre-rendered glyph inside the atlas texture,
// plus the sub-cell pixel offset at which it should be placed.
// The zero value means "no glyph" (pure background records).
type GlyphRect struct {
	// X, Y are the atlas texture coordinates of the glyph bitmap.
	X, Y uint16

	// W, H are the glyph bitmap dimensions in pixels.
	W, H uint16

	// OffX, OffY are the pixel offsets from the cell origin.
	OffX, OffY int16
}

// IsZero returns true if the rect carries no glyph.
func (g GlyphRect) IsZero() bool {
	return g == GlyphRect{}
}

// Record is one GPU cell instance. The layout is fixed: fields are
// ordered largest-first so the struct packs without implicit padding
// and can be uploaded as a 26-byte instance attribute block.
//
// Lifetime: records are rebuilt or copied from the row cache every
// frame and never persist beyond one frame's two output sequences.
type Record struct {
	// Glyph is the atlas rect; zero for background records.
	Glyph GlyphRect

	// FG and BG are the packed foreground and background colors.
	FG RGBA
	BG RGBA

	// Col and Row are grid coordinates, not pixels.
	Col uint16
	Row uint16

	// Mode discriminates what this record draws.
	Mode CellMode

	// CellWidth is the cell-width multiplier: 1, or 2 for the leading
	// column of a wide character.
	CellWidth uint8
}

// GridSize is a terminal grid dimension in cells.
type GridSize struct {
	Cols int
	Rows int
}

// Cells returns the total number of cells in the grid.
func (g GridSize) Cells() int {
	return g.Cols * g.Rows
}

// ScreenSize is a surface dimension in pixels.
type ScreenSize struct {
	Width  int
	Height int
}

// CellSize is the pixel dimension of one grid cell.
type CellSize struct {
	Width  int
	Height int
}

// Padding is the pixel padding between the surface edge and the grid.
type Padding struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// GridFor computes the grid dimensions that fit a surface with the
// given cell size and padding. Dimensions never drop below 1x1.
func GridFor(screen ScreenSize, cell CellSize, pad Padding) GridSize {
	cols, rows := 1, 1
	if cell.Width > 0 {
		if c := (screen.Width - pad.Left - pad.Right) / cell.Width; c > 1 {
			cols = c
		}
	}
	if cell.Height > 0 {
		if r := (screen.Height - pad.Top - pad.Bottom) / cell.Height; r > 1 {
			rows = r
		}
	}
	return GridSize{Cols: cols, Rows: rows}
}
