// Package grid defines the terminal-state boundary of the renderer:
// the cell model, viewport snapshots, selection math, and the Source
// contract a terminal emulator must satisfy to be rendered.
package grid

// Attribute represents per-cell text attributes.
type Attribute uint16

// Cell attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrFaint                   // Dim text, rendered with reduced alpha
	AttrItalic                  // Italic text
	AttrInverse                 // Swap fg/bg
	AttrInvisible               // Glyph renders as its own background
	AttrStrikethrough           // Strikethrough bar
	AttrBlink                   // Blinking text (rarely supported)
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// UnderlineStyle selects the underline sprite for a cell.
type UnderlineStyle uint8

// Underline styles.
const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineDotted
	UnderlineDashed
	UnderlineCurly
)

// Color is a cell-space color: a true color, a palette index, or the
// terminal default. Resolution to a concrete RGBA happens against a
// theme at build time, never in the cell itself.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	// G and B are ignored in indexed mode.
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// IsDefault returns true if this is the default/inherited color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Cell represents a single terminal cell.
type Cell struct {
	// Rune is the character to display.
	// A value of 0 indicates a continuation cell (for wide characters).
	Rune rune

	// Width is the display width of this cell.
	// 0 for continuation cells, 1 for normal chars, 2 for wide chars.
	Width int

	// FG and BG are the cell's colors; default means "inherit theme".
	FG Color
	BG Color

	// Attrs are the text attribute flags.
	Attrs Attribute

	// Underline selects the underline sprite, if any.
	Underline UnderlineStyle

	// UnderlineColor overrides the underline color when not default.
	UnderlineColor Color
}

// EmptyCell returns an empty cell with default colors.
func EmptyCell() Cell {
	return Cell{
		Rune:           ' ',
		Width:          1,
		FG:             ColorDefault,
		BG:             ColorDefault,
		UnderlineColor: ColorDefault,
	}
}

// IsContinuation returns true if this is a continuation cell
// (trailing column of a wide character).
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// HasContent returns true if the cell carries a printable character.
func (c Cell) HasContent() bool {
	return c.Rune != 0 && c.Rune != ' '
}

// Equals returns true if two cells are identical.
func (c Cell) Equals(other Cell) bool {
	return c == other
}
