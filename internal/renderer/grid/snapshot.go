package grid

// RowID is a stable identifier for a row, distinct across the primary
// and alternate screen buffers. It survives scrolling so cached render
// output can be reused when a row merely changes viewport position.
type RowID uint64

// ScreenType identifies which screen buffer a row belongs to.
type ScreenType uint8

const (
	// ScreenPrimary is the normal scrollback-capable screen.
	ScreenPrimary ScreenType = iota
	// ScreenAlternate is the alt screen used by full-screen programs.
	ScreenAlternate
)

// Row is one visible row of the viewport.
type Row struct {
	// ID is the row's stable identity.
	ID RowID

	// Cells are the row's cells, left to right. Continuation cells
	// follow wide cells.
	Cells []Cell

	// Dirty indicates the row content changed since the last snapshot
	// and any cached render output for it must be rebuilt.
	Dirty bool
}

// CursorStyle defines how the cursor appears.
type CursorStyle uint8

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
)

// Cursor is the cursor state captured in a snapshot.
type Cursor struct {
	Col     int
	Row     int
	Visible bool
	Style   CursorStyle
}

// Snapshot is an exclusively-owned clone of the visible viewport,
// taken under the terminal lock and never mutated afterwards. All
// frame assembly runs against a snapshot so the terminal lock is
// released before any shaping or record building happens.
type Snapshot struct {
	// Rows are the visible rows, top to bottom.
	Rows []Row

	// Cols is the viewport width in cells.
	Cols int

	// Screen is the active screen buffer type.
	Screen ScreenType

	// Cursor is the cursor state at snapshot time.
	Cursor Cursor

	// Selection is the active selection translated to viewport
	// coordinates, or nil.
	Selection *Selection

	// BottomPinned is true when the viewport is live (pinned to the
	// bottom) rather than scrolled into history.
	BottomPinned bool
}

// RowCount returns the number of visible rows.
func (s *Snapshot) RowCount() int {
	return len(s.Rows)
}
