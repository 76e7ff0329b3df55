package grid

// Source provides lockable snapshot access to terminal state.
//
// Snapshot acquires whatever lock guards the terminal model, clones
// the visible viewport into an owned Snapshot, clears the per-row
// dirty flags it reports, and releases the lock before returning.
// The returned snapshot is exclusively owned by the caller; the
// source must not retain references into it.
//
// Dirty flags are collect-and-reset: a row reported dirty in one
// snapshot is reported clean in the next unless it changed again in
// between. The row cache relies on this to decide when a cached row
// may be reused.
type Source interface {
	Snapshot() (*Snapshot, error)
}

// Resizer is implemented by sources whose grid dimensions can change.
type Resizer interface {
	Resize(size GridSizeHint)
}

// GridSizeHint carries new grid dimensions to a resizable source.
type GridSizeHint struct {
	Cols int
	Rows int
}
