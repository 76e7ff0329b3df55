package grid

// Position is a viewport-relative cell position.
type Position struct {
	Row int
	Col int
}

// Selection is a selection range in viewport coordinates.
type Selection struct {
	// Start is the anchor point.
	Start Position
	// End is the active end.
	End Position
	// Rectangular selects a block instead of a stream.
	Rectangular bool
}

// Span is a half-open column range [Start, End) on one row.
type Span struct {
	Start int
	End   int
}

// IsEmpty returns true if the span covers no columns.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains returns true if the span covers the given column.
func (s Span) Contains(col int) bool {
	return col >= s.Start && col < s.End
}

// Normalize returns a selection where Start is always before End.
func (s Selection) Normalize() Selection {
	if s.Start.Row > s.End.Row ||
		(s.Start.Row == s.End.Row && s.Start.Col > s.End.Col) {
		return Selection{Start: s.End, End: s.Start, Rectangular: s.Rectangular}
	}
	return s
}

// RowSpan returns the portion of the selection intersecting the given
// row, clamped to [0, cols). Only the intersecting portion feeds the
// row's cache key, so a selection change on one row never invalidates
// cached output for unrelated rows.
func (s Selection) RowSpan(row, cols int) (Span, bool) {
	norm := s.Normalize()
	if row < norm.Start.Row || row > norm.End.Row {
		return Span{}, false
	}

	span := Span{Start: 0, End: cols}
	if s.Rectangular {
		lo, hi := norm.Start.Col, norm.End.Col
		if lo > hi {
			lo, hi = hi, lo
		}
		span.Start, span.End = lo, hi+1
	} else {
		if row == norm.Start.Row {
			span.Start = norm.Start.Col
		}
		if row == norm.End.Row {
			span.End = norm.End.Col + 1
		}
	}

	if span.Start < 0 {
		span.Start = 0
	}
	if span.End > cols {
		span.End = cols
	}
	if span.IsEmpty() {
		return Span{}, false
	}
	return span, true
}
