package lang

// Point is a zero-indexed line / UTF-16-agnostic byte column.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// Less reports whether p sorts lexicographically before other.
func (p Point) Less(other Point) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Column < other.Column
}

// Range identifies a symbol's declaration range. End is the exclusive
// end of the identifier token being described, not the whole body
// (spec 3 "Range invariants") except where noted otherwise (e.g. a
// function's outer Range used for scope bookkeeping).
type Range struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Valid reports Start <= End lexicographically.
func (r Range) Valid() bool {
	return r.Start == r.End || r.Start.Less(r.End)
}

// Contains reports whether r lies fully within outer.
func (r Range) Contains(outer Range) bool {
	return !r.Start.Less(outer.Start) && !outer.End.Less(r.End)
}
