package tuple

// Tuple is the current row flowing through a pipeline. Producers build new
// cells onto its tail via Append; consumers read positional fields via
// At. A Tuple is a value-ish type: Clone copies the backing slice so two
// pipeline branches never alias the same storage (poseidon_core's qr_tuple
// is copied by value into side-tables for the same reason).
type Tuple struct {
	cells []Cell
}

// NewTuple creates an empty tuple.
func NewTuple() *Tuple { return &Tuple{} }

// Len returns the number of cells.
func (t *Tuple) Len() int { return len(t.cells) }

// At returns the cell at pos, or the null cell if out of range.
func (t *Tuple) At(pos int) Cell {
	if pos < 0 || pos >= len(t.cells) {
		return Null()
	}
	return t.cells[pos]
}

// Last returns the last cell, or the null cell if the tuple is empty.
func (t *Tuple) Last() Cell {
	if len(t.cells) == 0 {
		return Null()
	}
	return t.cells[len(t.cells)-1]
}

// Append appends a cell, returning the tuple for chaining.
func (t *Tuple) Append(c Cell) *Tuple {
	t.cells = append(t.cells, c)
	return t
}

// Cells returns the backing slice of cells (read-only use expected).
func (t *Tuple) Cells() []Cell { return t.cells }

// Clone returns a deep-enough copy: a new backing slice with the same cells.
func (t *Tuple) Clone() *Tuple {
	c := make([]Cell, len(t.cells))
	copy(c, t.cells)
	return &Tuple{cells: c}
}

// Concat returns a new tuple holding t's cells followed by other's cells,
// used by the join operators (spec §4.3).
func (t *Tuple) Concat(other *Tuple) *Tuple {
	c := make([]Cell, 0, len(t.cells)+len(other.cells))
	c = append(c, t.cells...)
	c = append(c, other.cells...)
	return &Tuple{cells: c}
}

// Equal reports structural equality of every cell, used by Distinct.
func (t *Tuple) Equal(other *Tuple) bool {
	if len(t.cells) != len(other.cells) {
		return false
	}
	for i := range t.cells {
		if !t.cells[i].Equal(other.cells[i]) {
			return false
		}
	}
	return true
}

// Key concatenates the textual form of the cells at positions, in order,
// forming the composite key string used by GroupBy (spec §4.3/§4.6).
func (t *Tuple) Key(positions []int) string {
	key := ""
	for _, p := range positions {
		key += t.At(p).Text() + "\x1f"
	}
	return key
}
