package tuple

import (
	"testing"

	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

func TestTupleAppendAndAt(t *testing.T) {
	tp := NewTuple().Append(NodeCell(1)).Append(IntCell(42))
	if tp.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tp.Len())
	}

	n, err := tp.At(0).Node()
	if err != nil || n != 1 {
		t.Fatalf("At(0).Node() = %v, %v", n, err)
	}

	i, err := tp.At(1).Int()
	if err != nil || i != 42 {
		t.Fatalf("At(1).Int() = %v, %v", i, err)
	}

	if !tp.At(5).IsNull() {
		t.Error("out-of-range At() should return null cell")
	}
}

func TestTupleConcat(t *testing.T) {
	left := NewTuple().Append(NodeCell(1))
	right := NewTuple().Append(NodeCell(2))

	combined := left.Concat(right)
	if combined.Len() != 2 {
		t.Fatalf("Concat Len() = %d, want 2", combined.Len())
	}

	// mutating left afterwards must not affect combined.
	left.Append(IntCell(99))
	if combined.Len() != 2 {
		t.Fatalf("Concat aliased backing array: Len() = %d", combined.Len())
	}
}

func TestTupleEqual(t *testing.T) {
	a := NewTuple().Append(NodeCell(1)).Append(StringCell("x"))
	b := NewTuple().Append(NodeCell(1)).Append(StringCell("x"))
	c := NewTuple().Append(NodeCell(1)).Append(StringCell("y"))

	if !a.Equal(b) {
		t.Error("equal tuples reported unequal")
	}
	if a.Equal(c) {
		t.Error("unequal tuples reported equal")
	}
}

func TestTupleKey(t *testing.T) {
	a := NewTuple().Append(NodeCell(1)).Append(IntCell(5)).Append(StringCell("x"))
	b := NewTuple().Append(NodeCell(1)).Append(IntCell(9)).Append(StringCell("x"))

	if a.Key([]int{0, 2}) != b.Key([]int{0, 2}) {
		t.Error("keys over positions 0,2 should match regardless of position 1")
	}
	if a.Key([]int{0, 1}) == b.Key([]int{0, 1}) {
		t.Error("keys including differing position 1 should not match")
	}
}

func TestResultSetAppendSortTruncate(t *testing.T) {
	rs := NewResultSet()
	rs.Append(NewTuple().Append(IntCell(3)))
	rs.Append(NewTuple().Append(IntCell(1)))
	rs.Append(NewTuple().Append(IntCell(2)))

	rs.Sort(func(a, b *Tuple) bool {
		av, _ := a.At(0).Int()
		bv, _ := b.At(0).Int()
		return av < bv
	})

	want := []int64{1, 2, 3}
	for i, w := range want {
		got, _ := rs.At(i).At(0).Int()
		if got != w {
			t.Fatalf("sorted[%d] = %d, want %d", i, got, w)
		}
	}

	rs.Truncate(2)
	if rs.Len() != 2 {
		t.Fatalf("Truncate: Len() = %d, want 2", rs.Len())
	}
}

func TestCellTextStableForGrouping(t *testing.T) {
	a := NodeArrayCell([]ids.NodeID{1, 2, 3})
	b := NodeArrayCell([]ids.NodeID{1, 2, 3})
	if a.Text() != b.Text() {
		t.Error("identical node arrays produced different Text()")
	}
}
