package grouper_test

import (
	"testing"

	"github.com/dbis-ilm/poseidon-go/internal/grouper"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func tup(key string, amount int64) *tuple.Tuple {
	return tuple.NewTuple().Append(tuple.StringCell(key)).Append(tuple.IntCell(amount))
}

func TestAddToGroupAndFinish(t *testing.T) {
	g := grouper.New()
	g.AddToGroup("a", tup("a", 1))
	g.AddToGroup("b", tup("b", 2))
	g.AddToGroup("a", tup("a", 3))

	if got := g.GroupCount(); got != 2 {
		t.Fatalf("GroupCount() = %d, want 2", got)
	}
	if got := g.TotalCount(); got != 3 {
		t.Fatalf("TotalCount() = %d, want 3", got)
	}

	reps := g.Finish([]int{0})
	if len(reps) != 2 {
		t.Fatalf("Finish returned %d tuples, want 2", len(reps))
	}
	first, _ := reps[0].At(0).String()
	if first != "a" {
		t.Errorf("first group key = %q, want %q (first-seen order)", first, "a")
	}
}

func TestGroupByIdempotenceOnePerInput(t *testing.T) {
	g := grouper.New()
	for i := 0; i < 5; i++ {
		key := tup(string(rune('a'+i)), int64(i)).At(0)
		s, _ := key.String()
		g.AddToGroup(s, tup(s, int64(i)))
	}
	if got := g.GroupCount(); got != 5 {
		t.Fatalf("grouping by a distinct key per tuple: GroupCount() = %d, want 5", got)
	}
}

func TestAggregateComputations(t *testing.T) {
	g := grouper.New()
	g.AddToGroup("k", tup("k", 10))
	g.AddToGroup("k", tup("k", 20))
	g.AddToGroup("k", tup("k", 30))
	g.AddToGroup("other", tup("other", 1))

	group := g.Group(0)
	total := g.TotalCount()

	countCell, err := grouper.Compute(group, total, grouper.Count, 1)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	count, _ := countCell.Int()
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	sumCell, err := grouper.Compute(group, total, grouper.SumInt, 1)
	if err != nil {
		t.Fatalf("SumInt: %v", err)
	}
	sum, _ := sumCell.Int()
	if sum != 60 {
		t.Fatalf("sum = %d, want 60", sum)
	}

	avgCell, err := grouper.Compute(group, total, grouper.Avg, 1)
	if err != nil {
		t.Fatalf("Avg: %v", err)
	}
	avg, _ := avgCell.Double()
	if avg != 20 {
		t.Fatalf("avg = %v, want 20", avg)
	}

	pcountCell, err := grouper.Compute(group, total, grouper.PCount, 1)
	if err != nil {
		t.Fatalf("PCount: %v", err)
	}
	pcount, _ := pcountCell.Double()
	if pcount != 75 {
		t.Fatalf("pcount = %v, want 75 (3 of 4 total)", pcount)
	}
}
