package grouper

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Kind identifies which per-group aggregate to compute (spec §4.6
// Aggregate: "count, pcount = 100*count/total, sum/int|double|uint,
// avg = sum/count").
type Kind int

const (
	Count Kind = iota
	PCount
	SumInt
	SumDouble
	SumUint
	Avg
)

// Compute evaluates kind over group, resolving numeric cells at pos for
// the sum/avg variants. totalCount is the denominator for PCount (spec
// §4.6 "pcount = 100*count/total").
func Compute(group *tuple.ResultSet, totalCount int, kind Kind, pos int) (tuple.Cell, error) {
	n := group.Len()
	switch kind {
	case Count:
		return tuple.IntCell(int64(n)), nil
	case PCount:
		if totalCount == 0 {
			return tuple.DoubleCell(0), nil
		}
		return tuple.DoubleCell(100 * float64(n) / float64(totalCount)), nil
	case SumInt:
		var sum int64
		for i := 0; i < n; i++ {
			v, err := group.At(i).At(pos).Int()
			if err != nil {
				return tuple.Null(), fmt.Errorf("grouper: sum/int at position %d: %w", pos, err)
			}
			sum += v
		}
		return tuple.IntCell(sum), nil
	case SumDouble:
		var sum float64
		for i := 0; i < n; i++ {
			v, err := group.At(i).At(pos).Double()
			if err != nil {
				return tuple.Null(), fmt.Errorf("grouper: sum/double at position %d: %w", pos, err)
			}
			sum += v
		}
		return tuple.DoubleCell(sum), nil
	case SumUint:
		var sum uint64
		for i := 0; i < n; i++ {
			v, err := group.At(i).At(pos).Uint()
			if err != nil {
				return tuple.Null(), fmt.Errorf("grouper: sum/uint at position %d: %w", pos, err)
			}
			sum += v
		}
		return tuple.UintCell(sum), nil
	case Avg:
		if n == 0 {
			return tuple.DoubleCell(0), nil
		}
		sumCell, err := Compute(group, totalCount, SumDouble, pos)
		if err != nil {
			return tuple.Null(), err
		}
		sum, _ := sumCell.Double()
		return tuple.DoubleCell(sum / float64(n)), nil
	default:
		return tuple.Null(), fmt.Errorf("grouper: unknown aggregate kind %d", kind)
	}
}
