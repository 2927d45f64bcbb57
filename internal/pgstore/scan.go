package pgstore

import (
	"context"
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// NodeRange iterates node rows ordered by id in the row-index range
// [first, last), matching internal/gstore's vector-slot semantics closely
// enough for chunk-range scan planning even though Postgres rows aren't a
// dense array: OFFSET/LIMIT over an id-ordered scan gives the i-th visible
// row the same role a gstore vector slot would.
func (s *Store) NodeRange(xid ids.XID, first, last int, visit func(graph.NodeRef) bool) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}
	if last <= first {
		return nil
	}

	rows, err := t.Query(context.Background(),
		"SELECT id, label FROM nodes WHERE NOT deleted ORDER BY id OFFSET $1 LIMIT $2",
		first, last-first)
	if err != nil {
		return fmt.Errorf("pgstore: NodeRange query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var label int32
		if err := rows.Scan(&id, &label); err != nil {
			return fmt.Errorf("pgstore: NodeRange scan: %w", err)
		}
		if !visit(graph.NodeRef{ID: ids.NodeID(id), Label: ids.DictCode(label)}) {
			break
		}
	}
	return rows.Err()
}
