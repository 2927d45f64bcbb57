package pgstore

import (
	"context"
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// ForeachOutgoing walks n's outgoing relationships visible to xid (spec
// §4.1 foreach_outgoing).
func (s *Store) ForeachOutgoing(xid ids.XID, n ids.NodeID, visit func(graph.RelRef) bool) error {
	return s.foreachAdjacent(xid, "src", n, visit)
}

// ForeachIncoming walks n's incoming relationships visible to xid (spec
// §4.1 foreach_incoming).
func (s *Store) ForeachIncoming(xid ids.XID, n ids.NodeID, visit func(graph.RelRef) bool) error {
	return s.foreachAdjacent(xid, "dst", n, visit)
}

func (s *Store) foreachAdjacent(xid ids.XID, col string, n ids.NodeID, visit func(graph.RelRef) bool) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"SELECT id, label, src, dst, weight FROM relationships WHERE %s = $1 AND NOT deleted ORDER BY id", col)
	rows, err := t.Query(context.Background(), query, int64(n))
	if err != nil {
		return fmt.Errorf("pgstore: adjacency query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rel, err := scanRelRow(rows)
		if err != nil {
			return err
		}
		if !visit(rel) {
			break
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelRow(rows rowScanner) (graph.RelRef, error) {
	var id int64
	var label int32
	var src, dst int64
	var weight *float64
	if err := rows.Scan(&id, &label, &src, &dst, &weight); err != nil {
		return graph.RelRef{}, fmt.Errorf("pgstore: scanning relationship row: %w", err)
	}
	w := 0.0
	if weight != nil {
		w = *weight
	}
	return graph.RelRef{
		ID: ids.RelID(id), Label: ids.DictCode(label),
		Src: ids.NodeID(src), Dst: ids.NodeID(dst), Weight: w,
	}, nil
}

// ForeachVariableOutgoing performs a BFS of depth [min, max] over
// relationships labeled label, invoking visit with every traversed
// relationship in BFS order (spec §4.1 variable_length_outgoing). Each hop
// is one indexed adjacency query; depth is bounded by max so this never
// runs an unbounded recursive query against the database.
func (s *Store) ForeachVariableOutgoing(xid ids.XID, n ids.NodeID, label ids.DictCode, min, max int, visit func(graph.RelRef) bool) error {
	if max < min || max <= 0 {
		return nil
	}

	frontier := []ids.NodeID{n}
	visited := map[ids.NodeID]bool{n: true}

	for depth := 1; depth <= max; depth++ {
		var next []ids.NodeID
		for _, cur := range frontier {
			var rels []graph.RelRef
			err := s.foreachAdjacent(xid, "src", cur, func(r graph.RelRef) bool {
				if r.Label == label {
					rels = append(rels, r)
				}
				return true
			})
			if err != nil {
				return err
			}
			for _, r := range rels {
				if depth >= min {
					if !visit(r) {
						return nil
					}
				}
				if !visited[r.Dst] {
					visited[r.Dst] = true
					next = append(next, r.Dst)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
	return nil
}
