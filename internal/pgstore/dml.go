package pgstore

import (
	"context"
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
)

// AddNode creates a node owned by xid (spec §6 add_node). Postgres's own
// read-committed isolation makes the new row visible to xid's transaction
// immediately and to others only after Commit, matching internal/gstore's
// "see own writes" rule without a version header.
func (s *Store) AddNode(xid ids.XID, label ids.DictCode, props []graph.PropertyInput) (ids.NodeID, error) {
	t, err := s.tx(xid)
	if err != nil {
		return ids.UnknownNode, err
	}
	propsJSON, err := encodeProps(props)
	if err != nil {
		return ids.UnknownNode, err
	}

	var id int64
	err = t.QueryRow(context.Background(),
		"INSERT INTO nodes (label, props) VALUES ($1, $2) RETURNING id",
		int32(label), propsJSON).Scan(&id)
	if err != nil {
		return ids.UnknownNode, fmt.Errorf("pgstore: AddNode: %w", err)
	}
	return ids.NodeID(id), nil
}

// AddRelationship creates a relationship from src to dst owned by xid
// (spec §6 add_relationship).
func (s *Store) AddRelationship(xid ids.XID, src, dst ids.NodeID, label ids.DictCode, props []graph.PropertyInput) (ids.RelID, error) {
	t, err := s.tx(xid)
	if err != nil {
		return ids.UnknownRel, err
	}
	propsJSON, err := encodeProps(props)
	if err != nil {
		return ids.UnknownRel, err
	}

	var id int64
	err = t.QueryRow(context.Background(),
		`INSERT INTO relationships (label, src, dst, props) VALUES ($1, $2, $3, $4) RETURNING id`,
		int32(label), int64(src), int64(dst), propsJSON).Scan(&id)
	if err != nil {
		return ids.UnknownRel, fmt.Errorf("pgstore: AddRelationship: %w", err)
	}
	return ids.RelID(id), nil
}

// UpdateNode merges props into node id's existing property set under xid.
func (s *Store) UpdateNode(xid ids.XID, id ids.NodeID, props []graph.PropertyInput) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}

	var existing []byte
	err = t.QueryRow(context.Background(),
		"SELECT props FROM nodes WHERE id = $1 AND NOT deleted FOR UPDATE", int64(id)).Scan(&existing)
	if err != nil {
		return fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}

	merged, err := mergeProps(existing, props)
	if err != nil {
		return err
	}

	_, err = t.Exec(context.Background(), "UPDATE nodes SET props = $1 WHERE id = $2", merged, int64(id))
	if err != nil {
		return fmt.Errorf("pgstore: UpdateNode: %w", err)
	}
	return nil
}

// DetachNode deletes every relationship incident to id under xid (spec
// §4.3 DetachNode; spec §3 "never deleted directly — logically detached
// first").
func (s *Store) DetachNode(xid ids.XID, id ids.NodeID) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}
	_, err = t.Exec(context.Background(),
		"UPDATE relationships SET deleted = TRUE WHERE (src = $1 OR dst = $1) AND NOT deleted", int64(id))
	if err != nil {
		return fmt.Errorf("pgstore: DetachNode: %w", err)
	}
	return nil
}

// RemoveNode tombstones id under xid; callers are expected to have
// detached it first (spec §3 Node lifecycle).
func (s *Store) RemoveNode(xid ids.XID, id ids.NodeID) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}
	tag, err := t.Exec(context.Background(),
		"UPDATE nodes SET deleted = TRUE WHERE id = $1 AND NOT deleted", int64(id))
	if err != nil {
		return fmt.Errorf("pgstore: RemoveNode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	return nil
}

// DeleteRelationship deletes id under xid (spec §6 delete_relationship).
func (s *Store) DeleteRelationship(xid ids.XID, id ids.RelID) error {
	t, err := s.tx(xid)
	if err != nil {
		return err
	}
	tag, err := t.Exec(context.Background(),
		"UPDATE relationships SET deleted = TRUE WHERE id = $1 AND NOT deleted", int64(id))
	if err != nil {
		return fmt.Errorf("pgstore: DeleteRelationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	return nil
}
