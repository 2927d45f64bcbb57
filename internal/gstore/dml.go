package gstore

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
)

func (s *Store) propsPSet(props []graph.PropertyInput) ids.PSetID {
	head := ids.UnknownPSet
	for _, p := range props {
		key := s.dict.getCode(p.Key)
		head = s.psets.set(head, key, p.Value)
	}
	return head
}

// AddNode creates a node owned by xid (spec §6 add_node). The node is
// visible to xid immediately ("see own writes") and to other transactions
// once xid commits.
func (s *Store) AddNode(xid ids.XID, label ids.DictCode, props []graph.PropertyInput) (ids.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := node{
		label:     label,
		firstOut:  ids.UnknownRel,
		firstIn:   ids.UnknownRel,
		firstPSet: s.propsPSet(props),
		ver:       newVersionHeader(xid),
	}
	s.nodes = append(s.nodes, n)
	id := ids.NodeID(len(s.nodes) - 1)

	s.tm.onRollback(xid, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nodes[id].ver.xmax = xid // tombstone: never becomes visible to anyone
	})

	return id, nil
}

// AddRelationship creates a relationship from src to dst owned by xid (spec
// §6 add_relationship), prepending it into both adjacency lists so it
// appears exactly once in each (spec §3 invariant).
func (s *Store) AddRelationship(xid ids.XID, src, dst ids.NodeID, label ids.DictCode, props []graph.PropertyInput) (ids.RelID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcNode, err := s.nodeAt(src)
	if err != nil {
		return ids.UnknownRel, err
	}
	dstNode, err := s.nodeAt(dst)
	if err != nil {
		return ids.UnknownRel, err
	}

	r := relationship{
		label:        label,
		src:          src,
		dst:          dst,
		nextOutOfSrc: srcNode.firstOut,
		nextInOfDst:  dstNode.firstIn,
		firstPSet:    s.propsPSet(props),
		ver:          newVersionHeader(xid),
	}
	s.rels = append(s.rels, r)
	id := ids.RelID(len(s.rels) - 1)

	srcNode.firstOut = id
	dstNode.firstIn = id

	s.tm.onRollback(xid, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rels[id].ver.xmax = xid
	})

	return id, nil
}

// UpdateNode merges props into node id's property set under xid's write
// lock; the change is invisible to other transactions until xid commits
// (spec §4.3 DML operators, UpdateNode).
func (s *Store) UpdateNode(xid ids.XID, id ids.NodeID, props []graph.PropertyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.nodeAt(id)
	if err != nil {
		return err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	if n.ver.ownerXID != noXID && n.ver.ownerXID != xid {
		return fmt.Errorf("%w: node %d locked by another transaction", qerrors.ErrDeadlockDetected, id)
	}

	head := ids.UnknownPSet
	if n.ver.isLockedBy(xid) {
		head = n.dirtyPSet
	} else {
		// Copy the committed chain: set overwrites existing keys in place,
		// and those writes must land only in the dirty version.
		for _, it := range s.psets.all(n.firstPSet) {
			head = s.psets.set(head, it.key, it.value)
		}
	}
	for _, p := range props {
		key := s.dict.getCode(p.Key)
		head = s.psets.set(head, key, p.Value)
	}

	wasLocked := n.ver.isLockedBy(xid)
	n.dirtyPSet = head
	n.ver.ownerXID = xid

	if s.dirtyNodes[xid] == nil {
		s.dirtyNodes[xid] = make(map[ids.NodeID]bool)
	}
	s.dirtyNodes[xid][id] = true

	if !wasLocked {
		s.tm.onRollback(xid, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.nodes[id].ver.ownerXID = noXID
			s.nodes[id].dirtyPSet = ids.UnknownPSet
			delete(s.dirtyNodes[xid], id)
		})
	}
	return nil
}

// CommitDirtyNodes folds every dirty node version written by xid into its
// committed state. The driver calls this right after the transaction
// manager records the commit.
func (s *Store) CommitDirtyNodes(xid ids.XID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.dirtyNodes[xid] {
		n := &s.nodes[id]
		if n.ver.isLockedBy(xid) {
			n.firstPSet = n.dirtyPSet
			n.dirtyPSet = ids.UnknownPSet
			n.ver.ownerXID = noXID
		}
	}
	delete(s.dirtyNodes, xid)
}

// DetachNode deletes every relationship incident to id under xid (spec §4.3
// DetachNode): a node must be detached before RemoveNode per spec §3
// Node lifecycle ("never deleted directly — logically detached first").
func (s *Store) DetachNode(xid ids.XID, id ids.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.nodeAt(id)
	if err != nil {
		return err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}

	for rid := n.firstOut; rid.Valid(); {
		r := &s.rels[rid]
		next := r.nextOutOfSrc
		if r.ver.visibleTo(s.tm, xid) {
			s.deleteRelLocked(xid, rid)
		}
		rid = next
	}
	for rid := n.firstIn; rid.Valid(); {
		r := &s.rels[rid]
		next := r.nextInOfDst
		if r.ver.visibleTo(s.tm, xid) {
			s.deleteRelLocked(xid, rid)
		}
		rid = next
	}
	return nil
}

// RemoveNode tombstones id under xid; callers are expected to have detached
// it first (spec §3 Node lifecycle).
func (s *Store) RemoveNode(xid ids.XID, id ids.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.nodeAt(id)
	if err != nil {
		return err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	n.ver.xmax = xid
	return nil
}

// DeleteRelationship deletes id under xid (spec §6 delete_relationship).
func (s *Store) DeleteRelationship(xid ids.XID, id ids.RelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRelLocked(xid, id)
}

func (s *Store) deleteRelLocked(xid ids.XID, id ids.RelID) error {
	r, err := s.relAt(id)
	if err != nil {
		return err
	}
	if !r.ver.visibleTo(s.tm, xid) {
		return fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	r.ver.xmax = xid
	return nil
}
