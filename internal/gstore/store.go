// Package gstore implements the required, in-memory GraphStore and
// TransactionManager backends (internal/graph interfaces): an arena of
// nodes and relationships addressed by 64-bit offsets, singly-linked
// adjacency lists, bucketed property-set chains, and MVCC-style
// transactional visibility (spec §2–§3, §6, §9). It is grounded on
// `persistor/internal/store/{graph,node,edge}.go` for the surface-method
// shape, generalized from row-per-entity Postgres access to an in-process
// arena per spec §9's design notes.
package gstore

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Store is the in-memory GraphStore. Reads take the shared lock; every DML
// mutation takes the exclusive "graph mutator lock" per mutation (spec §5
// Shared-resource policy).
type Store struct {
	mu sync.RWMutex

	nodes []node
	rels  []relationship
	psets *psetArena
	dict  *dictionary

	// indices[label][property] -> index
	indices map[ids.DictCode]map[ids.DictCode]*hashIndex

	// dirtyNodes tracks, per transaction, which nodes have a pending
	// property update so CommitDirtyNodes need not scan the whole arena.
	dirtyNodes map[ids.XID]map[ids.NodeID]bool

	tm  *TransactionManager
	log *logrus.Logger
}

// New creates an empty in-memory store backed by tm, using
// DefaultBucketSize-item property-set buckets.
func New(tm *TransactionManager, log *logrus.Logger) *Store {
	return NewWithPropertyBucketSize(tm, log, DefaultBucketSize)
}

// NewWithPropertyBucketSize creates an empty in-memory store whose
// property-set buckets hold at most bucketSize items each (spec §3
// "Property-bucket item count default 3", a construction parameter, not a
// hard-coded constant).
func NewWithPropertyBucketSize(tm *TransactionManager, log *logrus.Logger, bucketSize int) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		nodes:      make([]node, 0, 256),
		rels:       make([]relationship, 0, 256),
		psets:      newPsetArenaWithBucketSize(bucketSize),
		dict:       newDictionary(),
		indices:    make(map[ids.DictCode]map[ids.DictCode]*hashIndex),
		dirtyNodes: make(map[ids.XID]map[ids.NodeID]bool),
		tm:         tm,
		log:        log,
	}
}

var _ graph.GraphStore = (*Store)(nil)

// GetCode interns s to a dictionary code.
func (s *Store) GetCode(str string) ids.DictCode { return s.dict.getCode(str) }

// GetString resolves c back to its string.
func (s *Store) GetString(c ids.DictCode) (string, bool) { return s.dict.getString(c) }

// NodeCount returns the number of node-vector slots.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) toNodeRef(id ids.NodeID, n *node) graph.NodeRef {
	return graph.NodeRef{ID: id, Label: n.label}
}

func (s *Store) toRelRef(id ids.RelID, r *relationship) graph.RelRef {
	return graph.RelRef{ID: id, Label: r.label, Src: r.src, Dst: r.dst}
}

// NodeRange iterates node-vector slots [first, last), visiting those whose
// version is visible to xid (spec §4.3 Scan "by labels" chunk-range scan).
func (s *Store) NodeRange(xid ids.XID, first, last int, visit func(graph.NodeRef) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if first < 0 {
		first = 0
	}
	if last > len(s.nodes) {
		last = len(s.nodes)
	}
	for i := first; i < last; i++ {
		n := &s.nodes[i]
		if !n.ver.visibleTo(s.tm, xid) {
			continue
		}
		if !visit(s.toNodeRef(ids.NodeID(i), n)) {
			return nil
		}
	}
	return nil
}

// NodeByID resolves id to the version visible to xid.
func (s *Store) NodeByID(xid ids.XID, id ids.NodeID) (graph.NodeRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.nodeAt(id)
	if err != nil {
		return graph.NodeRef{}, err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return graph.NodeRef{}, fmt.Errorf("%w: node %d not visible to xid %d", qerrors.ErrUnknownLabel, id, xid)
	}
	return s.toNodeRef(id, n), nil
}

// RshipByID resolves id to the version visible to xid.
func (s *Store) RshipByID(xid ids.XID, id ids.RelID) (graph.RelRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.relAt(id)
	if err != nil {
		return graph.RelRef{}, err
	}
	if !r.ver.visibleTo(s.tm, xid) {
		return graph.RelRef{}, fmt.Errorf("%w: relationship %d not visible to xid %d", qerrors.ErrUnknownLabel, id, xid)
	}
	return s.toRelRef(id, r), nil
}

func (s *Store) nodeAt(id ids.NodeID) (*node, error) {
	if !id.Valid() || int(id) >= len(s.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, errOutOfRange)
	}
	return &s.nodes[id], nil
}

func (s *Store) relAt(id ids.RelID) (*relationship, error) {
	if !id.Valid() || int(id) >= len(s.rels) {
		return nil, fmt.Errorf("relationship %d: %w", id, errOutOfRange)
	}
	return &s.rels[id], nil
}

var errOutOfRange = fmt.Errorf("id out of range")

// NodeDescription materializes {id, label, properties} for id (spec §6
// get_node_description).
func (s *Store) NodeDescription(xid ids.XID, id ids.NodeID) (graph.EntityDescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.nodeAt(id)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return graph.EntityDescription{}, fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	label, _ := s.dict.getString(n.label)
	return graph.EntityDescription{
		ID:         uint64(id),
		Label:      label,
		Properties: s.psets.describe(s.dict, n.currentPSet(xid)),
	}, nil
}

// RshipDescription materializes {id, label, properties} for id (spec §6
// get_rship_description).
func (s *Store) RshipDescription(xid ids.XID, id ids.RelID) (graph.EntityDescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.relAt(id)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	if !r.ver.visibleTo(s.tm, xid) {
		return graph.EntityDescription{}, fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	label, _ := s.dict.getString(r.label)
	return graph.EntityDescription{
		ID:         uint64(id),
		Label:      label,
		Properties: s.psets.describe(s.dict, r.firstPSet),
	}, nil
}

// GetNodeProperty resolves a single property by key code, preferring xid's
// dirty version when it holds the write lock (spec §4.5 key lookup).
func (s *Store) GetNodeProperty(xid ids.XID, id ids.NodeID, key ids.DictCode) (tuple.Cell, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.nodeAt(id)
	if err != nil {
		return tuple.Null(), false, err
	}
	if !n.ver.visibleTo(s.tm, xid) {
		return tuple.Null(), false, fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	v, ok := s.psets.lookup(n.currentPSet(xid), key)
	return v, ok, nil
}

// GetRelProperty resolves a single property of a relationship by key code.
func (s *Store) GetRelProperty(xid ids.XID, id ids.RelID, key ids.DictCode) (tuple.Cell, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.relAt(id)
	if err != nil {
		return tuple.Null(), false, err
	}
	if !r.ver.visibleTo(s.tm, xid) {
		return tuple.Null(), false, fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	v, ok := s.psets.lookup(r.firstPSet, key)
	return v, ok, nil
}

// GetIndex returns the index handle for (label, property), if one exists.
func (s *Store) GetIndex(label, property ids.DictCode) (graph.Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byProp, ok := s.indices[label]
	if !ok {
		return nil, false
	}
	idx, ok := byProp[property]
	if !ok {
		return nil, false
	}
	return idx, true
}

// EnsureIndex builds (or returns the existing) index on (label, property),
// backfilling it over every currently-committed node. Index construction
// algorithms are out of scope (spec §1); this is a minimal hash index
// sufficient to exercise IndexScan.
func (s *Store) EnsureIndex(xid ids.XID, label, property ids.DictCode) graph.Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	byProp, ok := s.indices[label]
	if !ok {
		byProp = make(map[ids.DictCode]*hashIndex)
		s.indices[label] = byProp
	}
	if idx, ok := byProp[property]; ok {
		return idx
	}

	idx := newHashIndex()
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.label != label || !n.ver.visibleTo(s.tm, xid) {
			continue
		}
		if v, ok := s.psets.lookup(n.currentPSet(xid), property); ok {
			idx.add(v, ids.NodeID(i))
		}
	}
	byProp[property] = idx
	return idx
}
