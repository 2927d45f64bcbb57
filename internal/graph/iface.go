// Package graph defines the interfaces the query execution core consumes
// from its storage collaborator (spec §6). Concrete implementations live in
// internal/gstore (the required in-memory backend) and internal/pgstore (an
// optional Postgres-backed backend); operators, the shortest-path kernel,
// and the driver depend only on these interfaces.
package graph

import (
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// NodeRef is a lightweight, immutable view of a node version visible to a
// particular transaction: the attributes an operator needs without
// exposing the adjacency-list internals.
type NodeRef struct {
	ID    ids.NodeID
	Label ids.DictCode
}

// RelRef is a lightweight, immutable view of a relationship version.
type RelRef struct {
	ID     ids.RelID
	Label  ids.DictCode
	Src    ids.NodeID
	Dst    ids.NodeID
	Weight float64 // resolved weight, valid only when a weight key was requested
}

// EntityDescription is the materialized {id, label, properties} view spec
// §6 calls get_node_description/get_rship_description.
type EntityDescription struct {
	ID         uint64
	Label      string
	Properties map[string]tuple.Cell
}

// RelPredicate filters relationships during traversal; returning false skips
// the relationship entirely (spec §4.1/§4.2 "optional relationship-predicate
// filtering").
type RelPredicate func(RelRef) bool

// AlwaysTrue is the default relationship predicate.
func AlwaysTrue(RelRef) bool { return true }

// WeightFunc resolves the edge weight of a relationship for the weighted
// shortest-path variants (spec §4.2).
type WeightFunc func(RelRef) float64

// Index is a single-property index handle (spec §6 get_index/index_lookup).
// Index construction algorithms are explicitly out of scope (spec §1); this
// interface only describes the lookup surface the Scan/IndexScan operators
// consume.
type Index interface {
	Lookup(value tuple.Cell, visit func(ids.NodeID) bool) error
}

// PropertyInput is a single (key, value) pair supplied to AddNode,
// AddRelationship, or UpdateNode.
type PropertyInput struct {
	Key   string
	Value tuple.Cell
}

// GraphStore is the external collaborator the query execution core
// consumes (spec §6). It owns nodes, relationships, property sets, indices,
// and the string dictionary; it is never implemented by the core itself —
// internal/gstore's in-memory arena and internal/pgstore's Postgres adapter
// are the two backends the pack provides.
type GraphStore interface {
	// NodeCount returns the number of node-vector slots (including tombstoned
	// slots), for chunk-range scan planning (spec §6 "chunked vectors").
	NodeCount() int

	// NodeRange iterates the node-vector slots in [first, last), invoking
	// visit once for each node whose version is visible to xid. Stops early
	// if visit returns false.
	NodeRange(xid ids.XID, first, last int, visit func(NodeRef) bool) error

	// NodeByID resolves id to the version visible to xid (spec
	// get_valid_node_version).
	NodeByID(xid ids.XID, id ids.NodeID) (NodeRef, error)

	// RshipByID resolves id to the version visible to xid.
	RshipByID(xid ids.XID, id ids.RelID) (RelRef, error)

	// GetCode interns s to a dictionary code, allocating one if s is new.
	GetCode(s string) ids.DictCode

	// GetString is the inverse of GetCode.
	GetString(c ids.DictCode) (string, bool)

	// NodeDescription materializes the {id, label, properties} view of a node.
	NodeDescription(xid ids.XID, id ids.NodeID) (EntityDescription, error)

	// RshipDescription materializes the {id, label, properties} view of a relationship.
	RshipDescription(xid ids.XID, id ids.RelID) (EntityDescription, error)

	// GetNodeProperty resolves a single property of a node by key code.
	GetNodeProperty(xid ids.XID, id ids.NodeID, key ids.DictCode) (tuple.Cell, bool, error)

	// GetRelProperty resolves a single property of a relationship by key code.
	GetRelProperty(xid ids.XID, id ids.RelID, key ids.DictCode) (tuple.Cell, bool, error)

	// AddNode creates a node under xid (spec §6 add_node).
	AddNode(xid ids.XID, label ids.DictCode, props []PropertyInput) (ids.NodeID, error)

	// AddRelationship creates a relationship under xid (spec §6 add_relationship).
	AddRelationship(xid ids.XID, src, dst ids.NodeID, label ids.DictCode, props []PropertyInput) (ids.RelID, error)

	// UpdateNode merges props into an existing node's property set under xid.
	UpdateNode(xid ids.XID, id ids.NodeID, props []PropertyInput) error

	// DetachNode deletes every relationship incident to id under xid.
	DetachNode(xid ids.XID, id ids.NodeID) error

	// RemoveNode deletes id under xid; id must already be detached.
	RemoveNode(xid ids.XID, id ids.NodeID) error

	// DeleteRelationship deletes id under xid (spec §6 delete_relationship).
	DeleteRelationship(xid ids.XID, id ids.RelID) error

	// CommitDirtyNodes folds every node version xid wrote via UpdateNode
	// into its committed state, making it visible to new transactions. The
	// driver calls this right after the transaction manager records the
	// commit (spec §3 "versions mutated only by their owning transaction
	// until commit"); backends whose writes are already visible once
	// committed (e.g. pgstore, which defers to Postgres's own MVCC) may
	// make this a no-op.
	CommitDirtyNodes(xid ids.XID)

	// GetIndex returns the index handle for (label, property), if one exists.
	GetIndex(label ids.DictCode, property ids.DictCode) (Index, bool)

	// ForeachOutgoing walks n's outgoing relationships visible to xid
	// (spec §4.1 foreach_outgoing).
	ForeachOutgoing(xid ids.XID, n ids.NodeID, visit func(RelRef) bool) error

	// ForeachIncoming walks n's incoming relationships visible to xid
	// (spec §4.1 foreach_incoming).
	ForeachIncoming(xid ids.XID, n ids.NodeID, visit func(RelRef) bool) error

	// ForeachVariableOutgoing performs a BFS of depth [min, max] over
	// relationships labeled label, invoking visit with every traversed
	// relationship in BFS order (spec §4.1 variable_length_outgoing).
	ForeachVariableOutgoing(xid ids.XID, n ids.NodeID, label ids.DictCode, min, max int, visit func(RelRef) bool) error
}

// TransactionManager begins, commits, and aborts transactions (spec §6).
// Per-version visibility predicates are folded into GraphStore's traversal
// methods rather than exposed here, since every caller that needs them
// (adjacency traversal, shortest path) already goes through GraphStore.
type TransactionManager interface {
	Begin() ids.XID
	Commit(xid ids.XID) error
	Abort(xid ids.XID) error
}
