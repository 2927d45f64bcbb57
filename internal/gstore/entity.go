package gstore

import "github.com/dbis-ilm/poseidon-go/internal/ids"

// node is the arena representation of a vertex (spec §3 Node). firstOut/
// firstIn are adjacency-list heads; firstPSet is the property-set chain
// head. dirtyPSet holds a pending, uncommitted property-set head while
// ver.ownerXID is locked for an update.
type node struct {
	label     ids.DictCode
	firstOut  ids.RelID
	firstIn   ids.RelID
	firstPSet ids.PSetID
	dirtyPSet ids.PSetID
	ver       versionHeader
}

// relationship is the arena representation of an edge (spec §3
// Relationship). nextOutOfSrc/nextInOfDst thread the singly-linked
// adjacency lists; each relationship appears exactly once in each list
// (spec §3 invariant), maintained by prepend-at-head insertion.
type relationship struct {
	label        ids.DictCode
	src          ids.NodeID
	dst          ids.NodeID
	nextOutOfSrc ids.RelID
	nextInOfDst  ids.RelID
	firstPSet    ids.PSetID
	ver          versionHeader
}

// currentPSet returns the property-set head this entity should read under
// xid: the dirty head if xid holds the write lock, else the committed head.
func (n *node) currentPSet(xid ids.XID) ids.PSetID {
	if n.ver.isLockedBy(xid) {
		return n.dirtyPSet
	}
	return n.firstPSet
}
