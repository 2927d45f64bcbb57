package filterexpr

import (
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// entityKind distinguishes which GraphStore accessor an Entity resolves
// Key leaves against (spec §4.5 "property lookups on the current
// node/relationship").
type entityKind int

const (
	nodeEntity entityKind = iota
	relEntity
)

// Entity is the current node or relationship a FilterTuple expression is
// evaluated against.
type Entity struct {
	kind entityKind
	node ids.NodeID
	rel  ids.RelID
}

// NodeEntity wraps a node id as the current entity.
func NodeEntity(id ids.NodeID) Entity { return Entity{kind: nodeEntity, node: id} }

// RelEntity wraps a relationship id as the current entity.
func RelEntity(id ids.RelID) Entity { return Entity{kind: relEntity, rel: id} }

// Property resolves key against entity, for callers outside this package
// that need the same by-name lookup a Key leaf performs (the Projection
// property(pos, key, result_type) item, spec §4.3).
func Property(store graph.GraphStore, xid ids.XID, entity Entity, key string) (tuple.Cell, error) {
	return entity.property(store, xid, key)
}

// property resolves key against e, per spec §4.5 "key lookup ... walk its
// property-set chain ... on match, interpret the value by its type tag" —
// that walk lives in the GraphStore implementation (gstore's property-set
// bucket chain); the evaluator only needs the by-name accessor.
func (e Entity) property(store graph.GraphStore, xid ids.XID, key string) (tuple.Cell, error) {
	code := store.GetCode(key)
	var (
		v   tuple.Cell
		ok  bool
		err error
	)
	switch e.kind {
	case nodeEntity:
		v, ok, err = store.GetNodeProperty(xid, e.node, code)
	case relEntity:
		v, ok, err = store.GetRelProperty(xid, e.rel, code)
	}
	if err != nil {
		return tuple.Null(), err
	}
	if !ok {
		return tuple.Null(), nil
	}
	return v, nil
}
