package gstore

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// DefaultBucketSize is the fixed number of (key, value) items per
// property-set bucket, spec §3/§6 default of 3. It is a construction
// parameter of psetArena, not a hard limit (spec §3 "Property-bucket item
// count default 3").
const DefaultBucketSize = 3

type psetItem struct {
	key   ids.DictCode
	value tuple.Cell
}

// pset is one bucket in a property-set chain (spec §3 PropertySet). Buckets
// link via next; new buckets are prepended as the chain grows (spec §9
// "insert-at-head during growth"), mirroring global_definitions.cpp. items
// is capped at the owning arena's bucketSize.
type pset struct {
	items []psetItem
	next  ids.PSetID
}

// psetArena owns every property-set bucket, addressed by PSetID, for every
// node and relationship in the store.
type psetArena struct {
	bucketSize int
	buckets    []pset
}

// newPsetArena builds an arena using DefaultBucketSize.
func newPsetArena() *psetArena {
	return newPsetArenaWithBucketSize(DefaultBucketSize)
}

// newPsetArenaWithBucketSize builds an arena whose buckets hold at most n
// items each (spec §3 "a fixed small number, default 3").
func newPsetArenaWithBucketSize(n int) *psetArena {
	if n <= 0 {
		n = DefaultBucketSize
	}
	return &psetArena{bucketSize: n, buckets: make([]pset, 0, 64)}
}

func (a *psetArena) alloc(b pset) ids.PSetID {
	a.buckets = append(a.buckets, b)
	return ids.PSetID(len(a.buckets) - 1)
}

func (a *psetArena) get(id ids.PSetID) *pset {
	if !id.Valid() || int(id) >= len(a.buckets) {
		return nil
	}
	return &a.buckets[id]
}

// lookup walks the chain starting at head, linear-scanning each bucket's
// item array for key, per spec §4.5 "Key lookup on a node".
func (a *psetArena) lookup(head ids.PSetID, key ids.DictCode) (tuple.Cell, bool) {
	for id := head; id.Valid(); {
		b := a.get(id)
		if b == nil {
			return tuple.Null(), false
		}
		for _, it := range b.items {
			if it.key == key {
				return it.value, true
			}
		}
		id = b.next
	}
	return tuple.Null(), false
}

// all returns every (key, value) pair in the chain, for description views.
func (a *psetArena) all(head ids.PSetID) []psetItem {
	var out []psetItem
	for id := head; id.Valid(); {
		b := a.get(id)
		if b == nil {
			break
		}
		out = append(out, b.items...)
		id = b.next
	}
	return out
}

// set adds or overwrites key within the chain rooted at head, returning the
// (possibly new) head. Key uniqueness within the chain is maintained (spec
// §3 invariant): an existing key is overwritten in place; a new key is
// inserted into the head bucket if it has room, else a fresh bucket is
// prepended.
func (a *psetArena) set(head ids.PSetID, key ids.DictCode, value tuple.Cell) ids.PSetID {
	for id := head; id.Valid(); {
		b := a.get(id)
		for i := range b.items {
			if b.items[i].key == key {
				b.items[i].value = value
				return head
			}
		}
		id = b.next
	}

	if head.Valid() {
		b := a.get(head)
		if len(b.items) < a.bucketSize {
			b.items = append(b.items, psetItem{key: key, value: value})
			return head
		}
	}

	fresh := pset{
		items: append(make([]psetItem, 0, a.bucketSize), psetItem{key: key, value: value}),
		next:  head,
	}
	return a.alloc(fresh)
}

// describe renders the chain as a string-keyed map for EntityDescription,
// resolving codes back to names via dict.
func (a *psetArena) describe(dict *dictionary, head ids.PSetID) map[string]tuple.Cell {
	items := a.all(head)
	out := make(map[string]tuple.Cell, len(items))
	for _, it := range items {
		name, ok := dict.getString(it.key)
		if !ok {
			name = fmt.Sprintf("code:%d", it.key)
		}
		out[name] = it.value
	}
	return out
}
