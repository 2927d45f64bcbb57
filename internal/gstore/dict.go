package gstore

import (
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// dictionary interns strings (labels and string property values) to 32-bit
// codes (spec §2 "Identifier & dictionary interface"). The dictionary that
// backs a production GraphStore is named in spec §1 as an external
// collaborator; this in-memory map is the reference implementation used by
// internal/gstore and is intentionally simple — compression, persistence,
// and large-vocabulary tuning are out of scope.
type dictionary struct {
	mu       sync.RWMutex
	toCode   map[string]ids.DictCode
	toString []string
}

func newDictionary() *dictionary {
	return &dictionary{
		toCode:   make(map[string]ids.DictCode),
		toString: make([]string, 0, 64),
	}
}

// getCode interns s, allocating a new code if s has not been seen before.
func (d *dictionary) getCode(s string) ids.DictCode {
	d.mu.RLock()
	if c, ok := d.toCode[s]; ok {
		d.mu.RUnlock()
		return c
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.toCode[s]; ok {
		return c
	}
	c := ids.DictCode(len(d.toString))
	d.toString = append(d.toString, s)
	d.toCode[s] = c
	return c
}

// getString resolves c back to its string, per spec get_string.
func (d *dictionary) getString(c ids.DictCode) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(c) < 0 || int(c) >= len(d.toString) {
		return "", false
	}
	return d.toString[c], true
}
