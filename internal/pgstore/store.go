// Package pgstore is the optional Postgres-backed graph.GraphStore
// implementation (spec §4.2/§6 "backing store is pluggable"), grounded on
// persistor/internal/store's node/edge/dictionary tables but using a single
// jsonb props column per row instead of a separate property-set table, and
// leaning on Postgres's own transaction isolation (READ COMMITTED, one real
// pgx.Tx per ids.XID) instead of reimplementing internal/gstore's xmin/xmax
// version-header MVCC: a pluggable backend earns its keep by trading the
// in-memory backend's hand-rolled concurrency control for the database's.
package pgstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Store is a Postgres-backed graph.GraphStore and graph.TransactionManager.
type Store struct {
	pool *dbpool.Pool
	log  *logrus.Logger

	mu      sync.RWMutex
	dictFwd map[string]ids.DictCode
	dictRev map[ids.DictCode]string

	nextXID atomic.Uint64
	txMu    sync.Mutex
	txs     map[ids.XID]pgx.Tx
}

// New returns a Store backed by pool, loading the dictionary cache.
func New(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) (*Store, error) {
	s := &Store{
		pool:    pool,
		log:     log,
		dictFwd: make(map[string]ids.DictCode),
		dictRev: make(map[ids.DictCode]string),
		txs:     make(map[ids.XID]pgx.Tx),
	}
	if err := s.loadDictionary(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadDictionary(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, "SELECT code, value FROM dictionary")
	if err != nil {
		return fmt.Errorf("pgstore: loading dictionary: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var code int32
		var value string
		if err := rows.Scan(&code, &value); err != nil {
			return fmt.Errorf("pgstore: scanning dictionary row: %w", err)
		}
		s.dictFwd[value] = ids.DictCode(code)
		s.dictRev[ids.DictCode(code)] = value
	}
	return rows.Err()
}

// GetCode interns s to a dictionary code, allocating one if new.
func (s *Store) GetCode(str string) ids.DictCode {
	s.mu.RLock()
	if code, ok := s.dictFwd[str]; ok {
		s.mu.RUnlock()
		return code
	}
	s.mu.RUnlock()

	ctx := context.Background()
	var code int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO dictionary (value) VALUES ($1)
		 ON CONFLICT (value) DO UPDATE SET value = EXCLUDED.value
		 RETURNING code`, str).Scan(&code)
	if err != nil {
		s.log.WithError(err).WithField("value", str).Error("pgstore: interning dictionary code failed")
		return ids.UnknownCode
	}

	s.mu.Lock()
	s.dictFwd[str] = ids.DictCode(code)
	s.dictRev[ids.DictCode(code)] = str
	s.mu.Unlock()
	return ids.DictCode(code)
}

// GetString is the inverse of GetCode.
func (s *Store) GetString(c ids.DictCode) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	str, ok := s.dictRev[c]
	return str, ok
}

// Begin opens a fresh Postgres transaction and assigns it an XID.
func (s *Store) Begin() ids.XID {
	xid := ids.XID(s.nextXID.Add(1))

	tx, err := s.pool.Begin(context.Background())
	if err != nil {
		s.log.WithError(err).Error("pgstore: beginning transaction failed")
		return xid
	}

	s.txMu.Lock()
	s.txs[xid] = tx
	s.txMu.Unlock()
	return xid
}

// Commit commits xid's transaction.
func (s *Store) Commit(xid ids.XID) error {
	tx := s.takeTx(xid)
	if tx == nil {
		return fmt.Errorf("%w: xid %d", qerrors.ErrDeadlockDetected, xid)
	}
	if err := tx.Commit(context.Background()); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	return nil
}

// Abort rolls back xid's transaction.
func (s *Store) Abort(xid ids.XID) error {
	tx := s.takeTx(xid)
	if tx == nil {
		return nil
	}
	if err := tx.Rollback(context.Background()); err != nil {
		return fmt.Errorf("pgstore: rollback: %w", err)
	}
	return nil
}

func (s *Store) takeTx(xid ids.XID) pgx.Tx {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	tx := s.txs[xid]
	delete(s.txs, xid)
	return tx
}

func (s *Store) tx(xid ids.XID) (pgx.Tx, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	tx, ok := s.txs[xid]
	if !ok {
		return nil, fmt.Errorf("%w: no open transaction for xid %d", qerrors.ErrDeadlockDetected, xid)
	}
	return tx, nil
}

// NodeCount returns the number of node rows, deleted or not (spec's
// "chunked vectors" slot count); deleted rows are tombstones, not reclaimed.
func (s *Store) NodeCount() int {
	var n int
	if err := s.pool.QueryRow(context.Background(), "SELECT count(*) FROM nodes").Scan(&n); err != nil {
		s.log.WithError(err).Error("pgstore: NodeCount query failed")
		return 0
	}
	return n
}

// NodeByID resolves id visible to xid.
func (s *Store) NodeByID(xid ids.XID, id ids.NodeID) (graph.NodeRef, error) {
	t, err := s.tx(xid)
	if err != nil {
		return graph.NodeRef{}, err
	}
	var label int32
	err = t.QueryRow(context.Background(),
		"SELECT label FROM nodes WHERE id = $1 AND NOT deleted", int64(id)).Scan(&label)
	if err != nil {
		return graph.NodeRef{}, fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	return graph.NodeRef{ID: id, Label: ids.DictCode(label)}, nil
}

// RshipByID resolves id visible to xid.
func (s *Store) RshipByID(xid ids.XID, id ids.RelID) (graph.RelRef, error) {
	t, err := s.tx(xid)
	if err != nil {
		return graph.RelRef{}, err
	}
	var label int32
	var src, dst int64
	var weight *float64
	err = t.QueryRow(context.Background(),
		"SELECT label, src, dst, weight FROM relationships WHERE id = $1 AND NOT deleted", int64(id)).
		Scan(&label, &src, &dst, &weight)
	if err != nil {
		return graph.RelRef{}, fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	w := 0.0
	if weight != nil {
		w = *weight
	}
	return graph.RelRef{
		ID: id, Label: ids.DictCode(label),
		Src: ids.NodeID(src), Dst: ids.NodeID(dst), Weight: w,
	}, nil
}

// NodeDescription materializes the {id, label, properties} view of a node.
func (s *Store) NodeDescription(xid ids.XID, id ids.NodeID) (graph.EntityDescription, error) {
	t, err := s.tx(xid)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	var label int32
	var props []byte
	err = t.QueryRow(context.Background(),
		"SELECT label, props FROM nodes WHERE id = $1 AND NOT deleted", int64(id)).Scan(&label, &props)
	if err != nil {
		return graph.EntityDescription{}, fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	labelStr, _ := s.GetString(ids.DictCode(label))
	propsMap, err := decodeProps(props)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	return graph.EntityDescription{ID: uint64(id), Label: labelStr, Properties: propsMap}, nil
}

// RshipDescription materializes the {id, label, properties} view of a relationship.
func (s *Store) RshipDescription(xid ids.XID, id ids.RelID) (graph.EntityDescription, error) {
	t, err := s.tx(xid)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	var label int32
	var props []byte
	err = t.QueryRow(context.Background(),
		"SELECT label, props FROM relationships WHERE id = $1 AND NOT deleted", int64(id)).Scan(&label, &props)
	if err != nil {
		return graph.EntityDescription{}, fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	labelStr, _ := s.GetString(ids.DictCode(label))
	propsMap, err := decodeProps(props)
	if err != nil {
		return graph.EntityDescription{}, err
	}
	return graph.EntityDescription{ID: uint64(id), Label: labelStr, Properties: propsMap}, nil
}

// GetNodeProperty resolves a single property of a node by key code.
func (s *Store) GetNodeProperty(xid ids.XID, id ids.NodeID, key ids.DictCode) (tuple.Cell, bool, error) {
	t, err := s.tx(xid)
	if err != nil {
		return tuple.Cell{}, false, err
	}
	keyStr, ok := s.GetString(key)
	if !ok {
		return tuple.Null(), false, nil
	}
	var props []byte
	err = t.QueryRow(context.Background(),
		"SELECT props FROM nodes WHERE id = $1 AND NOT deleted", int64(id)).Scan(&props)
	if err != nil {
		return tuple.Cell{}, false, fmt.Errorf("%w: node %d", qerrors.ErrUnknownLabel, id)
	}
	return decodePropValue(props, keyStr)
}

// GetRelProperty resolves a single property of a relationship by key code.
func (s *Store) GetRelProperty(xid ids.XID, id ids.RelID, key ids.DictCode) (tuple.Cell, bool, error) {
	t, err := s.tx(xid)
	if err != nil {
		return tuple.Cell{}, false, err
	}
	keyStr, ok := s.GetString(key)
	if !ok {
		return tuple.Null(), false, nil
	}
	var props []byte
	err = t.QueryRow(context.Background(),
		"SELECT props FROM relationships WHERE id = $1 AND NOT deleted", int64(id)).Scan(&props)
	if err != nil {
		return tuple.Cell{}, false, fmt.Errorf("%w: relationship %d", qerrors.ErrUnknownLabel, id)
	}
	return decodePropValue(props, keyStr)
}

// GetIndex always reports no index: this backend builds no property
// indexes (internal/gstore, by contrast, builds them via EnsureIndex).
func (s *Store) GetIndex(ids.DictCode, ids.DictCode) (graph.Index, bool) {
	return nil, false
}

// CommitDirtyNodes is a no-op: UpdateNode already commits its row update
// inside xid's pgx.Tx, so Postgres's own MVCC makes it visible to new
// readers the moment Commit returns. There is no separate dirty-version
// bucket to fold in, unlike internal/gstore's in-memory arena.
func (s *Store) CommitDirtyNodes(ids.XID) {}
