package gstore

import (
	"fmt"
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
)

// noXID is the version-header sentinel meaning "not yet deleted"; distinct
// from ids.XID(0), which we never hand out (xids start at 1) so it also
// doubles as "no owner".
const noXID = ids.XID(^uint64(0))

type txnStatus int

const (
	txnActive txnStatus = iota
	txnCommitted
	txnAborted
)

type txnState struct {
	status  txnStatus
	touched []func() // rollback actions, run in reverse order on Abort
}

// TransactionManager is the in-memory implementation of
// internal/graph.TransactionManager. Visibility is read-committed plus
// see-own-writes (spec §3): a version is visible to xid once its creator is
// committed, or immediately if xid created it itself. This is a
// simplification of full snapshot isolation.
type TransactionManager struct {
	mu     sync.Mutex
	nextID uint64
	txns   map[ids.XID]*txnState
}

// NewTransactionManager creates an empty transaction manager.
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{
		nextID: 1,
		txns:   make(map[ids.XID]*txnState),
	}
}

// Begin allocates a fresh transaction id.
func (tm *TransactionManager) Begin() ids.XID {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	xid := ids.XID(tm.nextID)
	tm.nextID++
	tm.txns[xid] = &txnState{status: txnActive}
	return xid
}

// Commit marks xid committed, making its writes visible to subsequently
// reading transactions.
func (tm *TransactionManager) Commit(xid ids.XID) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	st, ok := tm.txns[xid]
	if !ok || st.status != txnActive {
		return fmt.Errorf("%w: commit of unknown or finished xid %d", qerrors.ErrTransactionAborted, xid)
	}
	st.status = txnCommitted
	return nil
}

// Abort marks xid aborted and runs its registered rollback actions in
// reverse order, undoing dirty versions it created (spec §4.7 "the driver
// aborts the transaction and surfaces the error").
func (tm *TransactionManager) Abort(xid ids.XID) error {
	tm.mu.Lock()
	st, ok := tm.txns[xid]
	if !ok || st.status != txnActive {
		tm.mu.Unlock()
		return fmt.Errorf("%w: abort of unknown or finished xid %d", qerrors.ErrTransactionAborted, xid)
	}
	actions := st.touched
	st.status = txnAborted
	tm.mu.Unlock()

	for i := len(actions) - 1; i >= 0; i-- {
		actions[i]()
	}
	return nil
}

// onRollback registers an undo action for xid, run if the transaction aborts.
func (tm *TransactionManager) onRollback(xid ids.XID, undo func()) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if st, ok := tm.txns[xid]; ok {
		st.touched = append(st.touched, undo)
	}
}

// isCommitted reports whether xid has committed.
func (tm *TransactionManager) isCommitted(xid ids.XID) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	st, ok := tm.txns[xid]
	return ok && st.status == txnCommitted
}

// isActive reports whether xid is a live, uncommitted transaction.
func (tm *TransactionManager) isActive(xid ids.XID) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	st, ok := tm.txns[xid]
	return ok && st.status == txnActive
}

// versionHeader is the MVCC header shared by nodes and relationships
// (spec §3): owner transaction (the holder of the write lock) and
// creation/deletion xids. The uncommitted dirty property set itself is held
// on node.dirtyPSet.
type versionHeader struct {
	ownerXID ids.XID // noXID when unlocked
	xmin     ids.XID
	xmax     ids.XID // noXID while alive
}

func newVersionHeader(creator ids.XID) versionHeader {
	return versionHeader{ownerXID: noXID, xmin: creator, xmax: noXID}
}

// isLockedBy reports whether xid currently holds the write lock for a
// dirty, uncommitted version of this entity (spec §9 "is_locked_by").
func (v versionHeader) isLockedBy(xid ids.XID) bool {
	return v.ownerXID != noXID && v.ownerXID == xid
}

// visibleTo implements spec §3's visibility invariant using the
// read-committed-plus-own-writes simplification documented on
// TransactionManager. A write lock held by another transaction does not hide
// the entity: its committed base version stays visible, and
// node.currentPSet hands the dirty property set only to the lock owner.
// Only UpdateNode takes the lock, so only nodes are ever locked.
func (v versionHeader) visibleTo(tm *TransactionManager, xid ids.XID) bool {
	if v.xmin != xid && !tm.isCommitted(v.xmin) {
		return false // creator hasn't committed and we didn't create it
	}
	if v.xmax != noXID {
		if v.xmax == xid {
			return false // we deleted it ourselves
		}
		if tm.isCommitted(v.xmax) {
			return false // someone else's committed delete
		}
	}
	return true
}
