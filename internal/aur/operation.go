package aur

import (
	"context"
	"time"

	"github.com/auric-sh/auric/internal/transfer"
)

// operationKind labels an operation for logging and metrics.
type operationKind string

const (
	kindRpc      operationKind = "rpc"
	kindRawRpc   operationKind = "rpc-raw"
	kindTarball  operationKind = "tarball"
	kindPkgbuild operationKind = "pkgbuild"
	kindClone    operationKind = "clone"
)

// operation is the live unit of work created from a queued request. It owns
// the caller's callback (wrapped into dispatch, consumed exactly once) and
// the cancel func that aborts the underlying transfer or child process.
type operation struct {
	id       string
	kind     operationKind
	queuedAt time.Time
	cancel   context.CancelFunc

	// dispatch feeds the transport result into the response handler and the
	// caller's callback. It returns the callback's return code and the error
	// (if any) that was delivered to the callback.
	dispatch func(transfer.Result) (int, error)
}

// activeOps is the registry of in-flight operations. It doubles as the
// interest map: a completion event whose ID is absent here is spurious and
// must be dropped. Insertion order is retained so cancellation sweeps are
// deterministic.
type activeOps struct {
	ops   map[string]*operation
	order []string
}

func newActiveOps() *activeOps {
	return &activeOps{ops: make(map[string]*operation)}
}

func (a *activeOps) add(op *operation) {
	a.ops[op.id] = op
	a.order = append(a.order, op.id)
}

// remove deregisters and returns the operation, or nil if the ID is unknown.
func (a *activeOps) remove(id string) *operation {
	op, ok := a.ops[id]
	if !ok {
		return nil
	}
	delete(a.ops, id)
	return op
}

func (a *activeOps) isEmpty() bool { return len(a.ops) == 0 }

func (a *activeOps) len() int { return len(a.ops) }

// snapshotIDs returns the IDs of all registered operations in queue order.
// The compaction of the order slice happens here rather than in remove so
// that remove stays O(1) on the hot path.
func (a *activeOps) snapshotIDs() []string {
	live := a.order[:0]
	ids := make([]string, 0, len(a.ops))
	for _, id := range a.order {
		if _, ok := a.ops[id]; ok {
			live = append(live, id)
			ids = append(ids, id)
		}
	}
	a.order = live
	return ids
}
