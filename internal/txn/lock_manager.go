package txn

import (
	"context"
	"sync"
	"time"

	"heapdb/internal/dberrors"
	"go.uber.org/zap"
)

// Mode is a lock mode: shared (reader) or exclusive (writer).
type Mode int

const (
	Shared Mode = iota
	Exclusive
)

type holder struct {
	tid  TransactionID
	mode Mode
}

type pageLocks struct {
	mu      sync.Mutex
	cond    *sync.Cond
	holders []holder
}

// LockManager implements page-level S/X locks with upgrade, for any
// comparable key type (callers typically key by storage.PageID). It never
// detects deadlock; a caller that wants a bound on how long Acquire can
// block should pass a context with a deadline.
type LockManager[K comparable] struct {
	mu    sync.Mutex
	pages map[K]*pageLocks
	log   *zap.Logger
}

// NewLockManager constructs an empty LockManager. A nil logger disables logging.
func NewLockManager[K comparable](log *zap.Logger) *LockManager[K] {
	if log == nil {
		log = zap.NewNop()
	}
	return &LockManager[K]{pages: make(map[K]*pageLocks), log: log}
}

func (lm *LockManager[K]) entry(key K) *pageLocks {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	pl, ok := lm.pages[key]
	if !ok {
		pl = &pageLocks{}
		pl.cond = sync.NewCond(&pl.mu)
		lm.pages[key] = pl
	}
	return pl
}

// tryGrant applies the deterministic acquisition rules from a single
// evaluation of the current holder list. It must be called with pl.mu held.
func tryGrant[K comparable](pl *pageLocks, tid TransactionID, mode Mode) bool {
	if len(pl.holders) == 0 {
		pl.holders = append(pl.holders, holder{tid, mode})
		return true
	}

	for i, h := range pl.holders {
		if h.tid == tid {
			if h.mode == mode {
				return true // idempotent
			}
			if h.mode == Exclusive && mode == Shared {
				return true // X subsumes S
			}
			// h.mode == Shared, mode == Exclusive: upgrade iff sole holder
			if len(pl.holders) == 1 {
				pl.holders[i].mode = Exclusive
				return true
			}
			return false
		}
	}

	// tid holds nothing on this page yet; other transactions do.
	if mode == Shared {
		for _, h := range pl.holders {
			if h.mode != Shared {
				return false
			}
		}
		pl.holders = append(pl.holders, holder{tid, mode})
		return true
	}
	return false
}

// pollInterval bounds how long a timed Acquire can oversleep past its
// deadline while re-checking tryGrant.
const pollInterval = 2 * time.Millisecond

// Acquire blocks until tid holds mode on key, or ctx is done, in which case
// it returns a dberrors.TransactionAborted error. A nil ctx (or one with no
// deadline) blocks forever on the page's wake condition, matching the
// spec's base (non-deadlock-detecting) protocol; a ctx with a deadline is
// served by polling, since a condition variable cannot itself be interrupted
// by context cancellation.
func (lm *LockManager[K]) Acquire(ctx context.Context, key K, tid TransactionID, mode Mode) error {
	pl := lm.entry(key)

	if ctx != nil {
		if _, hasDeadline := ctx.Deadline(); hasDeadline {
			return lm.acquirePolling(ctx, pl, key, tid, mode)
		}
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()
	for !tryGrant(pl, tid, mode) {
		pl.cond.Wait()
	}
	return nil
}

func (lm *LockManager[K]) acquirePolling(ctx context.Context, pl *pageLocks, key K, tid TransactionID, mode Mode) error {
	for {
		pl.mu.Lock()
		if tryGrant(pl, tid, mode) {
			pl.mu.Unlock()
			return nil
		}
		pl.mu.Unlock()

		select {
		case <-ctx.Done():
			lm.log.Debug("lock acquire timed out", zap.Any("tid", tid), zap.Any("mode", mode))
			return dberrors.New(dberrors.TransactionAborted, "timed out waiting for lock on %v", key)
		case <-time.After(pollInterval):
		}
	}
}

// Release removes tid's hold on key, if any, and wakes waiters.
func (lm *LockManager[K]) Release(key K, tid TransactionID) {
	lm.mu.Lock()
	pl, ok := lm.pages[key]
	lm.mu.Unlock()
	if !ok {
		return
	}

	pl.mu.Lock()
	for i, h := range pl.holders {
		if h.tid == tid {
			pl.holders = append(pl.holders[:i], pl.holders[i+1:]...)
			break
		}
	}
	empty := len(pl.holders) == 0
	pl.mu.Unlock()
	pl.cond.Broadcast()

	if empty {
		lm.mu.Lock()
		if cur, ok := lm.pages[key]; ok && cur == pl {
			cur.mu.Lock()
			stillEmpty := len(cur.holders) == 0
			cur.mu.Unlock()
			if stillEmpty {
				delete(lm.pages, key)
			}
		}
		lm.mu.Unlock()
	}
}

// ReleaseAll releases every page tid holds across the whole manager.
func (lm *LockManager[K]) ReleaseAll(tid TransactionID) {
	lm.mu.Lock()
	keys := make([]K, 0, len(lm.pages))
	for k := range lm.pages {
		keys = append(keys, k)
	}
	lm.mu.Unlock()

	for _, k := range keys {
		lm.Release(k, tid)
	}
}

// Holds reports whether tid currently holds any lock on key.
func (lm *LockManager[K]) Holds(key K, tid TransactionID) bool {
	lm.mu.Lock()
	pl, ok := lm.pages[key]
	lm.mu.Unlock()
	if !ok {
		return false
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for _, h := range pl.holders {
		if h.tid == tid {
			return true
		}
	}
	return false
}

// AcquireTimeout is a convenience wrapper around Acquire using a fixed
// duration timeout instead of a caller-supplied context.
func (lm *LockManager[K]) AcquireTimeout(key K, tid TransactionID, mode Mode, timeout time.Duration) error {
	if timeout <= 0 {
		return lm.Acquire(nil, key, tid, mode)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return lm.Acquire(ctx, key, tid, mode)
}
