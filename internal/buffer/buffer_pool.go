// Package buffer implements heapdb's BufferPool: a bounded, lock-manager-
// backed page cache sitting between the relational operators and the
// on-disk heap files.
package buffer

import (
	"context"
	"sync"
	"time"

	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
	"heapdb/internal/txn"

	"go.uber.org/zap"
)

// Options configures a BufferPool.
type Options struct {
	// Capacity is the maximum number of resident pages. Must be >= 1.
	Capacity int
	// AcquireTimeout bounds how long GetPage will wait for a page lock
	// before returning TransactionAborted. Zero means wait forever, per
	// the spec's base (non-deadlock-detecting) protocol.
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

// BufferPool is a bounded cache of at most Capacity pages, keyed by page
// id, with page-level S/X locking delegated to an internal LockManager.
type BufferPool struct {
	mu       sync.Mutex
	capacity int
	pages    map[storage.PageID]storage.Page
	dirtyBy  map[txn.TransactionID]map[storage.PageID]struct{}

	locks          *txn.LockManager[storage.PageID]
	acquireTimeout time.Duration
	log            *zap.Logger
}

// New constructs a BufferPool with the given capacity (must be >= 1).
func New(opts Options) *BufferPool {
	if opts.Capacity < 1 {
		opts.Capacity = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &BufferPool{
		capacity:       opts.Capacity,
		pages:          make(map[storage.PageID]storage.Page),
		dirtyBy:        make(map[txn.TransactionID]map[storage.PageID]struct{}),
		locks:          txn.NewLockManager[storage.PageID](log),
		acquireTimeout: opts.AcquireTimeout,
		log:            log,
	}
}

func toLockMode(perm storage.Perm) txn.Mode {
	if perm == storage.ReadWrite {
		return txn.Exclusive
	}
	return txn.Shared
}

// GetPage acquires the page lock (blocking per the lock manager's policy),
// then returns the page, loading it from disk (evicting a resident page
// first if the cache is full) if it isn't already cached.
func (bp *BufferPool) GetPage(tid txn.TransactionID, file storage.DBFile, pageNo int, perm storage.Perm) (storage.Page, error) {
	key := file.PageKey(pageNo)

	var ctx context.Context
	var cancel context.CancelFunc
	if bp.acquireTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), bp.acquireTimeout)
		defer cancel()
	}
	if err := bp.locks.Acquire(ctx, key, tid, toLockMode(perm)); err != nil {
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if p, ok := bp.pages[key]; ok {
		return p, nil
	}

	if len(bp.pages) >= bp.capacity {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	page, err := file.ReadPage(pageNo)
	if err != nil {
		return nil, err
	}
	bp.pages[key] = page
	bp.log.Debug("page fault", zap.Any("page", key))
	return page, nil
}

// evictLocked picks a resident page to discard, per the STEAL policy:
// flush it first if dirty, then drop it from the cache. Must be called
// with bp.mu held.
func (bp *BufferPool) evictLocked() error {
	for key, page := range bp.pages {
		if page.IsDirty() {
			bp.log.Warn("evicting dirty page (STEAL)", zap.Any("page", key))
			if err := page.File().WritePage(page); err != nil {
				return dberrors.Wrap(err, dberrors.InvalidPage, "flushing page %v before eviction", key)
			}
			page.SetDirty(txn.TransactionID{}, false)
		}
		delete(bp.pages, key)
		return nil
	}
	return nil
}

// markDirtyAndCache marks each page dirty under tid and reinstates it into
// the cache, evicting first if necessary and the page is not yet resident.
func (bp *BufferPool) markDirtyAndCache(tid txn.TransactionID, pages []storage.Page) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, p := range pages {
		key := p.ID()
		p.SetDirty(tid, true)

		if _, resident := bp.pages[key]; !resident && len(bp.pages) >= bp.capacity {
			bp.evictLocked()
		}
		bp.pages[key] = p

		if bp.dirtyBy[tid] == nil {
			bp.dirtyBy[tid] = make(map[storage.PageID]struct{})
		}
		bp.dirtyBy[tid][key] = struct{}{}
	}
}

// InsertTuple delegates to file.InsertTuple and reinstates the returned pages.
func (bp *BufferPool) InsertTuple(tid txn.TransactionID, file storage.DBFile, t *dbtype.Tuple) error {
	pages, err := file.InsertTuple(bp, tid, t)
	if err != nil {
		return err
	}
	bp.markDirtyAndCache(tid, pages)
	return nil
}

// DeleteTuple delegates to file.DeleteTuple, which locates the tuple's page
// and slot from its RecordID, and reinstates the returned pages.
func (bp *BufferPool) DeleteTuple(tid txn.TransactionID, file storage.DBFile, t *dbtype.Tuple) error {
	pages, err := file.DeleteTuple(bp, tid, t)
	if err != nil {
		return err
	}
	bp.markDirtyAndCache(tid, pages)
	return nil
}

// FlushPage writes the page back to disk via its owning file if resident
// and dirty, then clears its dirty bit. The page stays in cache.
func (bp *BufferPool) FlushPage(pid storage.PageID) error {
	bp.mu.Lock()
	page, ok := bp.pages[pid]
	bp.mu.Unlock()
	if !ok || !page.IsDirty() {
		return nil
	}
	if err := page.File().WritePage(page); err != nil {
		return err
	}
	page.SetDirty(txn.TransactionID{}, false)
	return nil
}

// FlushAllPages flushes every resident dirty page.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	ids := make([]storage.PageID, 0, len(bp.pages))
	for id := range bp.pages {
		ids = append(ids, id)
	}
	bp.mu.Unlock()

	for _, id := range ids {
		if err := bp.FlushPage(id); err != nil {
			return err
		}
	}
	return nil
}

// FlushPages writes to disk every page currently dirtied by tid (required
// for commit durability: unlike the teacher's source, this is not a no-op).
func (bp *BufferPool) FlushPages(tid txn.TransactionID) error {
	bp.mu.Lock()
	ids := make([]storage.PageID, 0, len(bp.dirtyBy[tid]))
	for id := range bp.dirtyBy[tid] {
		ids = append(ids, id)
	}
	bp.mu.Unlock()

	for _, id := range ids {
		if err := bp.FlushPage(id); err != nil {
			return err
		}
	}
	return nil
}

// DiscardPage removes pid from the cache without flushing it, forcing a
// re-read from disk on next access.
func (bp *BufferPool) DiscardPage(pid storage.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	delete(bp.pages, pid)
}

// ReleasePage is an explicit early lock release; dangerous, and the
// caller's responsibility to use correctly.
func (bp *BufferPool) ReleasePage(tid txn.TransactionID, pid storage.PageID) {
	bp.locks.Release(pid, tid)
}

// TransactionComplete ends tid. On commit, it flushes every page dirtied by
// tid before releasing its locks (durability). On abort, it discards every
// page dirtied by tid (forcing a re-read from disk) before releasing locks.
func (bp *BufferPool) TransactionComplete(tid txn.TransactionID, commit bool) error {
	bp.mu.Lock()
	dirtied := make([]storage.PageID, 0, len(bp.dirtyBy[tid]))
	for id := range bp.dirtyBy[tid] {
		dirtied = append(dirtied, id)
	}
	delete(bp.dirtyBy, tid)
	bp.mu.Unlock()

	if commit {
		for _, id := range dirtied {
			if err := bp.FlushPage(id); err != nil {
				return err
			}
		}
	} else {
		for _, id := range dirtied {
			bp.DiscardPage(id)
		}
	}

	bp.locks.ReleaseAll(tid)
	return nil
}
