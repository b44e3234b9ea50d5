// Package storage implements heapdb's on-disk heap file format: slotted
// pages with a bitmap header, and the sequential file of pages that holds a
// table's rows.
package storage

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// PageSize is the size in bytes of every page in every heap file. It is a
// package-level variable, not a constant, because the spec requires it be
// "globally configurable at process start; tests may reset it."
var PageSize = 4096

// PageID is a logical page address: which table, which page number within
// that table's file. It has value equality and is usable as a map key.
type PageID struct {
	TableID  int64
	PageNo int
}

// Page is the capability set the buffer pool needs from any cached page,
// regardless of storage format.
type Page interface {
	IsDirty() bool
	DirtiedBy() (txn.TransactionID, bool)
	SetDirty(tid txn.TransactionID, dirty bool)
	File() DBFile
	ID() PageID
	Serialize() ([]byte, error)
}

// DBFile is the on-disk file backing one table. HeapFile is the only
// implementation specified here.
type DBFile interface {
	TableID() int64
	PageKey(pageNo int) PageID
	NumPages() int
	Descriptor() *dbtype.TupleDesc
	ReadPage(pageNo int) (Page, error)
	WritePage(p Page) error

	// InsertTuple and DeleteTuple are invoked by the buffer pool; they
	// acquire each page they touch READ_WRITE through bp, and return the set
	// of pages whose in-memory image changed, for the buffer pool to mark
	// dirty and reinstate into its cache.
	InsertTuple(bp PageGetter, tid txn.TransactionID, t *dbtype.Tuple) ([]Page, error)
	DeleteTuple(bp PageGetter, tid txn.TransactionID, t *dbtype.Tuple) ([]Page, error)

	// Iterator returns a function yielding successive tuples for tid,
	// reading pages through bp. Calling the returned function after it has
	// yielded nil forever yields nil (closed iterators yield no more tuples).
	Iterator(bp PageGetter, tid txn.TransactionID) (func() (*dbtype.Tuple, error), error)
}

// PageGetter is the subset of BufferPool that a DBFile needs in order to
// fetch pages through the cache/lock layer instead of reading disk
// directly. buffer.BufferPool satisfies this interface; declaring it here
// (rather than importing package buffer) avoids an import cycle, since
// buffer imports storage.
type PageGetter interface {
	GetPage(tid txn.TransactionID, file DBFile, pageNo int, perm Perm) (Page, error)
}

// Perm is the permission a caller requests when fetching a page: read-only
// (shared lock) or read-write (exclusive lock).
type Perm int

const (
	ReadOnly Perm = iota
	ReadWrite
)
