package query

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
	"heapdb/internal/txn"
)

// Mutator is the subset of *buffer.BufferPool that Insert and Delete need.
// Declaring it here (rather than importing package buffer) keeps query
// dependent only on storage/txn/dbtype.
type Mutator interface {
	storage.PageGetter
	InsertTuple(tid txn.TransactionID, file storage.DBFile, t *dbtype.Tuple) error
	DeleteTuple(tid txn.TransactionID, file storage.DBFile, t *dbtype.Tuple) error
}
