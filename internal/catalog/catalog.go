// Package catalog defines the directory-service interface that the query
// and statistics layers consume to resolve a table id to its backing file,
// schema, and name. The real catalog (persistence, DDL, name resolution)
// is an external collaborator per spec; this package provides only the
// interface and a minimal in-memory implementation for tests and
// standalone wiring.
package catalog

import (
	"sync"

	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
)

// Catalog maps a table id to its backing file, schema, and display name.
type Catalog interface {
	DatabaseFile(tableID int64) (storage.DBFile, error)
	TupleDesc(tableID int64) (*dbtype.TupleDesc, error)
	TableName(tableID int64) (string, error)
	TableIDs() []int64
}

type entry struct {
	name string
	file storage.DBFile
}

// Registry is a minimal in-memory Catalog, keyed by the table id that each
// registered file's TableID() reports.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]entry
	order   []int64
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]entry)}
}

// Add registers file under name, keyed by file.TableID().
func (r *Registry) Add(name string, file storage.DBFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := file.TableID()
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = entry{name: name, file: file}
}

func (r *Registry) DatabaseFile(tableID int64) (storage.DBFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tableID]
	if !ok {
		return nil, dberrors.New(dberrors.InvalidPage, "catalog: no table with id %d", tableID)
	}
	return e.file, nil
}

func (r *Registry) TupleDesc(tableID int64) (*dbtype.TupleDesc, error) {
	f, err := r.DatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	return f.Descriptor(), nil
}

func (r *Registry) TableName(tableID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tableID]
	if !ok {
		return "", dberrors.New(dberrors.InvalidPage, "catalog: no table with id %d", tableID)
	}
	return e.name, nil
}

// TableIDs returns every registered table id, in registration order.
func (r *Registry) TableIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, len(r.order))
	copy(ids, r.order)
	return ids
}
