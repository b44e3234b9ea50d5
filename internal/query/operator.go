// Package query implements heapdb's iterator-model relational operators:
// Filter, Insert, Delete, Aggregate, and the supplemental Project/Limit.
package query

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// Operator is the pull-iterator capability set shared by every relational
// operator in the tree. Control flows pull-based from the root: a caller
// opens the root, then repeatedly checks HasNext/calls Next.
type Operator interface {
	// Open prepares the operator (and, transitively, its children) to
	// produce tuples for tid. Calling Open on an already-closed operator
	// re-initializes it (idempotent open).
	Open(tid txn.TransactionID) error
	HasNext() (bool, error)
	Next() (*dbtype.Tuple, error)
	Rewind() error
	Close() error
	Descriptor() *dbtype.TupleDesc
	Children() []Operator
	SetChildren(children ...Operator)
}

// pull adapts an already-open Operator into a single pull function, used
// internally by operators that drain a child.
func pull(op Operator) func() (*dbtype.Tuple, error) {
	return func() (*dbtype.Tuple, error) {
		ok, err := op.HasNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return op.Next()
	}
}
