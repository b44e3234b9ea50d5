package query

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// Limit caps its child's output at the first N tuples.
type Limit struct {
	n     int
	child Operator
	tid   txn.TransactionID
	*lookahead
}

// NewLimit constructs a Limit operator yielding at most n tuples from child.
func NewLimit(n int, child Operator) *Limit {
	return &Limit{n: n, child: child}
}

func (l *Limit) Descriptor() *dbtype.TupleDesc { return l.child.Descriptor() }

func (l *Limit) Children() []Operator { return []Operator{l.child} }

func (l *Limit) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Limit takes exactly one child")
	}
	l.child = children[0]
}

func (l *Limit) Open(tid txn.TransactionID) error {
	if err := l.child.Open(tid); err != nil {
		return err
	}
	l.tid = tid
	next := pull(l.child)
	count := 0
	l.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		if count >= l.n {
			return nil, nil
		}
		t, err := next()
		if err != nil || t == nil {
			return t, err
		}
		count++
		return t, nil
	})
	return nil
}

func (l *Limit) Rewind() error {
	if err := l.child.Rewind(); err != nil {
		return err
	}
	return l.Open(l.tid)
}

func (l *Limit) Close() error {
	l.lookahead = nil
	return l.child.Close()
}
