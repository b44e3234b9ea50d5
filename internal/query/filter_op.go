package query

import (
	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// Predicate is a single binary comparison evaluated once per tuple (no
// redundant inner loop over fields, per spec: the teacher's Filter
// re-evaluates via a loop internal to field comparison; here EvalPred is
// called exactly once).
type Predicate struct {
	Left  Expr
	Op    dbtype.BoolOp
	Right Expr
}

func (p Predicate) Evaluate(t *dbtype.Tuple) (bool, error) {
	l, err := p.Left.EvalExpr(t)
	if err != nil {
		return false, err
	}
	r, err := p.Right.EvalExpr(t)
	if err != nil {
		return false, err
	}
	return l.EvalPred(r, p.Op)
}

// Filter yields the tuples of its child for which pred evaluates true.
type Filter struct {
	pred  Predicate
	child Operator
	*lookahead
}

// NewFilter constructs a Filter operator over child.
func NewFilter(pred Predicate, child Operator) *Filter {
	return &Filter{pred: pred, child: child}
}

func (f *Filter) Descriptor() *dbtype.TupleDesc { return f.child.Descriptor() }

func (f *Filter) Children() []Operator { return []Operator{f.child} }

func (f *Filter) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Filter takes exactly one child")
	}
	f.child = children[0]
}

func (f *Filter) Open(tid txn.TransactionID) error {
	if err := f.child.Open(tid); err != nil {
		return err
	}
	f.buildLookahead()
	return nil
}

func (f *Filter) buildLookahead() {
	next := pull(f.child)
	f.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		for {
			t, err := next()
			if err != nil || t == nil {
				return t, err
			}
			ok, err := f.pred.Evaluate(t)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	})
}

func (f *Filter) Rewind() error {
	if f.lookahead == nil {
		return dberrors.New(dberrors.TupleNotOnPage, "Filter: rewind before open")
	}
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.buildLookahead()
	return nil
}

func (f *Filter) Close() error {
	f.lookahead = nil
	return f.child.Close()
}
