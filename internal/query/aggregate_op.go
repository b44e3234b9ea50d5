package query

import (
	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// AggOp identifies which aggregate is computed per group.
type AggOp int

const (
	AggCount AggOp = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

// aggState accumulates one group's running value. sum/count are kept
// separate throughout (never collapsed into a running ratio) so AVG can be
// computed once, at emission time, per spec: "it must not average running
// averages."
type aggState struct {
	count int64
	sum   int64
	min   dbtype.Field
	max   dbtype.Field
}

func (s *aggState) merge(v dbtype.Field, op AggOp) error {
	s.count++
	switch op {
	case AggSum, AggAvg:
		iv, ok := v.(dbtype.IntField)
		if !ok {
			return dberrors.New(dberrors.UnsupportedOp, "%s requires an int field, got %s", opName(op), v.Type())
		}
		s.sum += iv.Value
	case AggMin:
		if s.min == nil {
			s.min = v
			return nil
		}
		lt, err := v.EvalPred(s.min, dbtype.OpLessThan)
		if err != nil {
			return dberrors.Wrap(err, dberrors.UnsupportedOp, "MIN comparison")
		}
		if lt {
			s.min = v
		}
	case AggMax:
		if s.max == nil {
			s.max = v
			return nil
		}
		gt, err := v.EvalPred(s.max, dbtype.OpGreaterThan)
		if err != nil {
			return dberrors.Wrap(err, dberrors.UnsupportedOp, "MAX comparison")
		}
		if gt {
			s.max = v
		}
	case AggCount:
		// count only; no value bookkeeping required.
	}
	return nil
}

func (s *aggState) emit(op AggOp) dbtype.Field {
	switch op {
	case AggCount:
		return dbtype.IntField{Value: s.count}
	case AggSum:
		return dbtype.IntField{Value: s.sum}
	case AggAvg:
		q := s.sum / s.count // Go division truncates toward zero
		if s.sum%s.count != 0 && s.sum < 0 {
			q-- // round a negative quotient down, so the result is the floor
		}
		return dbtype.IntField{Value: q}
	case AggMin:
		return s.min
	case AggMax:
		return s.max
	}
	return dbtype.IntField{}
}

func opName(op AggOp) string {
	switch op {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggAvg:
		return "AVG"
	}
	return "UNKNOWN"
}

// noGroupKey is the synthetic single-group key used when there is no
// group-by field.
type noGroupKey struct{}

// Aggregate computes one AggOp over AggField, optionally grouped by
// GroupField. With no GroupField, every tuple falls into a single group.
type Aggregate struct {
	child      Operator
	aggField   Expr
	groupField Expr // nil when ungrouped
	groupType  dbtype.DType
	op         AggOp
	desc       *dbtype.TupleDesc

	groups map[any]*aggState
	order  []any
	tid    txn.TransactionID

	*lookahead
}

// NewAggregate constructs a grouped or ungrouped aggregator. groupField may
// be nil for no grouping. groupType is the declared type of the group-by
// field (ignored when groupField is nil); merge fails with TypeMismatch if
// an input tuple's group-by field type differs from it.
func NewAggregate(op AggOp, aggField Expr, groupField Expr, groupType dbtype.DType, child Operator) (*Aggregate, error) {
	if (op == AggSum || op == AggAvg || op == AggMin || op == AggMax) && aggField.ExprType().Type == dbtype.StringType {
		return nil, dberrors.New(dberrors.UnsupportedOp, "%s is not supported over a string field", opName(op))
	}

	var desc *dbtype.TupleDesc
	if groupField == nil {
		desc = &dbtype.TupleDesc{Fields: []dbtype.FieldType{{Name: "aggregateVal", Type: dbtype.IntType}}}
	} else {
		desc = &dbtype.TupleDesc{Fields: []dbtype.FieldType{
			{Name: "groupVal", Type: groupType, MaxLen: groupField.ExprType().MaxLen},
			{Name: "aggregateVal", Type: dbtype.IntType},
		}}
	}

	return &Aggregate{
		child:      child,
		aggField:   aggField,
		groupField: groupField,
		groupType:  groupType,
		op:         op,
		desc:       desc,
	}, nil
}

func (a *Aggregate) Descriptor() *dbtype.TupleDesc { return a.desc }

func (a *Aggregate) Children() []Operator { return []Operator{a.child} }

func (a *Aggregate) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Aggregate takes exactly one child")
	}
	a.child = children[0]
}

// merge folds one input tuple into its group's accumulator.
func (a *Aggregate) merge(t *dbtype.Tuple) error {
	key, err := a.groupKey(t)
	if err != nil {
		return err
	}
	st, ok := a.groups[key]
	if !ok {
		st = &aggState{}
		a.groups[key] = st
		a.order = append(a.order, key)
	}
	v, err := a.aggField.EvalExpr(t)
	if err != nil {
		return err
	}
	return st.merge(v, a.op)
}

func (a *Aggregate) groupKey(t *dbtype.Tuple) (any, error) {
	if a.groupField == nil {
		return noGroupKey{}, nil
	}
	v, err := a.groupField.EvalExpr(t)
	if err != nil {
		return nil, err
	}
	if v.Type() != a.groupType {
		return nil, dberrors.New(dberrors.TypeMismatch, "group-by field is %s, declared type is %s", v.Type(), a.groupType)
	}
	switch v.Type() {
	case dbtype.IntType:
		return v.(dbtype.IntField).Value, nil
	default:
		return v.(dbtype.StringField).Value, nil
	}
}

func (a *Aggregate) resultTuple(key any) (*dbtype.Tuple, error) {
	st := a.groups[key]
	aggVal := st.emit(a.op)
	if a.groupField == nil {
		return dbtype.NewTuple(*a.desc, []dbtype.Field{aggVal})
	}
	var groupVal dbtype.Field
	switch a.groupType {
	case dbtype.IntType:
		groupVal = dbtype.IntField{Value: key.(int64)}
	default:
		groupVal = dbtype.StringField{Value: key.(string)}
	}
	return dbtype.NewTuple(*a.desc, []dbtype.Field{groupVal, aggVal})
}

// Open drains the child fully (a blocking, pipeline-breaking operator, as
// aggregation must be by its nature) and builds the per-group results.
func (a *Aggregate) Open(tid txn.TransactionID) error {
	if err := a.child.Open(tid); err != nil {
		return err
	}
	a.tid = tid
	a.groups = make(map[any]*aggState)
	a.order = nil

	next := pull(a.child)
	for {
		t, err := next()
		if err != nil {
			return err
		}
		if t == nil {
			break
		}
		if err := a.merge(t); err != nil {
			return err
		}
	}

	i := 0
	order := a.order
	a.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		if i >= len(order) {
			return nil, nil
		}
		key := order[i]
		i++
		return a.resultTuple(key)
	})
	return nil
}

func (a *Aggregate) Rewind() error {
	if err := a.child.Rewind(); err != nil {
		return err
	}
	return a.Open(a.tid)
}

func (a *Aggregate) Close() error {
	a.lookahead = nil
	a.groups = nil
	a.order = nil
	return a.child.Close()
}
