package query

import "heapdb/internal/dbtype"

// Expr evaluates to a Field given an input tuple. FieldExpr extracts the
// column at a fixed index; ConstExpr always returns the same value,
// regardless of input (including a nil tuple).
type Expr interface {
	EvalExpr(t *dbtype.Tuple) (dbtype.Field, error)
	ExprType() dbtype.FieldType
}

// FieldExpr extracts the field at Index from the input tuple.
type FieldExpr struct {
	Field dbtype.FieldType
	Index int
}

func (e FieldExpr) EvalExpr(t *dbtype.Tuple) (dbtype.Field, error) {
	return t.Fields[e.Index], nil
}

func (e FieldExpr) ExprType() dbtype.FieldType { return e.Field }

// ConstExpr always evaluates to the same value.
type ConstExpr struct {
	Value dbtype.Field
	Field dbtype.FieldType
}

func (e ConstExpr) EvalExpr(_ *dbtype.Tuple) (dbtype.Field, error) {
	return e.Value, nil
}

func (e ConstExpr) ExprType() dbtype.FieldType { return e.Field }
