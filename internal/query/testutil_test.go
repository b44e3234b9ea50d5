package query_test

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/query"
	"heapdb/internal/txn"
)

// sliceOp is a leaf Operator over an in-memory slice of tuples, used to
// test operators that sit above a scan without needing a real heap file.
type sliceOp struct {
	desc   *dbtype.TupleDesc
	source []*dbtype.Tuple
	pos    int
}

func newSliceOp(desc *dbtype.TupleDesc, tuples []*dbtype.Tuple) *sliceOp {
	return &sliceOp{desc: desc, source: tuples}
}

func (s *sliceOp) Descriptor() *dbtype.TupleDesc { return s.desc }
func (s *sliceOp) Children() []query.Operator    { return nil }
func (s *sliceOp) SetChildren(...query.Operator) { panic("sliceOp takes no children") }

func (s *sliceOp) Open(_ txn.TransactionID) error {
	s.pos = 0
	return nil
}

func (s *sliceOp) Rewind() error {
	s.pos = 0
	return nil
}

func (s *sliceOp) Close() error { return nil }

func (s *sliceOp) HasNext() (bool, error) { return s.pos < len(s.source), nil }

func (s *sliceOp) Next() (*dbtype.Tuple, error) {
	t := s.source[s.pos]
	s.pos++
	return t, nil
}

func intStringDesc() *dbtype.TupleDesc {
	return &dbtype.TupleDesc{Fields: []dbtype.FieldType{
		{Name: "g", Type: dbtype.StringType, MaxLen: 8},
		{Name: "v", Type: dbtype.IntType},
	}}
}

func mustTuple(desc *dbtype.TupleDesc, fields []dbtype.Field) *dbtype.Tuple {
	t, err := dbtype.NewTuple(*desc, fields)
	if err != nil {
		panic(err)
	}
	return t
}
