package query

import (
	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
	"heapdb/internal/txn"
)

var countDesc = &dbtype.TupleDesc{Fields: []dbtype.FieldType{{Name: "count", Type: dbtype.IntType}}}

// Insert drains its child, routing each tuple through bp.InsertTuple into
// table, and yields a single one-field (count: int) tuple. Subsequent
// Next/HasNext calls after that one tuple report end-of-stream.
type Insert struct {
	table storage.DBFile
	bp    Mutator
	child Operator
	tid   txn.TransactionID
	*lookahead
}

// NewInsert constructs an Insert operator. It fails with SchemaMismatch if
// child's descriptor differs from table's.
func NewInsert(bp Mutator, table storage.DBFile, child Operator) (*Insert, error) {
	if !child.Descriptor().Equals(table.Descriptor()) {
		return nil, dberrors.New(dberrors.SchemaMismatch, "insert child desc does not match table desc")
	}
	return &Insert{table: table, bp: bp, child: child}, nil
}

func (i *Insert) Descriptor() *dbtype.TupleDesc { return countDesc }

func (i *Insert) Children() []Operator { return []Operator{i.child} }

func (i *Insert) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Insert takes exactly one child")
	}
	i.child = children[0]
}

func (i *Insert) Open(tid txn.TransactionID) error {
	if err := i.child.Open(tid); err != nil {
		return err
	}
	i.tid = tid
	emitted := false
	i.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		if emitted {
			return nil, nil
		}
		count := int64(0)
		next := pull(i.child)
		for {
			t, err := next()
			if err != nil {
				return nil, err
			}
			if t == nil {
				break
			}
			if err := i.bp.InsertTuple(tid, i.table, t); err != nil {
				return nil, err
			}
			count++
		}
		emitted = true
		return dbtype.NewTuple(*countDesc, []dbtype.Field{dbtype.IntField{Value: count}})
	})
	return nil
}

// Rewind re-opens the operator, re-draining the (now-rewound) child and
// performing the insertions again under the same transaction Open was last
// called with.
func (i *Insert) Rewind() error {
	if err := i.child.Rewind(); err != nil {
		return err
	}
	return i.Open(i.tid)
}

func (i *Insert) Close() error {
	i.lookahead = nil
	return i.child.Close()
}
