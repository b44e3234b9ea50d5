package query

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
	"heapdb/internal/txn"
)

// Delete drains its child, routing each tuple through bp.DeleteTuple against
// table, and yields a single one-field (count: int) tuple exactly once.
type Delete struct {
	table storage.DBFile
	bp    Mutator
	child Operator
	tid   txn.TransactionID
	*lookahead
}

// NewDelete constructs a Delete operator that deletes the tuples produced by
// child from table. Each tuple's own RecordID (set when it was originally
// scanned) identifies the page and slot within table to clear.
func NewDelete(bp Mutator, table storage.DBFile, child Operator) *Delete {
	return &Delete{table: table, bp: bp, child: child}
}

func (d *Delete) Descriptor() *dbtype.TupleDesc { return countDesc }

func (d *Delete) Children() []Operator { return []Operator{d.child} }

func (d *Delete) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Delete takes exactly one child")
	}
	d.child = children[0]
}

func (d *Delete) Open(tid txn.TransactionID) error {
	if err := d.child.Open(tid); err != nil {
		return err
	}
	d.tid = tid
	emitted := false
	d.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		if emitted {
			return nil, nil
		}
		count := int64(0)
		next := pull(d.child)
		for {
			t, err := next()
			if err != nil {
				return nil, err
			}
			if t == nil {
				break
			}
			if err := d.bp.DeleteTuple(tid, d.table, t); err != nil {
				return nil, err
			}
			count++
		}
		emitted = true
		return dbtype.NewTuple(*countDesc, []dbtype.Field{dbtype.IntField{Value: count}})
	})
	return nil
}

func (d *Delete) Rewind() error {
	if err := d.child.Rewind(); err != nil {
		return err
	}
	return d.Open(d.tid)
}

func (d *Delete) Close() error {
	d.lookahead = nil
	return d.child.Close()
}
