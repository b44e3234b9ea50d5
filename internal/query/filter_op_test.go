package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/internal/dbtype"
	"heapdb/internal/query"
	"heapdb/internal/txn"
)

func TestFilterYieldsMatchingTuples(t *testing.T) {
	desc := intStringDesc()
	rows := []*dbtype.Tuple{
		mustTuple(desc, []dbtype.Field{dbtype.StringField{Value: "a"}, dbtype.IntField{Value: 1}}),
		mustTuple(desc, []dbtype.Field{dbtype.StringField{Value: "b"}, dbtype.IntField{Value: 5}}),
		mustTuple(desc, []dbtype.Field{dbtype.StringField{Value: "c"}, dbtype.IntField{Value: 9}}),
	}
	src := newSliceOp(desc, rows)

	pred := query.Predicate{
		Left:  query.FieldExpr{Field: desc.Fields[1], Index: 1},
		Op:    dbtype.OpGreaterThan,
		Right: query.ConstExpr{Value: dbtype.IntField{Value: 3}, Field: desc.Fields[1]},
	}
	f := query.NewFilter(pred, src)

	require.NoError(t, f.Open(txn.NewTID()))
	var got []int64
	for {
		ok, err := f.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		tup, err := f.Next()
		require.NoError(t, err)
		got = append(got, tup.Fields[1].(dbtype.IntField).Value)
	}
	assert.Equal(t, []int64{5, 9}, got)
}

func TestFilterRewindReEvaluates(t *testing.T) {
	desc := intStringDesc()
	rows := []*dbtype.Tuple{
		mustTuple(desc, []dbtype.Field{dbtype.StringField{Value: "a"}, dbtype.IntField{Value: 10}}),
	}
	src := newSliceOp(desc, rows)
	pred := query.Predicate{
		Left:  query.FieldExpr{Field: desc.Fields[1], Index: 1},
		Op:    dbtype.OpEquals,
		Right: query.ConstExpr{Value: dbtype.IntField{Value: 10}, Field: desc.Fields[1]},
	}
	f := query.NewFilter(pred, src)
	tid := txn.NewTID()
	require.NoError(t, f.Open(tid))

	ok, err := f.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.Next()
	require.NoError(t, err)

	ok, err = f.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Rewind())
	ok, err = f.HasNext()
	require.NoError(t, err)
	assert.True(t, ok, "rewind should re-scan the child from the start")
}
