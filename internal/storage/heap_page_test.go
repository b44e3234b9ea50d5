package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/internal/dbtype"
)

func twoIntDesc() *dbtype.TupleDesc {
	return &dbtype.TupleDesc{Fields: []dbtype.FieldType{
		{Name: "a", Type: dbtype.IntType},
		{Name: "b", Type: dbtype.IntType},
	}}
}

func TestEmptyPageSlotCount(t *testing.T) {
	PageSize = 4096
	desc := twoIntDesc()
	p := NewEmptyHeapPage(PageID{TableID: 1, PageNo: 0}, desc, nil)
	assert.Equal(t, 504, p.GetNumEmptySlots(), "floor((4096*8)/(8*8+1))")
}

func TestHeapPageRoundTrip(t *testing.T) {
	PageSize = 4096
	desc := twoIntDesc()
	id := PageID{TableID: 1, PageNo: 0}
	p := NewEmptyHeapPage(id, desc, nil)

	t1, err := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 1}, dbtype.IntField{Value: 2}})
	require.NoError(t, err)
	_, err = p.InsertTuple(t1)
	require.NoError(t, err)

	data, err := p.Serialize()
	require.NoError(t, err)
	assert.Len(t, data, PageSize)

	got, err := DeserializeHeapPage(id, desc, nil, data)
	require.NoError(t, err)

	assert.Equal(t, p.GetNumEmptySlots(), got.GetNumEmptySlots())

	it := got.TupleIterator()
	count := 0
	for {
		tup, err := it()
		require.NoError(t, err)
		if tup == nil {
			break
		}
		assert.True(t, tup.Equals(t1))
		count++
	}
	assert.Equal(t, 1, count)
}

func TestDeserializeWrongLength(t *testing.T) {
	PageSize = 4096
	_, err := DeserializeHeapPage(PageID{}, twoIntDesc(), nil, make([]byte, 10))
	require.Error(t, err)
}

func TestHeapPageInsertFullAndDescMismatch(t *testing.T) {
	PageSize = 4096
	desc := twoIntDesc()
	p := NewEmptyHeapPage(PageID{TableID: 1, PageNo: 0}, desc, nil)

	n := p.GetNumEmptySlots()
	for i := 0; i < n; i++ {
		tup, err := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: int64(i)}, dbtype.IntField{Value: int64(i)}})
		require.NoError(t, err)
		_, err = p.InsertTuple(tup)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, p.GetNumEmptySlots())

	overflow, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 0}, dbtype.IntField{Value: 0}})
	_, err := p.InsertTuple(overflow)
	require.Error(t, err)

	otherDesc := &dbtype.TupleDesc{Fields: []dbtype.FieldType{{Name: "x", Type: dbtype.IntType}}}
	mismatched := &dbtype.Tuple{Desc: *otherDesc, Fields: []dbtype.Field{dbtype.IntField{Value: 1}}}
	_, err = NewEmptyHeapPage(PageID{TableID: 2, PageNo: 0}, desc, nil).InsertTuple(mismatched)
	require.Error(t, err)
}

func TestHeapPageDeleteTuple(t *testing.T) {
	PageSize = 4096
	desc := twoIntDesc()
	id := PageID{TableID: 1, PageNo: 0}
	p := NewEmptyHeapPage(id, desc, nil)

	t1, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 1}, dbtype.IntField{Value: 2}})
	_, err := p.InsertTuple(t1)
	require.NoError(t, err)

	require.NoError(t, p.DeleteTuple(t1))
	assert.Equal(t, p.GetNumEmptySlots(), NumSlots(desc))

	err = p.DeleteTuple(t1)
	require.Error(t, err, "deleting an absent tuple fails")
}
