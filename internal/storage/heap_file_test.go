package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// fakeBufferPool is a minimal PageGetter caching pages in memory once
// loaded, without any locking, sufficient to exercise HeapFile's own logic
// (insert/delete/iterate) in isolation from the real locking buffer pool.
type fakeBufferPool struct {
	pages map[PageID]Page
}

func newFakeBufferPool() *fakeBufferPool {
	return &fakeBufferPool{pages: make(map[PageID]Page)}
}

func (f *fakeBufferPool) GetPage(_ txn.TransactionID, file DBFile, pageNo int, _ Perm) (Page, error) {
	key := file.PageKey(pageNo)
	if p, ok := f.pages[key]; ok {
		return p, nil
	}
	p, err := file.ReadPage(pageNo)
	if err != nil {
		return nil, err
	}
	f.pages[key] = p
	return p, nil
}

func oneIntDesc() *dbtype.TupleDesc {
	return &dbtype.TupleDesc{Fields: []dbtype.FieldType{{Name: "v", Type: dbtype.IntType}}}
}

func TestHeapFileNumPagesGrowsOnInsert(t *testing.T) {
	PageSize = 4096
	dir := t.TempDir()
	desc := oneIntDesc()
	f, err := NewHeapFile(filepath.Join(dir, "t.dat"), desc)
	require.NoError(t, err)
	assert.Equal(t, 0, f.NumPages())

	bp := newFakeBufferPool()
	tid := txn.NewTID()
	tup, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 1}})
	_, err = f.InsertTuple(bp, tid, tup)
	require.NoError(t, err)
	assert.Equal(t, 1, f.NumPages())
}

func TestHeapFileInsertFillsExistingPageBeforeAppending(t *testing.T) {
	PageSize = 4096
	dir := t.TempDir()
	desc := oneIntDesc()
	f, err := NewHeapFile(filepath.Join(dir, "t.dat"), desc)
	require.NoError(t, err)
	bp := newFakeBufferPool()
	tid := txn.NewTID()

	slots := NumSlots(desc)
	for i := 0; i < slots; i++ {
		tup, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: int64(i)}})
		_, err := f.InsertTuple(bp, tid, tup)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.NumPages(), "page not yet full should not trigger growth")

	tup, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 999}})
	_, err = f.InsertTuple(bp, tid, tup)
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumPages(), "full page forces append")
}

func TestHeapFileInsertScanRoundTrip(t *testing.T) {
	PageSize = 4096
	dir := t.TempDir()
	desc := oneIntDesc()
	f, err := NewHeapFile(filepath.Join(dir, "t.dat"), desc)
	require.NoError(t, err)
	bp := newFakeBufferPool()
	tid := txn.NewTID()

	want := []int64{1, 2, 3}
	for _, v := range want {
		tup, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: v}})
		_, err := f.InsertTuple(bp, tid, tup)
		require.NoError(t, err)
	}

	next, err := f.Iterator(bp, tid)
	require.NoError(t, err)

	var got []int64
	for {
		tup, err := next()
		require.NoError(t, err)
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].(dbtype.IntField).Value)
		pid, ok := tup.Rid.Page.(PageID)
		require.True(t, ok)
		assert.Equal(t, f.TableID(), pid.TableID)
	}
	assert.ElementsMatch(t, want, got)

	// a further call after exhaustion yields no more tuples (one-shot iterator)
	tup, err := next()
	require.NoError(t, err)
	assert.Nil(t, tup)
}

func TestHeapFileDeleteTuple(t *testing.T) {
	PageSize = 4096
	dir := t.TempDir()
	desc := oneIntDesc()
	f, err := NewHeapFile(filepath.Join(dir, "t.dat"), desc)
	require.NoError(t, err)
	bp := newFakeBufferPool()
	tid := txn.NewTID()

	tup, _ := dbtype.NewTuple(*desc, []dbtype.Field{dbtype.IntField{Value: 42}})
	pages, err := f.InsertTuple(bp, tid, tup)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.NoError(t, f.WritePage(pages[0]))

	_, err = f.DeleteTuple(bp, tid, tup)
	require.NoError(t, err)

	next, err := f.Iterator(bp, tid)
	require.NoError(t, err)
	got, err := next()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadPageBeyondEOF(t *testing.T) {
	PageSize = 4096
	dir := t.TempDir()
	desc := oneIntDesc()
	f, err := NewHeapFile(filepath.Join(dir, "t.dat"), desc)
	require.NoError(t, err)

	_, err = f.ReadPage(5)
	require.Error(t, err)
}
