package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/internal/catalog"
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
)

func TestRegistryRoundTrip(t *testing.T) {
	storage.PageSize = 4096
	desc := &dbtype.TupleDesc{Fields: []dbtype.FieldType{{Name: "v", Type: dbtype.IntType}}}
	file, err := storage.NewHeapFile(filepath.Join(t.TempDir(), "t.dat"), desc)
	require.NoError(t, err)

	reg := catalog.NewRegistry()
	reg.Add("people", file)

	got, err := reg.DatabaseFile(file.TableID())
	require.NoError(t, err)
	assert.Same(t, file, got)

	name, err := reg.TableName(file.TableID())
	require.NoError(t, err)
	assert.Equal(t, "people", name)

	gotDesc, err := reg.TupleDesc(file.TableID())
	require.NoError(t, err)
	assert.True(t, gotDesc.Equals(desc))

	assert.Equal(t, []int64{file.TableID()}, reg.TableIDs())
}

func TestRegistryUnknownTable(t *testing.T) {
	reg := catalog.NewRegistry()
	_, err := reg.DatabaseFile(999)
	require.Error(t, err)
}

var _ catalog.Catalog = (*catalog.Registry)(nil)
