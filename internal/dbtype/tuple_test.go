package dbtype

import (
	"bytes"
	"testing"

	"github.com/d4l3k/messagediff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intStringDesc() TupleDesc {
	return TupleDesc{Fields: []FieldType{
		{Name: "id", Type: IntType},
		{Name: "name", Type: StringType, MaxLen: 12},
	}}
}

func TestTupleRoundTrip(t *testing.T) {
	desc := intStringDesc()
	tup, err := NewTuple(desc, []Field{IntField{Value: 7}, StringField{Value: "annie"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tup.WriteTo(&buf))

	got, err := ReadTupleFrom(&buf, &desc)
	require.NoError(t, err)

	if diff, equal := messagediff.PrettyDiff(tup.Fields, got.Fields); !equal {
		t.Fatalf("round-tripped fields differ: %s", diff)
	}
	assert.True(t, tup.Equals(got))
}

func TestNewTupleSchemaMismatch(t *testing.T) {
	desc := intStringDesc()
	_, err := NewTuple(desc, []Field{IntField{Value: 7}})
	require.Error(t, err)

	_, err = NewTuple(desc, []Field{StringField{Value: "oops"}, StringField{Value: "annie"}})
	require.Error(t, err)
}

func TestTupleEqualsIgnoresRecordID(t *testing.T) {
	desc := intStringDesc()
	a, err := NewTuple(desc, []Field{IntField{Value: 1}, StringField{Value: "x"}})
	require.NoError(t, err)
	b, err := NewTuple(desc, []Field{IntField{Value: 1}, StringField{Value: "x"}})
	require.NoError(t, err)
	b.Rid = &RecordID{Page: "some-page", Slot: 3}

	assert.True(t, a.Equals(b))
}

func TestTupleKeyDistinguishesValues(t *testing.T) {
	desc := intStringDesc()
	a, _ := NewTuple(desc, []Field{IntField{Value: 1}, StringField{Value: "x"}})
	b, _ := NewTuple(desc, []Field{IntField{Value: 2}, StringField{Value: "x"}})

	ka, err := a.Key()
	require.NoError(t, err)
	kb, err := b.Key()
	require.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}
