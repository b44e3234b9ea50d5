package dbtype

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/internal/dberrors"
)

func TestIntFieldEvalPred(t *testing.T) {
	a := IntField{Value: 3}
	b := IntField{Value: 5}

	eq, err := a.EvalPred(b, OpLessThan)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.EvalPred(b, OpGreaterThan)
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = a.EvalPred(StringField{Value: "x"}, OpEquals)
	assert.True(t, dberrors.Is(err, dberrors.TypeMismatch))
}

func TestStringFieldRoundTrip(t *testing.T) {
	ft := FieldType{Name: "name", Type: StringType, MaxLen: 16}
	f := StringField{Value: "josie"}

	var buf bytes.Buffer
	require.NoError(t, WriteField(&buf, f, ft))
	assert.Equal(t, 4+16, buf.Len())

	got, err := ReadField(&buf, ft)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestStringFieldTooLong(t *testing.T) {
	ft := FieldType{Name: "name", Type: StringType, MaxLen: 2}
	f := StringField{Value: "abc"}

	var buf bytes.Buffer
	err := WriteField(&buf, f, ft)
	assert.True(t, dberrors.Is(err, dberrors.CorruptPage))
}

func TestIntFieldRoundTrip(t *testing.T) {
	ft := FieldType{Name: "age", Type: IntType}
	f := IntField{Value: -42}

	var buf bytes.Buffer
	require.NoError(t, WriteField(&buf, f, ft))
	assert.Equal(t, 4, buf.Len())

	got, err := ReadField(&buf, ft)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestTupleDescEquals(t *testing.T) {
	a := &TupleDesc{Fields: []FieldType{{Name: "x", Type: IntType}, {Name: "y", Type: StringType, MaxLen: 8}}}
	b := &TupleDesc{Fields: []FieldType{{Name: "renamed", Type: IntType}, {Name: "y", Type: StringType, MaxLen: 8}}}
	c := &TupleDesc{Fields: []FieldType{{Name: "x", Type: IntType}}}

	assert.True(t, a.Equals(b), "names are advisory, only types must match")
	assert.False(t, a.Equals(c))
}
