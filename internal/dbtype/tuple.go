package dbtype

import (
	"bytes"

	"heapdb/internal/dberrors"
)

// RecordID locates a stored tuple: which page it lives on, and which slot
// within that page. PageID is declared as `any` here to avoid an import
// cycle with internal/storage, which defines the concrete PageID type;
// storage.HeapFile and storage.HeapPage construct and compare RecordIDs
// using their own typed PageID underneath.
type RecordID struct {
	Page any
	Slot int
}

// Tuple is a row: a schema (Desc) plus one Field per column, in the same
// order. Desc is stored by value (not pointer) so a Tuple is self-describing
// even after its originating TupleDesc is mutated elsewhere.
type Tuple struct {
	Desc   TupleDesc
	Fields []Field
	Rid    *RecordID
}

// NewTuple builds a Tuple and checks the invariant that every field's type
// matches the schema at the same position.
func NewTuple(desc TupleDesc, fields []Field) (*Tuple, error) {
	if len(fields) != len(desc.Fields) {
		return nil, dberrors.New(dberrors.SchemaMismatch, "expected %d fields, got %d", len(desc.Fields), len(fields))
	}
	for i, f := range fields {
		if f.Type() != desc.Fields[i].Type {
			return nil, dberrors.New(dberrors.SchemaMismatch, "field %d: expected %s, got %s", i, desc.Fields[i].Type, f.Type())
		}
	}
	return &Tuple{Desc: desc, Fields: fields}, nil
}

// WriteTo serializes the tuple's fields, in schema order, into b.
func (t *Tuple) WriteTo(b *bytes.Buffer) error {
	for i, f := range t.Fields {
		if err := WriteField(b, f, t.Desc.Fields[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadTupleFrom deserializes one tuple of the given schema from b.
func ReadTupleFrom(b *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	fields := make([]Field, len(desc.Fields))
	for i, ft := range desc.Fields {
		f, err := ReadField(b, ft)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return &Tuple{Desc: *desc, Fields: fields}, nil
}

// Equals reports whether two tuples have equal schemas and equal field
// values, ignoring RecordID.
func (t *Tuple) Equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.Equals(&other.Desc) {
		return false
	}
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		eq, err := t.Fields[i].EvalPred(other.Fields[i], OpEquals)
		if err != nil || !eq {
			return false
		}
	}
	return true
}

// Key returns a value suitable for use as a map key that uniquely identifies
// the tuple's contents (used by distinct-projection and join-free dedup).
func (t *Tuple) Key() (string, error) {
	var buf bytes.Buffer
	if err := t.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
