// Package dbtype defines heapdb's typed scalar values (Field), the row
// schema (TupleDesc), and the row itself (Tuple).
package dbtype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"heapdb/internal/dberrors"
)

// DType is the type of a tuple field: IntType or StringType.
type DType int

const (
	IntType DType = iota
	StringType
)

func (t DType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// BoolOp is a comparison operator used by predicates and histogram selectivity.
type BoolOp int

const (
	OpEquals BoolOp = iota
	OpNotEquals
	OpGreaterThan
	OpGreaterThanOrEq
	OpLessThan
	OpLessThanOrEq
)

// FieldType describes one column: its name and its DType. For string
// columns, MaxLen is the schema-declared maximum length in bytes; the
// on-disk slot always reserves MaxLen bytes plus a 4-byte length prefix.
type FieldType struct {
	Name   string
	Type   DType
	MaxLen int // only meaningful when Type == StringType
}

// SerializedSize returns the fixed number of bytes a field of this type
// occupies within a tuple slot.
func (f FieldType) SerializedSize() int {
	if f.Type == StringType {
		return 4 + f.MaxLen
	}
	return 4
}

// TupleDesc is the schema of a row: an ordered list of FieldTypes.
type TupleDesc struct {
	Fields []FieldType
}

// NumFields returns the number of columns.
func (d *TupleDesc) NumFields() int { return len(d.Fields) }

// TypeAt returns the DType of the field at index i.
func (d *TupleDesc) TypeAt(i int) DType { return d.Fields[i].Type }

// Equals reports whether two TupleDescs have the same sequence of field
// types, with equal MaxLen for string fields. Names are advisory and not
// compared.
func (d *TupleDesc) Equals(other *TupleDesc) bool {
	if len(d.Fields) != len(other.Fields) {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i].Type != other.Fields[i].Type {
			return false
		}
		if d.Fields[i].Type == StringType && d.Fields[i].MaxLen != other.Fields[i].MaxLen {
			return false
		}
	}
	return true
}

// BytesPerTuple is the fixed serialized size of a row with this schema.
func (d *TupleDesc) BytesPerTuple() int {
	total := 0
	for _, f := range d.Fields {
		total += f.SerializedSize()
	}
	return total
}

// Copy returns a deep copy of the TupleDesc.
func (d *TupleDesc) Copy() *TupleDesc {
	fields := make([]FieldType, len(d.Fields))
	copy(fields, d.Fields)
	return &TupleDesc{Fields: fields}
}

// Field is the tagged-variant interface for a scalar cell value.
type Field interface {
	Type() DType
	EvalPred(other Field, op BoolOp) (bool, error)
	writeTo(b *bytes.Buffer, ft FieldType) error
	fmt.Stringer
}

// IntField is a 32-bit-range signed integer value (stored as int64 in Go).
type IntField struct {
	Value int64
}

func (f IntField) Type() DType   { return IntType }
func (f IntField) String() string { return strconv.FormatInt(f.Value, 10) }

func (f IntField) EvalPred(other Field, op BoolOp) (bool, error) {
	o, ok := other.(IntField)
	if !ok {
		return false, dberrors.New(dberrors.TypeMismatch, "cannot compare IntField to %T", other)
	}
	switch op {
	case OpEquals:
		return f.Value == o.Value, nil
	case OpNotEquals:
		return f.Value != o.Value, nil
	case OpGreaterThan:
		return f.Value > o.Value, nil
	case OpGreaterThanOrEq:
		return f.Value >= o.Value, nil
	case OpLessThan:
		return f.Value < o.Value, nil
	case OpLessThanOrEq:
		return f.Value <= o.Value, nil
	}
	return false, dberrors.New(dberrors.UnsupportedOp, "unknown BoolOp %d", op)
}

func (f IntField) writeTo(b *bytes.Buffer, _ FieldType) error {
	return binary.Write(b, binary.LittleEndian, int32(f.Value))
}

// StringField is a fixed-maximum-length string value.
type StringField struct {
	Value string
}

func (f StringField) Type() DType    { return StringType }
func (f StringField) String() string { return f.Value }

func (f StringField) EvalPred(other Field, op BoolOp) (bool, error) {
	o, ok := other.(StringField)
	if !ok {
		return false, dberrors.New(dberrors.TypeMismatch, "cannot compare StringField to %T", other)
	}
	switch op {
	case OpEquals:
		return f.Value == o.Value, nil
	case OpNotEquals:
		return f.Value != o.Value, nil
	case OpGreaterThan:
		return f.Value > o.Value, nil
	case OpGreaterThanOrEq:
		return f.Value >= o.Value, nil
	case OpLessThan:
		return f.Value < o.Value, nil
	case OpLessThanOrEq:
		return f.Value <= o.Value, nil
	}
	return false, dberrors.New(dberrors.UnsupportedOp, "unknown BoolOp %d", op)
}

func (f StringField) writeTo(b *bytes.Buffer, ft FieldType) error {
	if len(f.Value) > ft.MaxLen {
		return dberrors.New(dberrors.CorruptPage, "string %q exceeds max length %d", f.Value, ft.MaxLen)
	}
	if err := binary.Write(b, binary.LittleEndian, int32(len(f.Value))); err != nil {
		return err
	}
	padded := make([]byte, ft.MaxLen)
	copy(padded, f.Value)
	_, err := b.Write(padded)
	return err
}

// WriteField serializes a single field value according to its declared FieldType.
func WriteField(b *bytes.Buffer, f Field, ft FieldType) error {
	return f.writeTo(b, ft)
}

// ReadField deserializes a single field value of the given FieldType.
func ReadField(b *bytes.Buffer, ft FieldType) (Field, error) {
	switch ft.Type {
	case StringType:
		var n int32
		if err := binary.Read(b, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		raw := make([]byte, ft.MaxLen)
		if _, err := b.Read(raw); err != nil {
			return nil, err
		}
		if n < 0 || int(n) > len(raw) {
			return nil, dberrors.New(dberrors.CorruptPage, "string length prefix %d out of range [0,%d]", n, len(raw))
		}
		return StringField{Value: string(raw[:n])}, nil
	default:
		var v int32
		if err := binary.Read(b, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return IntField{Value: int64(v)}, nil
	}
}
