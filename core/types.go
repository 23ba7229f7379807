package core

import (
	"fmt"
	"strconv"
)

type DataTypeKind int

const (
	IntType DataTypeKind = iota
	VarcharType
)

// DataType is a column's declared type. Size is the VARCHAR(n) length when
// one was declared; it is advisory only and never enforced against data.
type DataType struct {
	Kind DataTypeKind
	Size *int
}

func Int() DataType {
	return DataType{Kind: IntType}
}

func Varchar(size *int) DataType {
	return DataType{Kind: VarcharType, Size: size}
}

func VarcharN(size int) DataType {
	return DataType{Kind: VarcharType, Size: &size}
}

// String returns the schema-file spelling of the type: INT, VARCHAR, or
// VARCHAR(n).
func (dt DataType) String() string {
	switch dt.Kind {
	case IntType:
		return "INT"
	case VarcharType:
		if dt.Size != nil {
			return fmt.Sprintf("VARCHAR(%d)", *dt.Size)
		}
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

type ValueKind int

const (
	NullValue ValueKind = iota
	IntValue
	StringValue
)

// Value is a single cell value: an integer, a string, or NULL.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
}

func NewInt(n int64) Value {
	return Value{Kind: IntValue, Int: n}
}

func NewString(s string) Value {
	return Value{Kind: StringValue, Str: s}
}

func Null() Value {
	return Value{Kind: NullValue}
}

func (v Value) IsNull() bool {
	return v.Kind == NullValue
}

// String renders the value for display: integers as digits, strings as-is,
// NULL as the literal word NULL.
func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case StringValue:
		return v.Str
	default:
		return "NULL"
	}
}

// kindName is used in type mismatch errors.
func (v Value) kindName() string {
	switch v.Kind {
	case IntValue:
		return "INT"
	case StringValue:
		return "STRING"
	default:
		return "NULL"
	}
}

// Identity names the author of tracked changes.
type Identity struct {
	Name  string
	Email string
}

// Column is one column definition. Order within a Schema is significant and
// fixed at table creation; when names collide the first match wins during
// resolution.
type Column struct {
	Name string
	Type DataType
}

// Schema is the ordered column list identifying one table.
type Schema struct {
	Table   string
	Columns []Column
}

// ColumnIndex returns the position of the first column with the given name,
// or -1 when no column matches.
func (s Schema) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Row is an ordered value sequence positionally aligned to its schema.
type Row []Value

// TypeMismatchError reports a value whose runtime kind disagrees with its
// column's declared type.
type TypeMismatchError struct {
	Column   string
	Expected string
	Got      string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for column %s: expected %s, got %s", e.Column, e.Expected, e.Got)
}

// CheckValue validates that a value may be stored in the given column.
// Null is accepted by every column type.
func CheckValue(v Value, col Column) error {
	switch {
	case v.Kind == NullValue:
		return nil
	case v.Kind == IntValue && col.Type.Kind == IntType:
		return nil
	case v.Kind == StringValue && col.Type.Kind == VarcharType:
		return nil
	default:
		return TypeMismatchError{
			Column:   col.Name,
			Expected: col.Type.String(),
			Got:      v.kindName(),
		}
	}
}
