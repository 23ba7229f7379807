// Package core provides the core types used throughout FlatSQL.
//
// The package defines the data model (DataType, Value, Column, Schema, Row)
// and the text codec that translates typed values to and from the on-disk
// row and schema formats.
//
// # Column Types
//
// Two column types are supported:
//   - IntType: signed 64-bit integers (INT)
//   - VarcharType: UTF-8 text (VARCHAR or VARCHAR(n); the declared length
//     is advisory metadata and is never enforced)
//
// # Values
//
// A Value is Int, String, or Null. Null is untyped and is accepted by a
// column of any declared type.
//
// # Row Format
//
// Rows are stored one per line, fields joined by unescaped pipes:
//
//	INT:42|STRING:Alice|NULL
//
// String payloads escape backslash, pipe, and newline so that embedded
// delimiters never split a row.
package core
