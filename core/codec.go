package core

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaError reports malformed schema file content, including a stored
// table name that does not match the name the table was loaded under.
type SchemaError struct {
	Table  string
	Reason string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("invalid schema for table %s: %s", e.Table, e.Reason)
}

// DataError reports a malformed row encoding in a data file.
type DataError struct {
	Field string
}

func (e DataError) Error() string {
	return fmt.Sprintf("invalid row data: %q", e.Field)
}

// ParseDataType parses the schema-file spelling of a type: INT, VARCHAR,
// or VARCHAR(n).
func ParseDataType(s string) (DataType, error) {
	switch {
	case s == "INT":
		return Int(), nil
	case s == "VARCHAR":
		return Varchar(nil), nil
	case strings.HasPrefix(s, "VARCHAR(") && strings.HasSuffix(s, ")"):
		sizeStr := s[len("VARCHAR(") : len(s)-1]
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			return DataType{}, fmt.Errorf("invalid VARCHAR size: %s", sizeStr)
		}
		return VarcharN(size), nil
	default:
		return DataType{}, fmt.Errorf("unknown data type: %s", s)
	}
}

// EncodeSchema renders a schema file: the table name on the first line,
// then one column_name:TYPE line per column in declared order.
func EncodeSchema(schema Schema) []byte {
	var b strings.Builder
	b.WriteString(schema.Table)
	b.WriteByte('\n')
	for _, col := range schema.Columns {
		b.WriteString(col.Name)
		b.WriteByte(':')
		b.WriteString(col.Type.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// DecodeSchema parses a schema file loaded for the named table. A stored
// name that differs from the requested one is treated as corruption, not a
// rename.
func DecodeSchema(table string, data []byte) (Schema, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Schema{}, SchemaError{Table: table, Reason: "empty schema file"}
	}

	stored := strings.TrimRight(lines[0], "\r")
	if stored != table {
		return Schema{}, SchemaError{
			Table:  table,
			Reason: fmt.Sprintf("table name mismatch: stored %q", stored),
		}
	}

	schema := Schema{Table: table}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, typeStr, ok := strings.Cut(line, ":")
		if !ok {
			return Schema{}, SchemaError{Table: table, Reason: fmt.Sprintf("invalid column definition: %s", line)}
		}

		dataType, err := ParseDataType(typeStr)
		if err != nil {
			return Schema{}, SchemaError{Table: table, Reason: err.Error()}
		}

		schema.Columns = append(schema.Columns, Column{Name: name, Type: dataType})
	}

	return schema, nil
}

// escapeString escapes backslash first so that the escapes introduced for
// pipe and newline are unambiguous on decode.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case '|':
				b.WriteByte('|')
			case '\\':
				b.WriteByte('\\')
			default:
				// Unknown escape, keep it verbatim.
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// EncodeRow renders one row as a single line: fields joined by pipes, each
// field INT:<digits>, STRING:<escaped>, or NULL.
func EncodeRow(row Row) string {
	fields := make([]string, len(row))
	for i, v := range row {
		switch v.Kind {
		case IntValue:
			fields[i] = "INT:" + strconv.FormatInt(v.Int, 10)
		case StringValue:
			fields[i] = "STRING:" + escapeString(v.Str)
		default:
			fields[i] = "NULL"
		}
	}
	return strings.Join(fields, "|")
}

// splitFields splits a row line on unescaped pipes. A backslash always
// introduces a two-character escape unit, so escaped pipes never split.
func splitFields(line string) []string {
	var fields []string
	var current strings.Builder
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			current.WriteByte('\\')
			if i+1 < len(line) {
				i++
				current.WriteByte(line[i])
			}
		case '|':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(line[i])
		}
	}
	if current.Len() > 0 || len(fields) > 0 {
		fields = append(fields, current.String())
	}
	return fields
}

// DecodeRow parses one data-file line back into a row. A field with none of
// the known shapes, or a non-numeric INT payload, is a data corruption
// error.
func DecodeRow(line string) (Row, error) {
	var row Row
	for _, field := range splitFields(line) {
		switch {
		case field == "NULL":
			row = append(row, Null())
		case strings.HasPrefix(field, "INT:"):
			n, err := strconv.ParseInt(field[len("INT:"):], 10, 64)
			if err != nil {
				return nil, DataError{Field: field}
			}
			row = append(row, NewInt(n))
		case strings.HasPrefix(field, "STRING:"):
			row = append(row, NewString(unescapeString(field[len("STRING:"):])))
		default:
			return nil, DataError{Field: field}
		}
	}
	return row, nil
}
