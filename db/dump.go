package db

import (
	"fmt"
	"io"
	"strings"

	"github.com/flatsql/flatsql/core"
)

// Export writes the whole store as a SQL script: a CREATE TABLE statement
// followed by the INSERT statements for every table, in table name order.
// The script is suitable for Import into an empty store.
func (engine *Engine) Export(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "-- FlatSQL dump"); err != nil {
		return err
	}

	for _, table := range engine.store.ListTables() {
		schema, err := engine.store.LoadSchema(table)
		if err != nil {
			return err
		}

		definitions := make([]string, len(schema.Columns))
		for i, column := range schema.Columns {
			definitions[i] = fmt.Sprintf("%s %s", column.Name, column.Type)
		}
		if _, err := fmt.Fprintf(w, "CREATE TABLE %s (%s);\n", table, strings.Join(definitions, ", ")); err != nil {
			return err
		}

		rows, err := engine.store.ReadRows(table)
		if err != nil {
			return err
		}
		for _, row := range rows {
			literals := make([]string, len(row))
			for i, value := range row {
				literals[i] = sqlLiteral(value)
			}
			if _, err := fmt.Fprintf(w, "INSERT INTO %s VALUES (%s);\n", table, strings.Join(literals, ", ")); err != nil {
				return err
			}
		}
	}

	return nil
}

// sqlLiteral renders a value as it appears in a statement. String values
// containing a single quote cannot be represented in the dialect and will
// not survive a dump/restore cycle.
func sqlLiteral(value core.Value) string {
	switch value.Kind {
	case core.StringValue:
		return "'" + value.Str + "'"
	default:
		return value.String()
	}
}

// Import executes every statement of a SQL script against the store,
// stopping at the first failure. Returns the number of statements that
// were executed successfully.
func (engine *Engine) Import(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read script: %w", err)
	}

	executed := 0
	for i, statement := range SplitStatements(string(data)) {
		if _, err := engine.Execute(statement); err != nil {
			return executed, fmt.Errorf("statement %d failed: %w", i+1, err)
		}
		executed++
	}

	return executed, nil
}

// SplitStatements splits a SQL script into individual statements on
// semicolons, respecting single-quoted strings and dropping -- line
// comments and blank statements.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(script); i++ {
		ch := script[i]

		if ch == '\'' {
			inString = !inString
		}

		if !inString && ch == '-' && i+1 < len(script) && script[i+1] == '-' {
			for i < len(script) && script[i] != '\n' {
				i++
			}
			continue
		}

		if !inString && ch == ';' {
			current.WriteByte(ch)
			if statement := strings.TrimSpace(current.String()); statement != ";" {
				statements = append(statements, statement)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if statement := strings.TrimSpace(current.String()); statement != "" {
		statements = append(statements, statement)
	}

	return statements
}
