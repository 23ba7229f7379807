package ps

import "fmt"

// TableExistsError is returned by CreateTable when a schema file for the
// name is already present.
type TableExistsError struct {
	Table string
}

func (e TableExistsError) Error() string {
	return fmt.Sprintf("table %s already exists", e.Table)
}

// TableNotFoundError is returned when no schema file exists for the name.
type TableNotFoundError struct {
	Table string
}

func (e TableNotFoundError) Error() string {
	return fmt.Sprintf("table %s does not exist", e.Table)
}

// ColumnCountError is returned by InsertRow when the value count does not
// match the schema's column count.
type ColumnCountError struct {
	Table    string
	Expected int
	Got      int
}

func (e ColumnCountError) Error() string {
	return fmt.Sprintf("table %s expects %d values, got %d", e.Table, e.Expected, e.Got)
}
