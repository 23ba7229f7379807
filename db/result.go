package db

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/flatsql/flatsql/core"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	ExecResultType
)

type Result interface {
	Type() ResultType
	Render(w io.Writer)
}

// QueryResult holds the rows produced by a select.
type QueryResult struct {
	Columns []string
	Rows    []core.Row
}

// ExecResult summarizes a statement that changed state rather than
// producing rows.
type ExecResult struct {
	Message  string
	Affected int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result ExecResult) Type() ResultType {
	return ExecResultType
}

func (result QueryResult) Render(w io.Writer) {
	if len(result.Rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, column := range result.Columns {
		header[i] = column
	}
	writer.AppendHeader(header)

	for _, row := range result.Rows {
		rendered := make(table.Row, len(row))
		for i, value := range row {
			rendered[i] = value.String()
		}
		writer.AppendRow(rendered)
	}

	writer.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
}

func (result ExecResult) Render(w io.Writer) {
	fmt.Fprintln(w, result.Message)
}

// Display renders the result to stdout.
func Display(result Result) {
	result.Render(os.Stdout)
}
