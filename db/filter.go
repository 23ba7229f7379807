package db

import (
	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/ps"
	"github.com/flatsql/flatsql/sql"
)

// boundColumn names one column of a relation under the table name or alias
// it was brought in with.
type boundColumn struct {
	table string
	name  string
}

// relation is an in-memory row set built up during select execution: the
// base table, possibly widened by joins.
type relation struct {
	columns []boundColumn
	rows    []core.Row
}

func (engine *Engine) executeSelect(statement sql.SelectStatement) (Result, error) {
	rel, err := engine.loadRelation(statement.From, statement.FromAlias)
	if err != nil {
		return nil, err
	}

	for _, join := range statement.Joins {
		right, err := engine.loadRelation(join.Table, join.Alias)
		if err != nil {
			return nil, err
		}
		rel = joinRelations(rel, right, join)
	}

	if statement.Where != nil {
		var filtered []core.Row
		for _, row := range rel.rows {
			if evalCondition(rel.columns, row, statement.Where.Condition) {
				filtered = append(filtered, row)
			}
		}
		rel.rows = filtered
	}

	return project(rel, statement.Columns), nil
}

// loadRelation reads a table into a relation, binding its columns under the
// alias when one was given.
func (engine *Engine) loadRelation(table, alias string) (relation, error) {
	schema, err := engine.store.LoadSchema(table)
	if err != nil {
		return relation{}, err
	}

	rows, err := engine.store.ReadRows(table)
	if err != nil {
		return relation{}, err
	}

	binding := table
	if alias != "" {
		binding = alias
	}

	columns := make([]boundColumn, len(schema.Columns))
	for i, column := range schema.Columns {
		columns[i] = boundColumn{table: binding, name: column.Name}
	}

	return relation{columns: columns, rows: rows}, nil
}

// joinRelations combines two relations under the join's ON condition.
// Outer joins pad the unmatched side with nulls.
func joinRelations(left, right relation, join sql.JoinClause) relation {
	combined := relation{
		columns: append(append([]boundColumn{}, left.columns...), right.columns...),
	}

	rightMatched := make([]bool, len(right.rows))
	for _, leftRow := range left.rows {
		matched := false
		for i, rightRow := range right.rows {
			row := combineRows(leftRow, rightRow)
			if !evalCondition(combined.columns, row, join.On) {
				continue
			}
			matched = true
			rightMatched[i] = true
			combined.rows = append(combined.rows, row)
		}
		if !matched && join.Join == sql.LeftJoin {
			combined.rows = append(combined.rows, combineRows(leftRow, nullRow(len(right.columns))))
		}
	}

	if join.Join == sql.RightJoin {
		for i, rightRow := range right.rows {
			if !rightMatched[i] {
				combined.rows = append(combined.rows, combineRows(nullRow(len(left.columns)), rightRow))
			}
		}
	}

	return combined
}

func combineRows(left, right core.Row) core.Row {
	row := make(core.Row, 0, len(left)+len(right))
	row = append(row, left...)
	return append(row, right...)
}

func nullRow(width int) core.Row {
	row := make(core.Row, width)
	for i := range row {
		row[i] = core.Null()
	}
	return row
}

// resolveColumn finds the position of the first column matching the
// reference. A bare name matches any table; a qualified name must match
// its table or alias too.
func resolveColumn(columns []boundColumn, table, name string) int {
	for i, column := range columns {
		if column.name != name {
			continue
		}
		if table == "" || column.table == table {
			return i
		}
	}
	return -1
}

// evalCondition evaluates a WHERE or ON condition against one row. A side
// that fails to resolve excludes the row rather than erroring.
func evalCondition(columns []boundColumn, row core.Row, condition sql.Condition) bool {
	left, ok := evalExpression(columns, row, condition.Left)
	if !ok {
		return false
	}
	right, ok := evalExpression(columns, row, condition.Right)
	if !ok {
		return false
	}
	return compareValues(left, right, condition.Operator)
}

func evalExpression(columns []boundColumn, row core.Row, expression sql.Expression) (core.Value, bool) {
	switch expression.Kind {
	case sql.LiteralExpression:
		return expression.Literal, true
	case sql.ColumnExpression, sql.QualifiedColumnExpression:
		index := resolveColumn(columns, expression.Table, expression.Name)
		if index < 0 || index >= len(row) {
			return core.Value{}, false
		}
		return row[index], true
	default:
		return core.Value{}, false
	}
}

// compareValues applies the typed comparison rule: same-kind values compare
// by their natural ordering, null equals only null and only under the
// equality operator, and any other kind mismatch makes the condition false.
func compareValues(left, right core.Value, operator sql.Operator) bool {
	if left.IsNull() || right.IsNull() {
		return left.IsNull() && right.IsNull() && operator == sql.OpEquals
	}
	if left.Kind != right.Kind {
		return false
	}

	var cmp int
	switch left.Kind {
	case core.IntValue:
		switch {
		case left.Int < right.Int:
			cmp = -1
		case left.Int > right.Int:
			cmp = 1
		}
	case core.StringValue:
		switch {
		case left.Str < right.Str:
			cmp = -1
		case left.Str > right.Str:
			cmp = 1
		}
	}

	switch operator {
	case sql.OpEquals:
		return cmp == 0
	case sql.OpNotEquals:
		return cmp != 0
	case sql.OpGreaterThan:
		return cmp > 0
	case sql.OpLessThan:
		return cmp < 0
	case sql.OpGreaterThanOrEqual:
		return cmp >= 0
	case sql.OpLessThanOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

// project narrows the relation to the selected columns. A wildcard expands
// to every column; an unresolvable name is dropped from the output rather
// than reported as an error.
func project(rel relation, selected []sql.SelectColumn) QueryResult {
	var names []string
	var indices []int

	for _, column := range selected {
		switch column.Kind {
		case sql.SelectAll:
			for i, bound := range rel.columns {
				names = append(names, bound.name)
				indices = append(indices, i)
			}
		case sql.SelectColumnName:
			if index := resolveColumn(rel.columns, "", column.Name); index >= 0 {
				names = append(names, column.Name)
				indices = append(indices, index)
			}
		case sql.SelectQualifiedColumn:
			if index := resolveColumn(rel.columns, column.Table, column.Name); index >= 0 {
				names = append(names, column.Table+"."+column.Name)
				indices = append(indices, index)
			}
		}
	}

	result := QueryResult{Columns: names}
	for _, row := range rel.rows {
		projected := make(core.Row, len(indices))
		for i, index := range indices {
			if index < len(row) {
				projected[i] = row[index]
			} else {
				projected[i] = core.Null()
			}
		}
		result.Rows = append(result.Rows, projected)
	}

	return result
}

// buildPredicate closes a WHERE clause over a single table's schema for use
// by update and delete. A nil clause matches every row.
func buildPredicate(schema core.Schema, where *sql.WhereClause) ps.RowPredicate {
	if where == nil {
		return nil
	}

	columns := make([]boundColumn, len(schema.Columns))
	for i, column := range schema.Columns {
		columns[i] = boundColumn{table: schema.Table, name: column.Name}
	}

	return func(row core.Row) (bool, error) {
		return evalCondition(columns, row, where.Condition), nil
	}
}
