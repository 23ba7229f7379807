package db

import (
	"fmt"

	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/ps"
	"github.com/flatsql/flatsql/sql"
)

// Engine turns SQL statements into store operations.
type Engine struct {
	store *ps.Store
}

func NewEngine(store *ps.Store) *Engine {
	return &Engine{store: store}
}

// Store exposes the underlying persistence store for callers that need
// direct access, such as meta-commands listing tables or schemas.
func (engine *Engine) Store() *ps.Store {
	return engine.store
}

// Execute parses and runs a single SQL statement.
func (engine *Engine) Execute(query string) (Result, error) {
	statement, err := sql.NewParser(query).Parse()
	if err != nil {
		return nil, err
	}

	switch statement.Type() {
	case sql.CreateTableStatementType:
		return engine.executeCreateTable(statement.(sql.CreateTableStatement))
	case sql.InsertStatementType:
		return engine.executeInsert(statement.(sql.InsertStatement))
	case sql.SelectStatementType:
		return engine.executeSelect(statement.(sql.SelectStatement))
	case sql.UpdateStatementType:
		return engine.executeUpdate(statement.(sql.UpdateStatement))
	case sql.DeleteStatementType:
		return engine.executeDelete(statement.(sql.DeleteStatement))
	case sql.DropTableStatementType:
		return engine.executeDropTable(statement.(sql.DropTableStatement))
	default:
		return nil, fmt.Errorf("unsupported statement type %d", statement.Type())
	}
}

func (engine *Engine) executeCreateTable(statement sql.CreateTableStatement) (Result, error) {
	schema := core.Schema{
		Table:   statement.Table,
		Columns: statement.Columns,
	}

	if err := engine.store.CreateTable(schema); err != nil {
		return nil, err
	}

	return ExecResult{Message: fmt.Sprintf("Table %s created", statement.Table)}, nil
}

func (engine *Engine) executeInsert(statement sql.InsertStatement) (Result, error) {
	if err := engine.store.InsertRow(statement.Table, core.Row(statement.Values)); err != nil {
		return nil, err
	}

	return ExecResult{Message: "1 row inserted", Affected: 1}, nil
}

func (engine *Engine) executeUpdate(statement sql.UpdateStatement) (Result, error) {
	schema, err := engine.store.LoadSchema(statement.Table)
	if err != nil {
		return nil, err
	}

	assignments := make([]ps.Assignment, len(statement.Set))
	for i, clause := range statement.Set {
		assignments[i] = ps.Assignment{Column: clause.Column, Value: clause.Value}
	}

	affected, err := engine.store.UpdateRows(statement.Table, assignments, buildPredicate(schema, statement.Where))
	if err != nil {
		return nil, err
	}

	return ExecResult{
		Message:  fmt.Sprintf("%d row(s) updated", affected),
		Affected: affected,
	}, nil
}

func (engine *Engine) executeDelete(statement sql.DeleteStatement) (Result, error) {
	schema, err := engine.store.LoadSchema(statement.Table)
	if err != nil {
		return nil, err
	}

	affected, err := engine.store.DeleteRows(statement.Table, buildPredicate(schema, statement.Where))
	if err != nil {
		return nil, err
	}

	return ExecResult{
		Message:  fmt.Sprintf("%d row(s) deleted", affected),
		Affected: affected,
	}, nil
}

func (engine *Engine) executeDropTable(statement sql.DropTableStatement) (Result, error) {
	if err := engine.store.DropTable(statement.Table); err != nil {
		return nil, err
	}

	return ExecResult{Message: fmt.Sprintf("Table %s dropped", statement.Table)}, nil
}
