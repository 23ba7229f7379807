package db

import (
	"reflect"
	"testing"

	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/sql"
)

func seedJoinTables(t *testing.T, engine *Engine) {
	t.Helper()

	mustExecute(t, engine, "CREATE TABLE users (id INT, name VARCHAR(255));")
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice');")
	mustExecute(t, engine, "INSERT INTO users VALUES (2, 'Bob');")
	mustExecute(t, engine, "INSERT INTO users VALUES (3, 'Carol');")

	mustExecute(t, engine, "CREATE TABLE orders (id INT, user_id INT, total INT);")
	mustExecute(t, engine, "INSERT INTO orders VALUES (10, 1, 50);")
	mustExecute(t, engine, "INSERT INTO orders VALUES (11, 1, 75);")
	mustExecute(t, engine, "INSERT INTO orders VALUES (12, 2, 20);")
	mustExecute(t, engine, "INSERT INTO orders VALUES (13, 9, 99);")
}

func TestInnerJoin(t *testing.T) {
	engine := newTestEngine(t)
	seedJoinTables(t, engine)

	result := mustExecute(t, engine, "SELECT users.name, orders.total FROM users JOIN orders ON users.id = orders.user_id;")
	query := result.(QueryResult)

	if !reflect.DeepEqual(query.Columns, []string{"users.name", "orders.total"}) {
		t.Errorf("Columns = %v", query.Columns)
	}

	expected := []core.Row{
		{core.NewString("Alice"), core.NewInt(50)},
		{core.NewString("Alice"), core.NewInt(75)},
		{core.NewString("Bob"), core.NewInt(20)},
	}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows = %+v, expected %+v", query.Rows, expected)
	}
}

func TestLeftJoinPadsUnmatchedRows(t *testing.T) {
	engine := newTestEngine(t)
	seedJoinTables(t, engine)

	result := mustExecute(t, engine, "SELECT users.name, orders.total FROM users LEFT JOIN orders ON users.id = orders.user_id;")
	query := result.(QueryResult)

	expected := []core.Row{
		{core.NewString("Alice"), core.NewInt(50)},
		{core.NewString("Alice"), core.NewInt(75)},
		{core.NewString("Bob"), core.NewInt(20)},
		{core.NewString("Carol"), core.Null()},
	}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows = %+v, expected %+v", query.Rows, expected)
	}
}

func TestRightJoinPadsUnmatchedRows(t *testing.T) {
	engine := newTestEngine(t)
	seedJoinTables(t, engine)

	result := mustExecute(t, engine, "SELECT users.name, orders.total FROM users RIGHT JOIN orders ON users.id = orders.user_id;")
	query := result.(QueryResult)

	expected := []core.Row{
		{core.NewString("Alice"), core.NewInt(50)},
		{core.NewString("Alice"), core.NewInt(75)},
		{core.NewString("Bob"), core.NewInt(20)},
		{core.Null(), core.NewInt(99)},
	}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows = %+v, expected %+v", query.Rows, expected)
	}
}

func TestJoinWithAliases(t *testing.T) {
	engine := newTestEngine(t)
	seedJoinTables(t, engine)

	result := mustExecute(t, engine, "SELECT u.name, o.total FROM users u JOIN orders o ON u.id = o.user_id WHERE o.total > 40;")
	query := result.(QueryResult)

	expected := []core.Row{
		{core.NewString("Alice"), core.NewInt(50)},
		{core.NewString("Alice"), core.NewInt(75)},
	}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows = %+v, expected %+v", query.Rows, expected)
	}
}

func TestJoinWildcardExpandsBothTables(t *testing.T) {
	engine := newTestEngine(t)
	seedJoinTables(t, engine)

	result := mustExecute(t, engine, "SELECT * FROM users JOIN orders ON users.id = orders.user_id WHERE orders.id = 12;")
	query := result.(QueryResult)

	if !reflect.DeepEqual(query.Columns, []string{"id", "name", "id", "user_id", "total"}) {
		t.Errorf("Columns = %v", query.Columns)
	}
	expected := []core.Row{
		{core.NewInt(2), core.NewString("Bob"), core.NewInt(12), core.NewInt(2), core.NewInt(20)},
	}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows = %+v, expected %+v", query.Rows, expected)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		left     core.Value
		right    core.Value
		operator sql.Operator
		expected bool
	}{
		{"int equals", core.NewInt(1), core.NewInt(1), sql.OpEquals, true},
		{"int less", core.NewInt(1), core.NewInt(2), sql.OpLessThan, true},
		{"int greater or equal", core.NewInt(2), core.NewInt(2), sql.OpGreaterThanOrEqual, true},
		{"string lexicographic", core.NewString("abc"), core.NewString("abd"), sql.OpLessThan, true},
		{"string not equals", core.NewString("a"), core.NewString("b"), sql.OpNotEquals, true},
		{"null equals null", core.Null(), core.Null(), sql.OpEquals, true},
		{"null not equals null", core.Null(), core.Null(), sql.OpNotEquals, false},
		{"null less than null", core.Null(), core.Null(), sql.OpLessThan, false},
		{"one-sided null", core.Null(), core.NewInt(1), sql.OpEquals, false},
		{"one-sided null not equals", core.NewString("a"), core.Null(), sql.OpNotEquals, false},
		{"kind mismatch", core.NewInt(1), core.NewString("1"), sql.OpEquals, false},
		{"kind mismatch not equals", core.NewInt(1), core.NewString("1"), sql.OpNotEquals, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := compareValues(test.left, test.right, test.operator); got != test.expected {
				t.Errorf("compareValues(%v, %v, %v) = %v, expected %v",
					test.left, test.right, test.operator, got, test.expected)
			}
		})
	}
}

func TestBuildPredicateResolvesColumns(t *testing.T) {
	schema := core.Schema{
		Table: "users",
		Columns: []core.Column{
			{Name: "id", Type: core.Int()},
			{Name: "name", Type: core.VarcharN(255)},
		},
	}

	where := &sql.WhereClause{Condition: sql.Condition{
		Left:     sql.Expression{Kind: sql.ColumnExpression, Name: "id"},
		Operator: sql.OpGreaterThan,
		Right:    sql.Expression{Kind: sql.LiteralExpression, Literal: core.NewInt(1)},
	}}

	predicate := buildPredicate(schema, where)
	matched, err := predicate(core.Row{core.NewInt(2), core.NewString("Bob")})
	if err != nil {
		t.Fatalf("predicate returned error: %v", err)
	}
	if !matched {
		t.Error("Expected row to match")
	}

	matched, err = predicate(core.Row{core.NewInt(1), core.NewString("Alice")})
	if err != nil {
		t.Fatalf("predicate returned error: %v", err)
	}
	if matched {
		t.Error("Expected row not to match")
	}
}

func TestBuildPredicateUnresolvableColumn(t *testing.T) {
	schema := core.Schema{Table: "users", Columns: []core.Column{{Name: "id", Type: core.Int()}}}

	where := &sql.WhereClause{Condition: sql.Condition{
		Left:     sql.Expression{Kind: sql.ColumnExpression, Name: "missing"},
		Operator: sql.OpEquals,
		Right:    sql.Expression{Kind: sql.LiteralExpression, Literal: core.NewInt(1)},
	}}

	predicate := buildPredicate(schema, where)
	matched, err := predicate(core.Row{core.NewInt(1)})
	if err != nil {
		t.Fatalf("predicate returned error: %v", err)
	}
	if matched {
		t.Error("Expected unresolvable column to exclude the row")
	}
}
