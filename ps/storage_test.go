package ps

import (
	"errors"
	"reflect"
	"testing"

	"github.com/flatsql/flatsql/core"
)

func usersSchema() core.Schema {
	return core.Schema{
		Table: "users",
		Columns: []core.Column{
			{Name: "id", Type: core.Int()},
			{Name: "name", Type: core.VarcharN(255)},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewMemoryStore()
	if err := store.CreateTable(usersSchema()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return store
}

func TestCreateTable(t *testing.T) {
	store := NewMemoryStore()

	if err := store.CreateTable(usersSchema()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	if !store.TableExists("users") {
		t.Error("Expected table to exist after create")
	}

	schema, err := store.LoadSchema("users")
	if err != nil {
		t.Fatalf("Failed to load schema: %v", err)
	}
	if !reflect.DeepEqual(schema, usersSchema()) {
		t.Errorf("Loaded schema %+v, expected %+v", schema, usersSchema())
	}
}

func TestCreateTableAlreadyExists(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertRow("users", core.Row{core.NewInt(1), core.NewString("Alice")}); err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	err := store.CreateTable(usersSchema())
	var existsErr TableExistsError
	if !errors.As(err, &existsErr) {
		t.Fatalf("Expected TableExistsError, got %v", err)
	}

	// The original table's contents must be untouched.
	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 row after failed create, got %d", len(rows))
	}
}

func TestInsertAndReadRows(t *testing.T) {
	store := newTestStore(t)

	inserted := []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Bob")},
		{core.NewInt(3), core.Null()},
	}
	for _, row := range inserted {
		if err := store.InsertRow("users", row); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if !reflect.DeepEqual(rows, inserted) {
		t.Errorf("ReadRows = %+v, expected %+v", rows, inserted)
	}
}

func TestInsertColumnCountMismatch(t *testing.T) {
	store := newTestStore(t)

	err := store.InsertRow("users", core.Row{core.NewInt(1)})
	var countErr ColumnCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("Expected ColumnCountError, got %v", err)
	}
	if countErr.Expected != 2 || countErr.Got != 1 {
		t.Errorf("Expected count 2/1, got %d/%d", countErr.Expected, countErr.Got)
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows after failed insert, got %d", len(rows))
	}
}

func TestInsertTypeMismatch(t *testing.T) {
	store := newTestStore(t)

	err := store.InsertRow("users", core.Row{core.NewString("one"), core.NewString("Alice")})
	var typeErr core.TypeMismatchError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Expected TypeMismatchError, got %v", err)
	}
	if typeErr.Column != "id" {
		t.Errorf("Expected mismatch on column id, got %s", typeErr.Column)
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows after failed insert, got %d", len(rows))
	}
}

func TestInsertNullIntoAnyColumn(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertRow("users", core.Row{core.Null(), core.Null()}); err != nil {
		t.Fatalf("Failed to insert all-null row: %v", err)
	}
}

func TestReadRowsUnknownTable(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.ReadRows("missing")
	var notFound TableNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected TableNotFoundError, got %v", err)
	}
}

func TestUpdateRows(t *testing.T) {
	store := newTestStore(t)

	for _, row := range []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Bob")},
		{core.NewInt(3), core.NewString("Carol")},
	} {
		if err := store.InsertRow("users", row); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}

	affected, err := store.UpdateRows("users",
		[]Assignment{{Column: "name", Value: core.NewString("Dave")}},
		func(row core.Row) (bool, error) {
			return row[0].Int > 1, nil
		})
	if err != nil {
		t.Fatalf("Failed to update rows: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 rows updated, got %d", affected)
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	expected := []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Dave")},
		{core.NewInt(3), core.NewString("Dave")},
	}
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("ReadRows = %+v, expected %+v", rows, expected)
	}
}

func TestUpdateRowsNilPredicate(t *testing.T) {
	store := newTestStore(t)

	for _, row := range []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Bob")},
	} {
		if err := store.InsertRow("users", row); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}

	affected, err := store.UpdateRows("users",
		[]Assignment{{Column: "name", Value: core.Null()}}, nil)
	if err != nil {
		t.Fatalf("Failed to update rows: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 rows updated, got %d", affected)
	}
}

func TestDeleteRows(t *testing.T) {
	store := newTestStore(t)

	for _, row := range []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Bob")},
		{core.NewInt(3), core.NewString("Carol")},
	} {
		if err := store.InsertRow("users", row); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}

	affected, err := store.DeleteRows("users", func(row core.Row) (bool, error) {
		return row[0].Int != 2, nil
	})
	if err != nil {
		t.Fatalf("Failed to delete rows: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 rows deleted, got %d", affected)
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	expected := []core.Row{{core.NewInt(2), core.NewString("Bob")}}
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("ReadRows = %+v, expected %+v", rows, expected)
	}
}

func TestDeleteRowsPredicateError(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertRow("users", core.Row{core.NewInt(1), core.NewString("Alice")}); err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	predicateErr := errors.New("bad predicate")
	_, err := store.DeleteRows("users", func(core.Row) (bool, error) {
		return false, predicateErr
	})
	if !errors.Is(err, predicateErr) {
		t.Fatalf("Expected predicate error, got %v", err)
	}

	// The data file must be untouched after a failed delete.
	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 row after failed delete, got %d", len(rows))
	}
}

func TestDropTable(t *testing.T) {
	store := newTestStore(t)

	if err := store.DropTable("users"); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}
	if store.TableExists("users") {
		t.Error("Expected table to be gone after drop")
	}

	err := store.DropTable("users")
	var notFound TableNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected TableNotFoundError, got %v", err)
	}
}

func TestListTables(t *testing.T) {
	store := NewMemoryStore()

	if tables := store.ListTables(); len(tables) != 0 {
		t.Fatalf("Expected no tables in a fresh store, got %v", tables)
	}

	for _, name := range []string{"orders", "users", "accounts"} {
		schema := core.Schema{Table: name, Columns: []core.Column{{Name: "id", Type: core.Int()}}}
		if err := store.CreateTable(schema); err != nil {
			t.Fatalf("Failed to create table %s: %v", name, err)
		}
	}

	expected := []string{"accounts", "orders", "users"}
	if tables := store.ListTables(); !reflect.DeepEqual(tables, expected) {
		t.Errorf("ListTables = %v, expected %v", tables, expected)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	if err := store.CreateTable(usersSchema()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if err := store.InsertRow("users", core.Row{core.NewInt(1), core.NewString("Alice")}); err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	// A second store over the same directory sees the data.
	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen file store: %v", err)
	}

	rows, err := reopened.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	expected := []core.Row{{core.NewInt(1), core.NewString("Alice")}}
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("ReadRows = %+v, expected %+v", rows, expected)
	}
}

func TestRowRoundTripWithEscapes(t *testing.T) {
	store := newTestStore(t)

	row := core.Row{core.NewInt(1), core.NewString("a|b\\c\nd")}
	if err := store.InsertRow("users", row); err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	rows, err := store.ReadRows("users")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if !reflect.DeepEqual(rows, []core.Row{row}) {
		t.Errorf("ReadRows = %+v, expected %+v", rows, []core.Row{row})
	}
}
