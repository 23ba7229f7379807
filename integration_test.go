package flatsql

import (
	"reflect"
	"testing"

	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/db"
	"github.com/flatsql/flatsql/ps"
)

// runWithBothStores runs a test against a memory store and a file store.
func runWithBothStores(t *testing.T, testFunc func(t *testing.T, engine *db.Engine)) {
	t.Run("Memory", func(t *testing.T) {
		engine := Open(ps.NewMemoryStore()).Engine()
		testFunc(t, engine)
	})

	t.Run("File", func(t *testing.T) {
		store, err := ps.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to initialize file store: %v", err)
		}
		engine := Open(store).Engine()
		testFunc(t, engine)
	})
}

func execute(t *testing.T, engine *db.Engine, query string) db.Result {
	t.Helper()

	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("Execute(%q) returned error: %v", query, err)
	}
	return result
}

func TestFullLifecycle(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, engine *db.Engine) {
		execute(t, engine, "CREATE TABLE users (id INT, name VARCHAR(255), email VARCHAR);")
		execute(t, engine, "INSERT INTO users VALUES (1, 'Alice', 'alice@example.com');")
		execute(t, engine, "INSERT INTO users VALUES (2, 'Bob', NULL);")
		execute(t, engine, "INSERT INTO users VALUES (3, 'Carol', 'carol@example.com');")

		query := execute(t, engine, "SELECT name FROM users WHERE id > 1;").(db.QueryResult)
		expected := []core.Row{{core.NewString("Bob")}, {core.NewString("Carol")}}
		if !reflect.DeepEqual(query.Rows, expected) {
			t.Errorf("Select rows = %+v, expected %+v", query.Rows, expected)
		}

		exec := execute(t, engine, "UPDATE users SET email = 'bob@example.com' WHERE name = 'Bob';").(db.ExecResult)
		if exec.Affected != 1 {
			t.Errorf("Expected 1 row updated, got %d", exec.Affected)
		}

		query = execute(t, engine, "SELECT email FROM users WHERE email = NULL;").(db.QueryResult)
		if len(query.Rows) != 0 {
			t.Errorf("Expected no null emails after update, got %d rows", len(query.Rows))
		}

		exec = execute(t, engine, "DELETE FROM users WHERE id >= 2;").(db.ExecResult)
		if exec.Affected != 2 {
			t.Errorf("Expected 2 rows deleted, got %d", exec.Affected)
		}

		execute(t, engine, "DROP TABLE users;")
		if engine.Store().TableExists("users") {
			t.Error("Expected table to be gone after drop")
		}
	})
}

func TestListTablesAcrossStores(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, engine *db.Engine) {
		execute(t, engine, "CREATE TABLE orders (id INT);")
		execute(t, engine, "CREATE TABLE accounts (id INT);")

		tables := engine.Store().ListTables()
		if !reflect.DeepEqual(tables, []string{"accounts", "orders"}) {
			t.Errorf("ListTables = %v, expected [accounts orders]", tables)
		}
	})
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := ps.NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to initialize file store: %v", err)
	}
	engine := Open(store).Engine()
	execute(t, engine, "CREATE TABLE users (id INT, name VARCHAR(255));")
	execute(t, engine, "INSERT INTO users VALUES (1, 'Alice');")

	reopened, err := ps.NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen file store: %v", err)
	}
	engine = Open(reopened).Engine()

	query := execute(t, engine, "SELECT * FROM users;").(db.QueryResult)
	expected := []core.Row{{core.NewInt(1), core.NewString("Alice")}}
	if !reflect.DeepEqual(query.Rows, expected) {
		t.Errorf("Rows after reopen = %+v, expected %+v", query.Rows, expected)
	}
}

func TestTrackedStoreRecordsStatements(t *testing.T) {
	store := ps.NewMemoryStore()
	if err := store.Track(core.Identity{Name: "test", Email: "test@test.com"}); err != nil {
		t.Fatalf("Failed to enable tracking: %v", err)
	}

	engine := Open(store).Engine()
	execute(t, engine, "CREATE TABLE users (id INT);")
	execute(t, engine, "INSERT INTO users VALUES (1);")

	changes, err := store.History().Entries(0)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("Expected 2 recorded changes, got %d", len(changes))
	}
}
