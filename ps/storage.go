package ps

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"

	"github.com/flatsql/flatsql/core"
)

// Assignment sets one column to a new value during an update.
type Assignment struct {
	Column string
	Value  core.Value
}

// RowPredicate decides whether a row is affected by an update or delete.
type RowPredicate func(row core.Row) (bool, error)

// Store persists tables on a billy filesystem, one schema file and one data
// file per table. Access is serialized per table name.
type Store struct {
	fs      billy.Filesystem
	history *History

	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

func NewMemoryStore() *Store {
	return &Store{
		fs:     memfs.New(),
		tables: make(map[string]*sync.Mutex),
	}
}

func NewFileStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Store{
		fs:     osfs.New(dir),
		tables: make(map[string]*sync.Mutex),
	}, nil
}

// Track enables change history: every mutation from here on is committed to
// a git repository rooted at the store's filesystem.
func (store *Store) Track(identity core.Identity) error {
	history, err := newHistory(store.fs, identity)
	if err != nil {
		return fmt.Errorf("failed to enable tracking: %w", err)
	}

	store.history = history
	return nil
}

// History returns the change history, or nil when tracking is disabled.
func (store *Store) History() *History {
	return store.history
}

func (store *Store) tableLock(table string) *sync.Mutex {
	store.mu.Lock()
	defer store.mu.Unlock()

	lock, ok := store.tables[table]
	if !ok {
		lock = &sync.Mutex{}
		store.tables[table] = lock
	}
	return lock
}

func schemaPath(table string) string {
	return table + ".schema"
}

func dataPath(table string) string {
	return table + ".data"
}

func (store *Store) record(message string, paths ...string) error {
	if store.history == nil {
		return nil
	}
	return store.history.Record(message, paths...)
}

// CreateTable writes the schema file and an empty data file. It fails with
// TableExistsError when a schema file for the name is already present.
func (store *Store) CreateTable(schema core.Schema) error {
	lock := store.tableLock(schema.Table)
	lock.Lock()
	defer lock.Unlock()

	if store.tableExists(schema.Table) {
		return TableExistsError{Table: schema.Table}
	}

	if err := util.WriteFile(store.fs, schemaPath(schema.Table), core.EncodeSchema(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	if err := util.WriteFile(store.fs, dataPath(schema.Table), nil, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}

	return store.record(
		fmt.Sprintf("Creating table %s", schema.Table),
		schemaPath(schema.Table), dataPath(schema.Table))
}

// LoadSchema reads and decodes the table's schema file.
func (store *Store) LoadSchema(table string) (core.Schema, error) {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	return store.loadSchema(table)
}

func (store *Store) loadSchema(table string) (core.Schema, error) {
	data, err := util.ReadFile(store.fs, schemaPath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return core.Schema{}, TableNotFoundError{Table: table}
		}
		return core.Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	return core.DecodeSchema(table, data)
}

// InsertRow validates the row against the schema and appends it to the data
// file. Validation failures perform no write.
func (store *Store) InsertRow(table string, row core.Row) error {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	schema, err := store.loadSchema(table)
	if err != nil {
		return err
	}

	if len(row) != len(schema.Columns) {
		return ColumnCountError{Table: table, Expected: len(schema.Columns), Got: len(row)}
	}
	for i, value := range row {
		if err := core.CheckValue(value, schema.Columns[i]); err != nil {
			return err
		}
	}

	file, err := store.fs.OpenFile(dataPath(table), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}

	if _, err := file.Write([]byte(core.EncodeRow(row) + "\n")); err != nil {
		file.Close()
		return fmt.Errorf("failed to append row: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to flush data file: %w", err)
	}

	return store.record(fmt.Sprintf("Inserting row into %s", table), dataPath(table))
}

// ReadRows decodes every non-blank line of the data file in insertion order.
// A missing or empty data file yields no rows.
func (store *Store) ReadRows(table string) ([]core.Row, error) {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	if !store.tableExists(table) {
		return nil, TableNotFoundError{Table: table}
	}

	return store.readRows(table)
}

func (store *Store) readRows(table string) ([]core.Row, error) {
	data, err := util.ReadFile(store.fs, dataPath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var rows []core.Row
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		row, err := core.DecodeRow(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// UpdateRows applies the assignments to every row matching the predicate
// (a nil predicate matches all rows) and rewrites the data file. The
// rewrite goes through a temporary file, so on error the original data file
// is left untouched. Returns the number of rows updated.
func (store *Store) UpdateRows(table string, assignments []Assignment, predicate RowPredicate) (int, error) {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	schema, err := store.loadSchema(table)
	if err != nil {
		return 0, err
	}

	rows, err := store.readRows(table)
	if err != nil {
		return 0, err
	}

	affected := 0
	for i, row := range rows {
		matched := true
		if predicate != nil {
			matched, err = predicate(row)
			if err != nil {
				return 0, err
			}
		}
		if !matched {
			continue
		}

		updated := make(core.Row, len(row))
		copy(updated, row)
		for _, assignment := range assignments {
			index := schema.ColumnIndex(assignment.Column)
			if index < 0 || index >= len(updated) {
				continue
			}
			if err := core.CheckValue(assignment.Value, schema.Columns[index]); err != nil {
				return 0, err
			}
			updated[index] = assignment.Value
		}
		rows[i] = updated
		affected++
	}

	if err := store.rewriteRows(table, rows); err != nil {
		return 0, err
	}

	if err := store.record(fmt.Sprintf("Updating %d row(s) in %s", affected, table), dataPath(table)); err != nil {
		return affected, err
	}
	return affected, nil
}

// DeleteRows removes every row matching the predicate (a nil predicate
// matches all rows) and rewrites the data file. Returns the number of rows
// removed.
func (store *Store) DeleteRows(table string, predicate RowPredicate) (int, error) {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	if !store.tableExists(table) {
		return 0, TableNotFoundError{Table: table}
	}

	rows, err := store.readRows(table)
	if err != nil {
		return 0, err
	}

	var surviving []core.Row
	affected := 0
	for _, row := range rows {
		matched := true
		if predicate != nil {
			matched, err = predicate(row)
			if err != nil {
				return 0, err
			}
		}
		if matched {
			affected++
			continue
		}
		surviving = append(surviving, row)
	}

	if err := store.rewriteRows(table, surviving); err != nil {
		return 0, err
	}

	if err := store.record(fmt.Sprintf("Deleting %d row(s) from %s", affected, table), dataPath(table)); err != nil {
		return affected, err
	}
	return affected, nil
}

// rewriteRows replaces the data file's contents through a temporary file
// and a rename.
func (store *Store) rewriteRows(table string, rows []core.Row) error {
	var builder strings.Builder
	for _, row := range rows {
		builder.WriteString(core.EncodeRow(row))
		builder.WriteByte('\n')
	}

	tmp, err := store.fs.TempFile("", table+".data")
	if err != nil {
		return fmt.Errorf("failed to create temporary data file: %w", err)
	}

	if _, err := tmp.Write([]byte(builder.String())); err != nil {
		tmp.Close()
		store.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to write temporary data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		store.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to flush temporary data file: %w", err)
	}

	if err := store.fs.Rename(tmp.Name(), dataPath(table)); err != nil {
		store.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}

// DropTable removes the schema and data files. A missing data file is
// tolerated.
func (store *Store) DropTable(table string) error {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	if !store.tableExists(table) {
		return TableNotFoundError{Table: table}
	}

	if err := store.fs.Remove(schemaPath(table)); err != nil {
		return fmt.Errorf("failed to remove schema file: %w", err)
	}
	if err := store.fs.Remove(dataPath(table)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove data file: %w", err)
	}

	return store.record(
		fmt.Sprintf("Dropping table %s", table),
		schemaPath(table), dataPath(table))
}

// ListTables returns every table name with a schema file, sorted. A missing
// or unreadable directory yields an empty list.
func (store *Store) ListTables() []string {
	entries, err := store.fs.ReadDir(".")
	if err != nil {
		return nil
	}

	var tables []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".schema"); ok {
			tables = append(tables, name)
		}
	}

	sort.Strings(tables)
	return tables
}

// TableExists reports whether a schema file exists for the name. It does
// not validate the schema's contents.
func (store *Store) TableExists(table string) bool {
	lock := store.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	return store.tableExists(table)
}

func (store *Store) tableExists(table string) bool {
	_, err := store.fs.Stat(schemaPath(table))
	return err == nil
}
