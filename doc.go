// Package flatsql is a minimal single-user SQL engine over flat files.
//
// Tables live in one directory as plain text: a .schema file describing the
// columns and a .data file holding one encoded row per line. A small SQL
// dialect covers CREATE TABLE, INSERT, SELECT (with WHERE and JOINs),
// UPDATE, DELETE and DROP TABLE.
//
// # Quick Start
//
// Create an in-memory database:
//
//	instance := flatsql.Open(ps.NewMemoryStore())
//	engine := instance.Engine()
//
//	engine.Execute("CREATE TABLE users (id INT, name VARCHAR(255));")
//	engine.Execute("INSERT INTO users VALUES (1, 'Alice');")
//
//	result, _ := engine.Execute("SELECT * FROM users WHERE id = 1;")
//	db.Display(result)
//
// Or back it with a directory on disk:
//
//	store, _ := ps.NewFileStore("./data")
//	engine := flatsql.Open(store).Engine()
//
// A store can optionally track every change as a git commit, see
// ps.Store.Track.
package flatsql
