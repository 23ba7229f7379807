// Package db executes SQL statements against a persistence store.
//
// The Engine parses a query, validates it against the stored schemas and
// produces a Result: row data for selects, an affected-row summary for
// everything else. Engines also dump and restore whole stores as SQL
// scripts, locally or against a remote URL.
package db
