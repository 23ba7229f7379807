// Package ps is the persistence layer. Tables are stored as pairs of
// newline-delimited text files on a billy filesystem: <table>.schema holds
// the column definitions and <table>.data holds one encoded row per line.
//
// A Store serializes access per table, so a single Store is safe for
// concurrent use. The directory itself carries no locking discipline;
// two processes sharing one directory can still race.
//
// A Store can optionally track changes in a git repository rooted at the
// same filesystem, giving every mutation a commit.
package ps
