// Package sql implements the FlatSQL statement parser.
//
// The parser converts one SQL statement string into a typed AST with no
// I/O and no shared state:
//
//	parser := sql.NewParser("SELECT * FROM users WHERE id > 1;")
//	statement, err := parser.Parse()
//	if err != nil {
//	    // err is a *SyntaxError carrying the unparsed remainder
//	}
//	rest := parser.Remaining()
//
// # Grammar
//
// Supported statements:
//   - CREATE TABLE name (col TYPE, ...)
//   - INSERT INTO name VALUES (v, ...)
//   - SELECT cols FROM name [JOIN ...] [WHERE cond]
//   - UPDATE name SET col = v, ... [WHERE cond]
//   - DELETE FROM name [WHERE cond]
//   - DROP TABLE name
//
// Keywords are matched exactly as written (upper case); identifiers are
// case-sensitive. The trailing semicolon is optional. A WHERE clause admits
// exactly one binary condition; there are no boolean connectives. String
// literals cannot contain a quote character: the grammar has no escape
// syntax.
package sql
