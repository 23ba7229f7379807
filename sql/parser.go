package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flatsql/flatsql/core"
)

type StatementType int

const (
	CreateTableStatementType StatementType = iota
	InsertStatementType
	SelectStatementType
	UpdateStatementType
	DeleteStatementType
	DropTableStatementType
)

type Statement interface {
	Type() StatementType
}

type CreateTableStatement struct {
	Table   string
	Columns []core.Column
}

type InsertStatement struct {
	Table  string
	Values []core.Value
}

type SelectStatement struct {
	Columns   []SelectColumn
	From      string
	FromAlias string
	Joins     []JoinClause
	Where     *WhereClause
}

type UpdateStatement struct {
	Table string
	Set   []SetClause
	Where *WhereClause
}

type SetClause struct {
	Column string
	Value  core.Value
}

type DeleteStatement struct {
	Table string
	Where *WhereClause
}

type DropTableStatement struct {
	Table string
}

type SelectColumnKind int

const (
	SelectAll SelectColumnKind = iota
	SelectColumnName
	SelectQualifiedColumn
)

// SelectColumn is one projection entry: *, a bare column name, or a
// table.column reference.
type SelectColumn struct {
	Kind  SelectColumnKind
	Table string
	Name  string
}

type WhereClause struct {
	Condition Condition
}

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
)

type JoinClause struct {
	Join  JoinType
	Table string
	Alias string
	On    Condition
}

type Condition struct {
	Left     Expression
	Operator Operator
	Right    Expression
}

type ExpressionKind int

const (
	ColumnExpression ExpressionKind = iota
	QualifiedColumnExpression
	LiteralExpression
)

type Expression struct {
	Kind    ExpressionKind
	Table   string
	Name    string
	Literal core.Value
}

type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpGreaterThan
	OpLessThan
	OpGreaterThanOrEqual
	OpLessThanOrEqual
)

func (s CreateTableStatement) Type() StatementType { return CreateTableStatementType }
func (s InsertStatement) Type() StatementType      { return InsertStatementType }
func (s SelectStatement) Type() StatementType      { return SelectStatementType }
func (s UpdateStatement) Type() StatementType      { return UpdateStatementType }
func (s DeleteStatement) Type() StatementType      { return DeleteStatementType }
func (s DropTableStatement) Type() StatementType   { return DropTableStatementType }

// SyntaxError is the single failure value of the parser. Remaining holds
// the input from the first token that could not be matched; no partial AST
// accompanies it.
type SyntaxError struct {
	Expected  string
	Remaining string
}

func (e *SyntaxError) Error() string {
	if e.Remaining == "" {
		return fmt.Sprintf("syntax error: expected %s at end of input", e.Expected)
	}
	return fmt.Sprintf("syntax error: expected %s near %q", e.Expected, e.Remaining)
}

type Parser struct {
	input string
	lexer *Lexer
	rest  string
}

func NewParser(sql string) *Parser {
	return &Parser{input: sql, lexer: NewLexer(sql)}
}

// Remaining returns the unconsumed input after a successful Parse: the text
// following the statement and its optional semicolon, with leading
// whitespace trimmed.
func (parser *Parser) Remaining() string {
	return parser.rest
}

// errorAt builds a SyntaxError pointing at the offending token.
func (parser *Parser) errorAt(expected string, token Token) error {
	return &SyntaxError{
		Expected:  expected,
		Remaining: parser.input[min(token.Pos, len(parser.input)):],
	}
}

// expectKeyword consumes the next token and requires it to be the given
// exact-case keyword.
func (parser *Parser) expectKeyword(word string) error {
	token := parser.lexer.NextToken()
	if token.Type != Keyword || token.Value != word {
		return parser.errorAt(word, token)
	}
	return nil
}

func (parser *Parser) expectIdentifier(what string) (string, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier {
		return "", parser.errorAt(what, token)
	}
	return token.Value, nil
}

func (parser *Parser) expect(tokenType TokenType, what string) (Token, error) {
	token := parser.lexer.NextToken()
	if token.Type != tokenType {
		return token, parser.errorAt(what, token)
	}
	return token, nil
}

// Parse parses exactly one statement. The trailing semicolon is optional;
// text after it is left unconsumed and reported by Remaining.
func (parser *Parser) Parse() (Statement, error) {
	token := parser.lexer.NextToken()

	var (
		statement Statement
		err       error
	)

	switch {
	case token.Type == Keyword && token.Value == "CREATE":
		statement, err = parser.parseCreateTable()
	case token.Type == Keyword && token.Value == "INSERT":
		statement, err = parser.parseInsert()
	case token.Type == Keyword && token.Value == "SELECT":
		statement, err = parser.parseSelect()
	case token.Type == Keyword && token.Value == "UPDATE":
		statement, err = parser.parseUpdate()
	case token.Type == Keyword && token.Value == "DELETE":
		statement, err = parser.parseDelete()
	case token.Type == Keyword && token.Value == "DROP":
		statement, err = parser.parseDropTable()
	default:
		return nil, parser.errorAt("statement", token)
	}
	if err != nil {
		return nil, err
	}

	if parser.lexer.PeekToken().Type == Semicolon {
		parser.lexer.NextToken()
	}
	parser.rest = strings.TrimLeft(parser.input[min(parser.lexer.Position(), len(parser.input)):], " \t\n\r")

	return statement, nil
}

func (parser *Parser) parseCreateTable() (Statement, error) {
	if err := parser.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	table, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}

	if _, err := parser.expect(ParenOpen, "("); err != nil {
		return nil, err
	}

	var columns []core.Column
	for {
		column, err := parser.parseColumnDefinition()
		if err != nil {
			return nil, err
		}
		columns = append(columns, column)

		token := parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		}
		if token.Type == ParenClose {
			break
		}
		return nil, parser.errorAt(", or )", token)
	}

	return CreateTableStatement{Table: table, Columns: columns}, nil
}

func (parser *Parser) parseColumnDefinition() (core.Column, error) {
	name, err := parser.expectIdentifier("column name")
	if err != nil {
		return core.Column{}, err
	}

	token := parser.lexer.NextToken()
	if token.Type != Keyword {
		return core.Column{}, parser.errorAt("column type", token)
	}

	switch token.Value {
	case "INT":
		return core.Column{Name: name, Type: core.Int()}, nil
	case "VARCHAR":
		if parser.lexer.PeekToken().Type != ParenOpen {
			return core.Column{Name: name, Type: core.Varchar(nil)}, nil
		}
		parser.lexer.NextToken()
		sizeToken, err := parser.expect(Int, "VARCHAR size")
		if err != nil {
			return core.Column{}, err
		}
		size, convErr := strconv.Atoi(sizeToken.Value)
		if convErr != nil || size < 0 {
			return core.Column{}, parser.errorAt("VARCHAR size", sizeToken)
		}
		if _, err := parser.expect(ParenClose, ")"); err != nil {
			return core.Column{}, err
		}
		return core.Column{Name: name, Type: core.VarcharN(size)}, nil
	default:
		return core.Column{}, parser.errorAt("column type", token)
	}
}

func (parser *Parser) parseInsert() (Statement, error) {
	if err := parser.expectKeyword("INTO"); err != nil {
		return nil, err
	}

	table, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}

	if err := parser.expectKeyword("VALUES"); err != nil {
		return nil, err
	}

	if _, err := parser.expect(ParenOpen, "("); err != nil {
		return nil, err
	}

	var values []core.Value
	for {
		value, err := parser.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		token := parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		}
		if token.Type == ParenClose {
			break
		}
		return nil, parser.errorAt(", or )", token)
	}

	return InsertStatement{Table: table, Values: values}, nil
}

func (parser *Parser) parseValue() (core.Value, error) {
	token := parser.lexer.NextToken()
	switch {
	case token.Type == String:
		return core.NewString(token.Value), nil
	case token.Type == Int:
		n, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return core.Value{}, parser.errorAt("integer literal", token)
		}
		return core.NewInt(n), nil
	case token.Type == Keyword && token.Value == "NULL":
		return core.Null(), nil
	default:
		return core.Value{}, parser.errorAt("value", token)
	}
}

func (parser *Parser) parseSelect() (Statement, error) {
	var statement SelectStatement

	for {
		column, err := parser.parseSelectColumn()
		if err != nil {
			return nil, err
		}
		statement.Columns = append(statement.Columns, column)

		if parser.lexer.PeekToken().Type != Comma {
			break
		}
		parser.lexer.NextToken()
	}

	if err := parser.expectKeyword("FROM"); err != nil {
		return nil, err
	}

	from, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}
	statement.From = from

	if peek := parser.lexer.PeekToken(); peek.Type == Identifier {
		parser.lexer.NextToken()
		statement.FromAlias = peek.Value
	}

	for {
		peek := parser.lexer.PeekToken()
		if peek.Type != Keyword {
			break
		}
		if peek.Value != "JOIN" && peek.Value != "INNER" && peek.Value != "LEFT" && peek.Value != "RIGHT" {
			break
		}
		join, err := parser.parseJoin()
		if err != nil {
			return nil, err
		}
		statement.Joins = append(statement.Joins, join)
	}

	where, err := parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	statement.Where = where

	return statement, nil
}

func (parser *Parser) parseSelectColumn() (SelectColumn, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case Wildcard:
		return SelectColumn{Kind: SelectAll}, nil
	case Identifier:
		if parser.lexer.PeekToken().Type != Dot {
			return SelectColumn{Kind: SelectColumnName, Name: token.Value}, nil
		}
		parser.lexer.NextToken()
		name, err := parser.expectIdentifier("column name")
		if err != nil {
			return SelectColumn{}, err
		}
		return SelectColumn{Kind: SelectQualifiedColumn, Table: token.Value, Name: name}, nil
	default:
		return SelectColumn{}, parser.errorAt("column or *", token)
	}
}

func (parser *Parser) parseJoin() (JoinClause, error) {
	join := JoinClause{Join: InnerJoin}

	token := parser.lexer.NextToken()
	switch token.Value {
	case "INNER", "LEFT", "RIGHT":
		switch token.Value {
		case "LEFT":
			join.Join = LeftJoin
		case "RIGHT":
			join.Join = RightJoin
		}
		if err := parser.expectKeyword("JOIN"); err != nil {
			return JoinClause{}, err
		}
	case "JOIN":
		// Bare JOIN defaults to INNER.
	default:
		return JoinClause{}, parser.errorAt("JOIN", token)
	}

	table, err := parser.expectIdentifier("join table")
	if err != nil {
		return JoinClause{}, err
	}
	join.Table = table

	// An optional alias, which must not swallow the ON keyword.
	if peek := parser.lexer.PeekToken(); peek.Type == Identifier {
		parser.lexer.NextToken()
		join.Alias = peek.Value
	}

	if err := parser.expectKeyword("ON"); err != nil {
		return JoinClause{}, err
	}

	condition, err := parser.parseCondition()
	if err != nil {
		return JoinClause{}, err
	}
	join.On = condition

	return join, nil
}

func (parser *Parser) parseOptionalWhere() (*WhereClause, error) {
	peek := parser.lexer.PeekToken()
	if peek.Type != Keyword || peek.Value != "WHERE" {
		return nil, nil
	}
	parser.lexer.NextToken()

	condition, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	return &WhereClause{Condition: condition}, nil
}

func (parser *Parser) parseCondition() (Condition, error) {
	left, err := parser.parseExpression()
	if err != nil {
		return Condition{}, err
	}

	operator, err := parser.parseOperator()
	if err != nil {
		return Condition{}, err
	}

	right, err := parser.parseExpression()
	if err != nil {
		return Condition{}, err
	}

	return Condition{Left: left, Operator: operator, Right: right}, nil
}

func (parser *Parser) parseExpression() (Expression, error) {
	token := parser.lexer.NextToken()
	switch {
	case token.Type == Identifier:
		if parser.lexer.PeekToken().Type != Dot {
			return Expression{Kind: ColumnExpression, Name: token.Value}, nil
		}
		parser.lexer.NextToken()
		name, err := parser.expectIdentifier("column name")
		if err != nil {
			return Expression{}, err
		}
		return Expression{Kind: QualifiedColumnExpression, Table: token.Value, Name: name}, nil
	case token.Type == String:
		return Expression{Kind: LiteralExpression, Literal: core.NewString(token.Value)}, nil
	case token.Type == Int:
		n, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return Expression{}, parser.errorAt("integer literal", token)
		}
		return Expression{Kind: LiteralExpression, Literal: core.NewInt(n)}, nil
	case token.Type == Keyword && token.Value == "NULL":
		return Expression{Kind: LiteralExpression, Literal: core.Null()}, nil
	default:
		return Expression{}, parser.errorAt("expression", token)
	}
}

func (parser *Parser) parseOperator() (Operator, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case Equals:
		return OpEquals, nil
	case NotEquals:
		return OpNotEquals, nil
	case GreaterThanOrEqual:
		return OpGreaterThanOrEqual, nil
	case LessThanOrEqual:
		return OpLessThanOrEqual, nil
	case GreaterThan:
		return OpGreaterThan, nil
	case LessThan:
		return OpLessThan, nil
	default:
		return 0, parser.errorAt("comparison operator", token)
	}
}

func (parser *Parser) parseUpdate() (Statement, error) {
	table, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}

	if err := parser.expectKeyword("SET"); err != nil {
		return nil, err
	}

	var set []SetClause
	for {
		column, err := parser.expectIdentifier("column name")
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(Equals, "="); err != nil {
			return nil, err
		}
		value, err := parser.parseValue()
		if err != nil {
			return nil, err
		}
		set = append(set, SetClause{Column: column, Value: value})

		if parser.lexer.PeekToken().Type != Comma {
			break
		}
		parser.lexer.NextToken()
	}

	where, err := parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}

	return UpdateStatement{Table: table, Set: set, Where: where}, nil
}

func (parser *Parser) parseDelete() (Statement, error) {
	if err := parser.expectKeyword("FROM"); err != nil {
		return nil, err
	}

	table, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}

	where, err := parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}

	return DeleteStatement{Table: table, Where: where}, nil
}

func (parser *Parser) parseDropTable() (Statement, error) {
	if err := parser.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	table, err := parser.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}

	return DropTableStatement{Table: table}, nil
}
