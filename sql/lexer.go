package sql

type TokenType int

const (
	Identifier TokenType = iota
	Keyword
	String
	Int
	Wildcard
	Comma
	Dot
	ParenOpen
	ParenClose
	Semicolon
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	EOF
	Unknown
)

// Token is one lexical unit. Pos is the byte offset of the token's first
// character in the original input, used to report the unparsed remainder.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case Keyword:
		return token.Value
	case String:
		return "String(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case Wildcard:
		return "*"
	case Comma:
		return ","
	case Dot:
		return "."
	case ParenOpen:
		return "("
	case ParenClose:
		return ")"
	case Semicolon:
		return ";"
	case Equals:
		return "="
	case NotEquals:
		return "!="
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	case EOF:
		return "EOF"
	default:
		return "Unknown(" + token.Value + ")"
	}
}

// keywords holds the reserved words of the grammar. Matching is exact:
// lower or mixed case spellings lex as plain identifiers, which the parser
// then rejects. This mirrors the reference dialect, which never matched
// keywords case-insensitively.
var keywords = map[string]bool{
	"CREATE":  true,
	"TABLE":   true,
	"INSERT":  true,
	"INTO":    true,
	"VALUES":  true,
	"SELECT":  true,
	"FROM":    true,
	"WHERE":   true,
	"UPDATE":  true,
	"SET":     true,
	"DELETE":  true,
	"DROP":    true,
	"JOIN":    true,
	"INNER":   true,
	"LEFT":    true,
	"RIGHT":   true,
	"ON":      true,
	"NULL":    true,
	"INT":     true,
	"VARCHAR": true,
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()

	pos := lexer.position
	var token Token

	switch lexer.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case ',':
		token = Token{Type: Comma, Value: ",", Pos: pos}
	case '.':
		token = Token{Type: Dot, Value: ".", Pos: pos}
	case '(':
		token = Token{Type: ParenOpen, Value: "(", Pos: pos}
	case ')':
		token = Token{Type: ParenClose, Value: ")", Pos: pos}
	case ';':
		token = Token{Type: Semicolon, Value: ";", Pos: pos}
	case '*':
		token = Token{Type: Wildcard, Value: "*", Pos: pos}
	case '\'':
		value, ok := lexer.readString()
		if !ok {
			return Token{Type: Unknown, Value: value, Pos: pos}
		}
		return Token{Type: String, Value: value, Pos: pos}
	default:
		if isOperator(lexer.ch) {
			operator := lexer.readOperator()
			switch operator {
			case "=":
				return Token{Type: Equals, Value: operator, Pos: pos}
			case "!=":
				return Token{Type: NotEquals, Value: operator, Pos: pos}
			case "<":
				return Token{Type: LessThan, Value: operator, Pos: pos}
			case ">":
				return Token{Type: GreaterThan, Value: operator, Pos: pos}
			case "<=":
				return Token{Type: LessThanOrEqual, Value: operator, Pos: pos}
			case ">=":
				return Token{Type: GreaterThanOrEqual, Value: operator, Pos: pos}
			default:
				return Token{Type: Unknown, Value: operator, Pos: pos}
			}
		} else if isDigit(lexer.ch) {
			return Token{Type: Int, Value: lexer.readNumber(), Pos: pos}
		} else if lexer.ch == '-' {
			// Only a negative integer literal, never a bare minus.
			lexer.readChar()
			if !isDigit(lexer.ch) {
				return Token{Type: Unknown, Value: "-", Pos: pos}
			}
			return Token{Type: Int, Value: "-" + lexer.readNumber(), Pos: pos}
		} else if isLetter(lexer.ch) {
			literal := lexer.readIdentifier()
			if keywords[literal] {
				return Token{Type: Keyword, Value: literal, Pos: pos}
			}
			return Token{Type: Identifier, Value: literal, Pos: pos}
		}
		return Token{Type: Unknown, Value: string(lexer.ch), Pos: pos}
	}

	lexer.readChar()
	return token
}

// PeekToken returns the next token without consuming it.
func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

// Position returns the byte offset of the next unread character.
func (lexer *Lexer) Position() int {
	return lexer.position
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

// readIdentifier consumes letter (letter | digit | "_")*. The first
// character is known to be a letter.
func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	lexer.readChar()
	for isLetter(lexer.ch) || isDigit(lexer.ch) || lexer.ch == '_' {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readString consumes a quoted literal. There is no escape syntax: the
// literal runs to the next quote. ok is false when the closing quote is
// missing.
func (lexer *Lexer) readString() (value string, ok bool) {
	lexer.readChar() // skip opening quote
	position := lexer.position
	for lexer.ch != '\'' && lexer.ch != 0 {
		lexer.readChar()
	}
	value = lexer.sql[position:lexer.position]
	if lexer.ch != '\'' {
		return value, false
	}
	lexer.readChar() // skip closing quote
	return value, true
}

func (lexer *Lexer) readNumber() string {
	position := lexer.position
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func (lexer *Lexer) readOperator() string {
	position := lexer.position
	for isOperator(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}
