package token

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string // Raw text as it appears in the source
	Literal string // Decoded value (e.g. string without quotes)
	Line    int    // 1-based
	Column  int    // 1-based
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	STRING TokenType = "STRING"
	URI    TokenType = "URI" // `rho:io:stdout`

	// Operators and punctuation
	AT       TokenType = "@"
	BANG     TokenType = "!"
	PIPE     TokenType = "|"
	LARROW   TokenType = "<-"
	WEDGE    TokenType = "=>"
	ASSIGN   TokenType = "="
	COMMA    TokenType = ","
	COLON    TokenType = ":"
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	WILDCARD TokenType = "_"

	// Keywords
	NEW      TokenType = "NEW"
	IN       TokenType = "IN"
	CONTRACT TokenType = "CONTRACT"
	FOR      TokenType = "FOR"
	MATCH    TokenType = "MATCH"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	NIL      TokenType = "NIL"
	SET      TokenType = "SET"
)

var keywords = map[string]TokenType{
	"new":      NEW,
	"in":       IN,
	"contract": CONTRACT,
	"for":      FOR,
	"match":    MATCH,
	"true":     TRUE,
	"false":    FALSE,
	"Nil":      NIL,
	"Set":      SET,
}

// LookupIdent returns the keyword type for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// Span is a half-open source range identified by file path.
// The pattern index stores spans opaquely; it never inspects them.
type Span struct {
	File  string
	Start Pos
	End   Pos
}

// Contains reports whether p falls inside the span (end-exclusive).
func (s Span) Contains(p Pos) bool {
	if p.Line < s.Start.Line || p.Line > s.End.Line {
		return false
	}
	if p.Line == s.Start.Line && p.Column < s.Start.Column {
		return false
	}
	if p.Line == s.End.Line && p.Column >= s.End.Column {
		return false
	}
	return true
}

// ContainsInclusive is Contains with the end position allowed, for cursors
// touching the end of a token.
func (s Span) ContainsInclusive(p Pos) bool {
	if p.Line < s.Start.Line || p.Line > s.End.Line {
		return false
	}
	if p.Line == s.Start.Line && p.Column < s.Start.Column {
		return false
	}
	if p.Line == s.End.Line && p.Column > s.End.Column {
		return false
	}
	return true
}
