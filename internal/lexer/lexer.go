package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/rholab/rhoscope/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	var tok token.Token

	switch l.ch {
	case '@':
		tok = newToken(token.AT, l.ch, l.line, l.column)
	case '!':
		tok = newToken(token.BANG, l.ch, l.line, l.column)
	case '|':
		tok = newToken(token.PIPE, l.ch, l.line, l.column)
	case '=':
		if l.peekChar() == '>' {
			line, col := l.line, l.column
			l.readChar()
			tok = token.Token{Type: token.WEDGE, Lexeme: "=>", Literal: "=>", Line: line, Column: col}
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '-' {
			line, col := l.line, l.column
			l.readChar()
			tok = token.Token{Type: token.LARROW, Lexeme: "<-", Literal: "<-", Line: line, Column: col}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ':':
		tok = newToken(token.COLON, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '"':
		return l.readString()
	case '`':
		return l.readUri()
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Literal: "", Line: l.line, Column: l.column}
	default:
		if l.ch == '_' && !isIdentPart(l.peekChar()) {
			tok = newToken(token.WILDCARD, l.ch, l.line, l.column)
		} else if isIdentStart(l.ch) {
			return l.readIdentifier()
		} else if unicode.IsDigit(l.ch) || (l.ch == '-' && unicode.IsDigit(l.peekChar())) {
			return l.readNumber()
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // /
			l.readChar() // *
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readIdentifier() token.Token {
	line, col := l.line, l.column
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) readNumber() token.Token {
	line, col := l.line, l.column
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) readString() token.Token {
	line, col := l.line, l.column
	start := l.position
	l.readChar() // consume opening quote
	var sb []rune
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb = append(sb, '\n')
			case 't':
				sb = append(sb, '\t')
			case '\\':
				sb = append(sb, '\\')
			case '"':
				sb = append(sb, '"')
			default:
				sb = append(sb, l.ch)
			}
		} else {
			sb = append(sb, l.ch)
		}
		l.readChar()
	}
	if l.ch == 0 {
		lexeme := l.input[start:l.position]
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "unterminated string", Line: line, Column: col}
	}
	l.readChar() // consume closing quote
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: string(sb), Line: line, Column: col}
}

func (l *Lexer) readUri() token.Token {
	line, col := l.line, l.column
	start := l.position
	l.readChar() // consume opening backtick
	contentStart := l.position
	for l.ch != '`' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == 0 {
		lexeme := l.input[start:l.position]
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "unterminated uri", Line: line, Column: col}
	}
	literal := l.input[contentStart:l.position]
	l.readChar() // consume closing backtick
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.URI, Lexeme: lexeme, Literal: literal, Line: line, Column: col}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func newToken(tokenType token.TokenType, ch rune, line, column int) token.Token {
	s := string(ch)
	return token.Token{Type: tokenType, Lexeme: s, Literal: s, Line: line, Column: column}
}

// ParseInt decodes the literal of an INT token.
func ParseInt(tok token.Token) (int64, error) {
	return strconv.ParseInt(tok.Literal, 10, 64)
}
