package diagnostics

import (
	"fmt"

	"github.com/rholab/rhoscope/internal/token"
)

// Error is a positioned diagnostic produced by any pipeline stage.
type Error struct {
	Code    string // e.g. "P001" (parser), "L001" (lexer), "X001" (indexer)
	Token   token.Token
	Message string
	File    string
}

func NewError(code string, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Token.Line, e.Token.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
