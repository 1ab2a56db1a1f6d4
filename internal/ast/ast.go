package ast

import (
	"github.com/rholab/rhoscope/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Process is a Node that represents a runnable process term.
type Process interface {
	Node
	processNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File      string // Source file path
	Processes []Process
}

func (p *Program) TokenLiteral() string {
	if len(p.Processes) > 0 {
		return p.Processes[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Processes) == 0 {
		return token.Token{}
	}
	return p.Processes[0].GetToken()
}

// NilLiteral represents the stopped process Nil.
type NilLiteral struct {
	Token token.Token
}

func (n *NilLiteral) processNode()         {}
func (n *NilLiteral) TokenLiteral() string { return n.Token.Lexeme }
func (n *NilLiteral) GetToken() token.Token {
	if n == nil {
		return token.Token{}
	}
	return n.Token
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntLiteral) processNode()         {}
func (il *IntLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// BoolLiteral represents boolean literals true/false.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (b *BoolLiteral) processNode()         {}
func (b *BoolLiteral) TokenLiteral() string { return b.Token.Lexeme }
func (b *BoolLiteral) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// StringLiteral represents a string, e.g. "hello"
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) processNode()         {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// UriLiteral represents an unforgeable-name URI, e.g. `rho:io:stdout`
type UriLiteral struct {
	Token token.Token
	Value string
}

func (ul *UriLiteral) processNode()         {}
func (ul *UriLiteral) TokenLiteral() string { return ul.Token.Lexeme }
func (ul *UriLiteral) GetToken() token.Token {
	if ul == nil {
		return token.Token{}
	}
	return ul.Token
}

// Var represents a variable reference or binder, e.g. a channel name.
type Var struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (v *Var) processNode()         {}
func (v *Var) TokenLiteral() string { return v.Token.Lexeme }
func (v *Var) GetToken() token.Token {
	if v == nil {
		return token.Token{}
	}
	return v.Token
}

// Wildcard represents the anonymous binder _
type Wildcard struct {
	Token token.Token
}

func (w *Wildcard) processNode()         {}
func (w *Wildcard) TokenLiteral() string { return w.Token.Lexeme }
func (w *Wildcard) GetToken() token.Token {
	if w == nil {
		return token.Token{}
	}
	return w.Token
}

// Quote lifts a process into a name, e.g. @"hello" or @{x!(1)}
type Quote struct {
	Token token.Token // The '@' token
	Proc  Process
}

func (q *Quote) processNode()         {}
func (q *Quote) TokenLiteral() string { return q.Token.Lexeme }
func (q *Quote) GetToken() token.Token {
	if q == nil {
		return token.Token{}
	}
	return q.Token
}

// ListLiteral represents a list, e.g. [1, 2, 3]
type ListLiteral struct {
	Token    token.Token // The '[' token
	Elements []Process
}

func (ll *ListLiteral) processNode()         {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token {
	if ll == nil {
		return token.Token{}
	}
	return ll.Token
}

// TupleLiteral represents a tuple, e.g. (1, "two")
type TupleLiteral struct {
	Token    token.Token // The '(' token
	Elements []Process
}

func (tl *TupleLiteral) processNode()         {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token {
	if tl == nil {
		return token.Token{}
	}
	return tl.Token
}

// SetLiteral represents a set, e.g. Set(1, 2)
type SetLiteral struct {
	Token    token.Token // The 'Set' token
	Elements []Process
}

func (sl *SetLiteral) processNode()         {}
func (sl *SetLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *SetLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// MapPair is one key/value entry of a MapLiteral.
type MapPair struct {
	Key   Process
	Value Process
}

// MapLiteral represents a map, e.g. {"type": "click", "x": 1}
type MapLiteral struct {
	Token token.Token // The '{' token
	Pairs []MapPair
}

func (ml *MapLiteral) processNode()         {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Lexeme }
func (ml *MapLiteral) GetToken() token.Token {
	if ml == nil {
		return token.Token{}
	}
	return ml.Token
}

// Send represents a message send on a channel, e.g. greet!("hello")
type Send struct {
	Token token.Token // The '!' token
	Chan  Process     // Var or Quote
	Args  []Process
}

func (s *Send) processNode()         {}
func (s *Send) TokenLiteral() string { return s.Token.Lexeme }
func (s *Send) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// ChanName returns the textual channel name when the channel is a plain
// variable, or "" otherwise.
func (s *Send) ChanName() string {
	if v, ok := s.Chan.(*Var); ok {
		return v.Value
	}
	return ""
}

// Par represents parallel composition, e.g. P | Q
type Par struct {
	Token token.Token // The '|' token
	Left  Process
	Right Process
}

func (p *Par) processNode()         {}
func (p *Par) TokenLiteral() string { return p.Token.Lexeme }
func (p *Par) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// NameDecl is one binding of a new block, with an optional URI attachment.
// new stdout(`rho:io:stdout`), x in { ... }
type NameDecl struct {
	Name *Var
	Uri  *UriLiteral // Optional
}

func (nd *NameDecl) GetToken() token.Token {
	if nd == nil || nd.Name == nil {
		return token.Token{}
	}
	return nd.Name.Token
}

// New represents a name declaration block.
type New struct {
	Token token.Token // The 'new' token
	Decls []*NameDecl
	Body  Process
}

func (n *New) processNode()         {}
func (n *New) TokenLiteral() string { return n.Token.Lexeme }
func (n *New) GetToken() token.Token {
	if n == nil {
		return token.Token{}
	}
	return n.Token
}

// Contract represents a contract definition.
// contract greet(@"hello") = { ... }
// Params are name patterns: Quote (a pattern under @), Var, or Wildcard.
type Contract struct {
	Token  token.Token // The 'contract' token
	Name   *Var
	Params []Process
	Body   Process
}

func (c *Contract) processNode()         {}
func (c *Contract) TokenLiteral() string { return c.Token.Lexeme }
func (c *Contract) GetToken() token.Token {
	if c == nil {
		return token.Token{}
	}
	return c.Token
}

// For represents a receive, e.g. for (@x, @y <- ch) { ... }
type For struct {
	Token    token.Token // The 'for' token
	Bindings []Process   // Name patterns, same shapes as Contract.Params
	Chan     Process     // Var or Quote
	Body     Process
}

func (f *For) processNode()         {}
func (f *For) TokenLiteral() string { return f.Token.Lexeme }
func (f *For) GetToken() token.Token {
	if f == nil {
		return token.Token{}
	}
	return f.Token
}

// MatchCase is one arm of a Match.
type MatchCase struct {
	Pattern Process
	Body    Process
}

// Match represents a pattern match, e.g. match x { "a" => { ... } _ => { ... } }
type Match struct {
	Token     token.Token // The 'match' token
	Scrutinee Process
	Cases     []*MatchCase
}

func (m *Match) processNode()         {}
func (m *Match) TokenLiteral() string { return m.Token.Lexeme }
func (m *Match) GetToken() token.Token {
	if m == nil {
		return token.Token{}
	}
	return m.Token
}

// Block represents a braced process, e.g. { P }. The braces matter for
// position reporting, so they are kept as an explicit node.
type Block struct {
	Token  token.Token // The '{' token
	Body   Process     // NilLiteral when the block is empty
	RBrace token.Token // The '}' token
}

func (b *Block) processNode()         {}
func (b *Block) TokenLiteral() string { return b.Token.Lexeme }
func (b *Block) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}
