package parser

import (
	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/diagnostics"
	"github.com/rholab/rhoscope/internal/lexer"
	"github.com/rholab/rhoscope/internal/token"
)

// Parser is a recursive-descent parser for Rho. It collects diagnostics
// instead of stopping at the first error, so the LSP can surface every parse
// problem in one pass.
type Parser struct {
	tokens    []token.Token
	pos       int
	curToken  token.Token
	peekToken token.Token
	errors    []*diagnostics.Error
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []*diagnostics.Error {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line, Column: p.curToken.Column + len(p.curToken.Lexeme)}
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError("P001", tok, format, args...))
}

// ParseProgram parses the token stream into a Program. It never panics on
// malformed input; unparseable stretches are skipped after recording a
// diagnostic.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		before := p.pos
		proc := p.parseProcess()
		if proc != nil {
			prog.Processes = append(prog.Processes, proc)
		}
		p.nextToken()
		if p.pos == before && proc == nil {
			// No progress; skip the offending token.
			p.nextToken()
		}
	}
	return prog
}

// parseProcess parses a process with trailing parallel compositions.
func (p *Parser) parseProcess() ast.Process {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.peekTokenIs(token.PIPE) {
		p.nextToken() // onto '|'
		pipeTok := p.curToken
		p.nextToken() // onto the right-hand process
		right := p.parseUnary()
		if right == nil {
			return left
		}
		left = &ast.Par{Token: pipeTok, Left: left, Right: right}
	}
	return left
}

// parseUnary parses a primary process, then a send suffix if the primary is
// a channel position followed by '!'.
func (p *Parser) parseUnary() ast.Process {
	primary := p.parsePrimary()
	if primary == nil {
		return nil
	}
	if !p.peekTokenIs(token.BANG) {
		return primary
	}
	switch primary.(type) {
	case *ast.Var, *ast.Quote:
	default:
		p.errorf(p.peekToken, "send channel must be a name, got %s", primary.TokenLiteral())
		return primary
	}
	p.nextToken() // onto '!'
	send := &ast.Send{Token: p.curToken, Chan: primary}
	if !p.expectPeek(token.LPAREN) {
		return send
	}
	send.Args = p.parseProcessList(token.RPAREN)
	return send
}

func (p *Parser) parsePrimary() ast.Process {
	switch p.curToken.Type {
	case token.NIL:
		return &ast.NilLiteral{Token: p.curToken}
	case token.TRUE:
		return &ast.BoolLiteral{Token: p.curToken, Value: true}
	case token.FALSE:
		return &ast.BoolLiteral{Token: p.curToken, Value: false}
	case token.INT:
		return p.parseInt()
	case token.STRING:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.URI:
		return &ast.UriLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.IDENT:
		return &ast.Var{Token: p.curToken, Value: p.curToken.Literal}
	case token.WILDCARD:
		return &ast.Wildcard{Token: p.curToken}
	case token.AT:
		return p.parseQuote()
	case token.LBRACKET:
		return p.parseList()
	case token.LPAREN:
		return p.parseTupleOrGroup()
	case token.SET:
		return p.parseSet()
	case token.LBRACE:
		return p.parseBraced()
	case token.NEW:
		return p.parseNew()
	case token.CONTRACT:
		return p.parseContract()
	case token.FOR:
		return p.parseFor()
	case token.MATCH:
		return p.parseMatch()
	default:
		p.errorf(p.curToken, "unexpected token %s", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseInt() ast.Process {
	value, err := lexer.ParseInt(p.curToken)
	if err != nil {
		p.errorf(p.curToken, "invalid integer literal %q", p.curToken.Lexeme)
		return nil
	}
	return &ast.IntLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseQuote() ast.Process {
	quote := &ast.Quote{Token: p.curToken}
	p.nextToken()
	quote.Proc = p.parsePrimary()
	if quote.Proc == nil {
		return nil
	}
	return quote
}

func (p *Parser) parseList() ast.Process {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseProcessList(token.RBRACKET)
	return list
}

// parseTupleOrGroup parses a parenthesized form: one element is grouping,
// two or more make a tuple.
func (p *Parser) parseTupleOrGroup() ast.Process {
	lparen := p.curToken
	elems := p.parseProcessList(token.RPAREN)
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TupleLiteral{Token: lparen, Elements: elems}
}

func (p *Parser) parseSet() ast.Process {
	set := &ast.SetLiteral{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	set.Elements = p.parseProcessList(token.RPAREN)
	return set
}

// parseBraced disambiguates between a block { P } and a map literal
// { "k": v, ... } after the first entry is parsed.
func (p *Parser) parseBraced() ast.Process {
	lbrace := p.curToken
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return &ast.Block{Token: lbrace, Body: &ast.NilLiteral{Token: lbrace}, RBrace: p.curToken}
	}

	p.nextToken()
	first := p.parseProcess()
	if first == nil {
		p.recoverTo(token.RBRACE)
		return &ast.Block{Token: lbrace, Body: &ast.NilLiteral{Token: lbrace}, RBrace: p.curToken}
	}

	if p.peekTokenIs(token.COLON) {
		return p.parseMapLiteral(lbrace, first)
	}

	block := &ast.Block{Token: lbrace, Body: first}
	if p.expectPeek(token.RBRACE) {
		block.RBrace = p.curToken
	}
	return block
}

func (p *Parser) parseMapLiteral(lbrace token.Token, firstKey ast.Process) ast.Process {
	m := &ast.MapLiteral{Token: lbrace}
	if _, ok := firstKey.(*ast.StringLiteral); !ok {
		p.errorf(firstKey.GetToken(), "map keys must be string literals")
	}
	p.nextToken() // onto ':'
	p.nextToken() // onto the value
	value := p.parseProcess()
	if value == nil {
		p.recoverTo(token.RBRACE)
		return m
	}
	m.Pairs = append(m.Pairs, ast.MapPair{Key: firstKey, Value: value})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // onto ','
		p.nextToken() // onto the key
		key := p.parsePrimary()
		if key == nil || !p.expectPeek(token.COLON) {
			p.recoverTo(token.RBRACE)
			return m
		}
		if _, ok := key.(*ast.StringLiteral); !ok {
			p.errorf(key.GetToken(), "map keys must be string literals")
		}
		p.nextToken()
		val := p.parseProcess()
		if val == nil {
			p.recoverTo(token.RBRACE)
			return m
		}
		m.Pairs = append(m.Pairs, ast.MapPair{Key: key, Value: val})
	}
	p.expectPeek(token.RBRACE)
	return m
}

func (p *Parser) parseNew() ast.Process {
	n := &ast.New{Token: p.curToken}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl := &ast.NameDecl{Name: &ast.Var{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken() // onto '('
			if !p.expectPeek(token.URI) {
				return nil
			}
			decl.Uri = &ast.UriLiteral{Token: p.curToken, Value: p.curToken.Literal}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		}
		n.Decls = append(n.Decls, decl)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	n.Body = p.parseProcess()
	return n
}

func (p *Parser) parseContract() ast.Process {
	c := &ast.Contract{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	c.Name = &ast.Var{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	c.Params = p.parseProcessList(token.RPAREN)
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	c.Body = p.parseProcess()
	return c
}

func (p *Parser) parseFor() ast.Process {
	f := &ast.For{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	for {
		p.nextToken()
		binding := p.parseUnary()
		if binding == nil {
			p.recoverTo(token.RPAREN)
			return nil
		}
		f.Bindings = append(f.Bindings, binding)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.LARROW) {
		return nil
	}
	p.nextToken()
	f.Chan = p.parsePrimary()
	if f.Chan == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	f.Body = p.parseProcess()
	return f
}

func (p *Parser) parseMatch() ast.Process {
	m := &ast.Match{Token: p.curToken}
	p.nextToken()
	m.Scrutinee = p.parseUnary()
	if m.Scrutinee == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		pat := p.parseUnary()
		if pat == nil {
			p.recoverTo(token.RBRACE)
			return m
		}
		if !p.expectPeek(token.WEDGE) {
			p.recoverTo(token.RBRACE)
			return m
		}
		p.nextToken()
		body := p.parseUnary()
		if body == nil {
			p.recoverTo(token.RBRACE)
			return m
		}
		m.Cases = append(m.Cases, &ast.MatchCase{Pattern: pat, Body: body})
	}
	p.expectPeek(token.RBRACE)
	return m
}

// parseProcessList parses a comma-separated list starting with curToken at
// the opening delimiter and finishing with curToken at end.
func (p *Parser) parseProcessList(end token.TokenType) []ast.Process {
	var list []ast.Process
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	first := p.parseProcess()
	if first == nil {
		p.recoverTo(end)
		return list
	}
	list = append(list, first)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // onto ','
		p.nextToken() // onto the next element
		elem := p.parseProcess()
		if elem == nil {
			p.recoverTo(end)
			return list
		}
		list = append(list, elem)
	}
	p.expectPeek(end)
	return list
}

// recoverTo advances until curToken is the given type or EOF.
func (p *Parser) recoverTo(t token.TokenType) {
	for !p.curTokenIs(t) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}
