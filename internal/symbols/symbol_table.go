// Package symbols implements the lexical scope table for Rho sources. It is
// the fallback resolution strategy: plain name lookup through nested binder
// scopes (new blocks, contract parameters, receive bindings, match cases).
package symbols

import (
	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/token"
)

type SymbolKind int

const (
	NameBinding SymbolKind = iota // bound by new
	ContractName
	ReceiveBinding // bound by for or a contract parameter
	MatchBinding
)

type Symbol struct {
	Name string
	Kind SymbolKind
	Span token.Span // definition site
	File string
}

// Scope is one lexical region with its bindings. Scopes nest by source
// containment.
type Scope struct {
	span     token.Span
	parent   *Scope
	children []*Scope
	bindings map[string]Symbol
}

func newScope(parent *Scope, span token.Span) *Scope {
	s := &Scope{span: span, parent: parent, bindings: make(map[string]Symbol)}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

func (s *Scope) bind(sym Symbol) {
	// First binder wins within one scope; shadowing happens across scopes.
	if _, exists := s.bindings[sym.Name]; !exists {
		s.bindings[sym.Name] = sym
	}
}

// Table is the per-file symbol table.
type Table struct {
	file string
	root *Scope
}

// Lookup finds the binding visible for name at pos: the innermost enclosing
// scope that binds it, walking outward.
func (t *Table) Lookup(name string, pos token.Pos) (Symbol, bool) {
	scope := t.root.innermostAt(pos)
	for scope != nil {
		if sym, ok := scope.bindings[name]; ok {
			return sym, true
		}
		scope = scope.parent
	}
	return Symbol{}, false
}

func (s *Scope) innermostAt(pos token.Pos) *Scope {
	for _, child := range s.children {
		if child.span.ContainsInclusive(pos) {
			return child.innermostAt(pos)
		}
	}
	return s
}

// Build walks a program and constructs its scope tree.
func Build(prog *ast.Program, file string) *Table {
	rootSpan, _ := ast.NodeSpan(prog)
	// Widen the root so lookups just past the last token still land.
	rootSpan.End.Line++
	root := newScope(nil, rootSpan)
	t := &Table{file: file, root: root}
	for _, p := range prog.Processes {
		t.walk(p, root)
	}
	return t
}

func (t *Table) walk(node ast.Process, scope *Scope) {
	switch n := node.(type) {
	case *ast.New:
		span, ok := ast.NodeSpan(n)
		if !ok {
			return
		}
		inner := newScope(scope, span)
		for _, decl := range n.Decls {
			if decl.Name == nil {
				continue
			}
			defSpan, _ := ast.NodeSpan(decl.Name)
			defSpan.File = t.file
			inner.bind(Symbol{Name: decl.Name.Value, Kind: NameBinding, Span: defSpan, File: t.file})
		}
		t.walk(n.Body, inner)

	case *ast.Contract:
		if n.Name != nil {
			defSpan, _ := ast.NodeSpan(n.Name)
			defSpan.File = t.file
			scope.bind(Symbol{Name: n.Name.Value, Kind: ContractName, Span: defSpan, File: t.file})
		}
		bodySpan, ok := ast.NodeSpan(n)
		if !ok {
			return
		}
		inner := newScope(scope, bodySpan)
		for _, param := range n.Params {
			t.bindPattern(param, inner, ReceiveBinding)
		}
		t.walk(n.Body, inner)

	case *ast.For:
		span, ok := ast.NodeSpan(n)
		if !ok {
			return
		}
		inner := newScope(scope, span)
		for _, b := range n.Bindings {
			t.bindPattern(b, inner, ReceiveBinding)
		}
		t.walk(n.Chan, scope)
		t.walk(n.Body, inner)

	case *ast.Match:
		t.walk(n.Scrutinee, scope)
		for _, c := range n.Cases {
			caseSpan, ok := ast.NodeSpan(c.Body)
			if !ok {
				continue
			}
			// Pattern binders are visible in the case body only.
			if patSpan, okPat := ast.NodeSpan(c.Pattern); okPat {
				caseSpan.Start = patSpan.Start
			}
			inner := newScope(scope, caseSpan)
			t.bindPattern(c.Pattern, inner, MatchBinding)
			t.walk(c.Body, inner)
		}

	case *ast.Par:
		t.walk(n.Left, scope)
		t.walk(n.Right, scope)

	case *ast.Block:
		t.walk(n.Body, scope)

	case *ast.Send:
		t.walk(n.Chan, scope)
		for _, a := range n.Args {
			t.walk(a, scope)
		}

	case *ast.Quote:
		t.walk(n.Proc, scope)

	case *ast.ListLiteral:
		for _, e := range n.Elements {
			t.walk(e, scope)
		}
	case *ast.TupleLiteral:
		for _, e := range n.Elements {
			t.walk(e, scope)
		}
	case *ast.SetLiteral:
		for _, e := range n.Elements {
			t.walk(e, scope)
		}
	case *ast.MapLiteral:
		for _, pair := range n.Pairs {
			t.walk(pair.Value, scope)
		}
	}
}

// bindPattern registers every variable bound by a binding-position pattern.
func (t *Table) bindPattern(node ast.Process, scope *Scope, kind SymbolKind) {
	switch n := node.(type) {
	case *ast.Var:
		defSpan, _ := ast.NodeSpan(n)
		defSpan.File = t.file
		scope.bind(Symbol{Name: n.Value, Kind: kind, Span: defSpan, File: t.file})
	case *ast.Quote:
		t.bindPattern(n.Proc, scope, kind)
	case *ast.ListLiteral:
		for _, e := range n.Elements {
			t.bindPattern(e, scope, kind)
		}
	case *ast.TupleLiteral:
		for _, e := range n.Elements {
			t.bindPattern(e, scope, kind)
		}
	case *ast.SetLiteral:
		for _, e := range n.Elements {
			t.bindPattern(e, scope, kind)
		}
	case *ast.MapLiteral:
		for _, pair := range n.Pairs {
			t.bindPattern(pair.Value, scope, kind)
		}
	}
	// Wildcards and literals bind nothing.
}
