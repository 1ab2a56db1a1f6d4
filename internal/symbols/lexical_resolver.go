package symbols

import (
	"github.com/rholab/rhoscope/internal/resolver"
	"github.com/rholab/rhoscope/internal/token"
)

// LexicalResolver adapts a symbol table to the resolver interface. It is the
// fallback strategy of the resolution chain: ordinary scope lookup by name,
// no pattern information involved.
type LexicalResolver struct {
	Tables func(file string) *Table // table provider, usually the document store
}

func NewLexicalResolver(tables func(file string) *Table) *LexicalResolver {
	return &LexicalResolver{Tables: tables}
}

func (r *LexicalResolver) Resolve(name string, pos token.Pos, ctx *resolver.Context) []resolver.Location {
	if r.Tables == nil || ctx == nil {
		return nil
	}
	table := r.Tables(ctx.File)
	if table == nil {
		return nil
	}
	sym, ok := table.Lookup(name, pos)
	if !ok {
		return nil
	}
	return []resolver.Location{{Span: sym.Span, Signature: sym.Name}}
}
