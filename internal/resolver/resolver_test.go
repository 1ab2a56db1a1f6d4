package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

type stubResolver struct {
	locs  []Location
	calls int
}

func (s *stubResolver) Resolve(name string, pos token.Pos, ctx *Context) []Location {
	s.calls++
	return s.locs
}

type dropAllFilter struct{}

func (dropAllFilter) Apply(locs []Location) []Location { return nil }

func spanAt(line int) token.Span {
	return token.Span{Start: token.Pos{Line: line, Column: 1}, End: token.Pos{Line: line, Column: 2}}
}

func TestChainPrefersPrimary(t *testing.T) {
	primary := &stubResolver{locs: []Location{{Span: spanAt(1), Signature: "p"}}}
	fallback := &stubResolver{locs: []Location{{Span: spanAt(2), Signature: "f"}}}
	chain := NewChain(primary, fallback)

	got := chain.Resolve("x", token.Pos{Line: 1, Column: 1}, &Context{})
	require.Len(t, got, 1)
	assert.Equal(t, "p", got[0].Signature)
	assert.Equal(t, 0, fallback.calls)
}

func TestChainFallsBackWhenPrimaryEmpty(t *testing.T) {
	primary := &stubResolver{}
	fallback := &stubResolver{locs: []Location{{Span: spanAt(2), Signature: "f"}}}
	chain := NewChain(primary, fallback)

	got := chain.Resolve("x", token.Pos{Line: 1, Column: 1}, &Context{})
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].Signature)
}

func TestChainFiltersApplyToPrimaryOnly(t *testing.T) {
	primary := &stubResolver{locs: []Location{{Span: spanAt(1), Signature: "p"}}}
	fallback := &stubResolver{locs: []Location{{Span: spanAt(2), Signature: "f"}}}
	chain := NewChain(primary, fallback, dropAllFilter{})

	// The filter empties the primary result, so the fallback answers, and
	// its result passes through the filters untouched.
	got := chain.Resolve("x", token.Pos{Line: 1, Column: 1}, &Context{})
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].Signature)
}

func TestChainNoResolvers(t *testing.T) {
	chain := NewChain(nil, nil)
	assert.Empty(t, chain.Resolve("x", token.Pos{Line: 1, Column: 1}, &Context{}))
}

func newIndexWith(t *testing.T, name string, params ...pattern.Term) *index.Workspace {
	t.Helper()
	w := index.NewWorkspace()
	rec := index.Record{Location: spanAt(1), Name: name, Arity: len(params)}
	w.ReindexFile("a.rho", []index.Declaration{{Name: name, Params: params, Record: rec}})
	return w
}

func sendOf(name string, args ...ast.Process) *ast.Send {
	return &ast.Send{Chan: &ast.Var{Value: name}, Args: args}
}

func TestPatternResolverMatchesCallSite(t *testing.T) {
	w := newIndexWith(t, "greet", pattern.Str{Value: "hello"})
	r := NewPatternResolver(w)

	send := sendOf("greet", &ast.StringLiteral{Value: "hello"})
	ctx := &Context{Path: []ast.Node{send, send.Chan}}

	got := r.Resolve("greet", token.Pos{Line: 1, Column: 1}, ctx)
	require.Len(t, got, 1)
	assert.Equal(t, spanAt(1), got[0].Span)
}

func TestPatternResolverEmptyOutsideSend(t *testing.T) {
	w := newIndexWith(t, "greet", pattern.OpenBinding{})
	r := NewPatternResolver(w)

	ctx := &Context{Path: []ast.Node{&ast.Var{Value: "greet"}}}
	assert.Empty(t, r.Resolve("greet", token.Pos{Line: 1, Column: 1}, ctx))
}

func TestPatternResolverEmptyForOtherChannel(t *testing.T) {
	w := newIndexWith(t, "greet", pattern.OpenBinding{})
	r := NewPatternResolver(w)

	// Cursor is on an argument variable inside someone else's send.
	send := sendOf("other", &ast.Var{Value: "greet"})
	ctx := &Context{Path: []ast.Node{send, send.Args[0]}}
	assert.Empty(t, r.Resolve("greet", token.Pos{Line: 1, Column: 1}, ctx))
}

func TestPatternResolverAbortsOnUnconvertibleArgument(t *testing.T) {
	w := newIndexWith(t, "greet", pattern.Str{Value: "hello"}, pattern.OpenBinding{})
	r := NewPatternResolver(w)

	// The second argument is a variable with no statically known value:
	// the whole attempt degrades to empty instead of matching partially.
	send := sendOf("greet", &ast.StringLiteral{Value: "hello"}, &ast.Var{Value: "y"})
	ctx := &Context{Path: []ast.Node{send, send.Chan}}
	assert.Empty(t, r.Resolve("greet", token.Pos{Line: 1, Column: 1}, ctx))
}

func TestPatternResolverInnermostSendWins(t *testing.T) {
	w := newIndexWith(t, "inner", pattern.Int{Value: 1})
	r := NewPatternResolver(w)

	inner := sendOf("inner", &ast.IntLiteral{Value: 1})
	outer := sendOf("outer", inner)
	ctx := &Context{Path: []ast.Node{outer, inner, inner.Chan}}

	got := r.Resolve("inner", token.Pos{Line: 1, Column: 1}, ctx)
	require.Len(t, got, 1)
}
