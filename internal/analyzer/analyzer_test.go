package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/lexer"
	"github.com/rholab/rhoscope/internal/parser"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/pipeline"
	"github.com/rholab/rhoscope/internal/token"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	p := parser.New(toks)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors in test source")
	return prog
}

func TestExtractDeclarationsFindsNestedContracts(t *testing.T) {
	prog := parseProgram(t, `new a in {
  contract outer(@x) = {
    contract inner(@y) = { Nil }
  } |
  for (@z <- a) {
    contract fromFor() = { Nil }
  }
}`)

	decls := ExtractDeclarations(prog, "test.rho")
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	assert.ElementsMatch(t, []string{"outer", "inner", "fromFor"}, names)
}

func TestDeclarationMetadata(t *testing.T) {
	prog := parseProgram(t, `contract greet(@"hello", @name) = { Nil }`)
	decls := ExtractDeclarations(prog, "test.rho")
	require.Len(t, decls, 1)

	d := decls[0]
	assert.Equal(t, "greet", d.Name)
	assert.Equal(t, 2, d.Record.Arity)
	require.Len(t, d.Params, 2)
	assert.Equal(t, pattern.Encode(pattern.Str{Value: "hello"}), pattern.Encode(d.Params[0]))
	assert.Equal(t, pattern.OpenBindingKey(), pattern.Encode(d.Params[1]))

	// Mixed literal and variable parameters have no display names.
	assert.Nil(t, d.Record.ParamNames)

	// Location is the span of the contract's name with the file filled in.
	assert.Equal(t, "test.rho", d.Record.Location.File)
	assert.Equal(t, token.Pos{Line: 1, Column: 10}, d.Record.Location.Start)
}

func TestDeclarationParamNames(t *testing.T) {
	prog := parseProgram(t, `contract send(@from, @to) = { Nil }`)
	decls := ExtractDeclarations(prog, "test.rho")
	require.Len(t, decls, 1)
	assert.Equal(t, []string{"from", "to"}, decls[0].Record.ParamNames)
	assert.Equal(t, "send(from, to)", decls[0].Record.Signature())
}

func TestUnconvertibleParamSkipsDeclarationOnly(t *testing.T) {
	// The first contract has a send parameter whose argument is a free
	// variable, so it cannot participate in pattern matching; the second
	// contract still indexes.
	prog := parseProgram(t, `contract odd(ch!(y)) = { Nil } |
contract fine(@x) = { Nil }`)

	decls := ExtractDeclarations(prog, "test.rho")
	require.Len(t, decls, 1)
	assert.Equal(t, "fine", decls[0].Name)
}

func TestDeclarationProcessor(t *testing.T) {
	ctx := pipeline.NewPipelineContext(`contract ping() = { Nil }`)
	ctx.FilePath = "test.rho"
	prog := parseProgram(t, `contract ping() = { Nil }`)
	ctx.AstRoot = prog

	result := (&DeclarationProcessor{}).Process(ctx)
	require.NotNil(t, result.SymbolTable)
	require.Len(t, result.Decls, 1)
	assert.Equal(t, "ping", result.Decls[0].Name)
}
