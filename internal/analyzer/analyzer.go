// Package analyzer walks parsed Rho programs, building the lexical symbol
// table and extracting contract declarations for the pattern index.
package analyzer

import (
	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/pipeline"
	"github.com/rholab/rhoscope/internal/symbols"
)

type DeclarationProcessor struct{}

func (dp *DeclarationProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	ctx.SymbolTable = symbols.Build(ctx.AstRoot, ctx.FilePath)
	ctx.Decls = ExtractDeclarations(ctx.AstRoot, ctx.FilePath)
	return ctx
}

// ExtractDeclarations collects every contract declaration in the program
// that can participate in pattern matching. A declaration whose parameters
// cannot be converted is skipped — reduced functionality for that one
// contract, never a failed indexing pass.
func ExtractDeclarations(prog *ast.Program, file string) []index.Declaration {
	var decls []index.Declaration
	for _, p := range prog.Processes {
		collectContracts(p, file, &decls)
	}
	return decls
}

func collectContracts(node ast.Process, file string, out *[]index.Declaration) {
	switch n := node.(type) {
	case *ast.Contract:
		if decl, ok := declarationFor(n, file); ok {
			*out = append(*out, decl)
		}
		collectContracts(n.Body, file, out)
	case *ast.New:
		collectContracts(n.Body, file, out)
	case *ast.Par:
		collectContracts(n.Left, file, out)
		collectContracts(n.Right, file, out)
	case *ast.Block:
		collectContracts(n.Body, file, out)
	case *ast.For:
		collectContracts(n.Body, file, out)
	case *ast.Match:
		for _, c := range n.Cases {
			collectContracts(c.Body, file, out)
		}
	}
}

func declarationFor(c *ast.Contract, file string) (index.Declaration, bool) {
	if c.Name == nil {
		return index.Declaration{}, false
	}

	params := make([]pattern.Term, len(c.Params))
	for i, paramNode := range c.Params {
		term, err := pattern.ToPatternTerm(paramNode)
		if err != nil {
			return index.Declaration{}, false
		}
		params[i] = term
	}

	span, ok := ast.NodeSpan(c.Name)
	if !ok {
		return index.Declaration{}, false
	}
	span.File = file

	rec := index.Record{
		Location:   span,
		Name:       c.Name.Value,
		Arity:      len(params),
		ParamNames: displayNames(c.Params),
	}
	return index.Declaration{Name: c.Name.Value, Params: params, Record: rec}, true
}

// displayNames returns the ordered parameter names when every parameter is
// a plain named variable (possibly quoted), nil otherwise.
func displayNames(params []ast.Process) []string {
	names := make([]string, len(params))
	for i, p := range params {
		if q, ok := p.(*ast.Quote); ok {
			p = q.Proc
		}
		v, ok := p.(*ast.Var)
		if !ok {
			return nil
		}
		names[i] = v.Value
	}
	return names
}
