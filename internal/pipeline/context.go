package pipeline

import (
	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/diagnostics"
	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/symbols"
	"github.com/rholab/rhoscope/internal/token"
)

// Processor is one stage of the analysis pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the intermediate and final products of one
// document analysis pass.
type PipelineContext struct {
	FilePath    string
	Source      string
	TokenStream []token.Token
	AstRoot     *ast.Program
	SymbolTable *symbols.Table
	Decls       []index.Declaration
	Errors      []*diagnostics.Error
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{Source: source}
}
