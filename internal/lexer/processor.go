package lexer

import (
	"github.com/rholab/rhoscope/internal/pipeline"
	"github.com/rholab/rhoscope/internal/token"
)

type LexerProcessor struct{}

// Process scans the source into a token stream. Illegal tokens are kept so
// the parser can report position-accurate errors for them.
func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	for {
		tok := l.NextToken()
		ctx.TokenStream = append(ctx.TokenStream, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ctx
}
