package main

import (
	"github.com/rholab/rhoscope/internal/diagnostics"
	"github.com/rholab/rhoscope/internal/pipeline"
)

// publishDiagnostics converts accumulated analysis errors into an LSP
// textDocument/publishDiagnostics notification. An empty diagnostics list
// clears previously reported problems for the document.
func (s *LanguageServer) publishDiagnostics(uri string, ctx *pipeline.PipelineContext) error {
	lspDiagnostics := make([]Diagnostic, 0, len(ctx.Errors))
	for _, diag := range ctx.Errors {
		lspDiagnostics = append(lspDiagnostics, toLSPDiagnostic(diag))
	}

	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: lspDiagnostics,
		},
	})
}

func toLSPDiagnostic(diag *diagnostics.Error) Diagnostic {
	line := diag.Token.Line - 1
	col := diag.Token.Column - 1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	endCol := col + len(diag.Token.Lexeme)
	if endCol == col {
		endCol = col + 1
	}

	return Diagnostic{
		Range: Range{
			Start: Position{Line: line, Character: col},
			End:   Position{Line: line, Character: endCol},
		},
		Severity: SeverityError,
		Code:     diag.Code,
		Message:  diag.Message,
		Source:   "rhoscope",
	}
}
