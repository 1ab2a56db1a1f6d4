package main

import (
	"fmt"
	"strings"

	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/symbols"
	"github.com/rholab/rhoscope/internal/token"
)

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	uri := params.TextDocument.URI

	s.mu.RLock()
	docState, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return s.sendNull(id)
	}

	docState.Mu.RLock()
	finalCtx := docState.Context
	docState.Mu.RUnlock()
	if finalCtx == nil || finalCtx.AstRoot == nil || finalCtx.SymbolTable == nil {
		return s.sendNull(id)
	}

	pos := token.Pos{Line: params.Position.Line + 1, Column: params.Position.Character + 1}
	path := ast.FindNodePath(finalCtx.AstRoot, pos)
	if len(path) == 0 {
		return s.sendNull(id)
	}
	ident, ok := path[len(path)-1].(*ast.Var)
	if !ok {
		return s.sendNull(id)
	}

	sym, found := finalCtx.SymbolTable.Lookup(ident.Value, pos)
	if !found {
		return s.sendNull(id)
	}

	var lines []string
	if sym.Kind == symbols.ContractName {
		// Show every indexed overload of the contract.
		for _, decl := range s.index.FileDeclarations(s.uriToPath(uri)) {
			if decl.Name == ident.Value {
				lines = append(lines, "contract "+decl.Record.Signature())
			}
		}
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("%s %s", kindLabel(sym.Kind), sym.Name))
	}

	hover := Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: "```rho\n" + strings.Join(lines, "\n") + "\n```",
		},
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  hover,
	})
}

func kindLabel(kind symbols.SymbolKind) string {
	switch kind {
	case symbols.NameBinding:
		return "name"
	case symbols.ContractName:
		return "contract"
	case symbols.ReceiveBinding:
		return "binding"
	case symbols.MatchBinding:
		return "binding"
	default:
		return "symbol"
	}
}
