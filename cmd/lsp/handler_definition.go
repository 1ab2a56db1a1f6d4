package main

import (
	"log"
	"strings"

	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/config"
	"github.com/rholab/rhoscope/internal/resolver"
	"github.com/rholab/rhoscope/internal/token"
)

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
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
	if finalCtx == nil || finalCtx.AstRoot == nil {
		return s.sendNull(id)
	}

	// LSP positions are 0-based; tokens are 1-based.
	pos := token.Pos{Line: params.Position.Line + 1, Column: params.Position.Character + 1}
	path := ast.FindNodePath(finalCtx.AstRoot, pos)
	if len(path) == 0 {
		return s.sendNull(id)
	}

	ident, ok := path[len(path)-1].(*ast.Var)
	if !ok {
		return s.sendNull(id)
	}

	rctx := &resolver.Context{
		Path:   path,
		LangID: config.LanguageID,
		File:   s.uriToPath(uri),
	}
	locs := s.chain.Resolve(ident.Value, pos, rctx)
	if len(locs) == 0 {
		return s.sendNull(id)
	}

	log.Printf("Definition %s: %d candidate(s)", ident.Value, len(locs))

	results := make([]Location, len(locs))
	for i, loc := range locs {
		results[i] = s.toLSPLocation(uri, loc)
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  results,
	})
}

func (s *LanguageServer) toLSPLocation(requestURI string, loc resolver.Location) Location {
	defURI := requestURI
	if loc.Span.File != "" {
		if strings.HasPrefix(loc.Span.File, "file://") {
			defURI = loc.Span.File
		} else {
			defURI = "file://" + loc.Span.File
		}
	}
	return Location{
		URI: defURI,
		Range: Range{
			Start: Position{Line: loc.Span.Start.Line - 1, Character: loc.Span.Start.Column - 1},
			End:   Position{Line: loc.Span.End.Line - 1, Character: loc.Span.End.Column - 1},
		},
	}
}

func (s *LanguageServer) sendNull(id interface{}) error {
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  nil,
	})
}
