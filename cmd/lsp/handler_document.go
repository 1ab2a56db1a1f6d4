package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/rholab/rhoscope/internal/analyzer"
	"github.com/rholab/rhoscope/internal/lexer"
	"github.com/rholab/rhoscope/internal/parser"
	"github.com/rholab/rhoscope/internal/pipeline"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string                    // Current file content
	Context *pipeline.PipelineContext // Result of the last analysis (AST, symbols, declarations)
	Mu      sync.RWMutex              // Protects access to state
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	content := params.TextDocument.Text

	docState := &DocumentState{Content: content}
	finalCtx := s.analyzeDocument(content, uri)
	docState.Context = finalCtx

	s.mu.Lock()
	s.documents[uri] = docState
	s.mu.Unlock()

	s.reindexDocument(uri, finalCtx)
	log.Printf("Opened file: %s", uri)

	return s.publishDiagnostics(uri, finalCtx)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full content sync (TextDocumentSyncKind.Full)
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	newContent := params.ContentChanges[0].Text

	s.mu.RLock()
	docState, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("document %s not found", uri)
	}

	finalCtx := s.analyzeDocument(newContent, uri)
	docState.Mu.Lock()
	docState.Content = newContent
	docState.Context = finalCtx
	docState.Mu.Unlock()

	s.reindexDocument(uri, finalCtx)
	log.Printf("Changed file: %s", uri)

	return s.publishDiagnostics(uri, finalCtx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	// The file's declarations stay indexed: it still exists in the
	// workspace, it is just no longer open in the editor.
	log.Printf("Closed file: %s", params.TextDocument.URI)
	return nil
}

func (s *LanguageServer) analyzeDocument(content string, uri string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(content)
	ctx.FilePath = s.uriToPath(uri)

	processingPipeline := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.DeclarationProcessor{},
	)
	return processingPipeline.Run(ctx)
}

// reindexDocument replaces the file's entries in the shared pattern index
// and refreshes the on-disk cache. Document sync is the indexing path;
// definition requests never trigger a rebuild.
func (s *LanguageServer) reindexDocument(uri string, ctx *pipeline.PipelineContext) {
	path := s.uriToPath(uri)
	s.index.ReindexFile(path, ctx.Decls)

	if s.store != nil {
		mtime, _ := fileMtime(path)
		if err := s.store.SaveFile(path, mtime, ctx.Decls); err != nil {
			log.Printf("Cache write failed for %s: %v", path, err)
		}
	}
}

func (s *LanguageServer) uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

func fileMtime(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.ModTime().Unix(), true
}
