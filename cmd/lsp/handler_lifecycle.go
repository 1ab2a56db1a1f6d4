package main

import (
	"log"

	"github.com/rholab/rhoscope/internal/cache"
	"github.com/rholab/rhoscope/internal/config"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = s.uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}

	cfg, err := config.Load(s.rootPath)
	if err != nil {
		log.Printf("Config load failed, using defaults: %v", err)
	}
	s.cfg = cfg

	if s.cfg.Cache.Enabled && s.rootPath != "" {
		store, err := cache.Open(s.cfg.CachePath(s.rootPath))
		if err != nil {
			log.Printf("Declaration cache unavailable: %v", err)
		} else {
			s.store = store
			s.warmIndexFromCache()
		}
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // Full sync
			HoverProvider:      true,
			DefinitionProvider: true,
		},
	}

	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  result,
	})
}

// warmIndexFromCache seeds the workspace index with cached declarations for
// files that have not changed since they were last indexed.
func (s *LanguageServer) warmIndexFromCache() {
	paths, err := s.store.Files()
	if err != nil {
		log.Printf("Cache listing failed: %v", err)
		return
	}
	warmed := 0
	for _, path := range paths {
		mtime, ok := fileMtime(path)
		if !ok {
			_ = s.store.DeleteFile(path)
			continue
		}
		decls, fresh, err := s.store.LoadFile(path, mtime)
		if err != nil || !fresh {
			continue
		}
		s.index.ReindexFile(path, decls)
		warmed++
	}
	if warmed > 0 {
		log.Printf("Warmed pattern index from cache: %d files", warmed)
	}
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  nil,
	})
}
