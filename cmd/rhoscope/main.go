package main

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rholab/rhoscope/internal/analyzer"
	"github.com/rholab/rhoscope/internal/cache"
	"github.com/rholab/rhoscope/internal/config"
	"github.com/rholab/rhoscope/internal/lexer"
	"github.com/rholab/rhoscope/internal/parser"
	"github.com/rholab/rhoscope/internal/pipeline"
)

// rhoscope index <dir> walks a workspace, extracts contract declarations
// and writes them to the on-disk cache the language server warms from.

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 || os.Args[1] != "index" {
		fmt.Fprintln(os.Stderr, "Usage: rhoscope index [dir]")
		os.Exit(1)
	}

	root := "."
	if len(os.Args) > 2 {
		root = os.Args[2]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		log.Fatalf("Cannot resolve %s: %v", root, err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		log.Printf("Config load failed, using defaults: %v", err)
	}

	store, err := cache.Open(cfg.CachePath(root))
	if err != nil {
		log.Fatalf("Cannot open declaration cache: %v", err)
	}
	defer store.Close()

	var files, declCount, errCount int
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSourceFile(path) {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			return nil
		}

		ctx := pipeline.NewPipelineContext(string(source))
		ctx.FilePath = path
		result := pipeline.New(
			&lexer.LexerProcessor{},
			&parser.ParserProcessor{},
			&analyzer.DeclarationProcessor{},
		).Run(ctx)

		for _, diag := range result.Errors {
			log.Printf("%s: %s", path, diag.Error())
			errCount++
		}

		mtime := int64(0)
		if info, err := d.Info(); err == nil {
			mtime = info.ModTime().Unix()
		}
		if err := store.SaveFile(path, mtime, result.Decls); err != nil {
			return fmt.Errorf("cache write for %s: %w", path, err)
		}

		files++
		declCount += len(result.Decls)
		return nil
	})
	if walkErr != nil {
		log.Fatalf("Indexing failed: %v", walkErr)
	}

	fmt.Printf("Indexed %d files, %d declarations (%d errors)\n", files, declCount, errCount)
}
