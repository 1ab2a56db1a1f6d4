package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rholab/rhoscope/internal/cache"
	"github.com/rholab/rhoscope/internal/config"
	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/resolver"
	"github.com/rholab/rhoscope/internal/symbols"
)

// Language Server implementation
type LanguageServer struct {
	documents map[string]*DocumentState // URI -> document state
	mu        sync.RWMutex              // Protects the documents map
	writer    io.Writer                 // Output stream for JSON-RPC responses
	rootPath  string                    // Workspace root
	cfg       config.ServerConfig

	index *index.Workspace // Shared pattern index, lock-free for readers
	chain *resolver.Chain  // Pattern-aware primary with lexical fallback
	store *cache.Store     // Optional on-disk declaration cache
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	s := &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
		cfg:       config.Default(),
		index:     index.NewWorkspace(),
	}
	s.chain = resolver.NewChain(
		resolver.NewPatternResolver(s.index),
		symbols.NewLexicalResolver(s.tableFor),
	)
	return s
}

// tableFor returns the symbol table of the open document at the given file
// path, for the lexical fallback resolver.
func (s *LanguageServer) tableFor(file string) *symbols.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for uri, doc := range s.documents {
		if s.uriToPath(uri) != file {
			continue
		}
		doc.Mu.RLock()
		ctx := doc.Context
		doc.Mu.RUnlock()
		if ctx != nil {
			return ctx.SymbolTable
		}
	}
	return nil
}

func (s *LanguageServer) Start() {
	// bufio.Reader instead of Scanner to handle arbitrary buffer sizes and raw reads
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Error reading header: %v", err)
			}
			break
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue // Skip empty lines between messages
		}

		if strings.HasPrefix(line, "Content-Length: ") {
			contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
			if err != nil {
				log.Printf("Error parsing Content-Length: %v", err)
				continue
			}

			// Read until the empty-line separator that ends the headers.
			for {
				emptyLine, err := reader.ReadString('\n')
				if err != nil {
					log.Printf("Error reading separator: %v", err)
					return
				}
				if strings.TrimRight(emptyLine, "\r\n") == "" {
					break
				}
			}

			content := make([]byte, contentLength)
			if _, err := io.ReadFull(reader, content); err != nil {
				log.Printf("Error reading content: %v", err)
				break
			}

			if err := s.handleMessage(content); err != nil {
				log.Printf("Error handling message: %v", err)
			}
		}
	}
}

type baseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var base baseMessage
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("failed to unmarshal message: %v", err)
	}

	// A request has an ID; a notification does not.
	if base.ID != nil {
		return s.handleRequest(base, content)
	}
	return s.handleNotification(base, content)
}

func (s *LanguageServer) handleRequest(base baseMessage, content []byte) error {
	switch base.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleInitialize(base.ID, params)

	case "shutdown":
		return s.handleShutdown(base.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleHover(base.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDefinition(base.ID, params)

	default:
		response := ResponseMessage{
			Jsonrpc: "2.0",
			ID:      base.ID,
			Error: &Error{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", base.Method),
			},
		}
		return s.sendResponse(response)
	}
}

func (s *LanguageServer) handleNotification(base baseMessage, content []byte) error {
	switch base.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		if s.store != nil {
			_ = s.store.Close()
		}
		os.Exit(0)
		return nil

	default:
		// Unknown notification, ignore
		return nil
	}
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
