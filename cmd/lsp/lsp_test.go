package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func parseLSPOutput(t *testing.T, output string) string {
	parts := strings.SplitN(output, "\r\n\r\n", 2)
	if len(parts) != 2 {
		t.Fatalf("Invalid LSP output format (header/body split failed): %q", output)
	}
	return parts[1]
}

func setupServer(t *testing.T, uri, code string) (*LanguageServer, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf)

	didOpenParams := DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        uri,
			LanguageID: "rho",
			Version:    1,
			Text:       code,
		},
	}
	if err := server.handleDidOpen(didOpenParams); err != nil {
		t.Fatalf("handleDidOpen failed: %v", err)
	}
	buf.Reset() // Clear diagnostics output
	return server, buf
}

func definitionAt(t *testing.T, server *LanguageServer, buf *bytes.Buffer, uri string, line, char int) []Location {
	t.Helper()
	buf.Reset()
	params := DefinitionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: char},
	}
	if err := server.handleDefinition(1, params); err != nil {
		t.Fatalf("handleDefinition failed: %v", err)
	}

	body := parseLSPOutput(t, buf.String())
	var resp ResponseMessage
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("response unmarshal failed: %v", err)
	}
	if resp.Result == nil {
		return nil
	}
	resBytes, _ := json.Marshal(resp.Result)
	var locs []Location
	if err := json.Unmarshal(resBytes, &locs); err != nil {
		t.Fatalf("result unmarshal failed: %v (%s)", err, resBytes)
	}
	return locs
}

const overloadedSource = "new greet, out(`rho:io:stdout`) in {\n" +
	"  contract greet(@\"hello\") = { out!(1) } |\n" +
	"  contract greet(@name) = { out!(2) } |\n" +
	"  greet!(\"hello\") |\n" +
	"  greet!(\"goodbye\")\n" +
	"}"

func TestDefinition_LiteralOverloadPreferred(t *testing.T) {
	uri := "file:///ws/test.rho"
	server, buf := setupServer(t, uri, overloadedSource)

	// greet!("hello") resolves to the @"hello" overload on line 1.
	locs := definitionAt(t, server, buf, uri, 3, 2)
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].Range.Start.Line != 1 || locs[0].Range.Start.Character != 11 {
		t.Errorf("expected 1:11, got %d:%d", locs[0].Range.Start.Line, locs[0].Range.Start.Character)
	}
}

func TestDefinition_OpenBindingCatchAll(t *testing.T) {
	uri := "file:///ws/test.rho"
	server, buf := setupServer(t, uri, overloadedSource)

	// greet!("goodbye") has no literal overload, so the @name overload on
	// line 2 catches it.
	locs := definitionAt(t, server, buf, uri, 4, 2)
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].Range.Start.Line != 2 || locs[0].Range.Start.Character != 11 {
		t.Errorf("expected 2:11, got %d:%d", locs[0].Range.Start.Line, locs[0].Range.Start.Character)
	}
}

func TestDefinition_LexicalFallback(t *testing.T) {
	uri := "file:///ws/test.rho"
	server, buf := setupServer(t, uri, overloadedSource)

	// out!(1): no contract is declared for out, so resolution falls back
	// to the lexical binding introduced by new on line 0.
	locs := definitionAt(t, server, buf, uri, 1, 31)
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].Range.Start.Line != 0 || locs[0].Range.Start.Character != 11 {
		t.Errorf("expected 0:11, got %d:%d", locs[0].Range.Start.Line, locs[0].Range.Start.Character)
	}
}

func TestDefinition_UnknownNameIsNull(t *testing.T) {
	uri := "file:///ws/unknown.rho"
	server, buf := setupServer(t, uri, "zzz!(1)")

	locs := definitionAt(t, server, buf, uri, 0, 0)
	if locs != nil {
		t.Fatalf("expected null result, got %v", locs)
	}
}

func TestDefinition_AfterDidChange(t *testing.T) {
	uri := "file:///ws/test.rho"
	server, buf := setupServer(t, uri, overloadedSource)

	// Replace the document: one overload left, shifted to line 1.
	changed := "new greet in {\n" +
		"  contract greet(@msg) = { Nil } |\n" +
		"  greet!(\"hello\")\n" +
		"}"
	err := server.handleDidChange(DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: changed}},
	})
	if err != nil {
		t.Fatalf("handleDidChange failed: %v", err)
	}

	locs := definitionAt(t, server, buf, uri, 2, 2)
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].Range.Start.Line != 1 || locs[0].Range.Start.Character != 11 {
		t.Errorf("expected 1:11, got %d:%d", locs[0].Range.Start.Line, locs[0].Range.Start.Character)
	}
}

func TestHover_ContractSignature(t *testing.T) {
	uri := "file:///ws/hover.rho"
	code := "contract ping(@x) = { Nil } |\n" +
		"ping!(1)"
	server, buf := setupServer(t, uri, code)

	params := HoverParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: 1, Character: 0},
	}
	if err := server.handleHover(1, params); err != nil {
		t.Fatalf("handleHover failed: %v", err)
	}

	body := parseLSPOutput(t, buf.String())
	var resp ResponseMessage
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("response unmarshal failed: %v", err)
	}
	resBytes, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(resBytes), "contract ping(x)") {
		t.Errorf("Expected hover to contain contract signature, got: %s", resBytes)
	}
}

func TestDidOpen_PublishesDiagnostics(t *testing.T) {
	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf)

	err := server.handleDidOpen(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        "file:///ws/bad.rho",
			LanguageID: "rho",
			Version:    1,
			Text:       "greet!",
		},
	})
	if err != nil {
		t.Fatalf("handleDidOpen failed: %v", err)
	}

	body := parseLSPOutput(t, buf.String())
	var note struct {
		Method string                   `json:"method"`
		Params PublishDiagnosticsParams `json:"params"`
	}
	if err := json.Unmarshal([]byte(body), &note); err != nil {
		t.Fatalf("notification unmarshal failed: %v", err)
	}
	if note.Method != "textDocument/publishDiagnostics" {
		t.Fatalf("unexpected method %q", note.Method)
	}
	if len(note.Params.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	if note.Params.Diagnostics[0].Source != "rhoscope" {
		t.Errorf("unexpected diagnostic source %q", note.Params.Diagnostics[0].Source)
	}
}

func TestDidClose_KeepsIndexEntries(t *testing.T) {
	uri := "file:///ws/test.rho"
	server, _ := setupServer(t, uri, overloadedSource)

	if err := server.handleDidClose(DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}); err != nil {
		t.Fatalf("handleDidClose failed: %v", err)
	}

	if len(server.index.FileDeclarations("/ws/test.rho")) == 0 {
		t.Fatal("expected index entries to survive didClose")
	}
	server.mu.RLock()
	_, open := server.documents[uri]
	server.mu.RUnlock()
	if open {
		t.Fatal("expected document to be removed from the open set")
	}
}
