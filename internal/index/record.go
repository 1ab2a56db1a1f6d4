// Package index implements the pattern index: a prefix trie keyed by
// canonical pattern encodings, and a workspace-wide view of it that supports
// concurrent queries and per-file rebuilds.
package index

import (
	"fmt"
	"strings"

	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

// Record is the metadata stored at a trie leaf for one declaration.
type Record struct {
	Location token.Span // Opaque to the index; stored and returned unmodified
	Name     string
	Arity    int
	// ParamNames is set only when every parameter is a plain named
	// variable; it is display data for signature rendering.
	ParamNames []string
}

// Signature renders a human-readable signature for the record, using
// parameter names when available and positional placeholders otherwise.
func (r Record) Signature() string {
	params := make([]string, r.Arity)
	for i := range params {
		if r.ParamNames != nil {
			params[i] = r.ParamNames[i]
		} else {
			params[i] = fmt.Sprintf("_%d", i)
		}
	}
	return fmt.Sprintf("%s(%s)", r.Name, strings.Join(params, ", "))
}

// Declaration couples a record with the converted parameter terms of its
// declaration, so a file's entries can be re-inserted during a rebuild
// without going back to the syntax tree.
type Declaration struct {
	Name   string
	Params []pattern.Term
	Record Record
}
