// Package resolver implements the composable definition-resolution
// pipeline: a primary resolver, an ordered list of filters, and an optional
// fallback, all behind one Resolve interface. The binding for Rho uses the
// pattern-aware resolver as primary and lexical scope lookup as fallback.
package resolver

import (
	"github.com/rholab/rhoscope/internal/ast"
	"github.com/rholab/rhoscope/internal/token"
)

// Location is one resolution target: a source span plus a human-readable
// signature for display in the client.
type Location struct {
	Span      token.Span
	Signature string
}

// Context carries what a resolver may inspect about the request: the node
// path from the root to the cursor's innermost enclosing syntax node, the
// language identifier, and the originating file.
type Context struct {
	Path   []ast.Node // innermost node last; may be empty
	LangID string
	File   string
}

// EnclosingSend returns the innermost send on the node path, or nil.
func (c *Context) EnclosingSend() *ast.Send {
	for i := len(c.Path) - 1; i >= 0; i-- {
		if send, ok := c.Path[i].(*ast.Send); ok {
			return send
		}
	}
	return nil
}

// Resolver resolves a name at a position to candidate definition sites.
// Implementations return an empty slice, never an error: failures degrade to
// "no match".
type Resolver interface {
	Resolve(name string, pos token.Pos, ctx *Context) []Location
}

// Filter post-processes a primary resolver's results. Identity pass-through
// is valid; filters exist as an extension point for other language bindings.
type Filter interface {
	Apply(locs []Location) []Location
}

// Chain composes a primary resolver, filters, and an optional fallback. The
// fallback runs only when the filtered primary result is empty, and its
// result is returned unmodified. The chain performs no retries and is
// deterministic given its inputs and the index's current contents.
type Chain struct {
	Primary  Resolver
	Filters  []Filter
	Fallback Resolver
}

func NewChain(primary Resolver, fallback Resolver, filters ...Filter) *Chain {
	return &Chain{Primary: primary, Filters: filters, Fallback: fallback}
}

func (c *Chain) Resolve(name string, pos token.Pos, ctx *Context) []Location {
	var locs []Location
	if c.Primary != nil {
		locs = c.Primary.Resolve(name, pos, ctx)
		for _, f := range c.Filters {
			locs = f.Apply(locs)
		}
	}
	if len(locs) == 0 && c.Fallback != nil {
		return c.Fallback.Resolve(name, pos, ctx)
	}
	return locs
}
