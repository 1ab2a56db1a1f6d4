package resolver

import (
	"log"

	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

// PatternResolver resolves call sites through the workspace pattern index.
// It only attempts resolution when the cursor's enclosing node is a send
// whose channel textually matches the requested name; in every other case
// it returns empty immediately so the chain can fall back.
type PatternResolver struct {
	Index *index.Workspace
}

func NewPatternResolver(idx *index.Workspace) *PatternResolver {
	return &PatternResolver{Index: idx}
}

func (r *PatternResolver) Resolve(name string, pos token.Pos, ctx *Context) []Location {
	if ctx == nil || r.Index == nil {
		return nil
	}
	send := ctx.EnclosingSend()
	if send == nil || send.ChanName() != name {
		return nil
	}

	args := make([]pattern.Term, len(send.Args))
	for i, argNode := range send.Args {
		term, err := pattern.ToValueTerm(argNode)
		if err != nil {
			// One unconvertible argument aborts the whole attempt; a
			// partial match would be wrong more often than useful.
			log.Printf("pattern resolve %s: %v", name, err)
			return nil
		}
		args[i] = term
	}

	records := r.Index.Query(name, args)
	locs := make([]Location, 0, len(records))
	for _, rec := range records {
		locs = append(locs, Location{Span: rec.Location, Signature: rec.Signature()})
	}
	return locs
}
