package index

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rholab/rhoscope/internal/pattern"
)

// Workspace is the shared, workspace-wide pattern index. Readers are
// lock-free: every query loads an immutable snapshot through an atomic
// pointer, so it observes either the state before a given rebuild or the
// state after it, never a half-applied one.
//
// The trie has no per-entry removal primitive; replacing a file's
// declarations rebuilds the whole merged trie from the per-file record
// lists. That pass is proportional to the total number of indexed
// declarations, which is a documented scaling limitation of the structure.
type Workspace struct {
	snap atomic.Pointer[snapshot]

	mu      sync.Mutex // serializes snapshot publication
	pending map[string]uuid.UUID
}

type snapshot struct {
	trie  *Trie
	files map[string][]Declaration
}

func NewWorkspace() *Workspace {
	w := &Workspace{pending: make(map[string]uuid.UUID)}
	w.snap.Store(&snapshot{trie: NewTrie(), files: make(map[string][]Declaration)})
	return w
}

// Query resolves name against the current snapshot. Safe for unbounded
// concurrent callers.
func (w *Workspace) Query(name string, args []pattern.Term) []Record {
	return w.snap.Load().trie.Query(name, args)
}

// ReindexFile replaces fileID's declarations with decls and publishes a new
// snapshot. When two rebuilds for the same file race, the last-submitted one
// wins: a superseded rebuild discards its result instead of applying it.
func (w *Workspace) ReindexFile(fileID string, decls []Declaration) {
	gen := uuid.New()
	w.mu.Lock()
	w.pending[fileID] = gen
	w.mu.Unlock()

	// Build the replacement snapshot away from the published pointer, so
	// readers keep a consistent view for the whole rebuild.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[fileID] != gen {
		return // a newer rebuild for this file was submitted
	}

	cur := w.snap.Load()
	files := make(map[string][]Declaration, len(cur.files)+1)
	for f, ds := range cur.files {
		if f != fileID {
			files[f] = ds
		}
	}
	if len(decls) > 0 {
		files[fileID] = decls
	}
	w.snap.Store(&snapshot{trie: buildTrie(files), files: files})
}

// RemoveFile discards all of fileID's declarations.
func (w *Workspace) RemoveFile(fileID string) {
	w.ReindexFile(fileID, nil)
}

// Files returns the file identifiers currently contributing declarations.
func (w *Workspace) Files() []string {
	cur := w.snap.Load()
	out := make([]string, 0, len(cur.files))
	for f := range cur.files {
		out = append(out, f)
	}
	return out
}

// FileDeclarations returns the declarations currently indexed for fileID.
func (w *Workspace) FileDeclarations(fileID string) []Declaration {
	return w.snap.Load().files[fileID]
}

func buildTrie(files map[string][]Declaration) *Trie {
	trie := NewTrie()
	for _, decls := range files {
		for _, d := range decls {
			// An invariant failure in one declaration must not poison
			// the rest of the rebuild.
			if err := trie.Insert(d.Name, d.Params, d.Record); err != nil {
				log.Printf("index rebuild: skipping %s (%s): %v", d.Name, d.Record.Location.File, err)
			}
		}
	}
	return trie
}
