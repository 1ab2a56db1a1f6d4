package index

import (
	"errors"

	"github.com/rholab/rhoscope/internal/pattern"
)

// ErrNilPattern reports an insertion with a missing parameter term. It is an
// internal invariant failure: callers log it and skip the declaration, they
// never propagate it as fatal.
var ErrNilPattern = errors.New("index: nil pattern term")

// declarationsNS is the namespace marker under which all declaration paths
// live. It leaves room for sibling namespaces (e.g. receive bindings)
// without reshaping the trie.
const declarationsNS = "\x00decls"

// Trie stores declarations under paths built from canonical encodings:
// namespace marker, then the declared name's encoding, then one segment per
// parameter position. A node reached by a full path holds the records of
// every declaration inserted with exactly that signature.
//
// A query path has exactly as many parameter segments as the call has
// arguments, so declarations of a different arity are unreachable by
// construction; no explicit arity check is needed anywhere.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	records  []Record
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// Insert adds a record under name with the given ordered parameter terms.
// Duplicate signatures append: every duplicate declaration stays reachable
// as a navigation target.
func (t *Trie) Insert(name string, params []pattern.Term, rec Record) error {
	for _, p := range params {
		if p == nil {
			return ErrNilPattern
		}
	}

	node := t.root
	for _, seg := range pathSegments(name, params) {
		child, ok := node.children[seg]
		if !ok {
			child = newTrieNode()
			node.children[seg] = child
		}
		node = child
	}
	node.records = append(node.records, rec)
	return nil
}

// Query resolves a call site against the index. At each parameter level it
// tries the exact encoding of the argument first, then the fixed
// open-binding edge. This greedy two-try descent prefers a literal overload
// over a same-shaped variable overload and lets a variable/wildcard overload
// accept anything; it does not backtrack and it does not unify inside
// compound arguments — a compound parameter matches only by whole-encoding
// equality.
func (t *Trie) Query(name string, args []pattern.Term) []Record {
	node, ok := t.root.children[declarationsNS]
	if !ok {
		return nil
	}
	node, ok = node.children[string(pattern.Encode(pattern.Str{Value: name}))]
	if !ok {
		return nil
	}

	openKey := string(pattern.OpenBindingKey())
	for _, arg := range args {
		if arg == nil {
			return nil
		}
		child, found := node.children[string(pattern.Encode(arg))]
		if !found {
			child, found = node.children[openKey]
		}
		if !found {
			return nil
		}
		node = child
	}
	return node.records
}

// Walk visits every record in the trie. Used by rebuilds and diagnostics.
func (t *Trie) Walk(visit func(Record)) {
	walkNode(t.root, visit)
}

func walkNode(n *trieNode, visit func(Record)) {
	for _, rec := range n.records {
		visit(rec)
	}
	for _, child := range n.children {
		walkNode(child, visit)
	}
}

func pathSegments(name string, params []pattern.Term) []string {
	segs := make([]string, 0, len(params)+2)
	segs = append(segs, declarationsNS)
	segs = append(segs, string(pattern.Encode(pattern.Str{Value: name})))
	for _, p := range params {
		segs = append(segs, string(pattern.Encode(p)))
	}
	return segs
}
