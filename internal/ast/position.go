package ast

import (
	"github.com/rholab/rhoscope/internal/token"
)

const maxTraversalDepth = 1000

// NodeSpan returns the source range covered by a node. The end position is
// derived from the node's last token; for bracketed constructs without an
// explicit closing token it extends to the last child, which is close enough
// for containment checks and client ranges.
func NodeSpan(node Node) (token.Span, bool) {
	start, end, ok := nodeBounds(node)
	if !ok {
		return token.Span{}, false
	}
	return token.Span{
		Start: token.Pos{Line: start.Line, Column: start.Column},
		End:   token.Pos{Line: end.Line, Column: end.Column + len(end.Lexeme)},
	}, true
}

func nodeBounds(node Node) (token.Token, token.Token, bool) {
	if node == nil {
		return token.Token{}, token.Token{}, false
	}

	switch n := node.(type) {
	case *Program:
		if len(n.Processes) == 0 {
			return token.Token{}, token.Token{}, false
		}
		start, _, ok := nodeBounds(n.Processes[0])
		if !ok {
			return token.Token{}, token.Token{}, false
		}
		_, end, ok := nodeBounds(n.Processes[len(n.Processes)-1])
		return start, end, ok
	case *Quote:
		_, end, ok := nodeBounds(n.Proc)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *ListLiteral:
		return boundsWithLastChild(n.Token, processes(n.Elements))
	case *TupleLiteral:
		return boundsWithLastChild(n.Token, processes(n.Elements))
	case *SetLiteral:
		return boundsWithLastChild(n.Token, processes(n.Elements))
	case *MapLiteral:
		if len(n.Pairs) == 0 {
			return n.Token, n.Token, true
		}
		_, end, ok := nodeBounds(n.Pairs[len(n.Pairs)-1].Value)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *Send:
		start, _, ok := nodeBounds(n.Chan)
		if !ok {
			start = n.Token
		}
		if len(n.Args) == 0 {
			return start, n.Token, true
		}
		_, end, ok := nodeBounds(n.Args[len(n.Args)-1])
		if !ok {
			end = n.Token
		}
		return start, end, true
	case *Par:
		start, _, okL := nodeBounds(n.Left)
		if !okL {
			start = n.Token
		}
		_, end, okR := nodeBounds(n.Right)
		if !okR {
			end = n.Token
		}
		return start, end, true
	case *New:
		_, end, ok := nodeBounds(n.Body)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *Contract:
		_, end, ok := nodeBounds(n.Body)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *For:
		_, end, ok := nodeBounds(n.Body)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *Match:
		if len(n.Cases) > 0 {
			_, end, ok := nodeBounds(n.Cases[len(n.Cases)-1].Body)
			if ok {
				return n.Token, end, true
			}
		}
		_, end, ok := nodeBounds(n.Scrutinee)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	case *Block:
		if n.RBrace.Type != "" {
			return n.Token, n.RBrace, true
		}
		_, end, ok := nodeBounds(n.Body)
		if !ok {
			end = n.Token
		}
		return n.Token, end, true
	default:
		// Leaf nodes: literals, Var, Wildcard.
		if tp, ok := node.(TokenProvider); ok {
			tok := tp.GetToken()
			if tok.Line == 0 {
				return token.Token{}, token.Token{}, false
			}
			return tok, tok, true
		}
		return token.Token{}, token.Token{}, false
	}
}

func boundsWithLastChild(start token.Token, elems []Node) (token.Token, token.Token, bool) {
	if len(elems) == 0 {
		return start, start, true
	}
	_, end, ok := nodeBounds(elems[len(elems)-1])
	if !ok {
		end = start
	}
	return start, end, true
}

func processes(ps []Process) []Node {
	nodes := make([]Node, len(ps))
	for i, p := range ps {
		nodes[i] = p
	}
	return nodes
}

// FindNodePath returns the chain of nodes from root down to the most
// specific node containing pos, innermost last.
func FindNodePath(root Node, pos token.Pos) []Node {
	return findNodePath(root, pos, 0)
}

func findNodePath(node Node, pos token.Pos, depth int) []Node {
	if node == nil || depth > maxTraversalDepth {
		return nil
	}
	span, ok := NodeSpan(node)
	if !ok || !span.ContainsInclusive(pos) {
		return nil
	}
	path := []Node{node}
	if child := childAt(node, pos); child != nil && child != node {
		path = append(path, findNodePath(child, pos, depth+1)...)
	}
	return path
}

func childAt(node Node, pos token.Pos) Node {
	contains := func(n Node) bool {
		if n == nil {
			return false
		}
		span, ok := NodeSpan(n)
		return ok && span.ContainsInclusive(pos)
	}

	switch n := node.(type) {
	case *Program:
		for _, p := range n.Processes {
			if contains(p) {
				return p
			}
		}
	case *Quote:
		if contains(n.Proc) {
			return n.Proc
		}
	case *ListLiteral:
		for _, e := range n.Elements {
			if contains(e) {
				return e
			}
		}
	case *TupleLiteral:
		for _, e := range n.Elements {
			if contains(e) {
				return e
			}
		}
	case *SetLiteral:
		for _, e := range n.Elements {
			if contains(e) {
				return e
			}
		}
	case *MapLiteral:
		for _, pair := range n.Pairs {
			if contains(pair.Key) {
				return pair.Key
			}
			if contains(pair.Value) {
				return pair.Value
			}
		}
	case *Send:
		if contains(n.Chan) {
			return n.Chan
		}
		for _, a := range n.Args {
			if contains(a) {
				return a
			}
		}
	case *Par:
		if contains(n.Left) {
			return n.Left
		}
		if contains(n.Right) {
			return n.Right
		}
	case *New:
		for _, d := range n.Decls {
			if contains(d.Name) {
				return d.Name
			}
			if d.Uri != nil && contains(d.Uri) {
				return d.Uri
			}
		}
		if contains(n.Body) {
			return n.Body
		}
	case *Contract:
		if contains(n.Name) {
			return n.Name
		}
		for _, p := range n.Params {
			if contains(p) {
				return p
			}
		}
		if contains(n.Body) {
			return n.Body
		}
	case *For:
		for _, b := range n.Bindings {
			if contains(b) {
				return b
			}
		}
		if contains(n.Chan) {
			return n.Chan
		}
		if contains(n.Body) {
			return n.Body
		}
	case *Match:
		if contains(n.Scrutinee) {
			return n.Scrutinee
		}
		for _, c := range n.Cases {
			if contains(c.Pattern) {
				return c.Pattern
			}
			if contains(c.Body) {
				return c.Body
			}
		}
	case *Block:
		if contains(n.Body) {
			return n.Body
		}
	}
	return nil
}
