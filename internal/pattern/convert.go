package pattern

import (
	"fmt"

	"github.com/rholab/rhoscope/internal/ast"
)

// ConversionError reports a syntax fragment that cannot participate in
// pattern matching. It is a recoverable value: callers skip the fragment and
// fall back to name-only behavior, they never abort a whole indexing pass
// over it.
type ConversionError struct {
	Node   ast.Node
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pattern conversion: %s", e.Reason)
}

type shape int

const (
	patternShape shape = iota
	valueShape
)

// ToPatternTerm converts a binding-position fragment (formal parameter,
// receive binding, match-case left side) into a pattern-shape term.
func ToPatternTerm(n ast.Node) (Term, error) {
	return convert(n, patternShape)
}

// ToValueTerm converts a use-position fragment (send argument) into a
// value-shape term.
func ToValueTerm(n ast.Node) (Term, error) {
	return convert(n, valueShape)
}

func convert(n ast.Node, sh shape) (Term, error) {
	switch node := n.(type) {
	case *ast.NilLiteral:
		return Nil{}, nil
	case *ast.IntLiteral:
		return Int{Value: node.Value}, nil
	case *ast.BoolLiteral:
		return Bool{Value: node.Value}, nil
	case *ast.StringLiteral:
		return Str{Value: node.Value}, nil
	case *ast.UriLiteral:
		return Uri{Value: node.Value}, nil

	case *ast.Var:
		if sh == patternShape {
			return OpenBinding{Name: node.Value}, nil
		}
		return nil, &ConversionError{Node: n, Reason: fmt.Sprintf("variable %q has no statically known value", node.Value)}

	case *ast.Wildcard:
		if sh == patternShape {
			return OpenBinding{}, nil
		}
		return nil, &ConversionError{Node: n, Reason: "wildcard is not a value"}

	case *ast.Quote:
		// A quoted name converts as its inner process; quoting carries no
		// matching information of its own.
		return convert(node.Proc, sh)

	case *ast.Block:
		return convert(node.Body, sh)

	case *ast.ListLiteral:
		elems, err := convertAll(node.Elements, sh)
		if err != nil {
			return nil, err
		}
		return List{Elems: elems}, nil

	case *ast.TupleLiteral:
		elems, err := convertAll(node.Elements, sh)
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil

	case *ast.SetLiteral:
		elems, err := convertAll(node.Elements, sh)
		if err != nil {
			return nil, err
		}
		return Set{Elems: elems}, nil

	case *ast.MapLiteral:
		entries := make([]MapEntry, 0, len(node.Pairs))
		for _, pair := range node.Pairs {
			key, ok := pair.Key.(*ast.StringLiteral)
			if !ok {
				return nil, &ConversionError{Node: pair.Key, Reason: "map keys must be string literals"}
			}
			val, err := convert(pair.Value, sh)
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key.Value, Value: val})
		}
		return Map{Entries: entries}, nil

	case *ast.Send:
		// Channel and arguments of an embedded send are use positions.
		ch, err := convert(node.Chan, valueShape)
		if err != nil {
			return nil, err
		}
		args, err := convertAll(node.Args, valueShape)
		if err != nil {
			return nil, err
		}
		return Send{Chan: ch, Args: args}, nil

	case *ast.Par:
		var elems []Term
		if err := flattenPar(node, sh, &elems); err != nil {
			return nil, err
		}
		return Par{Elems: elems}, nil

	case nil:
		return nil, &ConversionError{Reason: "nil syntax node"}

	default:
		return nil, &ConversionError{Node: n, Reason: fmt.Sprintf("unsupported syntax shape %T", n)}
	}
}

func convertAll(nodes []ast.Process, sh shape) ([]Term, error) {
	terms := make([]Term, len(nodes))
	for i, n := range nodes {
		t, err := convert(n, sh)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return terms, nil
}

// flattenPar collects the branches of nested parallel compositions into one
// flat slice, so P | (Q | R) and (P | Q) | R convert to the same term.
func flattenPar(p *ast.Par, sh shape, out *[]Term) error {
	for _, side := range []ast.Process{p.Left, p.Right} {
		if nested, ok := side.(*ast.Par); ok {
			if err := flattenPar(nested, sh, out); err != nil {
				return err
			}
			continue
		}
		t, err := convert(side, sh)
		if err != nil {
			return err
		}
		*out = append(*out, t)
	}
	return nil
}
