// Package pattern implements the canonical pattern form: the conversion of
// syntax fragments into immutable terms and their deterministic byte
// encoding. The encodings are the keys of the pattern index.
package pattern

import (
	"fmt"
	"strings"
)

// Term is an immutable value derived from a syntax node. Terms come in two
// shapes: pattern shape (formal parameters, receive bindings, match-case
// left sides) and value shape (send arguments). The shape is a property of
// the conversion that produced the term, not of the term itself — a literal
// list encodes identically whichever side it came from, which is what makes
// exact-match lookups between the two sides possible. OpenBinding is the
// only variant that can appear exclusively in pattern shape.
type Term interface {
	term()
	String() string
}

// Nil is the stopped process.
type Nil struct{}

// Int is an integer literal term.
type Int struct{ Value int64 }

// Bool is a boolean literal term.
type Bool struct{ Value bool }

// Str is a string literal term.
type Str struct{ Value string }

// Uri is an unforgeable-name URI literal term.
type Uri struct{ Value string }

// OpenBinding matches any value at its position. Name is the captured
// variable name, "" for a wildcard. It is presentation metadata only and
// never participates in the canonical encoding: all open bindings encode to
// the same single byte.
type OpenBinding struct{ Name string }

// List is an ordered collection term.
type List struct{ Elems []Term }

// Tuple is a fixed-arity ordered collection term.
type Tuple struct{ Elems []Term }

// Set is an unordered collection term. Element order is canonicalized at
// encoding time, so two sets holding the same elements encode identically.
type Set struct{ Elems []Term }

// MapEntry is one entry of a Map term. Keys are restricted to string
// literals by the conversion.
type MapEntry struct {
	Key   string
	Value Term
}

// Map is a string-keyed collection term. Entry order is canonicalized at
// encoding time.
type Map struct{ Entries []MapEntry }

// Send is a message-send process term: a channel and ordered arguments.
type Send struct {
	Chan Term
	Args []Term
}

// Par is a parallel composition term. The converter flattens nested
// compositions; encoding canonicalizes branch order.
type Par struct{ Elems []Term }

func (Nil) term()         {}
func (Int) term()         {}
func (Bool) term()        {}
func (Str) term()         {}
func (Uri) term()         {}
func (OpenBinding) term() {}
func (List) term()        {}
func (Tuple) term()       {}
func (Set) term()         {}
func (Map) term()         {}
func (Send) term()        {}
func (Par) term()         {}

func (Nil) String() string    { return "Nil" }
func (t Int) String() string  { return fmt.Sprintf("%d", t.Value) }
func (t Bool) String() string { return fmt.Sprintf("%t", t.Value) }
func (t Str) String() string  { return fmt.Sprintf("%q", t.Value) }
func (t Uri) String() string  { return "`" + t.Value + "`" }

func (t OpenBinding) String() string {
	if t.Name == "" {
		return "_"
	}
	return t.Name
}

func (t List) String() string  { return "[" + joinTerms(t.Elems) + "]" }
func (t Tuple) String() string { return "(" + joinTerms(t.Elems) + ")" }
func (t Set) String() string   { return "Set(" + joinTerms(t.Elems) + ")" }

func (t Map) String() string {
	parts := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		parts[i] = fmt.Sprintf("%q: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (t Send) String() string { return t.Chan.String() + "!(" + joinTerms(t.Args) + ")" }

func (t Par) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, " | ")
}

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
