package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

func recordAt(name string, arity int, line int) Record {
	return Record{
		Name:  name,
		Arity: arity,
		Location: token.Span{
			Start: token.Pos{Line: line, Column: 1},
			End:   token.Pos{Line: line, Column: 1 + len(name)},
		},
	}
}

func TestTrieLiteralBeforeOpenBinding(t *testing.T) {
	trie := NewTrie()

	literal := recordAt("greet", 1, 1)
	catchAll := recordAt("greet", 1, 5)
	require.NoError(t, trie.Insert("greet", []pattern.Term{pattern.Str{Value: "hello"}}, literal))
	require.NoError(t, trie.Insert("greet", []pattern.Term{pattern.OpenBinding{Name: "msg"}}, catchAll))

	// A literal argument that has a literal overload resolves to it, not to
	// the variable overload.
	got := trie.Query("greet", []pattern.Term{pattern.Str{Value: "hello"}})
	require.Len(t, got, 1)
	assert.Equal(t, literal.Location, got[0].Location)

	// Any other argument falls through to the open-binding overload.
	got = trie.Query("greet", []pattern.Term{pattern.Str{Value: "goodbye"}})
	require.Len(t, got, 1)
	assert.Equal(t, catchAll.Location, got[0].Location)

	got = trie.Query("greet", []pattern.Term{pattern.Int{Value: 7}})
	require.Len(t, got, 1)
	assert.Equal(t, catchAll.Location, got[0].Location)
}

func TestTrieArityIsolation(t *testing.T) {
	trie := NewTrie()
	one := recordAt("log", 1, 1)
	two := recordAt("log", 2, 2)
	require.NoError(t, trie.Insert("log", []pattern.Term{pattern.OpenBinding{}}, one))
	require.NoError(t, trie.Insert("log", []pattern.Term{pattern.OpenBinding{}, pattern.OpenBinding{}}, two))

	got := trie.Query("log", []pattern.Term{pattern.Str{Value: "x"}})
	require.Len(t, got, 1)
	assert.Equal(t, one.Location, got[0].Location)

	got = trie.Query("log", []pattern.Term{pattern.Str{Value: "x"}, pattern.Int{Value: 1}})
	require.Len(t, got, 1)
	assert.Equal(t, two.Location, got[0].Location)

	assert.Empty(t, trie.Query("log", nil))
	assert.Empty(t, trie.Query("log", []pattern.Term{pattern.Nil{}, pattern.Nil{}, pattern.Nil{}}))
}

func TestTrieCompoundParamsMatchByWholeEncoding(t *testing.T) {
	trie := NewTrie()
	click := pattern.Map{Entries: []pattern.MapEntry{
		{Key: "type", Value: pattern.Str{Value: "click"}},
	}}
	rec := recordAt("handle", 1, 1)
	require.NoError(t, trie.Insert("handle", []pattern.Term{click}, rec))

	// Entry order does not matter, extra entries do.
	same := pattern.Map{Entries: []pattern.MapEntry{
		{Key: "type", Value: pattern.Str{Value: "click"}},
	}}
	require.Len(t, trie.Query("handle", []pattern.Term{same}), 1)

	extra := pattern.Map{Entries: []pattern.MapEntry{
		{Key: "type", Value: pattern.Str{Value: "click"}},
		{Key: "x", Value: pattern.Int{Value: 10}},
	}}
	assert.Empty(t, trie.Query("handle", []pattern.Term{extra}))
}

func TestTrieMixedParameterDescent(t *testing.T) {
	trie := NewTrie()
	// route("GET", path, {"auth": true}) style overloads: literal, open
	// binding and compound parameters mixed in one signature.
	exact := recordAt("route", 3, 1)
	loose := recordAt("route", 3, 5)
	auth := pattern.Map{Entries: []pattern.MapEntry{{Key: "auth", Value: pattern.Bool{Value: true}}}}
	require.NoError(t, trie.Insert("route", []pattern.Term{
		pattern.Str{Value: "GET"}, pattern.OpenBinding{Name: "path"}, auth,
	}, exact))
	require.NoError(t, trie.Insert("route", []pattern.Term{
		pattern.OpenBinding{Name: "method"}, pattern.OpenBinding{Name: "path"}, pattern.OpenBinding{Name: "opts"},
	}, loose))

	got := trie.Query("route", []pattern.Term{
		pattern.Str{Value: "GET"}, pattern.Str{Value: "/users"}, auth,
	})
	require.Len(t, got, 1)
	assert.Equal(t, exact.Location, got[0].Location)

	// The first level commits greedily to the literal "GET" edge; a
	// mismatch deeper in fails the query instead of backtracking to the
	// all-open overload.
	got = trie.Query("route", []pattern.Term{
		pattern.Str{Value: "GET"}, pattern.Str{Value: "/users"}, pattern.Nil{},
	})
	assert.Empty(t, got)

	// A non-GET method never touches the literal edge and matches loose.
	got = trie.Query("route", []pattern.Term{
		pattern.Str{Value: "POST"}, pattern.Str{Value: "/users"}, pattern.Nil{},
	})
	require.Len(t, got, 1)
	assert.Equal(t, loose.Location, got[0].Location)
}

func TestTrieDuplicateSignaturesAppend(t *testing.T) {
	trie := NewTrie()
	first := recordAt("ping", 0, 1)
	second := recordAt("ping", 0, 9)
	require.NoError(t, trie.Insert("ping", nil, first))
	require.NoError(t, trie.Insert("ping", nil, second))

	got := trie.Query("ping", nil)
	require.Len(t, got, 2)
	assert.Equal(t, first.Location, got[0].Location)
	assert.Equal(t, second.Location, got[1].Location)
}

func TestTrieUnknownName(t *testing.T) {
	trie := NewTrie()
	assert.Empty(t, trie.Query("missing", nil))
}

func TestTrieNilParam(t *testing.T) {
	trie := NewTrie()
	err := trie.Insert("bad", []pattern.Term{nil}, recordAt("bad", 1, 1))
	assert.ErrorIs(t, err, ErrNilPattern)

	// A nil argument never matches anything.
	require.NoError(t, trie.Insert("ok", []pattern.Term{pattern.OpenBinding{}}, recordAt("ok", 1, 2)))
	assert.Empty(t, trie.Query("ok", []pattern.Term{nil}))
}

func TestTrieNoUnificationInsideCompounds(t *testing.T) {
	trie := NewTrie()
	// handle([x]) has an open binding inside a list; the index matches
	// compound parameters only by whole-encoding equality.
	inner := pattern.List{Elems: []pattern.Term{pattern.OpenBinding{Name: "x"}}}
	require.NoError(t, trie.Insert("handle", []pattern.Term{inner}, recordAt("handle", 1, 1)))

	assert.Empty(t, trie.Query("handle", []pattern.Term{
		pattern.List{Elems: []pattern.Term{pattern.Int{Value: 1}}},
	}))
}

func TestTrieWalk(t *testing.T) {
	trie := NewTrie()
	require.NoError(t, trie.Insert("a", nil, recordAt("a", 0, 1)))
	require.NoError(t, trie.Insert("b", []pattern.Term{pattern.OpenBinding{}}, recordAt("b", 1, 2)))

	var names []string
	trie.Walk(func(r Record) { names = append(names, r.Name) })
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
