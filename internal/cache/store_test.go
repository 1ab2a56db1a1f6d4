package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDecls() []index.Declaration {
	span := token.Span{
		File:  "/ws/a.rho",
		Start: token.Pos{Line: 2, Column: 12},
		End:   token.Pos{Line: 2, Column: 17},
	}
	return []index.Declaration{
		{
			Name:   "greet",
			Params: []pattern.Term{pattern.Str{Value: "hello"}},
			Record: index.Record{Location: span, Name: "greet", Arity: 1},
		},
		{
			Name: "greet",
			Params: []pattern.Term{
				pattern.OpenBinding{Name: "msg"},
				pattern.Map{Entries: []pattern.MapEntry{{Key: "k", Value: pattern.Int{Value: 1}}}},
			},
			Record: index.Record{Location: span, Name: "greet", Arity: 2, ParamNames: []string{"msg", "opts"}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	decls := sampleDecls()
	require.NoError(t, store.SaveFile("/ws/a.rho", 100, decls))

	loaded, ok, err := store.LoadFile("/ws/a.rho", 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, 2)

	assert.Equal(t, "greet", loaded[0].Name)
	assert.Equal(t, decls[0].Record.Location, loaded[0].Record.Location)
	assert.Equal(t, pattern.Encode(decls[0].Params[0]), pattern.Encode(loaded[0].Params[0]))

	assert.Equal(t, []string{"msg", "opts"}, loaded[1].Record.ParamNames)
	// Binding names are not part of the encoding, so the reloaded open
	// binding is nameless but encodes identically.
	assert.Equal(t, pattern.Encode(decls[1].Params[0]), pattern.Encode(loaded[1].Params[0]))
	assert.Equal(t, pattern.Encode(decls[1].Params[1]), pattern.Encode(loaded[1].Params[1]))
}

func TestLoadStaleMtime(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile("/ws/a.rho", 100, sampleDecls()))

	_, ok, err := store.LoadFile("/ws/a.rho", 101)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.LoadFile("/ws/missing.rho", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveReplacesPreviousEntries(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile("/ws/a.rho", 100, sampleDecls()))
	require.NoError(t, store.SaveFile("/ws/a.rho", 200, sampleDecls()[:1]))

	loaded, ok, err := store.LoadFile("/ws/a.rho", 200)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded, 1)
}

func TestDeleteFile(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile("/ws/a.rho", 100, sampleDecls()))
	require.NoError(t, store.DeleteFile("/ws/a.rho"))

	_, ok, err := store.LoadFile("/ws/a.rho", 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFiles(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile("/ws/b.rho", 1, nil))
	require.NoError(t, store.SaveFile("/ws/a.rho", 1, nil))

	paths, err := store.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/a.rho", "/ws/b.rho"}, paths)
}

func TestDecodeParamsOversizedCount(t *testing.T) {
	// A corrupt count field must fail before any allocation sized by it.
	_, err := decodeParams([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	require.ErrorIs(t, err, pattern.ErrTruncated)

	// A count that overstates the real parameter list fails the same way.
	blob := encodeParams([]pattern.Term{pattern.Int{Value: 1}})
	blob[3] = 0xFF
	_, err = decodeParams(blob)
	require.Error(t, err)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveFile("/ws/a.rho", 100, sampleDecls()))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, ok, err := reopened.LoadFile("/ws/a.rho", 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded, 2)
}
