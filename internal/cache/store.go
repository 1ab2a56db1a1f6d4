// Package cache persists indexed declarations in a local SQLite database so
// a restarted server can warm the workspace index without reparsing files
// that have not changed on disk.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rholab/rhoscope/internal/index"
	"github.com/rholab/rhoscope/internal/pattern"
	"github.com/rholab/rhoscope/internal/token"
)

type Store struct {
	conn   *sql.DB
	dbPath string
}

// Open opens or creates the declaration cache at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, dbPath: dbPath}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS declarations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT NOT NULL,
			name TEXT NOT NULL,
			arity INTEGER NOT NULL,
			param_names TEXT,
			params BLOB NOT NULL,
			start_line INTEGER NOT NULL,
			start_col INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			end_col INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_declarations_file ON declarations(file);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveFile replaces the cached declarations for path atomically.
func (s *Store) SaveFile(path string, mtime int64, decls []index.Declaration) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM declarations WHERE file = ?`, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO files (path, mtime) VALUES (?, ?)`, path, mtime); err != nil {
		return err
	}

	for _, d := range decls {
		var paramNames []byte
		if d.Record.ParamNames != nil {
			paramNames, err = json.Marshal(d.Record.ParamNames)
			if err != nil {
				return err
			}
		}
		loc := d.Record.Location
		_, err = tx.Exec(
			`INSERT INTO declarations (file, name, arity, param_names, params, start_line, start_col, end_line, end_col)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			path, d.Name, d.Record.Arity, nullableText(paramNames), encodeParams(d.Params),
			loc.Start.Line, loc.Start.Column, loc.End.Line, loc.End.Column,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadFile returns the cached declarations for path when the cached mtime
// matches; ok is false for a missing or stale entry.
func (s *Store) LoadFile(path string, mtime int64) (decls []index.Declaration, ok bool, err error) {
	var cachedMtime int64
	err = s.conn.QueryRow(`SELECT mtime FROM files WHERE path = ?`, path).Scan(&cachedMtime)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if cachedMtime != mtime {
		return nil, false, nil
	}

	rows, err := s.conn.Query(
		`SELECT name, arity, param_names, params, start_line, start_col, end_line, end_col
		 FROM declarations WHERE file = ? ORDER BY id`, path)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name       string
			arity      int
			paramNames sql.NullString
			params     []byte
			span       token.Span
		)
		if err := rows.Scan(&name, &arity, &paramNames, &params,
			&span.Start.Line, &span.Start.Column, &span.End.Line, &span.End.Column); err != nil {
			return nil, false, err
		}
		span.File = path

		terms, err := decodeParams(params)
		if err != nil {
			// A corrupt row invalidates only itself.
			continue
		}

		rec := index.Record{Location: span, Name: name, Arity: arity}
		if paramNames.Valid {
			if err := json.Unmarshal([]byte(paramNames.String), &rec.ParamNames); err != nil {
				rec.ParamNames = nil
			}
		}
		decls = append(decls, index.Declaration{Name: name, Params: terms, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return decls, true, nil
}

// DeleteFile drops the cached entries for path.
func (s *Store) DeleteFile(path string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM declarations WHERE file = ?`, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return err
	}
	return tx.Commit()
}

// Files lists all cached file paths.
func (s *Store) Files() ([]string, error) {
	rows, err := s.conn.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func nullableText(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

// encodeParams packs ordered parameter encodings into one blob:
// a 4-byte big-endian count, then a 4-byte length prefix per encoding.
func encodeParams(params []pattern.Term) []byte {
	out := u32(len(params))
	for _, p := range params {
		enc := pattern.Encode(p)
		out = append(out, u32(len(enc))...)
		out = append(out, enc...)
	}
	return out
}

func decodeParams(blob []byte) ([]pattern.Term, error) {
	if len(blob) < 4 {
		return nil, pattern.ErrTruncated
	}
	count := int(uint32(blob[0])<<24 | uint32(blob[1])<<16 | uint32(blob[2])<<8 | uint32(blob[3]))
	blob = blob[4:]
	// Each encoding carries a 4-byte length prefix, so a count beyond
	// len/4 cannot come from a well-formed blob.
	if count > len(blob)/4 {
		return nil, pattern.ErrTruncated
	}
	terms := make([]pattern.Term, 0, count)
	for i := 0; i < count; i++ {
		if len(blob) < 4 {
			return nil, pattern.ErrTruncated
		}
		n := int(uint32(blob[0])<<24 | uint32(blob[1])<<16 | uint32(blob[2])<<8 | uint32(blob[3]))
		blob = blob[4:]
		if len(blob) < n {
			return nil, pattern.ErrTruncated
		}
		term, err := pattern.Decode(blob[:n])
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
		blob = blob[n:]
	}
	return terms, nil
}

func u32(n int) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}
