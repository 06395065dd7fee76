// Package store persists the raw diary log, the user profile and a write
// revision in a single SQLite file. Analytics never read from here
// directly: callers load the log and hand it to the engine.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// DB is the diary database. Path is ":memory:" for test databases.
type DB struct {
	*sql.DB
	Path string
}

// DefaultDBPath is ~/.fluxdiary/fluxdiary.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fluxdiary", "fluxdiary.db"), nil
}

// Open opens the diary at path, creating the file and its directory on
// first use, and brings the schema up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return prepare(sqlDB, path, fileDBPragmas)
}

// OpenMemory opens a throwaway diary for tests.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection to ":memory:" is a separate empty database,
	// so the pool is pinned to the one that holds the schema.
	sqlDB.SetMaxOpenConns(1)
	return prepare(sqlDB, ":memory:", memoryDBPragmas)
}

// fileDBPragmas lets the API server read the log while a CLI import or
// sync is writing it: WAL keeps readers off the writer's lock, and the
// busy timeout makes a second writer wait instead of failing.
var fileDBPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// memoryDBPragmas skips WAL, which an in-memory database cannot use.
var memoryDBPragmas = []string{
	"PRAGMA busy_timeout=5000",
}

func prepare(sqlDB *sql.DB, path string, pragmas []string) (*DB, error) {
	db := &DB{DB: sqlDB, Path: path}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}
