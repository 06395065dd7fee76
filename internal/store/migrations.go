package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "entries: raw diary log",
		SQL: `
CREATE TABLE entries (
    id              TEXT PRIMARY KEY,
    kind            TEXT NOT NULL,
    logged_at       TEXT NOT NULL DEFAULT '',

    -- food
    calories        REAL,
    protein         REAL,
    carbs           REAL,
    fat             REAL,

    -- activity
    steps           INTEGER,
    calories_burned REAL,
    source          TEXT NOT NULL DEFAULT '',

    -- symptom
    note            TEXT NOT NULL DEFAULT '',
    severity        INTEGER NOT NULL DEFAULT 0,

    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_entries_kind    ON entries(kind);
CREATE INDEX idx_entries_created ON entries(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "profile: calorie target and time zone",
		SQL: `
CREATE TABLE profile (
    id             INTEGER PRIMARY KEY CHECK (id = 1),
    calorie_target REAL NOT NULL,
    timezone       TEXT NOT NULL,
    updated_at     INTEGER NOT NULL
);
`,
	},
	{
		Version:     3,
		Description: "meta: log revision counter",
		SQL: `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

INSERT INTO meta (key, value) VALUES ('revision', 0);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
