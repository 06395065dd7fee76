package store

import (
	"database/sql"
	"fmt"
)

// Revision returns a counter that increases on every write to the log or
// profile. Callers use it as a cache key for derived analytics.
func (db *DB) Revision() (int64, error) {
	var rev int64
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("get revision: %w", err)
	}
	return rev, nil
}

func bumpRevision(tx *sql.Tx) error {
	if _, err := tx.Exec(`UPDATE meta SET value = value + 1 WHERE key = 'revision'`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}
