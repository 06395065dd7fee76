package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/google/uuid"
)

const entryColumns = `id, kind, logged_at, calories, protein, carbs, fat, steps, calories_burned, source, note, severity, created_at`

// Entry is a stored raw diary entry.
type Entry struct {
	engine.RawEntry
	CreatedAt int64 `json:"created_at"`
}

// ListOpts filters ListEntries.
type ListOpts struct {
	Kind  engine.Kind // empty means all kinds
	Limit int         // 0 means no limit
}

// AddEntry stores a raw entry, assigning an id when it has none. The type
// tag is normalised; an unknown tag is rejected so the log only ever holds
// kinds the engine can classify. The timestamp is stored as given, so
// callers pass entries through engine.Normalize first to pin substituted times.
func (db *DB) AddEntry(raw engine.RawEntry) (engine.RawEntry, error) {
	tx, err := db.Begin()
	if err != nil {
		return raw, fmt.Errorf("begin add entry: %w", err)
	}
	defer tx.Rollback()

	raw, err = insertEntry(tx, raw, time.Now().UnixMilli())
	if err != nil {
		return raw, err
	}
	if err := bumpRevision(tx); err != nil {
		return raw, err
	}
	if err := tx.Commit(); err != nil {
		return raw, fmt.Errorf("commit add entry: %w", err)
	}
	return raw, nil
}

// AddEntries stores a batch in one transaction and returns how many were
// written. Entries whose id already exists are skipped, which makes
// re-importing the same export idempotent.
func (db *DB) AddEntries(raws []engine.RawEntry) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin add entries: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	added := 0
	for _, raw := range raws {
		if raw.ID != "" {
			var exists int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM entries WHERE id = ?`, raw.ID).Scan(&exists); err != nil {
				return 0, fmt.Errorf("check entry %s: %w", raw.ID, err)
			}
			if exists > 0 {
				continue
			}
		}
		if _, err := insertEntry(tx, raw, now); err != nil {
			return 0, err
		}
		added++
	}
	if added > 0 {
		if err := bumpRevision(tx); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add entries: %w", err)
	}
	return added, nil
}

func insertEntry(tx *sql.Tx, raw engine.RawEntry, now int64) (engine.RawEntry, error) {
	kind, err := engine.ParseKind(raw.Type)
	if err != nil {
		return raw, err
	}
	raw.Type = string(kind)
	if raw.ID == "" {
		raw.ID = uuid.NewString()
	}
	if kind == engine.KindActivity && strings.TrimSpace(raw.Source) == "" {
		raw.Source = engine.UnknownSource
	}

	_, err = tx.Exec(`
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, raw.ID, raw.Type, raw.Timestamp, raw.Calories, raw.Protein, raw.Carbs, raw.Fat,
		raw.Steps, raw.CaloriesBurned, raw.Source, raw.Note, raw.Severity, now)
	if err != nil {
		return raw, fmt.Errorf("insert entry: %w", err)
	}
	return raw, nil
}

// GetEntry returns one entry by id, or ErrNotFound.
func (db *DB) GetEntry(id string) (*Entry, error) {
	row := db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns entries newest first.
func (db *DB) ListEntries(opts ListOpts) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	var args []any
	if opts.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// AllEntries returns the whole log as raw entries, the snapshot the engine
// works from.
func (db *DB) AllEntries() ([]engine.RawEntry, error) {
	entries, err := db.ListEntries(ListOpts{})
	if err != nil {
		return nil, err
	}
	raws := make([]engine.RawEntry, len(entries))
	for i, e := range entries {
		raws[i] = e.RawEntry
	}
	return raws, nil
}

// DeleteEntry removes an entry, or returns ErrNotFound.
func (db *DB) DeleteEntry(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete entry: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err := bumpRevision(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete entry: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e                                 Entry
		calories, protein, carbs, fat, cb sql.NullFloat64
		steps                             sql.NullInt64
	)
	err := s.Scan(&e.ID, &e.Type, &e.Timestamp, &calories, &protein, &carbs, &fat,
		&steps, &cb, &e.Source, &e.Note, &e.Severity, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Calories = nullFloat(calories)
	e.Protein = nullFloat(protein)
	e.Carbs = nullFloat(carbs)
	e.Fat = nullFloat(fat)
	e.CaloriesBurned = nullFloat(cb)
	if steps.Valid {
		n := int(steps.Int64)
		e.Steps = &n
	}
	return &e, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
