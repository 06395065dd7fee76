package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Profile is the user's calorie target and home time zone.
type Profile struct {
	CalorieTarget float64 `json:"calorie_target"`
	Timezone      string  `json:"timezone"`
	UpdatedAt     int64   `json:"updated_at,omitempty"`
}

// GetProfile returns the stored profile, or ErrNotFound before one is saved.
func (db *DB) GetProfile() (*Profile, error) {
	var p Profile
	err := db.QueryRow(`SELECT calorie_target, timezone, updated_at FROM profile WHERE id = 1`).
		Scan(&p.CalorieTarget, &p.Timezone, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// ProfileOrDefault returns the stored profile, falling back to def when
// none has been saved yet.
func (db *DB) ProfileOrDefault(def Profile) (Profile, error) {
	p, err := db.GetProfile()
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}

// SaveProfile upserts the profile. A target change moves the revision so
// cached analytics are recomputed.
func (db *DB) SaveProfile(p Profile) (*Profile, error) {
	if p.CalorieTarget <= 0 {
		return nil, fmt.Errorf("calorie target must be positive, got %v", p.CalorieTarget)
	}
	p.UpdatedAt = time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save profile: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO profile (id, calorie_target, timezone, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			calorie_target = excluded.calorie_target,
			timezone = excluded.timezone,
			updated_at = excluded.updated_at
	`, p.CalorieTarget, p.Timezone, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := bumpRevision(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return &p, nil
}
