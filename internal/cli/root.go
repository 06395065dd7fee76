package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxdiary/fluxdiary/internal/config"
	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/fluxdiary/fluxdiary/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "fluxdiary",
	Short:         "Food and activity diary analytics",
	Long:          "fluxdiary turns a food, symptom and step log into trends, flux zones, fasting projections and a calorie balance. Single Go binary, local SQLite storage.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(fastingCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(profileCmd)
}

// loadConfig reads .env and FLUXDIARY_* overrides and builds the logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, cfg.Logger(os.Stderr), nil
}

// openDB is a helper that opens the database for CLI commands.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := os.Getenv("FLUXDIARY_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

// userProfile returns the stored profile, seeded from configuration.
func userProfile(db *store.DB, cfg config.Config) (store.Profile, error) {
	return db.ProfileOrDefault(store.Profile{
		CalorieTarget: cfg.Profile.CalorieTarget,
		Timezone:      cfg.Profile.Timezone,
	})
}

// engineFor builds an engine bound to the profile's time zone.
func engineFor(cfg config.Config, p store.Profile) (*engine.Engine, error) {
	loc, err := config.LoadLocation(p.Timezone)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg.EngineConfig(loc)), nil
}

// session bundles what the read-side commands need.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *store.DB
	profile store.Profile
	engine  *engine.Engine
}

func openSession() (*session, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	p, err := userProfile(db, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load profile: %w", err)
	}
	eng, err := engineFor(cfg, p)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, db: db, profile: p, engine: eng}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}
