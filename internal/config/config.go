package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/joho/godotenv"
)

// Config holds all fluxdiary configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Profile  ProfileConfig
	Tracker  TrackerConfig
	Cache    CacheConfig
	Log      LogConfig
}

type ServerConfig struct {
	Bind string
	Port int
}

type DatabaseConfig struct {
	Path string
}

// EngineConfig carries the analytics policy constants.
type EngineConfig struct {
	StepThreshold           int
	FastingCalorieThreshold float64
	FastingTargetHours      float64
	DefaultFastHours        float64
	MaxFastGapHours         float64
	MinFastHours            float64 // 0 disables the minimum
	GuardrailMinCalories    float64
	BalanceDays             int
	Premium                 bool
}

// ProfileConfig seeds the stored profile on first run.
type ProfileConfig struct {
	CalorieTarget float64
	Timezone      string // IANA name, e.g. "Europe/Berlin"
}

type TrackerConfig struct {
	URL    string
	Token  string
	Source string
}

type CacheConfig struct {
	TTL  time.Duration
	Size int
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Engine: EngineConfig{
			StepThreshold:           7500,
			FastingCalorieThreshold: 5,
			FastingTargetHours:      16,
			DefaultFastHours:        12,
			MaxFastGapHours:         48,
			MinFastHours:            4,
			GuardrailMinCalories:    800,
			BalanceDays:             7,
			Premium:                 true,
		},
		Profile: ProfileConfig{
			CalorieTarget: 2000,
			Timezone:      "Local",
		},
		Tracker: TrackerConfig{
			Source: "tracker",
		},
		Cache: CacheConfig{
			TTL:  10 * time.Minute,
			Size: 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns Default overridden by FLUXDIARY_* environment variables.
// The given .env files (or ./.env when none) are read first; a missing
// file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	cfg := Default()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("FLUXDIARY_BIND", &cfg.Server.Bind)
	integer("FLUXDIARY_PORT", &cfg.Server.Port)
	str("FLUXDIARY_DB", &cfg.Database.Path)

	integer("FLUXDIARY_STEP_THRESHOLD", &cfg.Engine.StepThreshold)
	float("FLUXDIARY_FASTING_CALORIE_THRESHOLD", &cfg.Engine.FastingCalorieThreshold)
	float("FLUXDIARY_FASTING_TARGET_HOURS", &cfg.Engine.FastingTargetHours)
	float("FLUXDIARY_DEFAULT_FAST_HOURS", &cfg.Engine.DefaultFastHours)
	float("FLUXDIARY_MAX_FAST_GAP_HOURS", &cfg.Engine.MaxFastGapHours)
	float("FLUXDIARY_MIN_FAST_HOURS", &cfg.Engine.MinFastHours)
	float("FLUXDIARY_GUARDRAIL_MIN_CALORIES", &cfg.Engine.GuardrailMinCalories)
	integer("FLUXDIARY_BALANCE_DAYS", &cfg.Engine.BalanceDays)
	boolean("FLUXDIARY_PREMIUM", &cfg.Engine.Premium)

	float("FLUXDIARY_CALORIE_TARGET", &cfg.Profile.CalorieTarget)
	str("FLUXDIARY_TIMEZONE", &cfg.Profile.Timezone)

	str("FLUXDIARY_TRACKER_URL", &cfg.Tracker.URL)
	str("FLUXDIARY_TRACKER_TOKEN", &cfg.Tracker.Token)
	str("FLUXDIARY_TRACKER_SOURCE", &cfg.Tracker.Source)

	duration("FLUXDIARY_CACHE_TTL", &cfg.Cache.TTL)
	integer("FLUXDIARY_CACHE_SIZE", &cfg.Cache.Size)

	str("FLUXDIARY_LOG_LEVEL", &cfg.Log.Level)
	str("FLUXDIARY_LOG_FORMAT", &cfg.Log.Format)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if c.Engine.StepThreshold <= 0 {
		errs = append(errs, errors.New("step threshold must be positive"))
	}
	if c.Engine.FastingCalorieThreshold <= 0 {
		errs = append(errs, errors.New("fasting calorie threshold must be positive"))
	}
	if c.Engine.MaxFastGapHours <= c.Engine.MinFastHours {
		errs = append(errs, fmt.Errorf("max fast gap %vh must exceed min fast %vh", c.Engine.MaxFastGapHours, c.Engine.MinFastHours))
	}
	if c.Engine.MinFastHours < 0 {
		errs = append(errs, errors.New("min fast hours must not be negative"))
	}
	if c.Engine.GuardrailMinCalories <= 0 {
		errs = append(errs, errors.New("guardrail calories must be positive"))
	}
	if c.Engine.BalanceDays <= 0 {
		errs = append(errs, errors.New("balance days must be positive"))
	}
	if c.Profile.CalorieTarget <= 0 {
		errs = append(errs, errors.New("calorie target must be positive"))
	}
	if _, err := LoadLocation(c.Profile.Timezone); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("cache size must be positive"))
	}
	return errors.Join(errs...)
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// LoadLocation resolves a time zone name. "" and "Local" mean the host zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", name, err)
	}
	return loc, nil
}

// EngineConfig builds the analytics configuration for the given zone.
func (c *Config) EngineConfig(loc *time.Location) engine.Config {
	return engine.Config{
		Location:                loc,
		StepThreshold:           c.Engine.StepThreshold,
		FastingCalorieThreshold: c.Engine.FastingCalorieThreshold,
		FastingTargetHours:      c.Engine.FastingTargetHours,
		DefaultFastHours:        c.Engine.DefaultFastHours,
		MaxFastGapHours:         c.Engine.MaxFastGapHours,
		MinFastHours:            c.Engine.MinFastHours,
		GuardrailMinCalories:    c.Engine.GuardrailMinCalories,
		BalanceDays:             c.Engine.BalanceDays,
		Premium:                 c.Engine.Premium,
		StepMerge:               engine.MaxStepsPolicy,
		Now:                     time.Now,
	}
}

// Logger builds the process logger from the log settings.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
