// Package engine turns a raw diary log into per-day records and the
// summaries derived from them: steps/calories correlation, flux zones,
// cumulative balance and fasting windows.
//
// Every operation is a pure function of the supplied snapshot and the
// Config captured at construction. An *Engine holds no mutable state and is
// safe for concurrent use.
package engine

import "time"

// Config holds the policy constants the engine runs with.
type Config struct {
	// Location decides calendar-day boundaries. Nil means UTC.
	Location *time.Location

	StepThreshold           int     // steps at or above count as a high-activity day
	FastingCalorieThreshold float64 // entries below this do not break a fast
	FastingTargetHours      float64 // fixed fasting goal used for projections
	DefaultFastHours        float64 // historical max when no history exists
	MaxFastGapHours         float64 // gaps at or above are logging holes, not fasts
	MinFastHours            float64 // gaps below are not fasts; 0 disables the check
	GuardrailMinCalories    float64 // days below are excluded from the guardrailed balance
	BalanceDays             int     // default cumulative balance span

	// Premium unlocks lookback windows longer than a week.
	Premium bool

	// StepMerge combines step counts for the same day. Nil means MaxStepsPolicy.
	StepMerge StepMergePolicy

	// Now is the clock used for degraded timestamps and fasting. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Location:                time.Local,
		StepThreshold:           7500,
		FastingCalorieThreshold: 5,
		FastingTargetHours:      16,
		DefaultFastHours:        12,
		MaxFastGapHours:         48,
		MinFastHours:            4,
		GuardrailMinCalories:    800,
		BalanceDays:             7,
		Premium:                 true,
		StepMerge:               MaxStepsPolicy,
		Now:                     time.Now,
	}
}

// Engine computes diary analytics.
type Engine struct {
	cfg Config
}

// New creates an Engine. Zero-valued thresholds fall back to DefaultConfig;
// Premium and MinFastHours are taken as given.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StepThreshold <= 0 {
		cfg.StepThreshold = def.StepThreshold
	}
	if cfg.FastingCalorieThreshold <= 0 {
		cfg.FastingCalorieThreshold = def.FastingCalorieThreshold
	}
	if cfg.FastingTargetHours <= 0 {
		cfg.FastingTargetHours = def.FastingTargetHours
	}
	if cfg.DefaultFastHours <= 0 {
		cfg.DefaultFastHours = def.DefaultFastHours
	}
	if cfg.MaxFastGapHours <= 0 {
		cfg.MaxFastGapHours = def.MaxFastGapHours
	}
	if cfg.MinFastHours < 0 {
		cfg.MinFastHours = 0
	}
	if cfg.GuardrailMinCalories <= 0 {
		cfg.GuardrailMinCalories = def.GuardrailMinCalories
	}
	if cfg.BalanceDays <= 0 {
		cfg.BalanceDays = def.BalanceDays
	}
	if cfg.StepMerge == nil {
		cfg.StepMerge = MaxStepsPolicy
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Location returns the time zone used for day boundaries.
func (e *Engine) Location() *time.Location {
	return e.cfg.Location
}

// dayKey is the calendar date of t in the engine's location.
func (e *Engine) dayKey(t time.Time) string {
	return t.In(e.cfg.Location).Format(DateLayout)
}

// DateLayout is the format of DailyRecord.Date.
const DateLayout = "2006-01-02"
