package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:37780" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FLUXDIARY_PORT", "9000")
	t.Setenv("FLUXDIARY_STEP_THRESHOLD", "10000")
	t.Setenv("FLUXDIARY_MIN_FAST_HOURS", "0")
	t.Setenv("FLUXDIARY_PREMIUM", "false")
	t.Setenv("FLUXDIARY_TIMEZONE", "UTC")
	t.Setenv("FLUXDIARY_CACHE_TTL", "30s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Engine.StepThreshold != 10000 {
		t.Errorf("StepThreshold = %d, want 10000", cfg.Engine.StepThreshold)
	}
	if cfg.Engine.MinFastHours != 0 {
		t.Errorf("MinFastHours = %v, want 0", cfg.Engine.MinFastHours)
	}
	if cfg.Engine.Premium {
		t.Error("Premium = true, want false")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s", cfg.Cache.TTL)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FLUXDIARY_CALORIE_TARGET=2350\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// godotenv does not override variables already set
	os.Unsetenv("FLUXDIARY_CALORIE_TARGET")
	t.Cleanup(func() { os.Unsetenv("FLUXDIARY_CALORIE_TARGET") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.CalorieTarget != 2350 {
		t.Errorf("CalorieTarget = %v, want 2350", cfg.Profile.CalorieTarget)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FLUXDIARY_PORT", "not-a-port")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Load accepted a non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero target", func(c *Config) { c.Profile.CalorieTarget = 0 }},
		{"bad zone", func(c *Config) { c.Profile.Timezone = "Mars/Olympus" }},
		{"gap bound below minimum", func(c *Config) { c.Engine.MaxFastGapHours = 3 }},
		{"negative min fast", func(c *Config) { c.Engine.MinFastHours = -1 }},
		{"zero balance days", func(c *Config) { c.Engine.BalanceDays = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := Default()
	cfg.Engine.StepThreshold = 9000
	ec := cfg.EngineConfig(time.UTC)
	if ec.Location != time.UTC || ec.StepThreshold != 9000 || !ec.Premium {
		t.Errorf("EngineConfig = %+v", ec)
	}
	if ec.StepMerge == nil || ec.Now == nil {
		t.Error("EngineConfig left StepMerge or Now nil")
	}
}

func TestLoggerFormat(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	var buf bytes.Buffer
	cfg.Logger(&buf).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	buf.Reset()
	cfg.Log.Level = "warn"
	cfg.Logger(&buf).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}
}
