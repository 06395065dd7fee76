package engine

import (
	"errors"
	"testing"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want Window
	}{
		{"", WindowWeek},
		{"7d", WindowWeek},
		{"14", WindowFortnight},
		{"30D", WindowMonth},
		{"90d", WindowQuarter},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		if err != nil {
			t.Fatalf("ParseWindow(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseWindow(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := ParseWindow("365d"); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("ParseWindow(365d) err = %v, want ErrInvalidWindow", err)
	}
}

func trendsLog() []RawEntry {
	return []RawEntry{
		food("2024-03-01T08:00", 1200),
		food("2024-03-01T19:00", 1000),
		steps("2024-03-01T22:00", "tracker", 9000),
		steps("2024-03-01T23:00", "pedometer", 7000),
		food("2024-03-02T09:00", 1500),
		steps("2024-03-02T22:00", "tracker", 3000),
		steps("2024-03-03T22:00", "tracker", 15000), // no food logged
		{Type: "symptom", Timestamp: "2024-03-02T10:00", Note: "headache"},
		food("garbled", 0),
	}
}

func TestTrendsEndToEnd(t *testing.T) {
	e := testEngine(t)
	ta := e.Trends(trendsLog(), 2000, WindowWeek)

	// garbled zero-kcal entry lands on the clock date, 2024-03-10
	if ta.DaysAnalyzed != 2 {
		t.Errorf("DaysAnalyzed = %d, want 2", ta.DaysAnalyzed)
	}
	want := FluxZoneCounts{OptimalFluxDays: 1, MetabolicStagnationDays: 1}
	if ta.FluxZones != want {
		t.Errorf("FluxZones = %+v, want %+v", ta.FluxZones, want)
	}
	if ta.FluxZones.Total() != ta.DaysAnalyzed {
		t.Errorf("zone total %d != days analyzed %d", ta.FluxZones.Total(), ta.DaysAnalyzed)
	}
	if ta.AverageDailyCalories != 1850 {
		t.Errorf("AverageDailyCalories = %v, want 1850", ta.AverageDailyCalories)
	}
	if ta.DegradedEntries != 1 {
		t.Errorf("DegradedEntries = %d, want 1", ta.DegradedEntries)
	}
	if len(ta.Days) != 3 {
		t.Fatalf("Days = %d, want 3", len(ta.Days))
	}
	if ta.Days[0].Steps != 9000 || ta.Days[0].Zone != ZoneOptimalFlux {
		t.Errorf("Days[0] = %+v", ta.Days[0])
	}
	if ta.Days[2].Zone != "" {
		t.Errorf("zero-calorie day has zone %q", ta.Days[2].Zone)
	}
	// (2000-2200) + (2000-1500) + (2000-0)
	if ta.Balance.RawTotal != 2300 {
		t.Errorf("Balance.RawTotal = %v, want 2300", ta.Balance.RawTotal)
	}
	if ta.Balance.GuardrailedTotal != 300 {
		t.Errorf("Balance.GuardrailedTotal = %v, want 300", ta.Balance.GuardrailedTotal)
	}
	if ta.Correlation.Slope == 0 || ta.Correlation.Points != 2 {
		t.Errorf("Correlation = %+v, want a two-point slope", ta.Correlation)
	}
}

func TestTrendsClampsWithoutPremium(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = testZone
	cfg.Premium = false
	e := New(cfg)

	ta := e.Trends(trendsLog(), 2000, WindowQuarter)
	if ta.Window != WindowWeek || !ta.Clamped {
		t.Errorf("Window = %q clamped=%v, want 7d clamped", ta.Window, ta.Clamped)
	}

	ta = testEngine(t).Trends(trendsLog(), 2000, WindowQuarter)
	if ta.Window != WindowQuarter || ta.Clamped {
		t.Errorf("premium Window = %q clamped=%v, want 90d", ta.Window, ta.Clamped)
	}
}

func TestTrendsWindowLimitsDays(t *testing.T) {
	e := testEngine(t)
	var raws []RawEntry
	for d := 1; d <= 20; d++ {
		ts := at(2024, 1, d, 12, 0).Format("2006-01-02T15:04")
		raws = append(raws, food(ts, 1900))
	}
	ta := e.Trends(raws, 2000, WindowFortnight)
	if ta.DaysAnalyzed != 14 || len(ta.Days) != 14 {
		t.Errorf("DaysAnalyzed = %d, Days = %d, want 14", ta.DaysAnalyzed, len(ta.Days))
	}
	if ta.Days[0].Date != "2024-01-07" {
		t.Errorf("first day = %s, want 2024-01-07", ta.Days[0].Date)
	}
	// The balance spans BalanceDays (7), not the 14-day window.
	if ta.Balance.RawTotal != 700 || ta.Balance.DaysCounted != 7 {
		t.Errorf("Balance = %+v, want 700 over 7 days", ta.Balance)
	}
}

func TestTrendsBalanceDays(t *testing.T) {
	var raws []RawEntry
	for d := 1; d <= 7; d++ {
		ts := at(2024, 1, d, 12, 0).Format("2006-01-02T15:04")
		raws = append(raws, food(ts, float64(1000+100*d)))
	}

	cfg := testEngine(t).Config()
	cfg.BalanceDays = 3
	ta := New(cfg).Trends(raws, 2000, WindowWeek)
	// Days 5..7 logged 1500, 1600, 1700.
	if ta.Balance.DaysCounted != 3 || ta.Balance.RawTotal != 1200 {
		t.Errorf("Balance = %+v, want 1200 over 3 days", ta.Balance)
	}
	if ta.DaysAnalyzed != 7 {
		t.Errorf("DaysAnalyzed = %d, want the full window of 7", ta.DaysAnalyzed)
	}

	cfg.BalanceDays = 30
	ta = New(cfg).Trends(raws, 2000, WindowWeek)
	if ta.Balance.DaysCounted != 7 {
		t.Errorf("DaysCounted = %d, want 7 (window is shorter than BalanceDays)", ta.Balance.DaysCounted)
	}
}

func TestDailySummary(t *testing.T) {
	e := testEngine(t)
	sum, err := e.DailySummary(trendsLog(), "2024-03-01", 2000)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if sum.TotalCalories != 2200 || sum.Steps != 9000 || sum.EntryCount != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Remaining != -200 {
		t.Errorf("Remaining = %v, want -200", sum.Remaining)
	}

	sum, err = e.DailySummary(trendsLog(), "2024-03-03", 2000)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if sum.TotalCalories != 0 || sum.Steps != 15000 {
		t.Errorf("activity-only day = %+v, want 0 kcal 15000 steps", sum)
	}

	if _, err := e.DailySummary(nil, "03/01/2024", 2000); err == nil {
		t.Error("DailySummary accepted a malformed date")
	}
}

func TestFastingFromLog(t *testing.T) {
	e := testEngine(t)
	proj := e.FastingFromLog([]RawEntry{
		food("2024-03-09T08:00", 400),
		food("2024-03-09T20:00", 700),
		food("2024-03-09T22:00", 3),
	})
	// clock is 2024-03-10 12:00
	if proj.HoursSinceLastQualifyingMeal != 16 {
		t.Errorf("HoursSinceLastQualifyingMeal = %v, want 16", proj.HoursSinceLastQualifyingMeal)
	}
}
