package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidWindow is returned by ParseWindow for an unsupported selector.
var ErrInvalidWindow = errors.New("invalid lookback window")

// Window selects how many trailing logged days trends cover.
type Window string

const (
	WindowWeek      Window = "7d"
	WindowFortnight Window = "14d"
	WindowMonth     Window = "30d"
	WindowQuarter   Window = "90d"
)

// Windows lists the supported selectors, shortest first.
var Windows = []Window{WindowWeek, WindowFortnight, WindowMonth, WindowQuarter}

// ParseWindow accepts "7d", "14d", "30d", "90d" and the bare day counts.
// An empty string selects WindowWeek.
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return WindowWeek, nil
	}
	if !strings.HasSuffix(s, "d") {
		s += "d"
	}
	for _, w := range Windows {
		if Window(s) == w {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
}

// Days is the number of logged days the window spans.
func (w Window) Days() int {
	switch w {
	case WindowFortnight:
		return 14
	case WindowMonth:
		return 30
	case WindowQuarter:
		return 90
	default:
		return 7
	}
}

// DayPoint is one day of the chart series.
type DayPoint struct {
	Date     string   `json:"date"`
	Calories float64  `json:"calories"`
	Steps    int      `json:"steps"`
	Zone     FluxZone `json:"zone,omitempty"`
}

// TrendsAnalysis bundles everything computed over one lookback window.
type TrendsAnalysis struct {
	Window               Window            `json:"window"`
	WindowDays           int               `json:"window_days"`
	Clamped              bool              `json:"clamped,omitempty"`
	CalorieTarget        float64           `json:"calorie_target"`
	DaysAnalyzed         int               `json:"days_analyzed"`
	AverageDailyCalories float64           `json:"average_daily_calories"`
	Correlation          CorrelationResult `json:"correlation"`
	FluxZones            FluxZoneCounts    `json:"flux_zones"`
	Balance              CumulativeBalance `json:"balance"`
	Days                 []DayPoint        `json:"days"`
	DegradedEntries      int               `json:"degraded_entries"`
	RejectedEntries      int               `json:"rejected_entries"`
}

// DailyRecords classifies a raw log and returns date-ordered day records
// with merged steps, together with the snapshot they came from.
func (e *Engine) DailyRecords(raws []RawEntry) ([]DailyRecord, Snapshot) {
	snap := e.Partition(raws)
	return e.MergeActivity(e.Aggregate(snap.Food), snap.Activity), snap
}

// Trends computes the correlation and flux zones over the last
// window.Days() logged days. The cumulative balance covers the trailing
// Config.BalanceDays of those, or the whole window when it is shorter.
// Without Premium, windows longer than a week are clamped to WindowWeek.
func (e *Engine) Trends(raws []RawEntry, target float64, window Window) TrendsAnalysis {
	clamped := false
	if !e.cfg.Premium && window.Days() > WindowWeek.Days() {
		window = WindowWeek
		clamped = true
	}

	records, snap := e.DailyRecords(raws)
	recent := lastN(records, window.Days())

	var logged []DailyRecord
	var total float64
	points := make([]DayPoint, 0, len(recent))
	for _, d := range recent {
		p := DayPoint{Date: d.Date, Calories: d.TotalCalories, Steps: d.Steps}
		if d.TotalCalories > 0 {
			logged = append(logged, d)
			total += d.TotalCalories
			p.Zone = e.Zone(d, target)
		}
		points = append(points, p)
	}

	ta := TrendsAnalysis{
		Window:          window,
		WindowDays:      window.Days(),
		Clamped:         clamped,
		CalorieTarget:   target,
		DaysAnalyzed:    len(logged),
		Correlation:     Correlate(logged),
		FluxZones:       e.ClassifyFlux(logged, target),
		Balance:         e.CumulativeBalance(recent, target, min(window.Days(), e.cfg.BalanceDays)),
		Days:            points,
		DegradedEntries: snap.Degraded,
		RejectedEntries: snap.Rejected,
	}
	if len(logged) > 0 {
		ta.AverageDailyCalories = total / float64(len(logged))
	}
	return ta
}

// DailyNutritionSummary is one day's totals for display.
type DailyNutritionSummary struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`
	Steps         int     `json:"steps"`
	EntryCount    int     `json:"entry_count"`
	CalorieTarget float64 `json:"calorie_target"`
	// Remaining is target minus consumed; negative when over target.
	Remaining float64 `json:"remaining"`
}

// DailySummary returns the totals for one local date (YYYY-MM-DD). A date
// with no food still reports its steps.
func (e *Engine) DailySummary(raws []RawEntry, date string, target float64) (DailyNutritionSummary, error) {
	if _, err := time.ParseInLocation(DateLayout, date, e.cfg.Location); err != nil {
		return DailyNutritionSummary{}, fmt.Errorf("parse date %q: %w", date, err)
	}

	records, snap := e.DailyRecords(raws)
	sum := DailyNutritionSummary{Date: date, CalorieTarget: target}
	for _, d := range records {
		if d.Date == date {
			sum.TotalCalories = d.TotalCalories
			sum.TotalProtein = d.TotalProtein
			sum.TotalCarbs = d.TotalCarbs
			sum.TotalFat = d.TotalFat
			sum.EntryCount = d.EntryCount
			break
		}
	}
	sum.Steps = e.DailySteps(snap.Activity)[date]
	sum.Remaining = target - sum.TotalCalories
	return sum, nil
}

// FastingFromLog classifies a raw log and evaluates the fast in progress
// against the engine clock.
func (e *Engine) FastingFromLog(raws []RawEntry) FastingProjection {
	snap := e.Partition(raws)
	return e.Fasting(snap.Food, e.cfg.Now())
}
