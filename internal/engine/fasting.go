package engine

import (
	"sort"
	"time"
)

// FastingProjection describes the fast in progress and where it would end.
type FastingProjection struct {
	// LastQualifyingMeal is nil when the log has no qualifying entry.
	LastQualifyingMeal           *time.Time `json:"last_qualifying_meal,omitempty"`
	HoursSinceLastQualifyingMeal float64    `json:"hours_since_last_qualifying_meal"`
	MaxHistoricalFastHours       float64    `json:"max_historical_fast_hours"`
	// HasHistory reports whether MaxHistoricalFastHours came from the log
	// rather than the configured default.
	HasHistory                bool       `json:"has_history"`
	ProjectedFixedTargetEnd   *time.Time `json:"projected_fixed_target_end,omitempty"`
	ProjectedHistoricalMaxEnd *time.Time `json:"projected_historical_max_end,omitempty"`
}

// Fasting measures the overnight gaps between the last qualifying meal of a
// day and the first of the next logged day, and projects the current fast
// from the most recent qualifying meal.
//
// Entries below FastingCalorieThreshold (black coffee, a supplement) do not
// break a fast. Gaps of MaxFastGapHours or more are treated as holes in the
// log, and gaps shorter than MinFastHours are not fasts.
func (e *Engine) Fasting(food []FoodEntry, now time.Time) FastingProjection {
	qualifying := make([]time.Time, 0, len(food))
	for _, f := range food {
		if f.Calories >= e.cfg.FastingCalorieThreshold {
			qualifying = append(qualifying, f.At)
		}
	}
	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].Before(qualifying[j])
	})

	var proj FastingProjection
	if maxGap, ok := e.maxOvernightGap(qualifying); ok {
		proj.MaxHistoricalFastHours = maxGap
		proj.HasHistory = true
	} else {
		proj.MaxHistoricalFastHours = e.cfg.DefaultFastHours
	}

	if len(qualifying) == 0 {
		return proj
	}
	last := qualifying[len(qualifying)-1]
	proj.LastQualifyingMeal = &last

	since := now.Sub(last).Hours()
	if since <= 0 {
		return proj
	}
	proj.HoursSinceLastQualifyingMeal = since

	fixedEnd := last.Add(hours(e.cfg.FastingTargetHours))
	histEnd := last.Add(hours(proj.MaxHistoricalFastHours))
	proj.ProjectedFixedTargetEnd = &fixedEnd
	proj.ProjectedHistoricalMaxEnd = &histEnd
	return proj
}

// maxOvernightGap expects times sorted ascending.
func (e *Engine) maxOvernightGap(times []time.Time) (float64, bool) {
	type span struct {
		first, last time.Time
	}
	var days []span
	var prevKey string
	for _, t := range times {
		key := e.dayKey(t)
		if len(days) > 0 && key == prevKey {
			days[len(days)-1].last = t
			continue
		}
		days = append(days, span{first: t, last: t})
		prevKey = key
	}

	var maxGap float64
	found := false
	for i := 1; i < len(days); i++ {
		gap := days[i].first.Sub(days[i-1].last).Hours()
		if gap >= e.cfg.MaxFastGapHours || gap < e.cfg.MinFastHours {
			continue
		}
		if !found || gap > maxGap {
			maxGap = gap
			found = true
		}
	}
	return maxGap, found
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
