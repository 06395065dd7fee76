package engine

import (
	"slices"
	"sort"
)

// DailyRecord is one local calendar day of logged food, with the merged
// step count for that day.
type DailyRecord struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`
	Steps         int     `json:"steps"`
	EntryCount    int     `json:"entry_count"`
}

// Aggregate groups food entries by local calendar day and sums the macros.
// Days without entries are absent, not zero records. Output is ordered by
// ascending date; Steps is left zero for MergeActivity to fill.
func (e *Engine) Aggregate(food []FoodEntry) []DailyRecord {
	byDay := make(map[string]*DailyRecord)
	for _, f := range food {
		key := e.dayKey(f.At)
		rec, ok := byDay[key]
		if !ok {
			rec = &DailyRecord{Date: key}
			byDay[key] = rec
		}
		rec.TotalCalories += f.Calories
		rec.TotalProtein += f.Protein
		rec.TotalCarbs += f.Carbs
		rec.TotalFat += f.Fat
		rec.EntryCount++
	}

	records := make([]DailyRecord, 0, len(byDay))
	for _, rec := range byDay {
		records = append(records, *rec)
	}
	// YYYY-MM-DD sorts lexically in date order
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records
}

func sortByTime[T Entry](entries []T) {
	slices.SortStableFunc(entries, func(a, b T) int {
		return a.Time().Compare(b.Time())
	})
}
