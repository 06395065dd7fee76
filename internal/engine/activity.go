package engine

import "sort"

// StepMergePolicy folds a new step reading into the running value for a day.
type StepMergePolicy func(current, next int) int

// MaxStepsPolicy keeps the highest reading seen for the day.
//
// Consumer step counters under-report far more often than they over-report
// (flat battery, device left on the desk), so the largest figure from any
// source is taken as the best estimate. This is a policy choice; swap it via
// Config.StepMerge.
func MaxStepsPolicy(current, next int) int {
	if next > current {
		return next
	}
	return current
}

// DailySteps reduces activity samples from every source to one step count
// per local calendar day.
func (e *Engine) DailySteps(sources map[string][]ActivitySample) map[string]int {
	// Iterate sources in a fixed order so that order-sensitive custom
	// policies stay deterministic.
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	steps := make(map[string]int)
	for _, name := range names {
		for _, s := range sources[name] {
			key := e.dayKey(s.At)
			if cur, ok := steps[key]; ok {
				steps[key] = e.cfg.StepMerge(cur, s.Steps)
			} else {
				steps[key] = s.Steps
			}
		}
	}
	return steps
}

// MergeActivity returns a copy of records with Steps filled from the merged
// activity samples. Days with activity but no food are not added.
func (e *Engine) MergeActivity(records []DailyRecord, sources map[string][]ActivitySample) []DailyRecord {
	steps := e.DailySteps(sources)
	out := make([]DailyRecord, len(records))
	for i, rec := range records {
		rec.Steps = steps[rec.Date]
		out[i] = rec
	}
	return out
}
