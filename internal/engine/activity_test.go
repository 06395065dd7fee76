package engine

import "testing"

func TestDailyStepsTakesMaxAcrossSources(t *testing.T) {
	e := testEngine(t)
	sources := map[string][]ActivitySample{
		"tracker": {
			{At: at(2024, 3, 1, 12, 0), Steps: 4000},
			{At: at(2024, 3, 1, 22, 0), Steps: 9000},
			{At: at(2024, 3, 2, 22, 0), Steps: 3000},
		},
		"pedometer": {
			{At: at(2024, 3, 1, 23, 0), Steps: 8500},
			{At: at(2024, 3, 2, 23, 0), Steps: 5200},
		},
	}

	got := e.DailySteps(sources)
	if got["2024-03-01"] != 9000 {
		t.Errorf("2024-03-01 = %d, want 9000", got["2024-03-01"])
	}
	if got["2024-03-02"] != 5200 {
		t.Errorf("2024-03-02 = %d, want 5200", got["2024-03-02"])
	}
}

func TestDailyStepsIndependentOfSourceOrder(t *testing.T) {
	e := testEngine(t)
	a := []ActivitySample{{At: at(2024, 3, 1, 20, 0), Steps: 7000}}
	b := []ActivitySample{{At: at(2024, 3, 1, 21, 0), Steps: 12000}}

	first := e.DailySteps(map[string][]ActivitySample{"a": a, "b": b})
	swapped := e.DailySteps(map[string][]ActivitySample{"a": b, "b": a})
	if first["2024-03-01"] != swapped["2024-03-01"] {
		t.Errorf("merge depends on source: %d vs %d", first["2024-03-01"], swapped["2024-03-01"])
	}
	if first["2024-03-01"] != 12000 {
		t.Errorf("merged = %d, want 12000", first["2024-03-01"])
	}
}

func TestMergeActivityCustomPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = testZone
	cfg.StepMerge = func(current, next int) int { return current + next }
	e := New(cfg)

	records := []DailyRecord{{Date: "2024-03-01", TotalCalories: 1800}}
	sources := map[string][]ActivitySample{
		"a": {{At: at(2024, 3, 1, 9, 0), Steps: 1000}},
		"b": {{At: at(2024, 3, 1, 18, 0), Steps: 2500}},
		"c": {{At: at(2024, 3, 3, 18, 0), Steps: 9999}},
	}

	merged := e.MergeActivity(records, sources)
	if len(merged) != 1 {
		t.Fatalf("got %d records, want 1 (activity-only days are not added)", len(merged))
	}
	if merged[0].Steps != 3500 {
		t.Errorf("Steps = %d, want 3500 with summing policy", merged[0].Steps)
	}
	if records[0].Steps != 0 {
		t.Error("MergeActivity mutated its input")
	}
}
