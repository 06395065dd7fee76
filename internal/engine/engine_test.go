package engine

import (
	"errors"
	"testing"
	"time"
)

var testZone = time.FixedZone("UTC-5", -5*3600)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Location = testZone
	cfg.Now = func() time.Time { return at(2024, 3, 10, 12, 0) }
	return New(cfg)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testZone)
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func food(ts string, kcal float64) RawEntry {
	return RawEntry{Type: "food", Timestamp: ts, Calories: fptr(kcal)}
}

func steps(ts, source string, n int) RawEntry {
	return RawEntry{Type: "activity", Timestamp: ts, Steps: iptr(n), Source: source}
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(Config{})
	cfg := e.Config()
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.StepThreshold != 7500 {
		t.Errorf("StepThreshold = %d, want 7500", cfg.StepThreshold)
	}
	if cfg.GuardrailMinCalories != 800 {
		t.Errorf("GuardrailMinCalories = %v, want 800", cfg.GuardrailMinCalories)
	}
	if cfg.MinFastHours != 0 {
		t.Errorf("MinFastHours = %v, want 0 (taken as given)", cfg.MinFastHours)
	}
	if cfg.Premium {
		t.Error("Premium should stay false when not set")
	}
}

func TestClassifyKinds(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		typ  string
		want Kind
	}{
		{"food", KindFood},
		{"Meal", KindFood},
		{"symptom", KindSymptom},
		{"activity", KindActivity},
		{" STEPS ", KindActivity},
	}
	for _, tt := range tests {
		c, err := e.Classify(RawEntry{Type: tt.typ, Timestamp: "2024-03-01T08:00:00"})
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.typ, err)
		}
		if c.Entry.Kind() != tt.want {
			t.Errorf("Classify(%q).Kind = %q, want %q", tt.typ, c.Entry.Kind(), tt.want)
		}
		if c.Degraded {
			t.Errorf("Classify(%q) degraded with a valid timestamp", tt.typ)
		}
	}

	_, err := e.Classify(RawEntry{Type: "weight", Timestamp: "2024-03-01T08:00:00"})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Classify(weight) err = %v, want ErrUnknownKind", err)
	}
}

func TestClassifyTimestamps(t *testing.T) {
	e := testEngine(t)
	want := at(2024, 3, 1, 8, 30)

	inputs := []string{
		"2024-03-01T08:30:00",
		"2024-03-01T08:30",
		"2024-03-01 08:30:00",
		"2024-03-01 08:30",
		"2024-03-01T13:30:00Z",
		"2024-03-01T08:30:00-05:00",
		"1709299800000",
	}
	for _, in := range inputs {
		c, err := e.Classify(food(in, 100))
		if err != nil {
			t.Fatalf("Classify(%q): %v", in, err)
		}
		if c.Degraded {
			t.Errorf("Classify(%q) degraded", in)
		}
		if !c.Entry.Time().Equal(want) {
			t.Errorf("Classify(%q).Time = %v, want %v", in, c.Entry.Time(), want)
		}
		if c.Entry.Time().Location() != testZone {
			t.Errorf("Classify(%q) location = %v, want %v", in, c.Entry.Time().Location(), testZone)
		}
	}
}

func TestClassifyDegradedTimestamp(t *testing.T) {
	e := testEngine(t)

	for _, in := range []string{"", "yesterday-ish", "2024-13-45"} {
		c, err := e.Classify(food(in, 100))
		if err != nil {
			t.Fatalf("Classify(%q) must not fail on a bad timestamp: %v", in, err)
		}
		if !c.Degraded {
			t.Errorf("Classify(%q) Degraded = false, want true", in)
		}
		if !c.Entry.Time().Equal(at(2024, 3, 10, 12, 0)) {
			t.Errorf("Classify(%q).Time = %v, want engine clock", in, c.Entry.Time())
		}
	}
}

func TestClassifyClampsNegatives(t *testing.T) {
	e := testEngine(t)
	c, err := e.Classify(RawEntry{Type: "food", Timestamp: "2024-03-01T08:00", Calories: fptr(-50), Protein: fptr(10)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	f := c.Entry.(FoodEntry)
	if f.Calories != 0 || f.Protein != 10 || f.Carbs != 0 {
		t.Errorf("FoodEntry = %+v, want calories 0, protein 10, carbs 0", f)
	}

	c, err = e.Classify(RawEntry{Type: "activity", Timestamp: "2024-03-01T08:00", Steps: iptr(-3)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	a := c.Entry.(ActivitySample)
	if a.Steps != 0 || a.Source != UnknownSource {
		t.Errorf("ActivitySample = %+v, want 0 steps from %q", a, UnknownSource)
	}
}

func TestPartition(t *testing.T) {
	e := testEngine(t)
	raws := []RawEntry{
		food("2024-03-02T09:00", 300),
		food("2024-03-01T08:00", 200),
		{Type: "symptom", Timestamp: "2024-03-01T10:00", Note: "bloated", Severity: 2},
		steps("2024-03-01T20:00", "watch", 8000),
		steps("2024-03-01T21:00", "phone", 6000),
		{Type: "weight", Timestamp: "2024-03-01T07:00"},
		food("not a time", 50),
	}

	snap := e.Partition(raws)
	if len(snap.Food) != 3 {
		t.Fatalf("Food = %d, want 3", len(snap.Food))
	}
	if !snap.Food[0].At.Equal(at(2024, 3, 1, 8, 0)) {
		t.Errorf("Food not sorted: first = %v", snap.Food[0].At)
	}
	if len(snap.Symptoms) != 1 || snap.Symptoms[0].Note != "bloated" {
		t.Errorf("Symptoms = %+v", snap.Symptoms)
	}
	if len(snap.Activity) != 2 {
		t.Errorf("Activity sources = %d, want 2", len(snap.Activity))
	}
	if snap.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", snap.Rejected)
	}
	if snap.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", snap.Degraded)
	}
}

func TestNormalizePinsSubstitutedTimestamp(t *testing.T) {
	e := testEngine(t)

	raw, c, err := e.Normalize(food("not-a-time", 700))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !c.Degraded {
		t.Fatal("expected degraded classification")
	}
	if raw.Timestamp != "2024-03-10T12:00:00-05:00" {
		t.Errorf("Timestamp = %q, want the substituted clock time", raw.Timestamp)
	}

	// A later clock must not move the stored entry.
	cfg := e.Config()
	cfg.Now = func() time.Time { return at(2024, 3, 11, 2, 0) }
	again, err := New(cfg).Classify(raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if again.Degraded || !again.Entry.Time().Equal(at(2024, 3, 10, 12, 0)) {
		t.Errorf("reclassified = %v (degraded %v), want 2024-03-10 12:00", again.Entry.Time(), again.Degraded)
	}

	good, _, err := e.Normalize(food("2024-03-09T08:00:00Z", 300))
	if err != nil || good.Timestamp != "2024-03-09T08:00:00Z" {
		t.Errorf("valid timestamp rewritten: %q, %v", good.Timestamp, err)
	}
}

func TestNormalizeAll(t *testing.T) {
	e := testEngine(t)

	out, degraded, rejected := e.NormalizeAll([]RawEntry{
		food("2024-03-09T08:00:00Z", 300),
		{Type: "water", Timestamp: "2024-03-09T09:00:00Z"},
		food("", 200),
	})
	if len(out) != 2 || degraded != 1 || rejected != 1 {
		t.Errorf("kept = %d, degraded = %d, rejected = %d, want 2, 1, 1", len(out), degraded, rejected)
	}
	if out[1].Timestamp == "" {
		t.Error("missing timestamp not pinned")
	}
}
