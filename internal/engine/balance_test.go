package engine

import (
	"math"
	"testing"
)

func TestCumulativeBalanceUsesLastLoggedDays(t *testing.T) {
	e := testEngine(t)
	days := []DailyRecord{
		{Date: "2024-02-01", TotalCalories: 100}, // outside the window
		{Date: "2024-03-01", TotalCalories: 1800},
		{Date: "2024-03-04", TotalCalories: 2300},
		{Date: "2024-03-09", TotalCalories: 600},
	}

	bal := e.CumulativeBalance(days, 2000, 3)
	if bal.DaysCounted != 3 {
		t.Fatalf("DaysCounted = %d, want 3", bal.DaysCounted)
	}
	if bal.RawTotal != 200-300+1400 {
		t.Errorf("RawTotal = %v, want 1300", bal.RawTotal)
	}
	if bal.GuardrailedTotal != -100 {
		t.Errorf("GuardrailedTotal = %v, want -100", bal.GuardrailedTotal)
	}
}

func TestCumulativeBalanceDefaultSpan(t *testing.T) {
	e := testEngine(t)
	var days []DailyRecord
	for i := 0; i < 10; i++ {
		days = append(days, DailyRecord{TotalCalories: 1500})
	}
	bal := e.CumulativeBalance(days, 2000, 0)
	if bal.DaysCounted != 7 || bal.RawTotal != 3500 {
		t.Errorf("got %+v, want 7 days totalling 3500", bal)
	}
	if bal.GuardrailedTotal != bal.RawTotal {
		t.Errorf("GuardrailedTotal = %v, want %v with no low days", bal.GuardrailedTotal, bal.RawTotal)
	}
}

func TestCumulativeBalanceGuardrailNeverOverstatesDeficit(t *testing.T) {
	e := testEngine(t)
	sets := [][]DailyRecord{
		{{TotalCalories: 1900}, {TotalCalories: 300}, {TotalCalories: 1700}},
		{{TotalCalories: 500}, {TotalCalories: 200}},
		{{TotalCalories: 2100}, {TotalCalories: 2500}},
	}
	for i, days := range sets {
		bal := e.CumulativeBalance(days, 2000, 7)
		if bal.RawTotal >= 0 && bal.GuardrailedTotal > bal.RawTotal {
			t.Errorf("set %d: guardrailed deficit %v exceeds raw %v", i, bal.GuardrailedTotal, bal.RawTotal)
		}
		if math.Abs(bal.GuardrailedTotal) > math.Abs(bal.RawTotal) && bal.DaysGuardrailed == 0 {
			t.Errorf("set %d: totals differ without any guardrailed day", i)
		}
	}
}
