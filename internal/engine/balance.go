package engine

// CumulativeBalance is the running (target - consumed) over a span of
// logged days. Positive means a net deficit.
type CumulativeBalance struct {
	RawTotal         float64 `json:"raw_total"`
	GuardrailedTotal float64 `json:"guardrailed_total"`
	DaysCounted      int     `json:"days_counted"`
	// DaysGuardrailed is how many days fell below GuardrailMinCalories and
	// were left out of GuardrailedTotal.
	DaysGuardrailed int `json:"days_guardrailed"`
}

// CumulativeBalance sums the daily deficit over the last n logged days
// (Config.BalanceDays when n <= 0). Gaps in the log are not filled, so a
// user who skipped days gets fewer days summed. Days below the guardrail
// usually mean incomplete logging and are excluded from GuardrailedTotal.
func (e *Engine) CumulativeBalance(days []DailyRecord, target float64, n int) CumulativeBalance {
	if n <= 0 {
		n = e.cfg.BalanceDays
	}
	var bal CumulativeBalance
	for _, d := range lastN(days, n) {
		diff := target - d.TotalCalories
		bal.RawTotal += diff
		bal.DaysCounted++
		if d.TotalCalories >= e.cfg.GuardrailMinCalories {
			bal.GuardrailedTotal += diff
		} else {
			bal.DaysGuardrailed++
		}
	}
	return bal
}

// lastN returns the trailing n elements of days, which must be date-ordered.
func lastN(days []DailyRecord, n int) []DailyRecord {
	if n >= len(days) {
		return days
	}
	return days[len(days)-n:]
}
