package engine

import "math"

// Strength labels for a steps/calories slope.
const (
	StrengthNone           = "None"
	StrengthNegligible     = "None/Negligible"
	StrengthWeakPositive   = "Weak Positive"
	StrengthStrongPositive = "Strong Positive"
	StrengthWeakNegative   = "Weak Negative"
	StrengthStrongNegative = "Strong Negative"
)

const (
	negligibleSlope = 0.05
	strongSlope     = 0.15
)

// CorrelationResult is the least-squares slope of daily calories against
// daily steps, in kcal per step.
type CorrelationResult struct {
	Slope    float64 `json:"slope"`
	Strength string  `json:"strength"`
	Points   int     `json:"points"`
}

// Correlate regresses calories on steps over days that have both. Days with
// no recorded steps are left out so they do not pull the line toward the
// origin. Too few points or a single distinct step value yield a zero slope
// labelled StrengthNone.
func Correlate(days []DailyRecord) CorrelationResult {
	var n, sumX, sumY, sumXY, sumX2 float64
	for _, d := range days {
		if d.Steps <= 0 || d.TotalCalories <= 0 {
			continue
		}
		x := float64(d.Steps)
		y := d.TotalCalories
		n++
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	res := CorrelationResult{Points: int(n), Strength: StrengthNone}
	denom := n*sumX2 - sumX*sumX
	if n < 2 || denom == 0 {
		return res
	}
	res.Slope = (n*sumXY - sumX*sumY) / denom
	res.Strength = StrengthLabel(res.Slope)
	return res
}

// StrengthLabel buckets a slope into a qualitative label.
func StrengthLabel(slope float64) string {
	switch {
	case math.Abs(slope) < negligibleSlope:
		return StrengthNegligible
	case slope > strongSlope:
		return StrengthStrongPositive
	case slope > 0:
		return StrengthWeakPositive
	case slope < -strongSlope:
		return StrengthStrongNegative
	default:
		return StrengthWeakNegative
	}
}
