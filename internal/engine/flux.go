package engine

// FluxZone is the activity/intake quadrant a day falls into.
type FluxZone string

const (
	ZoneOptimalFlux         FluxZone = "Optimal Flux"
	ZoneGrind               FluxZone = "The Grind"
	ZoneSedentaryStorage    FluxZone = "Sedentary Storage"
	ZoneMetabolicStagnation FluxZone = "Metabolic Stagnation"
)

// FluxZoneCounts tallies days per zone.
type FluxZoneCounts struct {
	OptimalFluxDays         int `json:"optimal_flux_days"`
	GrindDays               int `json:"grind_days"`
	SedentaryStorageDays    int `json:"sedentary_storage_days"`
	MetabolicStagnationDays int `json:"metabolic_stagnation_days"`
}

// Total is the number of classified days.
func (c FluxZoneCounts) Total() int {
	return c.OptimalFluxDays + c.GrindDays + c.SedentaryStorageDays + c.MetabolicStagnationDays
}

// Zone places one day in its quadrant.
func (e *Engine) Zone(d DailyRecord, target float64) FluxZone {
	highActivity := d.Steps >= e.cfg.StepThreshold
	highCalorie := d.TotalCalories >= target
	switch {
	case highActivity && highCalorie:
		return ZoneOptimalFlux
	case highActivity:
		return ZoneGrind
	case highCalorie:
		return ZoneSedentaryStorage
	default:
		return ZoneMetabolicStagnation
	}
}

// ClassifyFlux counts days per zone. Only days with logged calories are
// classified; zero-step days are included.
func (e *Engine) ClassifyFlux(days []DailyRecord, target float64) FluxZoneCounts {
	var counts FluxZoneCounts
	for _, d := range days {
		if d.TotalCalories <= 0 {
			continue
		}
		switch e.Zone(d, target) {
		case ZoneOptimalFlux:
			counts.OptimalFluxDays++
		case ZoneGrind:
			counts.GrindDays++
		case ZoneSedentaryStorage:
			counts.SedentaryStorageDays++
		case ZoneMetabolicStagnation:
			counts.MetabolicStagnationDays++
		}
	}
	return counts
}
