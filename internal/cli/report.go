package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fluxdiary/fluxdiary/internal/engine"
)

var (
	heading = color.New(color.Bold, color.FgCyan)
	faint   = color.New(color.Faint)
)

var zoneColors = map[engine.FluxZone]*color.Color{
	engine.ZoneOptimalFlux:         color.New(color.FgGreen),
	engine.ZoneGrind:               color.New(color.FgBlue),
	engine.ZoneSedentaryStorage:    color.New(color.FgYellow),
	engine.ZoneMetabolicStagnation: color.New(color.FgRed),
}

// --- trends command ---

var trendsWindow string

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show steps/intake correlation, flux zones and calorie balance",
	RunE:  runTrends,
}

// --- fasting command ---

var fastingCmd = &cobra.Command{
	Use:   "fasting",
	Short: "Show the fast in progress and its projected end",
	RunE:  runFasting,
}

// --- summary command ---

var summaryCmd = &cobra.Command{
	Use:   "summary [date]",
	Short: "Show one day's totals (defaults to today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

func init() {
	trendsCmd.Flags().StringVarP(&trendsWindow, "window", "w", "7d", "Lookback window: 7d, 14d, 30d or 90d")
}

func runTrends(cmd *cobra.Command, args []string) error {
	window, err := engine.ParseWindow(trendsWindow)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	raws, err := s.db.AllEntries()
	if err != nil {
		return err
	}
	ta := s.engine.Trends(raws, s.profile.CalorieTarget, window)
	if ta.DegradedEntries > 0 || ta.RejectedEntries > 0 {
		s.logger.Warn("log has imperfect entries", "degraded", ta.DegradedEntries, "rejected", ta.RejectedEntries)
	}
	printTrends(cmd.OutOrStdout(), ta)
	return nil
}

func printTrends(w io.Writer, ta engine.TrendsAnalysis) {
	heading.Fprintf(w, "Trends (%s)\n", ta.Window)
	if ta.Clamped {
		faint.Fprintln(w, "  longer windows need premium; showing 7d")
	}
	if ta.DaysAnalyzed == 0 {
		fmt.Fprintln(w, "  No food logged in this window.")
		return
	}

	fmt.Fprintf(w, "  %-16s %.0f kcal/day over %d days (target %.0f)\n",
		"Average intake", ta.AverageDailyCalories, ta.DaysAnalyzed, ta.CalorieTarget)
	fmt.Fprintf(w, "  %-16s %+.3f kcal/step, %s (%d days)\n",
		"Steps vs intake", ta.Correlation.Slope, ta.Correlation.Strength, ta.Correlation.Points)

	z := ta.FluxZones
	fmt.Fprintf(w, "  %-16s %s %d  %s %d  %s %d  %s %d\n", "Flux zones",
		zoneColors[engine.ZoneOptimalFlux].Sprint(engine.ZoneOptimalFlux), z.OptimalFluxDays,
		zoneColors[engine.ZoneGrind].Sprint(engine.ZoneGrind), z.GrindDays,
		zoneColors[engine.ZoneSedentaryStorage].Sprint(engine.ZoneSedentaryStorage), z.SedentaryStorageDays,
		zoneColors[engine.ZoneMetabolicStagnation].Sprint(engine.ZoneMetabolicStagnation), z.MetabolicStagnationDays)

	b := ta.Balance
	fmt.Fprintf(w, "  %-16s %s kcal raw, %s kcal guardrailed over %d days",
		"Balance", signed(b.RawTotal), signed(b.GuardrailedTotal), b.DaysCounted)
	if b.DaysGuardrailed > 0 {
		fmt.Fprintf(w, " (%d under-logged days left out)", b.DaysGuardrailed)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w)
	faint.Fprintf(w, "  %-10s %8s %8s  %s\n", "date", "kcal", "steps", "zone")
	for _, d := range ta.Days {
		zone := "-"
		if c, ok := zoneColors[d.Zone]; ok {
			zone = c.Sprint(d.Zone)
		}
		fmt.Fprintf(w, "  %-10s %8.0f %8d  %s\n", d.Date, d.Calories, d.Steps, zone)
	}
}

// signed formats a balance; positive is a deficit.
func signed(v float64) string {
	s := fmt.Sprintf("%+.0f", v)
	switch {
	case v > 0:
		return color.GreenString("%s", s)
	case v < 0:
		return color.RedString("%s", s)
	default:
		return s
	}
}

func runFasting(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	raws, err := s.db.AllEntries()
	if err != nil {
		return err
	}
	printFasting(cmd.OutOrStdout(), s.engine.FastingFromLog(raws), s.engine.Config().FastingTargetHours)
	return nil
}

func printFasting(w io.Writer, fp engine.FastingProjection, targetHours float64) {
	heading.Fprintln(w, "Fasting")
	if fp.LastQualifyingMeal == nil {
		fmt.Fprintln(w, "  No meals logged yet.")
		return
	}

	const stamp = "Mon 02 Jan 15:04"
	fmt.Fprintf(w, "  %-18s %s\n", "Last meal", fp.LastQualifyingMeal.Format(stamp))
	fmt.Fprintf(w, "  %-18s %.1f h\n", "Fasting for", fp.HoursSinceLastQualifyingMeal)

	best := fmt.Sprintf("%.1f h", fp.MaxHistoricalFastHours)
	if !fp.HasHistory {
		best += faint.Sprint(" (default, no history yet)")
	}
	fmt.Fprintf(w, "  %-18s %s\n", "Longest overnight", best)

	if fp.ProjectedFixedTargetEnd != nil {
		fmt.Fprintf(w, "  %-18s %s\n", fmt.Sprintf("%.0f h target", targetHours), fp.ProjectedFixedTargetEnd.Format(stamp))
	}
	if fp.ProjectedHistoricalMaxEnd != nil {
		fmt.Fprintf(w, "  %-18s %s\n", "Personal best", fp.ProjectedHistoricalMaxEnd.Format(stamp))
	}
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	date := time.Now().In(s.engine.Location()).Format(engine.DateLayout)
	if len(args) > 0 {
		date = strings.TrimSpace(args[0])
	}

	raws, err := s.db.AllEntries()
	if err != nil {
		return err
	}
	sum, err := s.engine.DailySummary(raws, date, s.profile.CalorieTarget)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func printSummary(w io.Writer, sum engine.DailyNutritionSummary) {
	heading.Fprintf(w, "Summary for %s\n", sum.Date)
	fmt.Fprintf(w, "  %-10s %.0f / %.0f kcal (%d entries)\n", "Calories", sum.TotalCalories, sum.CalorieTarget, sum.EntryCount)
	fmt.Fprintf(w, "  %-10s P %.0f g  C %.0f g  F %.0f g\n", "Macros", sum.TotalProtein, sum.TotalCarbs, sum.TotalFat)
	fmt.Fprintf(w, "  %-10s %d\n", "Steps", sum.Steps)

	if sum.Remaining >= 0 {
		fmt.Fprintf(w, "  %-10s %s\n", "Remaining", color.GreenString("%.0f kcal", sum.Remaining))
	} else {
		fmt.Fprintf(w, "  %-10s %s\n", "Over", color.RedString("%.0f kcal", -sum.Remaining))
	}
}
