package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fluxdiary/fluxdiary/internal/engine"
)

var (
	addAt       string
	addProtein  float64
	addCarbs    float64
	addFat      float64
	addSeverity int
	addSource   string
	addBurned   float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food, symptom or activity entry",
}

var addFoodCmd = &cobra.Command{
	Use:   "food <calories>",
	Short: "Log a meal or snack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kcal, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("calories must be a number: %w", err)
		}
		raw := engine.RawEntry{Type: string(engine.KindFood), Calories: &kcal}
		if cmd.Flags().Changed("protein") {
			raw.Protein = &addProtein
		}
		if cmd.Flags().Changed("carbs") {
			raw.Carbs = &addCarbs
		}
		if cmd.Flags().Changed("fat") {
			raw.Fat = &addFat
		}
		return runAdd(cmd, raw)
	},
}

var addSymptomCmd = &cobra.Command{
	Use:   "symptom <note...>",
	Short: "Log a symptom",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd, engine.RawEntry{
			Type:     string(engine.KindSymptom),
			Note:     strings.Join(args, " "),
			Severity: addSeverity,
		})
	},
}

var addActivityCmd = &cobra.Command{
	Use:   "activity <steps>",
	Short: "Log a step count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("steps must be an integer: %w", err)
		}
		raw := engine.RawEntry{Type: string(engine.KindActivity), Steps: &steps, Source: addSource}
		if cmd.Flags().Changed("burned") {
			raw.CaloriesBurned = &addBurned
		}
		return runAdd(cmd, raw)
	},
}

func init() {
	addCmd.PersistentFlags().StringVar(&addAt, "at", "", "Timestamp (RFC 3339 or local \"2006-01-02 15:04\"); defaults to now")

	addFoodCmd.Flags().Float64Var(&addProtein, "protein", 0, "Protein in grams")
	addFoodCmd.Flags().Float64Var(&addCarbs, "carbs", 0, "Carbohydrates in grams")
	addFoodCmd.Flags().Float64Var(&addFat, "fat", 0, "Fat in grams")

	addSymptomCmd.Flags().IntVar(&addSeverity, "severity", 0, "Severity from 1 to 5")

	addActivityCmd.Flags().StringVar(&addSource, "source", "manual", "Device or app the count came from")
	addActivityCmd.Flags().Float64Var(&addBurned, "burned", 0, "Calories burned")

	addCmd.AddCommand(addFoodCmd)
	addCmd.AddCommand(addSymptomCmd)
	addCmd.AddCommand(addActivityCmd)
}

func runAdd(cmd *cobra.Command, raw engine.RawEntry) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	raw.Timestamp = addAt
	if raw.Timestamp == "" {
		raw.Timestamp = time.Now().In(s.engine.Location()).Format(time.RFC3339)
	}

	received := raw.Timestamp
	raw, classified, err := s.engine.Normalize(raw)
	if err != nil {
		return err
	}
	if classified.Degraded {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: could not parse %q, logged at the current time\n", received)
	}

	stored, err := s.db.AddEntry(raw)
	if err != nil {
		return fmt.Errorf("add entry: %w", err)
	}

	at := classified.Entry.Time().Format("2006-01-02 15:04")
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s entry %s at %s\n",
		color.GreenString("Logged"), stored.Type, stored.ID, at)
	return nil
}
