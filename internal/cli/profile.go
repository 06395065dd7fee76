package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fluxdiary/fluxdiary/internal/config"
	"github.com/fluxdiary/fluxdiary/internal/store"
)

var (
	profileTarget   float64
	profileTimezone string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the calorie target and time zone",
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().Float64Var(&profileTarget, "target", 0, "Daily calorie target")
	profileCmd.Flags().StringVar(&profileTimezone, "timezone", "", "IANA time zone, e.g. Europe/Berlin")
}

func runProfile(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	p := s.profile
	changed := false
	if cmd.Flags().Changed("target") {
		if profileTarget <= 0 {
			return fmt.Errorf("--target must be positive")
		}
		p.CalorieTarget = profileTarget
		changed = true
	}
	if cmd.Flags().Changed("timezone") {
		if _, err := config.LoadLocation(profileTimezone); err != nil {
			return err
		}
		p.Timezone = profileTimezone
		changed = true
	}

	if changed {
		saved, err := s.db.SaveProfile(p)
		if err != nil {
			return err
		}
		p = *saved
	}
	printProfile(cmd.OutOrStdout(), p, changed)
	return nil
}

func printProfile(w io.Writer, p store.Profile, saved bool) {
	heading.Fprintln(w, "Profile")
	fmt.Fprintf(w, "  %-10s %.0f kcal\n", "Target", p.CalorieTarget)
	fmt.Fprintf(w, "  %-10s %s\n", "Timezone", p.Timezone)
	if saved {
		faint.Fprintln(w, "  saved")
	}
}
