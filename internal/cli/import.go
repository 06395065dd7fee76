package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/fluxdiary/fluxdiary/internal/ingest"
	"github.com/fluxdiary/fluxdiary/internal/tracker"
)

// --- import command ---

var importSource string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSONL diary export or a FIT activity file",
	Long:  "Import entries from a JSONL export (one raw entry per line) or a .fit activity file. Entries already present are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

// --- sync command ---

var syncDays int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull daily step totals from the configured tracker",
	RunE:  runSync,
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "fit", "Source label for FIT activity samples")
	syncCmd.Flags().IntVarP(&syncDays, "days", "d", 7, "Number of days to pull, ending today")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var entries []engine.RawEntry
	skipped := 0
	if strings.EqualFold(filepath.Ext(path), ".fit") {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		entries, err = ingest.DecodeFIT(f, importSource)
		if err != nil {
			return err
		}
	} else {
		res, err := ingest.ParseFile(path)
		if err != nil {
			return err
		}
		entries, skipped = res.Entries, res.Skipped
	}

	entries, degraded, rejected := s.engine.NormalizeAll(entries)
	skipped += rejected

	added, err := s.db.AddEntries(entries)
	if err != nil {
		return fmt.Errorf("store entries: %w", err)
	}
	s.logger.Debug("import finished", "path", path, "read", len(entries), "added", added, "skipped", skipped, "degraded", degraded)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d entries from %s", color.GreenString("Imported"), added, filepath.Base(path))
	if dup := len(entries) - added; dup > 0 {
		fmt.Fprintf(out, ", %d already present", dup)
	}
	fmt.Fprintln(out)
	if skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, "Skipped %d lines (malformed or unknown type)\n", skipped)
	}
	if degraded > 0 {
		color.New(color.FgYellow).Fprintf(out, "%d entries had no usable timestamp and were logged at the current time\n", degraded)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := tracker.New(s.cfg.Tracker.URL, s.cfg.Tracker.Token, s.cfg.Tracker.Source, s.logger)
	if err != nil {
		return fmt.Errorf("%w (set FLUXDIARY_TRACKER_URL)", err)
	}

	loc := s.engine.Location()
	end := time.Now().In(loc)
	start := end.AddDate(0, 0, -(syncDays - 1))

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	days, err := client.FetchDailySteps(ctx, start, end)
	if err != nil {
		return err
	}
	entries, _, _ := s.engine.NormalizeAll(client.Entries(days, loc))
	added, err := s.db.AddEntries(entries)
	if err != nil {
		return fmt.Errorf("store entries: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d days from %s, %d new samples\n",
		color.GreenString("Synced"), len(days), s.cfg.Tracker.Source, added)
	return nil
}
