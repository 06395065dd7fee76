package ingest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/tormoder/fit"
)

// FIT encodes the number of full strides in total_cycles for foot sports.
const stepsPerStride = 2

// fitEpoch is the FIT time base; anything at or before it is unset.
var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// DecodeFIT reads a FIT activity file and returns one activity entry per
// walking, running or hiking session. Other sessions carry no step count
// and are dropped.
func DecodeFIT(r io.Reader, source string) ([]engine.RawEntry, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, fmt.Errorf("activity file has no session message")
	}
	return SessionEntries(activity.Sessions, source), nil
}

// SessionEntries converts FIT session messages into activity entries. Ids
// are derived from source and start time so re-importing a file is a no-op.
// Sessions without any valid time are dropped.
func SessionEntries(sessions []*fit.SessionMsg, source string) []engine.RawEntry {
	if source == "" {
		source = "fit"
	}
	var entries []engine.RawEntry
	for _, s := range sessions {
		if s == nil || !isFootSport(s.Sport) {
			continue
		}
		cycles, ok := validUint32(s.TotalCycles)
		if !ok || cycles == 0 {
			continue
		}
		start := validTimeOrZero(s.StartTime)
		if start.IsZero() {
			start = validTimeOrZero(s.Timestamp)
		}
		// A session with no time cannot be placed on a day.
		if start.IsZero() {
			continue
		}

		steps := int(cycles) * stepsPerStride
		entry := engine.RawEntry{
			ID:        fmt.Sprintf("fit:%s:%d", source, start.Unix()),
			Type:      string(engine.KindActivity),
			Timestamp: start.UTC().Format(time.RFC3339),
			Steps:     &steps,
			Source:    source,
		}
		if kcal, ok := validUint16(s.TotalCalories); ok {
			v := float64(kcal)
			entry.CaloriesBurned = &v
		}
		entries = append(entries, entry)
	}
	return entries
}

func isFootSport(s fit.Sport) bool {
	switch s {
	case fit.SportRunning, fit.SportWalking, fit.SportHiking:
		return true
	}
	return false
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || !t.After(fitEpoch) {
		return time.Time{}
	}
	return t
}

func validUint32(v uint32) (uint32, bool) {
	return v, v != math.MaxUint32
}

func validUint16(v uint16) (uint16, bool) {
	return v, v != math.MaxUint16
}
