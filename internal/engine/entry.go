package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKind is returned by Classify for an unrecognised entry type.
var ErrUnknownKind = errors.New("unknown entry kind")

// Kind discriminates log entries.
type Kind string

const (
	KindFood     Kind = "food"
	KindSymptom  Kind = "symptom"
	KindActivity Kind = "activity"
)

// ParseKind normalises a type tag. "meal" and "steps" are accepted aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "food", "meal":
		return KindFood, nil
	case "symptom":
		return KindSymptom, nil
	case "activity", "steps":
		return KindActivity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// RawEntry is a log entry as the store keeps it: a type tag, an unparsed
// timestamp and optional type-specific fields.
type RawEntry struct {
	ID             string   `json:"id,omitempty"`
	Type           string   `json:"type"`
	Timestamp      string   `json:"timestamp"`
	Calories       *float64 `json:"calories,omitempty"`
	Protein        *float64 `json:"protein,omitempty"`
	Carbs          *float64 `json:"carbs,omitempty"`
	Fat            *float64 `json:"fat,omitempty"`
	Steps          *int     `json:"steps,omitempty"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty"`
	Source         string   `json:"source,omitempty"`
	Note           string   `json:"note,omitempty"`
	Severity       int      `json:"severity,omitempty"`
}

// Entry is a classified log entry. The set of implementations is closed:
// FoodEntry, SymptomEntry and ActivitySample.
type Entry interface {
	Kind() Kind
	Time() time.Time
	sealed()
}

// FoodEntry is a meal or snack with its macros.
type FoodEntry struct {
	ID       string    `json:"id,omitempty"`
	At       time.Time `json:"at"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
}

// SymptomEntry is opaque to the analytics; it is carried for completeness.
type SymptomEntry struct {
	ID       string    `json:"id,omitempty"`
	At       time.Time `json:"at"`
	Note     string    `json:"note,omitempty"`
	Severity int       `json:"severity,omitempty"`
}

// ActivitySample is a step reading from one source.
type ActivitySample struct {
	ID             string    `json:"id,omitempty"`
	At             time.Time `json:"at"`
	Steps          int       `json:"steps"`
	CaloriesBurned *float64  `json:"calories_burned,omitempty"`
	Source         string    `json:"source"`
}

func (FoodEntry) Kind() Kind      { return KindFood }
func (SymptomEntry) Kind() Kind   { return KindSymptom }
func (ActivitySample) Kind() Kind { return KindActivity }

func (f FoodEntry) Time() time.Time      { return f.At }
func (s SymptomEntry) Time() time.Time   { return s.At }
func (a ActivitySample) Time() time.Time { return a.At }

func (FoodEntry) sealed()      {}
func (SymptomEntry) sealed()   {}
func (ActivitySample) sealed() {}

// Classified is the result of classifying one raw entry.
type Classified struct {
	Entry Entry
	// Degraded is set when the timestamp was missing or unparseable and the
	// current instant was substituted.
	Degraded bool
}

// UnknownSource labels activity samples that carry no source.
const UnknownSource = "unknown"

// Classify tags a raw entry by kind and normalises its timestamp to the
// engine's location. Only an unknown type is an error; a bad timestamp
// degrades instead.
func (e *Engine) Classify(raw RawEntry) (Classified, error) {
	kind, err := ParseKind(raw.Type)
	if err != nil {
		return Classified{}, err
	}

	at, ok := e.parseTimestamp(raw.Timestamp)
	if !ok {
		at = e.cfg.Now().In(e.cfg.Location)
	}

	var entry Entry
	switch kind {
	case KindFood:
		entry = FoodEntry{
			ID:       raw.ID,
			At:       at,
			Calories: nonNegative(raw.Calories),
			Protein:  nonNegative(raw.Protein),
			Carbs:    nonNegative(raw.Carbs),
			Fat:      nonNegative(raw.Fat),
		}
	case KindSymptom:
		entry = SymptomEntry{ID: raw.ID, At: at, Note: raw.Note, Severity: raw.Severity}
	case KindActivity:
		steps := 0
		if raw.Steps != nil && *raw.Steps > 0 {
			steps = *raw.Steps
		}
		source := strings.TrimSpace(raw.Source)
		if source == "" {
			source = UnknownSource
		}
		var burned *float64
		if raw.CaloriesBurned != nil {
			v := nonNegative(raw.CaloriesBurned)
			burned = &v
		}
		entry = ActivitySample{ID: raw.ID, At: at, Steps: steps, CaloriesBurned: burned, Source: source}
	}
	return Classified{Entry: entry, Degraded: !ok}, nil
}

// Wall-clock layouts interpreted in the engine's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

func (e *Engine) parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(e.cfg.Location), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, e.cfg.Location); err == nil {
			return t, true
		}
	}
	// Unix milliseconds, as most tracker exports emit
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).In(e.cfg.Location), true
	}
	return time.Time{}, false
}

func nonNegative(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// Snapshot is a classified log split by kind. Slices are sorted by time.
type Snapshot struct {
	Food     []FoodEntry
	Symptoms []SymptomEntry
	// Activity holds samples per source.
	Activity map[string][]ActivitySample
	// Degraded counts entries whose timestamp was substituted.
	Degraded int
	// Rejected counts entries of unknown kind.
	Rejected int
}

// Partition classifies a whole log. It never fails: unknown kinds are
// counted in Rejected and skipped.
func (e *Engine) Partition(raws []RawEntry) Snapshot {
	snap := Snapshot{Activity: make(map[string][]ActivitySample)}
	for _, raw := range raws {
		c, err := e.Classify(raw)
		if err != nil {
			snap.Rejected++
			continue
		}
		if c.Degraded {
			snap.Degraded++
		}
		switch v := c.Entry.(type) {
		case FoodEntry:
			snap.Food = append(snap.Food, v)
		case SymptomEntry:
			snap.Symptoms = append(snap.Symptoms, v)
		case ActivitySample:
			snap.Activity[v.Source] = append(snap.Activity[v.Source], v)
		default:
			panic(fmt.Sprintf("engine: unhandled entry type %T", v))
		}
	}

	sortByTime(snap.Food)
	sortByTime(snap.Symptoms)
	for _, samples := range snap.Activity {
		sortByTime(samples)
	}
	return snap
}

// Normalize classifies raw and returns it ready to persist. When the
// timestamp had to be substituted, the substituted instant is written back
// so the stored entry stays where it was placed instead of moving to the
// current time on every read.
func (e *Engine) Normalize(raw RawEntry) (RawEntry, Classified, error) {
	c, err := e.Classify(raw)
	if err != nil {
		return raw, c, err
	}
	if c.Degraded {
		raw.Timestamp = c.Entry.Time().Format(time.RFC3339Nano)
	}
	return raw, c, nil
}

// NormalizeAll runs Normalize over a batch. Entries of unknown kind are
// dropped and counted in rejected.
func (e *Engine) NormalizeAll(raws []RawEntry) (out []RawEntry, degraded, rejected int) {
	out = make([]RawEntry, 0, len(raws))
	for _, raw := range raws {
		n, c, err := e.Normalize(raw)
		if err != nil {
			rejected++
			continue
		}
		if c.Degraded {
			degraded++
		}
		out = append(out, n)
	}
	return out, degraded, rejected
}
