// Package ingest turns diary exports and wearable files into raw log
// entries for the store.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fluxdiary/fluxdiary/internal/engine"
)

// Result is the outcome of parsing an export.
type Result struct {
	Entries []engine.RawEntry
	// Skipped counts lines that were not valid JSON objects or carried a
	// type the diary does not know.
	Skipped int
}

// exportLine is one line of a JSONL diary export. Timestamps and numeric
// fields arrive as either JSON strings or numbers depending on the app
// that wrote them.
type exportLine struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Calories       json.RawMessage `json:"calories"`
	Protein        json.RawMessage `json:"protein"`
	Carbs          json.RawMessage `json:"carbs"`
	Fat            json.RawMessage `json:"fat"`
	Steps          json.RawMessage `json:"steps"`
	CaloriesBurned json.RawMessage `json:"calories_burned"`
	Source         string          `json:"source"`
	Note           string          `json:"note"`
	Severity       int             `json:"severity"`
}

// ParseFile reads a JSONL export file.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return ParseJSONL(f)
}

// ParseJSONL reads one raw entry per line. Malformed lines and lines of an
// unknown type are skipped and counted, so one bad line never sinks the
// batch. Timestamps are left for the engine to judge.
func ParseJSONL(r io.Reader) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB line buffer

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := parseLine([]byte(line))
		if err != nil {
			res.Skipped++
			continue
		}
		res.Entries = append(res.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}
	return res, nil
}

func parseLine(line []byte) (engine.RawEntry, error) {
	var l exportLine
	if err := json.Unmarshal(line, &l); err != nil {
		return engine.RawEntry{}, err
	}
	if l.Type == "" {
		return engine.RawEntry{}, fmt.Errorf("missing type")
	}
	if _, err := engine.ParseKind(l.Type); err != nil {
		return engine.RawEntry{}, err
	}

	raw := engine.RawEntry{
		ID:             l.ID,
		Type:           l.Type,
		Timestamp:      rawString(l.Timestamp),
		Calories:       rawFloat(l.Calories),
		Protein:        rawFloat(l.Protein),
		Carbs:          rawFloat(l.Carbs),
		Fat:            rawFloat(l.Fat),
		CaloriesBurned: rawFloat(l.CaloriesBurned),
		Source:         l.Source,
		Note:           l.Note,
		Severity:       l.Severity,
	}
	if f := rawFloat(l.Steps); f != nil {
		n := int(*f)
		raw.Steps = &n
	}
	return raw, nil
}

// rawString handles a field that may be a JSON string or number.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawFloat returns nil for absent, null or non-numeric values.
func rawFloat(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(rawString(raw))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
