package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fluxdiary/fluxdiary/internal/config"
	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/fluxdiary/fluxdiary/internal/ingest"
	"github.com/fluxdiary/fluxdiary/internal/store"
)

// maxFITUpload bounds the body of a FIT import.
const maxFITUpload = 16 << 20

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var raw engine.RawEntry
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := engine.ParseKind(raw.Type); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.profile()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	eng, err := s.engineFor(p)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	received := raw.Timestamp
	raw, classified, err := eng.Normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if classified.Degraded {
		s.logger.Warn("entry timestamp unparseable, current time substituted",
			"timestamp", received, "stored", raw.Timestamp, "type", raw.Type)
	}

	stored, err := s.db.AddEntry(raw)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       stored.ID,
		"type":     stored.Type,
		"degraded": classified.Degraded,
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	var opts store.ListOpts
	if t := r.URL.Query().Get("type"); t != "" {
		kind, err := engine.ParseKind(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Kind = kind
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	entries, err := s.db.ListEntries(opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.DeleteEntry(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	eng, p, raws, err := s.analysisInput()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sum, err := eng.DailySummary(raws, chi.URLParam(r, "date"), p.CalorieTarget)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	window, err := engine.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rev, err := s.db.Revision()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	p, err := s.profile()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	key := trendsKey{revision: rev, window: window, target: p.CalorieTarget, timezone: p.Timezone}
	if ta, ok := s.trends.get(key); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, ta)
		return
	}

	eng, err := s.engineFor(p)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	raws, err := s.db.AllEntries()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	ta := eng.Trends(raws, p.CalorieTarget, window)
	if ta.DegradedEntries > 0 || ta.RejectedEntries > 0 {
		s.logger.Warn("trends computed over imperfect log",
			"degraded", ta.DegradedEntries, "rejected", ta.RejectedEntries)
	}
	s.trends.set(key, ta)

	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, ta)
}

func (s *Server) handleFasting(w http.ResponseWriter, r *http.Request) {
	eng, _, raws, err := s.analysisInput()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.FastingFromLog(raws))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profile()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	current, err := s.profile()
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	var req struct {
		CalorieTarget *float64 `json:"calorie_target"`
		Timezone      *string  `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CalorieTarget != nil {
		if *req.CalorieTarget <= 0 {
			writeError(w, http.StatusBadRequest, "calorie_target must be positive")
			return
		}
		current.CalorieTarget = *req.CalorieTarget
	}
	if req.Timezone != nil {
		if _, err := config.LoadLocation(*req.Timezone); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		current.Timezone = *req.Timezone
	}

	saved, err := s.db.SaveProfile(current)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleImportFIT(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "fit"
	}

	body := http.MaxBytesReader(w, r.Body, maxFITUpload)
	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "FIT file too large")
		return
	}
	decoded, err := ingest.DecodeFIT(bytes.NewReader(data), source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.profile()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	eng, err := s.engineFor(p)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	entries, _, _ := eng.NormalizeAll(decoded)

	added, err := s.db.AddEntries(entries)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.logger.Info("FIT import", "source", source, "sessions", len(entries), "added", added)

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": len(entries),
		"imported": added,
		"skipped":  len(entries) - added,
	})
}
