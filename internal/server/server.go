package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/fluxdiary/fluxdiary/internal/config"
	"github.com/fluxdiary/fluxdiary/internal/engine"
	"github.com/fluxdiary/fluxdiary/internal/store"
)

// Server is the fluxdiary HTTP API server.
type Server struct {
	db      *store.DB
	cfg     config.Config
	trends  *trendsCache
	logger  *slog.Logger
	router  chi.Router
	version string
	started time.Time
	now     func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithClock replaces the wall clock used for fasting projections.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new Server with the given database, configuration and
// version string.
func New(db *store.DB, cfg config.Config, version string, opts ...Option) *Server {
	s := &Server{
		db:      db,
		cfg:     cfg,
		logger:  slog.Default(),
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.trends = newTrendsCache(cfg.Cache.Size, cfg.Cache.TTL)
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/entries", s.handleAddEntry)
		r.Get("/entries", s.handleListEntries)
		r.Delete("/entries/{id}", s.handleDeleteEntry)

		r.Get("/days/{date}", s.handleDay)
		r.Get("/trends", s.handleTrends)
		r.Get("/fasting", s.handleFasting)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Post("/import/fit", s.handleImportFIT)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		s.logger.Warn("health: database ping failed", "error", err)
		dbOK = false
	}
	var revision any
	if rev, err := s.db.Revision(); err != nil {
		s.logger.Warn("health: revision unreadable", "error", err)
		dbOK = false
	} else {
		revision = rev
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"db":       dbOK,
		"db_path":  s.db.Path,
		"revision": revision,
	})
}

// profile returns the stored profile, seeded from configuration until the
// user saves one.
func (s *Server) profile() (store.Profile, error) {
	return s.db.ProfileOrDefault(store.Profile{
		CalorieTarget: s.cfg.Profile.CalorieTarget,
		Timezone:      s.cfg.Profile.Timezone,
	})
}

// engineFor builds an engine bound to the profile's time zone.
func (s *Server) engineFor(p store.Profile) (*engine.Engine, error) {
	loc, err := config.LoadLocation(p.Timezone)
	if err != nil {
		return nil, err
	}
	ecfg := s.cfg.EngineConfig(loc)
	ecfg.Now = s.now
	return engine.New(ecfg), nil
}

// analysisInput loads everything a read-side handler needs.
func (s *Server) analysisInput() (*engine.Engine, store.Profile, []engine.RawEntry, error) {
	p, err := s.profile()
	if err != nil {
		return nil, p, nil, err
	}
	eng, err := s.engineFor(p)
	if err != nil {
		return nil, p, nil, err
	}
	raws, err := s.db.AllEntries()
	if err != nil {
		return nil, p, nil, err
	}
	return eng, p, raws, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
}
