// Package api serves the read-only status surface: health, engine
// snapshot, journal and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ngoyal88/quip/pkg/annotate"
	"github.com/ngoyal88/quip/pkg/storage"
)

// Engine is the part of annotate.Engine the server reads.
type Engine interface {
	Status(ctx context.Context) annotate.Status
	ClearCache()
}

// Server provides the status endpoints
type Server struct {
	engine   Engine
	store    storage.Store
	adminKey string
	log      zerolog.Logger
}

// NewServer creates the status API. store may be nil when the journal is
// disabled.
func NewServer(engine Engine, store storage.Store, adminKey string, log zerolog.Logger) *Server {
	return &Server{
		engine:   engine,
		store:    store,
		adminKey: adminKey,
		log:      log,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))
	r.Use(RateLimit(20, 40))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/status", s.handleStatus)
		r.Post("/cache/clear", s.handleClearCache)
		r.Route("/journal", func(r chi.Router) {
			r.Get("/", s.handleJournal)
			r.Get("/stats", s.handleJournalStats)
			r.Get("/{id}", s.handleRecord)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			health["status"] = "degraded"
			health["journal"] = "unhealthy"
		} else {
			health["journal"] = "healthy"
		}
	}

	respondJSON(w, http.StatusOK, health)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	respondJSON(w, http.StatusOK, s.engine.Status(ctx))
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearCache()
	s.log.Info().Msg("cache cleared via API")
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w) {
		return
	}

	q := r.URL.Query()
	filters := storage.Filters{
		Origin: q.Get("origin"),
		Level:  q.Get("level"),
	}
	var err error
	if filters.Limit, err = intParam(q.Get("limit")); err != nil {
		badRequest(w, "limit", err)
		return
	}
	if filters.Offset, err = intParam(q.Get("offset")); err != nil {
		badRequest(w, "offset", err)
		return
	}
	if filters.From, err = timeParam(q.Get("from")); err != nil {
		badRequest(w, "from", err)
		return
	}
	if filters.To, err = timeParam(q.Get("to")); err != nil {
		badRequest(w, "to", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	recs, err := s.store.ListRecords(ctx, filters)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("Failed to list records: %v", err),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": recs,
		"count":   len(recs),
	})
}

func (s *Server) handleJournalStats(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w) {
		return
	}

	q := r.URL.Query()
	from, err := timeParam(q.Get("from"))
	if err != nil {
		badRequest(w, "from", err)
		return
	}
	to, err := timeParam(q.Get("to"))
	if err != nil {
		badRequest(w, "to", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := s.store.GetStats(ctx, from, to)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("Failed to get stats: %v", err),
		})
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := s.store.GetRecord(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
	case err != nil:
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("Failed to get record: %v", err),
		})
	default:
		respondJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) journalEnabled(w http.ResponseWriter) bool {
	if s.store == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "Journal not enabled",
		})
		return false
	}
	return true
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("want a non-negative integer, got %q", v)
	}
	return n, nil
}

func timeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

func badRequest(w http.ResponseWriter, param string, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]string{
		"error": fmt.Sprintf("invalid %s: %v", param, err),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
