package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"eftb/internal/config"
	"eftb/internal/graph"
)

// autocompleteLimit caps the number of names returned per autocomplete query.
const autocompleteLimit = 15

// Server is the HTTP API over a loaded universe. Queries are rejected with
// 503 until SetUniverse has been called.
type Server struct {
	cfg      *config.Config
	version  string
	universe *graph.Universe
	names    []string // sorted, for /stars
	mu       sync.RWMutex
	ready    bool

	metrics  *Metrics
	registry *prometheus.Registry
	tracer   trace.Tracer

	// Identical concurrent path queries share one search.
	paths singleflight.Group
}

// NewServer creates a Server. A nil registry gets a fresh one, which is what
// /metrics serves.
func NewServer(cfg *config.Config, version string, registry *prometheus.Registry) *Server {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Server{
		cfg:      cfg,
		version:  version,
		metrics:  NewMetrics(registry),
		registry: registry,
		tracer:   otel.Tracer("eftb"),
	}
}

// SetUniverse is called when the snapshot finishes loading.
func (s *Server) SetUniverse(u *graph.Universe) {
	names := u.Names()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe = u
	s.names = names
	s.ready = true
}

// loaded returns the universe or nil if it is not loaded yet.
func (s *Server) loaded() *graph.Universe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil
	}
	return s.universe
}

// Handler returns the HTTP handler with all API routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/stars", s.handleStars)
	mux.HandleFunc("GET /api/systems/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("GET /api/dist", s.handleDist)
	mux.HandleFunc("GET /api/path", s.handlePath)
	mux.HandleFunc("GET /api/exit", s.handleExit)
	mux.HandleFunc("GET /api/fuel", s.handleFuel)
	mux.HandleFunc("GET /api/jump", s.handleJump)
	mux.HandleFunc("GET /api/fuels", s.handleFuels)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return requestIDMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware echoes X-Request-ID, generating one when absent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// envelope is the versioned wrapper around every query result.
type envelope struct {
	Version int `json:"version"`
	Data    any `json:"data"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// --- Handlers ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{
		"version": s.version,
		"ready":   false,
		"systems": 0,
		"links":   0,
	}
	if u := s.loaded(); u != nil {
		result["ready"] = true
		result["systems"] = u.Len()
		result["links"] = u.LinkCount()
	}
	writeJSON(w, result)
}

func (s *Server) handleStars(w http.ResponseWriter, r *http.Request) {
	if s.loaded() == nil {
		writeError(w, http.StatusServiceUnavailable, "star map is still loading")
		return
	}
	s.mu.RLock()
	names := s.names
	s.mu.RUnlock()
	writeJSON(w, envelope{Version: 1, Data: names})
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	result := []string{}
	if u := s.loaded(); u != nil {
		if m := u.MatchNames(r.URL.Query().Get("q"), autocompleteLimit); m != nil {
			result = m
		}
	}
	writeJSON(w, map[string][]string{"systems": result})
}
