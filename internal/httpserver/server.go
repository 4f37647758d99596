// internal/httpserver/server.go
//
// HTTP server wiring for the bingo backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Persistence endpoints: GET /leaderboard, GET /history, GET /stats,
//     POST /results.
//   - Game session endpoints: mounted from routes_game.go.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so a browser UI works).
//   - Validation failures surface as 400s with JSON error bodies; storage
//     failures surface as 500s and are never silently dropped.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/JoanBatllo/my-project-bingo/internal/leaderboard"
	"github.com/JoanBatllo/my-project-bingo/internal/store"
)

// Server bundles router, in-memory session store, and the result store.
type Server struct {
	r        *chi.Mux
	sessions store.Store
	results  *leaderboard.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions store.Store, results *leaderboard.Store) *Server {
	s := &Server{r: chi.NewRouter(), sessions: sessions, results: results}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"bingo-go","endpoints":["/health","/leaderboard","/history","/stats","POST /results","POST /game/new"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Persistence endpoints
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.r.Get("/history", s.handleHistory)
	s.r.Get("/stats", s.handleStats)
	s.r.Post("/results", s.handleRecordResult)

	// Game session endpoints
	s.mountGame()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------------------------- persistence API --------------------------------

// handleLeaderboard serves aggregated standings. Empty data yields an empty
// array, never an error.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	entries, err := s.results.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(entries)
}

// handleHistory serves recent results newest first for analytics.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 200)
	results, err := s.results.History(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("history query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(results)
}

// handleStats serves the analytics summary (totals + fastest win).
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.results.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(stats)
}

// handleRecordResult persists one game result. Validation failures are 400s;
// storage failures are 500s.
func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var req leaderboard.Result
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	stored, err := s.results.RecordResult(r.Context(), req)
	if err != nil {
		if isValidationErr(err) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("player", req.PlayerName).Msg("record result")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(stored)
}

// isValidationErr distinguishes caller mistakes from storage failures.
func isValidationErr(err error) bool {
	return errors.Is(err, leaderboard.ErrNegativeDraws) ||
		errors.Is(err, leaderboard.ErrZeroDrawWin) ||
		errors.Is(err, leaderboard.ErrBadBoard) ||
		errors.Is(err, leaderboard.ErrBadPool)
}

// queryInt parses an integer query parameter with a fallback default.
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
