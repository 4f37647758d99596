// internal/httpserver/routes_game.go
//
// Game session endpoints. A session is a match of one or more local players
// sharing a single draw pool; the server drives the cards so any thin UI can
// play over HTTP. When a bingo call succeeds the match finishes and every
// player's result is persisted in one batch.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/JoanBatllo/my-project-bingo/internal/game"
	"github.com/JoanBatllo/my-project-bingo/internal/leaderboard"
	"github.com/JoanBatllo/my-project-bingo/internal/store"
)

func (s *Server) mountGame() {
	s.r.Post("/game/new", s.handleNewGame)
	s.r.Post("/game/draw", s.handleDraw)
	s.r.Post("/game/mark", s.handleMark)
	s.r.Post("/game/call", s.handleCall)
	s.r.Get("/game/{id}", s.handleGameState)
}

type newGameReq struct {
	Players    []string `json:"players"`
	BoardSize  int      `json:"board_size"`
	PoolMax    int      `json:"pool_max"`
	FreeCenter bool     `json:"free_center"`
	Seed       *int64   `json:"seed,omitempty"` // optional, for reproducible games
}

type playerState struct {
	Name     string      `json:"name"`
	Grid     [][]int     `json:"grid"`
	Marked   []game.Cell `json:"marked"`
	HasBingo bool        `json:"has_bingo"`
}

type gameState struct {
	GameID     string        `json:"gameId"`
	BoardSize  int           `json:"board_size"`
	PoolMax    int           `json:"pool_max"`
	Players    []playerState `json:"players"`
	LastDraw   int           `json:"last_draw,omitempty"`
	DrawsCount int           `json:"draws_count"`
	Remaining  int           `json:"remaining"`
	Finished   bool          `json:"finished"`
	Winner     string        `json:"winner,omitempty"`
}

func stateOf(m *game.Match) gameState {
	st := gameState{
		GameID:     m.ID,
		BoardSize:  m.Cards[0].N(),
		PoolMax:    m.Drawer.PoolMax(),
		LastDraw:   m.LastDraw,
		DrawsCount: m.DrawsCount(),
		Remaining:  m.Drawer.Remaining(),
		Finished:   m.Finished(),
	}
	if m.Finished() {
		st.Winner = m.Players[m.Winner()]
	}
	for i, card := range m.Cards {
		st.Players = append(st.Players, playerState{
			Name:     m.Players[i],
			Grid:     card.Grid(),
			Marked:   card.Marked(),
			HasBingo: card.HasBingo(),
		})
	}
	return st
}

// handleNewGame creates a match and stores the session in memory.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if len(req.Players) == 0 {
		req.Players = []string{"Player 1"}
	}

	opts := []game.MatchOption{}
	if req.FreeCenter {
		opts = append(opts, game.WithMatchFreeCenter())
	}
	if req.Seed != nil {
		opts = append(opts, game.WithMatchSeed(*req.Seed))
	}
	m, err := game.NewMatch(req.Players, req.BoardSize, req.PoolMax, opts...)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.sessions.Save(r.Context(), m); err != nil {
		log.Error().Err(err).Msg("save match")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(stateOf(m))
}

type gameActionReq struct {
	GameID string `json:"gameId"`
	Player int    `json:"player"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// loadMatch fetches the session or writes a JSON 404.
func (s *Server) loadMatch(w http.ResponseWriter, r *http.Request, id string) (*game.Match, bool) {
	m, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		} else {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		}
		return nil, false
	}
	return m, true
}

type drawRes struct {
	Number    int       `json:"number,omitempty"`
	Exhausted bool      `json:"exhausted"`
	Hits      []bool    `json:"hits,omitempty"`
	State     gameState `json:"state"`
}

// handleDraw draws one shared number and auto-marks every card.
// An exhausted pool is a normal terminal condition, not an error.
func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req gameActionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	m, ok := s.loadMatch(w, r, req.GameID)
	if !ok {
		return
	}
	if m.Finished() {
		http.Error(w, `{"error":"match_finished"}`, http.StatusConflict)
		return
	}
	number, hits, ok := m.DrawNext()
	res := drawRes{Number: number, Exhausted: !ok, Hits: hits, State: stateOf(m)}
	if err := s.sessions.Save(r.Context(), m); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleMark toggles a manual mark on one player's card. The free center
// ignores toggles and out-of-bounds positions are no-ops, so this never fails
// once the session and player resolve.
func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	var req gameActionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	m, ok := s.loadMatch(w, r, req.GameID)
	if !ok {
		return
	}
	if req.Player < 0 || req.Player >= len(m.Cards) {
		http.Error(w, `{"error":"bad_player"}`, http.StatusBadRequest)
		return
	}
	m.Cards[req.Player].ToggleMark(req.Row, req.Col)
	if err := s.sessions.Save(r.Context(), m); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(stateOf(m))
}

type callRes struct {
	Winner  string               `json:"winner"`
	Results []leaderboard.Result `json:"results"`
	State   gameState            `json:"state"`
}

// handleCall registers a bingo call. The first valid caller wins; every
// player's result is then written in a single transaction so the winner and
// losers always land together.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req gameActionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	m, ok := s.loadMatch(w, r, req.GameID)
	if !ok {
		return
	}
	if err := m.CallBingo(req.Player); err != nil {
		switch {
		case errors.Is(err, game.ErrBadPlayer):
			http.Error(w, `{"error":"bad_player"}`, http.StatusBadRequest)
		case errors.Is(err, game.ErrMatchFinished):
			http.Error(w, `{"error":"match_finished"}`, http.StatusConflict)
		default:
			http.Error(w, `{"error":"no_bingo"}`, http.StatusConflict)
		}
		return
	}

	batch := make([]leaderboard.Result, 0, len(m.Players))
	for i, name := range m.Players {
		batch = append(batch, leaderboard.Result{
			PlayerName: name,
			BoardSize:  m.Cards[i].N(),
			PoolMax:    m.Cards[i].PoolMax(),
			Won:        i == req.Player,
			DrawsCount: m.DrawsCount(),
		})
	}
	stored, err := s.results.RecordMatch(r.Context(), batch)
	if err != nil {
		if isValidationErr(err) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("gameId", m.ID).Msg("record match results")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.sessions.Save(r.Context(), m); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(callRes{
		Winner:  m.Players[req.Player],
		Results: stored,
		State:   stateOf(m),
	})
}

// handleGameState returns the current session state.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadMatch(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(stateOf(m))
}
