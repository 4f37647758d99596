// internal/leaderboard/store.go
//
// SQLite-backed store for bingo game results and standings.
// Responsibilities:
//   - Schema migrations (idempotent, recorded in _migrations).
//   - Recording single results and multiplayer result batches atomically.
//   - Leaderboard aggregation, recent history, and win analytics.
//
// Data integrity:
//   - Blank player names are normalized to "Anonymous".
//   - A win with zero draws is impossible and rejected at write time.
//   - Legacy zero-draw wins from older databases are purged once by a
//     recorded migration, so aggregates never see them.
package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const anonymousPlayer = "Anonymous"

var (
	ErrNegativeDraws = errors.New("draws count cannot be negative")
	ErrZeroDrawWin   = errors.New("a win requires at least one draw")
	ErrBadBoard      = errors.New("board size must be at least 3")
	ErrBadPool       = errors.New("pool max must be at least board_size squared")
)

// Result is one recorded game outcome for one player.
type Result struct {
	ID         int64  `json:"id,omitempty"`
	PlayerName string `json:"player_name"`
	BoardSize  int    `json:"board_size"`
	PoolMax    int    `json:"pool_max"`
	Won        bool   `json:"won"`
	DrawsCount int    `json:"draws_count"`
	PlayedAt   string `json:"played_at,omitempty"` // RFC3339, server-assigned
}

// Entry is one aggregated leaderboard row.
type Entry struct {
	PlayerName  string  `json:"player_name"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// FastestWin is the analytics row for the quickest plausible win on record.
type FastestWin struct {
	PlayerName string `json:"player_name"`
	BoardSize  int    `json:"board_size"`
	DrawsCount int    `json:"draws_count"`
	PlayedAt   string `json:"played_at"`
}

// Stats is a small analytics summary over all recorded results.
type Stats struct {
	GamesPlayed int         `json:"games_played"`
	Wins        int         `json:"wins"`
	FastestWin  *FastestWin `json:"fastest_win,omitempty"`
}

// Store persists results in SQLite and serves aggregate queries.
type Store struct{ db *sql.DB }

// NewStore wraps an already-opened database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// migrations run in order on startup; applied names are recorded in
// _migrations so each statement executes exactly once per database.
// The final entry cleans up zero-draw wins written by older versions that
// validated nothing at the boundary.
var migrations = []struct {
	name string
	stmt string
}{
	{"001_players", `CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`},
	{"002_games", `CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_size INTEGER NOT NULL CHECK (board_size >= 3),
		pool_max INTEGER NOT NULL CHECK (pool_max >= board_size * board_size)
	)`},
	{"003_results", `CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER NOT NULL,
		game_id INTEGER NOT NULL,
		won INTEGER NOT NULL CHECK (won IN (0, 1)),
		draws_count INTEGER NOT NULL,
		played_at TEXT NOT NULL,
		FOREIGN KEY (player_id) REFERENCES players(id),
		FOREIGN KEY (game_id) REFERENCES games(id)
	)`},
	{"004_idx_players_name", `CREATE INDEX IF NOT EXISTS idx_players_name ON players(name)`},
	{"005_idx_results_player", `CREATE INDEX IF NOT EXISTS idx_results_player_id ON results(player_id)`},
	{"006_idx_results_game", `CREATE INDEX IF NOT EXISTS idx_results_game_id ON results(game_id)`},
	{"007_purge_zero_draw_wins", `DELETE FROM results WHERE won = 1 AND draws_count <= 0`},
}

// Migrate applies any pending schema migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}
	}
	return nil
}

// validate applies the write-time integrity rules from the result boundary.
func validate(r Result) error {
	if r.BoardSize < 3 {
		return ErrBadBoard
	}
	if r.PoolMax < r.BoardSize*r.BoardSize {
		return ErrBadPool
	}
	if r.DrawsCount < 0 {
		return ErrNegativeDraws
	}
	if r.Won && r.DrawsCount == 0 {
		return ErrZeroDrawWin
	}
	return nil
}

// normalizeName maps empty or whitespace-only names to the placeholder.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return anonymousPlayer
	}
	return name
}

// RecordResult validates and inserts one result. The player row, game row,
// and result row are written in a single transaction.
func (s *Store) RecordResult(ctx context.Context, r Result) (Result, error) {
	if err := validate(r); err != nil {
		return Result{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := insertResult(ctx, tx, r)
	if err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return stored, nil
}

// RecordMatch writes a batch of results in one transaction. Either every
// row lands or none do, so a multiplayer winner is never persisted without
// the matching losses.
func (s *Store) RecordMatch(ctx context.Context, results []Result) ([]Result, error) {
	for _, r := range results {
		if err := validate(r); err != nil {
			return nil, err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stored := make([]Result, 0, len(results))
	for _, r := range results {
		row, err := insertResult(ctx, tx, r)
		if err != nil {
			return nil, err
		}
		stored = append(stored, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// insertResult performs the player get-or-create plus game and result
// inserts inside the caller's transaction.
func insertResult(ctx context.Context, tx *sql.Tx, r Result) (Result, error) {
	r.PlayerName = normalizeName(r.PlayerName)

	var playerID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM players WHERE name = ?`, r.PlayerName).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO players (name) VALUES (?)`, r.PlayerName)
		if err != nil {
			return Result{}, fmt.Errorf("insert player: %w", err)
		}
		playerID, err = res.LastInsertId()
		if err != nil {
			return Result{}, err
		}
	} else if err != nil {
		return Result{}, fmt.Errorf("lookup player: %w", err)
	}

	gameRes, err := tx.ExecContext(ctx, `INSERT INTO games (board_size, pool_max) VALUES (?, ?)`,
		r.BoardSize, r.PoolMax)
	if err != nil {
		return Result{}, fmt.Errorf("insert game: %w", err)
	}
	gameID, err := gameRes.LastInsertId()
	if err != nil {
		return Result{}, err
	}

	r.PlayedAt = time.Now().UTC().Format(time.RFC3339)
	won := 0
	if r.Won {
		won = 1
	}
	resultRes, err := tx.ExecContext(ctx, `INSERT INTO results (player_id, game_id, won, draws_count, played_at)
		VALUES (?, ?, ?, ?, ?)`, playerID, gameID, won, r.DrawsCount, r.PlayedAt)
	if err != nil {
		return Result{}, fmt.Errorf("insert result: %w", err)
	}
	r.ID, err = resultRes.LastInsertId()
	if err != nil {
		return Result{}, err
	}
	return r, nil
}

// Leaderboard returns one entry per player with at least one recorded game,
// ordered by win rate, then wins, then name.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.name,
			COUNT(r.id) AS games_played,
			COUNT(CASE WHEN r.won = 1 THEN 1 END) AS wins,
			CASE
				WHEN COUNT(r.id) > 0
				THEN CAST(COUNT(CASE WHEN r.won = 1 THEN 1 END) AS REAL) / COUNT(r.id)
				ELSE 0.0
			END AS win_rate
		FROM players p
		LEFT JOIN results r ON p.id = r.player_id
		GROUP BY p.id, p.name
		HAVING COUNT(r.id) > 0
		ORDER BY win_rate DESC, wins DESC, p.name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PlayerName, &e.GamesPlayed, &e.Wins, &e.WinRate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// History returns the most recent results, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, p.name, g.board_size, g.pool_max, r.won, r.draws_count, r.played_at
		FROM results r
		JOIN players p ON r.player_id = p.id
		JOIN games g ON r.game_id = g.id
		ORDER BY r.played_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var won int
		if err := rows.Scan(&r.ID, &r.PlayerName, &r.BoardSize, &r.PoolMax, &won, &r.DrawsCount, &r.PlayedAt); err != nil {
			return nil, err
		}
		r.Won = won == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Fastest returns the quickest win on record. Wins with fewer than
// board_size-1 draws cannot complete a line and are excluded so corrupted
// rows never poison the metric. ok is false when no qualifying win exists.
func (s *Store) Fastest(ctx context.Context) (FastestWin, bool, error) {
	var f FastestWin
	err := s.db.QueryRowContext(ctx, `
		SELECT p.name, g.board_size, r.draws_count, r.played_at
		FROM results r
		JOIN players p ON r.player_id = p.id
		JOIN games g ON r.game_id = g.id
		WHERE r.won = 1 AND r.draws_count >= g.board_size - 1
		ORDER BY r.draws_count ASC, r.played_at ASC
		LIMIT 1`).Scan(&f.PlayerName, &f.BoardSize, &f.DrawsCount, &f.PlayedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return FastestWin{}, false, nil
	}
	if err != nil {
		return FastestWin{}, false, err
	}
	return f, true, nil
}

// Summary aggregates totals plus the fastest-win analytic.
func (s *Store) Summary(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(id), COUNT(CASE WHEN won = 1 THEN 1 END) FROM results`).
		Scan(&st.GamesPlayed, &st.Wins)
	if err != nil {
		return Stats{}, err
	}
	fastest, ok, err := s.Fastest(ctx)
	if err != nil {
		return Stats{}, err
	}
	if ok {
		st.FastestWin = &fastest
	}
	return st, nil
}
