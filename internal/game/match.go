// internal/game/match.go
//
// Match drives one round of bingo for one or more local players who share a
// single draw pool. Each player has their own card; every shared draw is
// auto-marked on all cards, and the first player to call bingo with a
// completed line wins the round. The match then yields one result per player
// so the caller can persist the winner/loser set in a single batch.
package game

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNoPlayers     = errors.New("match needs at least one player")
	ErrBadPlayer     = errors.New("player index out of range")
	ErrMatchFinished = errors.New("match already finished")
	ErrNoBingo       = errors.New("card does not have bingo")
)

// Match holds the shared drawer and per-player cards for one round.
type Match struct {
	ID       string
	Players  []string
	Cards    []*Card
	Drawer   *Drawer
	LastDraw int // 0 until the first draw
	winner   int // -1 until someone calls bingo
}

// MatchOption configures match construction.
type MatchOption func(*matchConfig)

type matchConfig struct {
	freeCenter bool
	seed       int64
	seeded     bool
}

// WithMatchFreeCenter enables the free center on every player's card.
func WithMatchFreeCenter() MatchOption {
	return func(c *matchConfig) { c.freeCenter = true }
}

// WithMatchSeed makes card grids and the draw order deterministic. Each card
// derives its own seed from the base so players still get distinct grids.
func WithMatchSeed(seed int64) MatchOption {
	return func(c *matchConfig) { c.seed, c.seeded = seed, true }
}

// NewMatch builds a match with one card per player and a shared drawer.
func NewMatch(players []string, n, poolMax int, opts ...MatchOption) (*Match, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	var cfg matchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Match{
		ID:      uuid.NewString(),
		Players: append([]string(nil), players...),
		winner:  -1,
	}
	for i := range players {
		cardOpts := []CardOption{}
		if cfg.freeCenter {
			cardOpts = append(cardOpts, WithFreeCenter())
		}
		if cfg.seeded {
			cardOpts = append(cardOpts, WithCardSeed(cfg.seed+int64(i)+1))
		}
		card, err := NewCard(n, poolMax, cardOpts...)
		if err != nil {
			return nil, err
		}
		m.Cards = append(m.Cards, card)
	}

	drawerOpts := []DrawerOption{}
	if cfg.seeded {
		drawerOpts = append(drawerOpts, WithDrawerSeed(cfg.seed))
	}
	drawer, err := NewDrawer(poolMax, drawerOpts...)
	if err != nil {
		return nil, err
	}
	m.Drawer = drawer
	return m, nil
}

// DrawNext draws one shared number and auto-marks every card.
// hits[i] is true when player i's card contained the number. ok is false
// when the match is finished or the pool is exhausted.
func (m *Match) DrawNext() (number int, hits []bool, ok bool) {
	if m.Finished() {
		return 0, nil, false
	}
	number, ok = m.Drawer.Draw()
	if !ok {
		return 0, nil, false
	}
	m.LastDraw = number
	hits = make([]bool, len(m.Cards))
	for i, card := range m.Cards {
		hits[i] = card.AutoMark(number)
	}
	return number, hits, true
}

// CallBingo registers a bingo call for the given player. The first player
// whose card actually has a completed line wins and finishes the match.
func (m *Match) CallBingo(player int) error {
	if player < 0 || player >= len(m.Cards) {
		return ErrBadPlayer
	}
	if m.Finished() {
		return ErrMatchFinished
	}
	if !m.Cards[player].HasBingo() {
		return ErrNoBingo
	}
	m.winner = player
	return nil
}

// Finished reports whether a winner has been declared.
func (m *Match) Finished() bool { return m.winner >= 0 }

// Winner returns the winning player index, or -1 while the match is open.
func (m *Match) Winner() int { return m.winner }

// DrawsCount returns how many numbers have been drawn so far.
func (m *Match) DrawsCount() int { return len(m.Drawer.Drawn()) }
