// internal/store/memory.go
//
// In-memory implementation of the match session store.
// Game sessions are ephemeral by design: only finished results are durable
// (see internal/leaderboard), so losing sessions on restart is acceptable.
//
// Characteristics:
//   - Stores *game.Match objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Errors are returned for missing match IDs on Get().
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/JoanBatllo/my-project-bingo/internal/game"
)

// ErrNotFound is returned when no session exists for the given ID.
var ErrNotFound = errors.New("match not found")

// Store defines the persistence interface for match sessions.
type Store interface {
	// Save persists or updates a match.
	Save(ctx context.Context, m *game.Match) error

	// Get retrieves a match by ID.
	Get(ctx context.Context, id string) (*game.Match, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	matches map[string]*game.Match
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{matches: make(map[string]*game.Match)}
}

func (m *memory) Save(ctx context.Context, match *game.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = match
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if match, ok := m.matches[id]; ok {
		return match, nil
	}
	return nil, ErrNotFound
}
