// internal/game/drawer.go
//
// Number drawer for one game session.
// Responsibilities:
//   - Maintain a shuffled pile of [1..poolMax] and draw without repetition.
//   - Keep an append-only history of drawn numbers.
//   - Support reset (with optional reseed) for a new round.
//
// The pile and the drawn history always partition [1..poolMax] exactly.
// Running out of numbers is a normal terminal condition, not an error.
package game

import (
	"errors"
	"math/rand"
	"time"
)

// ErrBadPoolMax rejects a drawer pool with no numbers in it.
var ErrBadPoolMax = errors.New("pool max must be at least 1")

// Drawer yields numbers from [1..poolMax] one at a time without repetition.
type Drawer struct {
	poolMax int
	pile    []int
	drawn   []int
	rng     *rand.Rand
}

// DrawerOption configures optional drawer behavior.
type DrawerOption func(*drawerConfig)

type drawerConfig struct {
	seed   int64
	seeded bool
}

// WithDrawerSeed makes the shuffle order deterministic for the given seed.
func WithDrawerSeed(seed int64) DrawerOption {
	return func(c *drawerConfig) { c.seed, c.seeded = seed, true }
}

// NewDrawer builds a drawer over [1..poolMax] with a freshly shuffled pile.
func NewDrawer(poolMax int, opts ...DrawerOption) (*Drawer, error) {
	if poolMax < 1 {
		return nil, ErrBadPoolMax
	}
	var cfg drawerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	seed := cfg.seed
	if !cfg.seeded {
		seed = time.Now().UnixNano()
	}
	d := &Drawer{poolMax: poolMax, rng: rand.New(rand.NewSource(seed))}
	d.Reset()
	return d, nil
}

// Reset rebuilds the pile as a full permutation of [1..poolMax] and clears
// the drawn history. Options may reseed the shuffle for determinism.
func (d *Drawer) Reset(opts ...DrawerOption) {
	var cfg drawerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.seeded {
		d.rng = rand.New(rand.NewSource(cfg.seed))
	}
	d.pile = make([]int, d.poolMax)
	for i := range d.pile {
		d.pile[i] = i + 1
	}
	d.rng.Shuffle(len(d.pile), func(i, j int) {
		d.pile[i], d.pile[j] = d.pile[j], d.pile[i]
	})
	d.drawn = d.drawn[:0]
}

// Draw removes the next number from the pile and records it in the history.
// The second return is false once the pile is exhausted.
func (d *Drawer) Draw() (int, bool) {
	if len(d.pile) == 0 {
		return 0, false
	}
	n := d.pile[len(d.pile)-1]
	d.pile = d.pile[:len(d.pile)-1]
	d.drawn = append(d.drawn, n)
	return n, true
}

// Remaining returns how many numbers are left in the pile.
func (d *Drawer) Remaining() int { return len(d.pile) }

// PoolMax returns the upper bound of the draw pool.
func (d *Drawer) PoolMax() int { return d.poolMax }

// Drawn returns a copy of the draw history, oldest first.
func (d *Drawer) Drawn() []int {
	return append([]int(nil), d.drawn...)
}
