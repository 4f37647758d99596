// internal/game/card.go
//
// Bingo card for a single player.
// Responsibilities:
//   - Generate an N×N grid of unique numbers sampled from [1..poolMax].
//   - Optional always-marked free center cell on odd-sized boards.
//   - Lookup, auto-marking on draws, and manual mark toggling.
//   - Win detection over rows, columns, and both diagonals.
//   - Fixed-width text rendering with a pluggable color hook.
//
// Notes:
//   - Each card owns its own *rand.Rand; nothing here touches the global
//     random source, so a seeded card reproduces the same grid everywhere.
//   - The free center holds the sentinel 0, which no real draw can match.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrBadBoardSize   = errors.New("board size must be 3, 4, or 5")
	ErrPoolTooSmall   = errors.New("pool max must be at least n*n")
	ErrFreeCenterEven = errors.New("free center requires an odd board size")
)

// FreeSentinel is the grid value of the free center cell. Draws are
// restricted to [1..poolMax], so it is never matched by a real number.
const FreeSentinel = 0

// Cell identifies a grid position by row and column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ColorFunc decorates a rendered cell. It receives the cell text and a
// semantic tag ("dim" for headers, "green" for marked cells) and returns the
// display text. Purely presentational; never mutates card state.
type ColorFunc func(text, tag string) string

// Card holds one player's N×N grid and its marked positions.
type Card struct {
	n          int
	poolMax    int
	freeCenter bool
	grid       [][]int
	marked     map[Cell]struct{}
	rng        *rand.Rand
}

// CardOption configures optional card behavior at construction time.
type CardOption func(*cardConfig)

type cardConfig struct {
	freeCenter bool
	seed       int64
	seeded     bool
}

// WithFreeCenter enables the always-marked center cell (odd boards only).
func WithFreeCenter() CardOption {
	return func(c *cardConfig) { c.freeCenter = true }
}

// WithCardSeed makes grid generation deterministic for the given seed.
func WithCardSeed(seed int64) CardOption {
	return func(c *cardConfig) { c.seed, c.seeded = seed, true }
}

// NewCard builds a card with n*n unique numbers drawn from [1..poolMax].
func NewCard(n, poolMax int, opts ...CardOption) (*Card, error) {
	var cfg cardConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if n != 3 && n != 4 && n != 5 {
		return nil, ErrBadBoardSize
	}
	if poolMax < n*n {
		return nil, ErrPoolTooSmall
	}
	if cfg.freeCenter && n%2 == 0 {
		return nil, ErrFreeCenterEven
	}
	seed := cfg.seed
	if !cfg.seeded {
		seed = time.Now().UnixNano()
	}
	c := &Card{
		n:          n,
		poolMax:    poolMax,
		freeCenter: cfg.freeCenter,
		rng:        rand.New(rand.NewSource(seed)),
	}
	c.generate()
	return c, nil
}

// generate fills the grid row-major with a fresh uniform sample and resets
// marks. The free center, when enabled, gets the sentinel and a permanent mark.
func (c *Card) generate() {
	perm := c.rng.Perm(c.poolMax)
	c.grid = make([][]int, c.n)
	for r := 0; r < c.n; r++ {
		c.grid[r] = make([]int, c.n)
		for col := 0; col < c.n; col++ {
			c.grid[r][col] = perm[r*c.n+col] + 1
		}
	}
	c.marked = make(map[Cell]struct{})
	if c.freeCenter {
		center := c.center()
		c.grid[center.Row][center.Col] = FreeSentinel
		c.marked[center] = struct{}{}
	}
}

func (c *Card) center() Cell { return Cell{Row: c.n / 2, Col: c.n / 2} }

// N returns the board dimension.
func (c *Card) N() int { return c.n }

// PoolMax returns the upper bound of the draw pool the card was built for.
func (c *Card) PoolMax() int { return c.poolMax }

// FreeCenter reports whether the card has an always-marked center cell.
func (c *Card) FreeCenter() bool { return c.freeCenter }

// Grid returns a copy of the grid rows.
func (c *Card) Grid() [][]int {
	out := make([][]int, c.n)
	for r := range c.grid {
		out[r] = append([]int(nil), c.grid[r]...)
	}
	return out
}

// Marked returns a copy of the marked positions.
func (c *Card) Marked() []Cell {
	out := make([]Cell, 0, len(c.marked))
	for cell := range c.marked {
		out = append(out, cell)
	}
	return out
}

// Find locates a number on the grid. The free-center sentinel never matches.
func (c *Card) Find(number int) (Cell, bool) {
	if number == FreeSentinel {
		return Cell{}, false
	}
	for r := 0; r < c.n; r++ {
		for col := 0; col < c.n; col++ {
			if c.grid[r][col] == number {
				return Cell{Row: r, Col: col}, true
			}
		}
	}
	return Cell{}, false
}

// AutoMark marks the cell holding number if it is on the card.
// Returns true when the number was found. Idempotent.
func (c *Card) AutoMark(number int) bool {
	cell, ok := c.Find(number)
	if !ok {
		return false
	}
	c.marked[cell] = struct{}{}
	return true
}

// ToggleMark flips the mark at (r, col). Out-of-bounds positions are ignored
// and the free center always stays marked.
func (c *Card) ToggleMark(r, col int) {
	if r < 0 || r >= c.n || col < 0 || col >= c.n {
		return
	}
	cell := Cell{Row: r, Col: col}
	if c.freeCenter && cell == c.center() {
		return
	}
	if _, ok := c.marked[cell]; ok {
		delete(c.marked, cell)
	} else {
		c.marked[cell] = struct{}{}
	}
}

// HasBingo reports whether any row, column, or diagonal is fully marked.
func (c *Card) HasBingo() bool {
	for r := 0; r < c.n; r++ {
		if c.lineMarked(func(i int) Cell { return Cell{Row: r, Col: i} }) {
			return true
		}
	}
	for col := 0; col < c.n; col++ {
		if c.lineMarked(func(i int) Cell { return Cell{Row: i, Col: col} }) {
			return true
		}
	}
	if c.lineMarked(func(i int) Cell { return Cell{Row: i, Col: i} }) {
		return true
	}
	return c.lineMarked(func(i int) Cell { return Cell{Row: i, Col: c.n - 1 - i} })
}

// lineMarked checks one of the 2n+2 candidate lines, addressed by index 0..n-1.
func (c *Card) lineMarked(at func(i int) Cell) bool {
	for i := 0; i < c.n; i++ {
		if _, ok := c.marked[at(i)]; !ok {
			return false
		}
	}
	return true
}

// Render produces a fixed-width text grid with row and column headers.
// The free center renders as the literal "FREE". colorFn may be nil.
func (c *Card) Render(colorFn ColorFunc) string {
	if colorFn == nil {
		colorFn = func(text, _ string) string { return text }
	}
	w := 2
	for _, row := range c.grid {
		for _, num := range row {
			if l := len(fmt.Sprint(num)); l > w {
				w = l
			}
		}
	}
	if c.freeCenter && w < len("FREE") {
		w = len("FREE")
	}

	var b strings.Builder
	b.WriteString("   ")
	for col := 0; col < c.n; col++ {
		if col > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(colorFn(fmt.Sprintf("%*d", w, col), "dim"))
	}
	for r := 0; r < c.n; r++ {
		b.WriteByte('\n')
		b.WriteString(colorFn(fmt.Sprintf("%2d", r), "dim"))
		b.WriteByte(' ')
		for col := 0; col < c.n; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			text := fmt.Sprint(c.grid[r][col])
			if c.freeCenter && (Cell{Row: r, Col: col}) == c.center() {
				text = "FREE"
			}
			cell := fmt.Sprintf("%*s", w, text)
			if _, ok := c.marked[Cell{Row: r, Col: col}]; ok {
				cell = colorFn(cell, "green")
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}
