package game

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCardValidation(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		poolMax int
		opts    []CardOption
		wantErr error
	}{
		{"board too small", 2, 99, nil, ErrBadBoardSize},
		{"board too big", 6, 99, nil, ErrBadBoardSize},
		{"pool smaller than grid", 4, 15, nil, ErrPoolTooSmall},
		{"free center on even board", 4, 30, []CardOption{WithFreeCenter()}, ErrFreeCenterEven},
		{"valid 3x3", 3, 9, nil, nil},
		{"valid 5x5 free center", 5, 75, []CardOption{WithFreeCenter()}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCard(tc.n, tc.poolMax, tc.opts...)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewCard(%d, %d) error = %v, want %v", tc.n, tc.poolMax, err, tc.wantErr)
			}
		})
	}
}

func TestGridUniquenessAndRange(t *testing.T) {
	for _, n := range []int{3, 4, 5} {
		poolMax := n*n + 10
		card, err := NewCard(n, poolMax, WithCardSeed(7))
		if err != nil {
			t.Fatalf("NewCard(%d, %d) failed: %v", n, poolMax, err)
		}
		seen := map[int]bool{}
		for _, row := range card.Grid() {
			for _, num := range row {
				if num < 1 || num > poolMax {
					t.Errorf("n=%d: value %d outside [1..%d]", n, num, poolMax)
				}
				if seen[num] {
					t.Errorf("n=%d: duplicate value %d", n, num)
				}
				seen[num] = true
			}
		}
		if len(seen) != n*n {
			t.Errorf("n=%d: got %d distinct values, want %d", n, len(seen), n*n)
		}
	}
}

func TestGridFreeCenterSentinel(t *testing.T) {
	for _, n := range []int{3, 5} {
		poolMax := n * n
		card, err := NewCard(n, poolMax, WithFreeCenter(), WithCardSeed(7))
		if err != nil {
			t.Fatalf("NewCard failed: %v", err)
		}
		grid := card.Grid()
		if grid[n/2][n/2] != FreeSentinel {
			t.Errorf("n=%d: center = %d, want sentinel %d", n, grid[n/2][n/2], FreeSentinel)
		}
		real := 0
		for _, row := range grid {
			for _, num := range row {
				if num != FreeSentinel {
					if num < 1 || num > poolMax {
						t.Errorf("n=%d: value %d outside [1..%d]", n, num, poolMax)
					}
					real++
				}
			}
		}
		if real != n*n-1 {
			t.Errorf("n=%d: got %d real values, want %d", n, real, n*n-1)
		}
	}
}

func TestDeterministicGrids(t *testing.T) {
	a, err := NewCard(5, 75, WithCardSeed(42))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCard(5, 75, WithCardSeed(42))
	if err != nil {
		t.Fatal(err)
	}
	ga, gb := a.Grid(), b.Grid()
	for r := range ga {
		for c := range ga[r] {
			if ga[r][c] != gb[r][c] {
				t.Fatalf("seeded grids differ at (%d,%d): %d vs %d", r, c, ga[r][c], gb[r][c])
			}
		}
	}
}

func TestFreeCenterAlwaysMarked(t *testing.T) {
	card, err := NewCard(3, 9, WithFreeCenter(), WithCardSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	center := Cell{Row: 1, Col: 1}
	hasCenter := func() bool {
		for _, c := range card.Marked() {
			if c == center {
				return true
			}
		}
		return false
	}
	if !hasCenter() {
		t.Fatal("center not marked after construction")
	}
	card.ToggleMark(1, 1)
	if !hasCenter() {
		t.Fatal("toggle removed the free center mark")
	}
}

func TestFindAndAutoMark(t *testing.T) {
	card, err := NewCard(3, 9, WithCardSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	grid := card.Grid()
	num := grid[2][1]

	cell, ok := card.Find(num)
	if !ok || cell != (Cell{Row: 2, Col: 1}) {
		t.Fatalf("Find(%d) = %v, %v; want (2,1), true", num, cell, ok)
	}
	if _, ok := card.Find(FreeSentinel); ok {
		t.Fatal("Find matched the sentinel value")
	}

	if !card.AutoMark(num) {
		t.Fatalf("AutoMark(%d) = false, number is on the card", num)
	}
	before := len(card.Marked())
	if !card.AutoMark(num) {
		t.Fatal("second AutoMark of same number returned false")
	}
	if got := len(card.Marked()); got != before {
		t.Fatalf("AutoMark not idempotent: %d marks, want %d", got, before)
	}

	// Pool is exactly n*n here, so every number in range is on the card.
	// A card with a bigger pool can miss.
	wide, err := NewCard(3, 50, WithCardSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	misses := 0
	for num := 1; num <= 50; num++ {
		if !wide.AutoMark(num) {
			misses++
		}
	}
	if misses != 50-9 {
		t.Fatalf("got %d misses over the pool, want %d", misses, 50-9)
	}
}

func TestToggleMarkBounds(t *testing.T) {
	card, err := NewCard(3, 9, WithCardSeed(5))
	if err != nil {
		t.Fatal(err)
	}
	card.ToggleMark(-1, 0)
	card.ToggleMark(0, 3)
	if len(card.Marked()) != 0 {
		t.Fatalf("out-of-bounds toggle changed marks: %v", card.Marked())
	}
	card.ToggleMark(0, 0)
	if len(card.Marked()) != 1 {
		t.Fatal("toggle did not add a mark")
	}
	card.ToggleMark(0, 0)
	if len(card.Marked()) != 0 {
		t.Fatal("second toggle did not remove the mark")
	}
}

func TestHasBingo(t *testing.T) {
	mark := func(card *Card, cells ...Cell) {
		for _, c := range cells {
			card.ToggleMark(c.Row, c.Col)
		}
	}
	newBoard := func(t *testing.T) *Card {
		t.Helper()
		card, err := NewCard(3, 9, WithCardSeed(11))
		if err != nil {
			t.Fatal(err)
		}
		return card
	}

	t.Run("full first row", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 0}, Cell{0, 1}, Cell{0, 2})
		if !card.HasBingo() {
			t.Fatal("full row should be bingo")
		}
	})
	t.Run("row minus one cell", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 0}, Cell{0, 1})
		if card.HasBingo() {
			t.Fatal("incomplete row should not be bingo")
		}
	})
	t.Run("full column", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 2}, Cell{1, 2}, Cell{2, 2})
		if !card.HasBingo() {
			t.Fatal("full column should be bingo")
		}
	})
	t.Run("main diagonal", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 0}, Cell{1, 1}, Cell{2, 2})
		if !card.HasBingo() {
			t.Fatal("main diagonal should be bingo")
		}
	})
	t.Run("anti diagonal", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 2}, Cell{1, 1}, Cell{2, 0})
		if !card.HasBingo() {
			t.Fatal("anti diagonal should be bingo")
		}
	})
	t.Run("scattered marks", func(t *testing.T) {
		card := newBoard(t)
		mark(card, Cell{0, 0}, Cell{1, 2}, Cell{2, 1})
		if card.HasBingo() {
			t.Fatal("scattered non-aligned marks should not be bingo")
		}
	})
}

func TestRender(t *testing.T) {
	card, err := NewCard(3, 9, WithFreeCenter(), WithCardSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	out := card.Render(nil)
	if !strings.Contains(out, "FREE") {
		t.Fatalf("render missing FREE literal:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 4 { // header + 3 rows
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	for i := 2; i < len(lines); i++ {
		if len(lines[i]) != len(lines[1]) {
			t.Fatalf("rows not fixed width: %q vs %q", lines[1], lines[i])
		}
	}

	var tags []string
	colored := card.Render(func(text, tag string) string {
		tags = append(tags, tag)
		return "[" + text + "]"
	})
	if !strings.Contains(colored, "[FREE]") {
		t.Fatalf("color hook not applied to marked free center:\n%s", colored)
	}
	sawGreen := false
	for _, tag := range tags {
		if tag == "green" {
			sawGreen = true
		} else if tag != "dim" {
			t.Fatalf("unexpected tag %q", tag)
		}
	}
	if !sawGreen {
		t.Fatal("no marked cell routed through the color hook")
	}
}
