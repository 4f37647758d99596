package game

import (
	"errors"
	"testing"
)

func newTestMatch(t *testing.T, players ...string) *Match {
	t.Helper()
	// Pool equals the grid size, so every draw hits every card and nine
	// draws guarantee a full board for everyone.
	m, err := NewMatch(players, 3, 9, WithMatchSeed(21))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewMatchValidation(t *testing.T) {
	if _, err := NewMatch(nil, 3, 9); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("error = %v, want %v", err, ErrNoPlayers)
	}
	if _, err := NewMatch([]string{"a"}, 7, 99); !errors.Is(err, ErrBadBoardSize) {
		t.Fatalf("error = %v, want %v", err, ErrBadBoardSize)
	}
	if _, err := NewMatch([]string{"a"}, 3, 4); !errors.Is(err, ErrPoolTooSmall) {
		t.Fatalf("error = %v, want %v", err, ErrPoolTooSmall)
	}
}

func TestMatchSeedGivesDistinctGrids(t *testing.T) {
	m := newTestMatch(t, "alice", "bob")
	same := true
	ga, gb := m.Cards[0].Grid(), m.Cards[1].Grid()
	for r := range ga {
		for c := range ga[r] {
			if ga[r][c] != gb[r][c] {
				same = false
			}
		}
	}
	if same {
		t.Fatal("both players got an identical grid from one seed")
	}
}

func TestSharedDrawMarksAllCards(t *testing.T) {
	m := newTestMatch(t, "alice", "bob")
	number, hits, ok := m.DrawNext()
	if !ok {
		t.Fatal("first draw failed")
	}
	// Pool == grid size, so the number is on both cards.
	for i, hit := range hits {
		if !hit {
			t.Fatalf("player %d did not get %d auto-marked", i, number)
		}
	}
	if m.LastDraw != number || m.DrawsCount() != 1 {
		t.Fatalf("LastDraw=%d DrawsCount=%d after drawing %d", m.LastDraw, m.DrawsCount(), number)
	}
}

func TestCallBingoFirstCallerWins(t *testing.T) {
	m := newTestMatch(t, "alice", "bob")

	if err := m.CallBingo(0); !errors.Is(err, ErrNoBingo) {
		t.Fatalf("premature call error = %v, want %v", err, ErrNoBingo)
	}
	if err := m.CallBingo(5); !errors.Is(err, ErrBadPlayer) {
		t.Fatalf("bad player error = %v, want %v", err, ErrBadPlayer)
	}

	for i := 0; i < 9; i++ {
		if _, _, ok := m.DrawNext(); !ok {
			t.Fatalf("draw %d failed before exhaustion", i)
		}
	}
	for i, card := range m.Cards {
		if !card.HasBingo() {
			t.Fatalf("player %d has no bingo on a fully drawn pool", i)
		}
	}

	if err := m.CallBingo(1); err != nil {
		t.Fatalf("valid call failed: %v", err)
	}
	if !m.Finished() || m.Winner() != 1 {
		t.Fatalf("Finished=%v Winner=%d, want true/1", m.Finished(), m.Winner())
	}
	if err := m.CallBingo(0); !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("second call error = %v, want %v", err, ErrMatchFinished)
	}
	if _, _, ok := m.DrawNext(); ok {
		t.Fatal("draw succeeded on a finished match")
	}
}
