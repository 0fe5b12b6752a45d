package brackets

import (
	"math/rand"
	"testing"
)

func TestPairRound_EvenField(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []int{1, 2, 3, 4, 5, 6, 7, 8}

	pairings := PairRound(ids, rng)
	if len(pairings) != 4 {
		t.Fatalf("got %d pairings, want 4", len(pairings))
	}

	seen := make(map[int]bool)
	for _, p := range pairings {
		if p.IsBye() {
			t.Fatalf("even field produced a bye: %+v", p)
		}
		for _, id := range []int{p.Player1ID, *p.Player2ID} {
			if seen[id] {
				t.Fatalf("player %d paired twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != len(ids) {
		t.Errorf("paired %d distinct players, want %d", len(seen), len(ids))
	}
}

func TestPairRound_OddFieldHasOneBye(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ids := []int{10, 20, 30, 40, 50}

	pairings := PairRound(ids, rng)
	if len(pairings) != 3 {
		t.Fatalf("got %d pairings, want 3", len(pairings))
	}

	byes := 0
	for _, p := range pairings {
		if p.IsBye() {
			byes++
		}
	}
	if byes != 1 {
		t.Errorf("got %d byes, want 1", byes)
	}
}

func TestPairRound_DoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ids := []int{1, 2, 3, 4}
	PairRound(ids, rng)

	for i, want := range []int{1, 2, 3, 4} {
		if ids[i] != want {
			t.Fatalf("input mutated: %v", ids)
		}
	}
}

func TestPairRound_Empty(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	if got := PairRound(nil, rng); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRoundsForField(t *testing.T) {
	tests := []struct {
		field int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{16, 4},
	}
	for _, tt := range tests {
		if got := RoundsForField(tt.field); got != tt.want {
			t.Errorf("RoundsForField(%d) = %d, want %d", tt.field, got, tt.want)
		}
	}
}
