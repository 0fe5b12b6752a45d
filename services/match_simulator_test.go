package services

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

func testPlayer(id int, statValue float64) *models.Player {
	return &models.Player{
		ID:       id,
		Name:     "Player",
		Gender:   models.GenderMale,
		Level:    5,
		Strategy: "balanced",
		Stats: models.PlayerStats{
			Endurance: statValue, Strength: statValue, Agility: statValue,
			Speed: statValue, Explosivity: statValue,
			Smash: statValue, Defense: statValue, Serve: statValue, Receive: statValue,
			Toughness: statValue, Confidence: statValue, InjuryPrevention: statValue,
		},
	}
}

func parseSets(t *testing.T, score string) [][2]int {
	t.Helper()
	var sets [][2]int
	for _, raw := range strings.Split(score, ", ") {
		parts := strings.Split(raw, "-")
		if len(parts) != 2 {
			t.Fatalf("malformed set %q in score %q", raw, score)
		}
		a, err := strconv.Atoi(parts[0])
		if err != nil {
			t.Fatalf("malformed set %q: %v", raw, err)
		}
		b, err := strconv.Atoi(parts[1])
		if err != nil {
			t.Fatalf("malformed set %q: %v", raw, err)
		}
		sets = append(sets, [2]int{a, b})
	}
	return sets
}

func TestSimulateMatch_ScoreShape(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	for seed := int64(0); seed < 50; seed++ {
		sim := NewMatchSimulator(rand.New(rand.NewSource(seed)))
		p1 := testPlayer(1, 60)
		p2 := testPlayer(2, 55)

		outcome := sim.SimulateMatch(p1, p2, nil, nil, now)
		if outcome.WinnerID != 1 && outcome.WinnerID != 2 {
			t.Fatalf("seed %d: winner %d is not a competitor", seed, outcome.WinnerID)
		}

		sets := parseSets(t, outcome.Score)
		if len(sets) < 2 || len(sets) > 3 {
			t.Fatalf("seed %d: %d sets in %q, want 2 or 3", seed, len(sets), outcome.Score)
		}

		setsWon := map[bool]int{}
		for _, set := range sets {
			hi, lo := set[0], set[1]
			if lo > hi {
				hi, lo = lo, hi
			}
			if hi < 21 {
				t.Fatalf("seed %d: set %v won below 21", seed, set)
			}
			if hi > 30 {
				t.Fatalf("seed %d: set %v exceeds the 30-point cap", seed, set)
			}
			if hi-lo < 2 && hi != 30 {
				t.Fatalf("seed %d: set %v decided without a two-point lead", seed, set)
			}
			setsWon[set[0] > set[1]]++
		}
		if setsWon[true] != 2 && setsWon[false] != 2 {
			t.Fatalf("seed %d: no side won two sets in %q", seed, outcome.Score)
		}
		if outcome.DurationMinutes <= 0 {
			t.Fatalf("seed %d: non-positive duration %d", seed, outcome.DurationMinutes)
		}
	}
}

func TestSimulateMatch_StrongerSideWinsMostOfTheTime(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sim := NewMatchSimulator(rand.New(rand.NewSource(42)))
	strong := testPlayer(1, 85)
	weak := testPlayer(2, 30)

	strongWins := 0
	const runs = 200
	for i := 0; i < runs; i++ {
		if sim.SimulateMatch(strong, weak, nil, nil, now).WinnerID == strong.ID {
			strongWins++
		}
	}
	if strongWins < runs*3/4 {
		t.Errorf("strong player won %d/%d, want at least %d", strongWins, runs, runs*3/4)
	}
}

func TestSimulateBye(t *testing.T) {
	sim := NewMatchSimulator(rand.New(rand.NewSource(1)))
	outcome := sim.SimulateBye(9)

	if outcome.WinnerID != 9 {
		t.Errorf("winner = %d, want 9", outcome.WinnerID)
	}
	if outcome.Score != "21-0, 21-0" {
		t.Errorf("score = %q, want %q", outcome.Score, "21-0, 21-0")
	}
	if outcome.DurationMinutes != 0 {
		t.Errorf("duration = %d, want 0", outcome.DurationMinutes)
	}
}

func TestSimulateMatch_NilPlayerFallback(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sim := NewMatchSimulator(rand.New(rand.NewSource(1)))
	p1 := testPlayer(3, 50)

	if got := sim.SimulateMatch(p1, nil, nil, nil, now); got.WinnerID != 3 {
		t.Errorf("surviving entrant should win, got winner %d", got.WinnerID)
	}
	if got := sim.SimulateMatch(nil, p1, nil, nil, now); got.WinnerID != 3 {
		t.Errorf("surviving entrant should win, got winner %d", got.WinnerID)
	}
}

func TestPlayerStrength_PenaltiesAndBonuses(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sim := NewMatchSimulator(rand.New(rand.NewSource(1)))

	base := sim.PlayerStrength(testPlayer(1, 60), nil, now)

	injured := testPlayer(1, 60)
	injured.Injuries = []models.Injury{{
		Type:            "back_injury",
		Severity:        models.SeveritySevere,
		RecoveryEndTime: now.Add(time.Hour).UnixMilli(),
	}}
	if got := sim.PlayerStrength(injured, nil, now); got != base-9 {
		t.Errorf("severe injury strength = %v, want %v", got, base-9)
	}

	healed := testPlayer(1, 60)
	healed.Injuries = []models.Injury{{
		Type:            "back_injury",
		Severity:        models.SeveritySevere,
		RecoveryEndTime: now.Add(-time.Hour).UnixMilli(),
	}}
	if got := sim.PlayerStrength(healed, nil, now); got != base {
		t.Errorf("healed injury strength = %v, want %v", got, base)
	}

	equipped := testPlayer(1, 60)
	equipped.Equipment = []models.Equipment{
		{Name: "racket", Slot: "hand", Bonus: 12},
		{Name: "shoes", Slot: "feet", Bonus: 10},
	}
	// 22 raw bonus, capped at 15.
	if got := sim.PlayerStrength(equipped, nil, now); got != base+15 {
		t.Errorf("equipped strength = %v, want %v", got, base+15)
	}
}

func TestFormBonus(t *testing.T) {
	const playerID = 5
	opponent := 6

	win := models.MatchRecord{Player1ID: playerID, Player2ID: &opponent, Result: true}
	loss := models.MatchRecord{Player1ID: playerID, Player2ID: &opponent, Result: false}

	tests := []struct {
		name   string
		recent []models.MatchRecord
		want   float64
	}{
		{"no history", nil, 0},
		{"perfect run", []models.MatchRecord{win, win, win, win}, 5},
		{"winless run", []models.MatchRecord{loss, loss, loss, loss}, -5},
		{"even split", []models.MatchRecord{win, loss, win, loss}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formBonus(playerID, tt.recent); got != tt.want {
				t.Errorf("formBonus = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulateCategory(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sim := NewMatchSimulator(rand.New(rand.NewSource(7)))

	home := []*models.Player{testPlayer(1, 90), testPlayer(2, 90)}
	away := []*models.Player{testPlayer(3, 20), testPlayer(4, 20)}

	homeWins := 0
	const runs = 100
	for i := 0; i < runs; i++ {
		outcome := sim.SimulateCategory(home, away, now)
		if outcome.WinnerSide != "home" && outcome.WinnerSide != "away" {
			t.Fatalf("winner side %q", outcome.WinnerSide)
		}
		if outcome.Score == "" {
			t.Fatal("empty category score")
		}
		if outcome.WinnerSide == "home" {
			homeWins++
		}
	}
	if homeWins < runs*3/4 {
		t.Errorf("stronger side won %d/%d, want at least %d", homeWins, runs, runs*3/4)
	}
}
