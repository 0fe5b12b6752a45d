// Package brackets contains the pure pairing and fixture generation used by
// the competition services: shuffled single-elimination rounds and Berger
// round-robin tables. No persistence, no simulation.
package brackets

// Pairing is one generated elimination pairing. Player2ID nil means the sole
// entrant advances on a bye.
type Pairing struct {
	Player1ID int
	Player2ID *int
}

// IsBye reports whether the pairing has no second entrant.
func (p Pairing) IsBye() bool {
	return p.Player2ID == nil
}

// Fixture is one round-robin pairing placed on a matchday.
type Fixture struct {
	HomeTeamID int
	AwayTeamID int
	Matchday   int // 1-based
}
