package models

import "time"

// MatchRecord is one immutable row of play history. Result is true when
// player 1 won. Rank columns snapshot both competitors' point totals at
// match time so later rank changes never rewrite past awards. Player2ID and
// Player2Rank are nil for byes and unranked CPU opponents.
type MatchRecord struct {
	ID          int       `json:"id" db:"id"`
	Player1ID   int       `json:"player1_id" db:"player1_id"`
	Player2ID   *int      `json:"player2_id,omitempty" db:"player2_id"`
	Result      bool      `json:"result" db:"result"`
	Player1Rank float64   `json:"player1_rank" db:"player1_rank"`
	Player2Rank *float64  `json:"player2_rank,omitempty" db:"player2_rank"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// WonBy reports whether the given player won this match.
func (r MatchRecord) WonBy(playerID int) bool {
	if r.Result {
		return r.Player1ID == playerID
	}
	return r.Player2ID != nil && *r.Player2ID == playerID
}

// OpponentRank returns the rank snapshot of the given player's opponent.
// The second return is false when the opponent had no recorded rank.
func (r MatchRecord) OpponentRank(playerID int) (float64, bool) {
	if r.Player1ID == playerID {
		if r.Player2Rank == nil {
			return 0, false
		}
		return *r.Player2Rank, true
	}
	if r.Player2ID != nil && *r.Player2ID == playerID {
		return r.Player1Rank, true
	}
	return 0, false
}
