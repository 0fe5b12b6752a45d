package models

import "time"

// TournamentStatus values match the numeric codes stored in the tournaments
// table. Transitions are monotonic, no reverse edge exists.
type TournamentStatus int

const (
	TournamentRegistrationOpen TournamentStatus = 0
	TournamentInProgress       TournamentStatus = 1
	TournamentCompleted        TournamentStatus = 2
)

func (s TournamentStatus) String() string {
	switch s {
	case TournamentRegistrationOpen:
		return "registration_open"
	case TournamentInProgress:
		return "in_progress"
	case TournamentCompleted:
		return "completed"
	}
	return "unknown"
}

// ResourceBundle is one prize entry: resource name to amount.
type ResourceBundle map[string]int

// PrizePool maps a finishing place (1, 2, 3, ...) to its resource grant.
type PrizePool map[int]ResourceBundle

type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Status               TournamentStatus `json:"status" db:"status"`
	CurrentRoundLevel    int              `json:"current_round_level" db:"current_round_level"`
	RoundIntervalMinutes int              `json:"round_interval_minutes" db:"round_interval_minutes"`
	StartTime            time.Time        `json:"start_time" db:"start_time"`
	MaxParticipants      int              `json:"max_participants" db:"max_participants"`
	RegisteredPlayerIDs  []int            `json:"registered_players" db:"-"`
	PrizePool            PrizePool        `json:"prize_pool" db:"-"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
}

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchBye       MatchStatus = "bye"
	MatchCompleted MatchStatus = "completed"
)

// Match is one bracket pairing. Player2ID nil means a bye. A match moves to
// completed exactly once and is never deleted during a season.
type Match struct {
	ID                 int         `json:"id" db:"id"`
	TournamentID       int         `json:"tournament_id" db:"tournament_id"`
	RoundLevel         int         `json:"round_level" db:"round_level"`
	Player1ID          int         `json:"player1_id" db:"player1_id"`
	Player2ID          *int        `json:"player2_id,omitempty" db:"player2_id"`
	WinnerID           *int        `json:"winner_id,omitempty" db:"winner_id"`
	Score              *string     `json:"score,omitempty" db:"score"`
	Status             MatchStatus `json:"status" db:"status"`
	ScheduledStartTime time.Time   `json:"scheduled_start_time" db:"scheduled_start_time"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
}

// IsBye reports whether the match has no second entrant.
func (m Match) IsBye() bool {
	return m.Player2ID == nil
}
