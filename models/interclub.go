package models

import "time"

type SeasonStatus string

const (
	SeasonDraft              SeasonStatus = "draft"
	SeasonRegistrationOpen   SeasonStatus = "registration_open"
	SeasonRegistrationClosed SeasonStatus = "registration_closed"
	SeasonActive             SeasonStatus = "active"
	SeasonCompleted          SeasonStatus = "completed"
)

// SeasonGroup is one partition of the season's teams. Fixtures are generated
// per group, never across groups.
type SeasonGroup struct {
	Number  int   `json:"number"`
	TeamIDs []int `json:"team_ids"`
}

type InterclubSeason struct {
	ID        int           `json:"id" db:"id"`
	Tier      string        `json:"tier" db:"tier"`
	Status    SeasonStatus  `json:"status" db:"status"`
	Groups    []SeasonGroup `json:"groups" db:"-"`
	WeekCount int           `json:"week_count" db:"week_count"`
	StartDate time.Time     `json:"start_date" db:"start_date"`
	PrizePool PrizePool     `json:"prize_pool" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

type EncounterStatus string

const (
	EncounterScheduled     EncounterStatus = "scheduled"
	EncounterLineupPending EncounterStatus = "lineup_pending"
	EncounterReady         EncounterStatus = "ready"
	EncounterInProgress    EncounterStatus = "in_progress"
	EncounterCompleted     EncounterStatus = "completed"
)

// Category is one of the five fixed interclub roles.
type Category string

const (
	CategoryMensSingles   Category = "mens_singles"
	CategoryWomensSingles Category = "womens_singles"
	CategoryMensDoubles   Category = "mens_doubles"
	CategoryWomensDoubles Category = "womens_doubles"
	CategoryMixedDoubles  Category = "mixed_doubles"
)

// Categories lists the five roles in play order.
var Categories = []Category{
	CategoryMensSingles,
	CategoryWomensSingles,
	CategoryMensDoubles,
	CategoryWomensDoubles,
	CategoryMixedDoubles,
}

// PlayersPerCategory returns how many players the category fields per side.
func PlayersPerCategory(c Category) int {
	if c == CategoryMensSingles || c == CategoryWomensSingles {
		return 1
	}
	return 2
}

// Lineup assigns player ids to each of the five categories for one side of
// an encounter.
type Lineup map[Category][]int

// Assignments counts how many categories each player is fielded in.
func (l Lineup) Assignments() map[int]int {
	counts := make(map[int]int)
	for _, ids := range l {
		for _, id := range ids {
			counts[id]++
		}
	}
	return counts
}

// CategoryResult is the outcome of one category match within an encounter.
type CategoryResult struct {
	Category   Category `json:"category"`
	WinnerSide string   `json:"winner_side"` // "home" or "away", "" when voided
	Score      string   `json:"score"`
}

type InterclubEncounter struct {
	ID           int              `json:"id" db:"id"`
	SeasonID     int              `json:"season_id" db:"season_id"`
	HomeTeamID   int              `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int              `json:"away_team_id" db:"away_team_id"`
	WeekNumber   int              `json:"week_number" db:"week_number"`
	GroupNumber  int              `json:"group_number" db:"group_number"`
	MatchDate    time.Time        `json:"match_date" db:"match_date"`
	Status       EncounterStatus  `json:"status" db:"status"`
	HomeLineup   Lineup           `json:"home_lineup,omitempty" db:"-"`
	AwayLineup   Lineup           `json:"away_lineup,omitempty" db:"-"`
	Results      []CategoryResult `json:"results,omitempty" db:"-"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	FinalScore   *string          `json:"final_score,omitempty" db:"final_score"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// CategoryWins tallies per-side category wins from the recorded results.
func (e InterclubEncounter) CategoryWins() (home, away int) {
	for _, r := range e.Results {
		switch r.WinnerSide {
		case "home":
			home++
		case "away":
			away++
		}
	}
	return home, away
}

// GroupStanding is derived by re-scanning completed encounters, never stored
// incrementally.
type GroupStanding struct {
	TeamID                int `json:"team_id"`
	Points                int `json:"points"`
	EncountersWon         int `json:"encounters_won"`
	EncountersLost        int `json:"encounters_lost"`
	EncountersDrawn       int `json:"encounters_drawn"`
	IndividualMatchesWon  int `json:"individual_matches_won"`
	IndividualMatchesLost int `json:"individual_matches_lost"`
	Position              int `json:"position"`
}
