package services

import "errors"

// Shared service-level errors. Repository sentinels (not-found, stale CAS)
// are wrapped with these where a caller needs a business-level signal.
var (
	// Lineup validation
	ErrLineupIncomplete     = errors.New("lineup must cover all five categories")
	ErrLineupWrongSize      = errors.New("category has the wrong number of players")
	ErrLineupGenderMismatch = errors.New("player gender does not satisfy the category")
	ErrLineupUsageExceeded  = errors.New("player exceeds three category assignments")
	ErrLineupUnknownPlayer  = errors.New("lineup references a player outside the roster")
	ErrLineupRosterTooSmall = errors.New("roster cannot field a single category")

	// Scheduling
	ErrNotEnoughTeams        = errors.New("at least two teams are required for a schedule")
	ErrScheduleAlreadyExists = errors.New("season fixtures already generated")

	// Tournaments
	ErrTournamentNotDue = errors.New("tournament start time has not passed")
	ErrRoundNotComplete = errors.New("current round has unfinished matches")
	ErrNoParticipants   = errors.New("tournament has no registered participants")
)
