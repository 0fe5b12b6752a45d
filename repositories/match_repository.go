package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchAlreadyCompleted signals that the pending->completed CAS missed:
	// another invocation already wrote this result.
	ErrMatchAlreadyCompleted = errors.New("match already completed")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	ListByRound(ctx context.Context, tournamentID, roundLevel int) ([]*models.Match, error)
	CountByRound(ctx context.Context, tournamentID, roundLevel int) (int, error)
	ListDue(ctx context.Context, tournamentID int, now time.Time) ([]*models.Match, error)
	// Complete performs the single pending->completed transition.
	Complete(ctx context.Context, exec SQLExecutor, id int, winnerID int, score string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, round_level, player1_id, player2_id, winner_id,
	score, status, scheduled_start_time, created_at`

func scanMatch(scan func(...interface{}) error) (*models.Match, error) {
	var m models.Match
	if err := scan(
		&m.ID, &m.TournamentID, &m.RoundLevel, &m.Player1ID, &m.Player2ID,
		&m.WinnerID, &m.Score, &m.Status, &m.ScheduledStartTime, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round_level, player1_id, player2_id, winner_id, score, status, scheduled_start_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor(exec, r.db).QueryRowContext(ctx, query,
			m.TournamentID, m.RoundLevel, m.Player1ID, m.Player2ID,
			m.WinnerID, m.Score, m.Status, m.ScheduledStartTime,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create match for tournament %d round %d: %w",
				m.TournamentID, m.RoundLevel, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, tournamentID, roundLevel int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND round_level = $2
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, roundLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d round %d: %w", tournamentID, roundLevel, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) CountByRound(ctx context.Context, tournamentID, roundLevel int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND round_level = $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID, roundLevel).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d round %d: %w", tournamentID, roundLevel, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) ListDue(ctx context.Context, tournamentID int, now time.Time) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND status = $2 AND scheduled_start_time <= $3
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.MatchPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id int, winnerID int, score string) error {
	query := `
		UPDATE matches SET winner_id = $1, score = $2, status = $3
		WHERE id = $4 AND status = $5`
	result, err := executor(exec, r.db).ExecContext(ctx, query, winnerID, score, models.MatchCompleted, id, models.MatchPending)
	if err != nil {
		return fmt.Errorf("failed to complete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchAlreadyCompleted)
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}
