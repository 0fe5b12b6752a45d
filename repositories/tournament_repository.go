package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrTournamentStale signals a compare-and-swap miss: the persisted
	// status or round no longer matches what the caller read. A concurrent
	// tick already performed the transition.
	ErrTournamentStale = errors.New("tournament state changed concurrently")
)

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListDueToStart(ctx context.Context, now time.Time) ([]*models.Tournament, error)
	ListInProgress(ctx context.Context) ([]*models.Tournament, error)
	// UpdateStatus performs a guarded transition: the write applies only if
	// the row still holds the expected status.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error
	// AdvanceRound bumps current_round_level from the expected value by one.
	AdvanceRound(ctx context.Context, exec SQLExecutor, id int, fromRound int) error
	AddRegisteredPlayers(ctx context.Context, exec SQLExecutor, id int, playerIDs []int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, status, current_round_level, round_interval_minutes,
	start_time, max_participants, registered_players, prize_pool, created_at`

func scanTournament(scan func(...interface{}) error) (*models.Tournament, error) {
	var t models.Tournament
	var prizeRaw []byte
	var registered pq.Int64Array

	if err := scan(
		&t.ID, &t.Name, &t.Status, &t.CurrentRoundLevel, &t.RoundIntervalMinutes,
		&t.StartTime, &t.MaxParticipants, &registered, &prizeRaw, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.RegisteredPlayerIDs = make([]int, len(registered))
	for i, id := range registered {
		t.RegisteredPlayerIDs[i] = int(id)
	}
	if err := scanJSON(prizeRaw, &t.PrizePool); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	tournament, err := scanTournament(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		tournament, scanErr := scanTournament(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, tournament)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListDueToStart(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND start_time <= $2
		ORDER BY start_time ASC`
	return r.list(ctx, query, models.TournamentRegistrationOpen, now)
}

func (r *postgresTournamentRepository) ListInProgress(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1
		ORDER BY id ASC`
	return r.list(ctx, query, models.TournamentInProgress)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentStale)
}

func (r *postgresTournamentRepository) AdvanceRound(ctx context.Context, exec SQLExecutor, id int, fromRound int) error {
	query := `
		UPDATE tournaments SET current_round_level = $1
		WHERE id = $2 AND current_round_level = $3 AND status = $4`
	result, err := executor(exec, r.db).ExecContext(ctx, query, fromRound+1, id, fromRound, models.TournamentInProgress)
	if err != nil {
		return fmt.Errorf("failed to advance tournament %d round: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentStale)
}

func (r *postgresTournamentRepository) AddRegisteredPlayers(ctx context.Context, exec SQLExecutor, id int, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	ids := make(pq.Int64Array, len(playerIDs))
	for i, pid := range playerIDs {
		ids[i] = int64(pid)
	}
	query := `UPDATE tournaments SET registered_players = registered_players || $1 WHERE id = $2`
	result, err := executor(exec, r.db).ExecContext(ctx, query, ids, id)
	if err != nil {
		return fmt.Errorf("failed to add registered players to tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
