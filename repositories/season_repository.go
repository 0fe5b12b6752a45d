package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var (
	ErrSeasonNotFound = errors.New("interclub season not found")
	ErrSeasonStale    = errors.New("interclub season state changed concurrently")
)

type SeasonRepository interface {
	GetByID(ctx context.Context, id int) (*models.InterclubSeason, error)
	ListActive(ctx context.Context) ([]*models.InterclubSeason, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.SeasonStatus) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

const seasonColumns = `
	id, tier, status, groups, week_count, start_date, prize_pool, created_at`

func scanSeason(scan func(...interface{}) error) (*models.InterclubSeason, error) {
	var s models.InterclubSeason
	var groupsRaw, prizeRaw []byte

	if err := scan(
		&s.ID, &s.Tier, &s.Status, &groupsRaw, &s.WeekCount,
		&s.StartDate, &prizeRaw, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(groupsRaw, &s.Groups); err != nil {
		return nil, err
	}
	if err := scanJSON(prizeRaw, &s.PrizePool); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.InterclubSeason, error) {
	query := `SELECT` + seasonColumns + ` FROM interclub_seasons WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	season, err := scanSeason(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season %d: %w", id, err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) ListActive(ctx context.Context) ([]*models.InterclubSeason, error) {
	query := `SELECT` + seasonColumns + `
		FROM interclub_seasons
		WHERE status = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.SeasonActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]*models.InterclubSeason, 0)
	for rows.Next() {
		season, scanErr := scanSeason(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", scanErr)
		}
		seasons = append(seasons, season)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during season rows iteration: %w", err)
	}
	return seasons, nil
}

func (r *postgresSeasonRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.SeasonStatus) error {
	query := `UPDATE interclub_seasons SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update season %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrSeasonStale)
}
