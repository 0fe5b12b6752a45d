package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var (
	ErrEncounterNotFound = errors.New("interclub encounter not found")
	ErrEncounterStale    = errors.New("interclub encounter state changed concurrently")
)

type EncounterRepository interface {
	GetByID(ctx context.Context, id int) (*models.InterclubEncounter, error)
	CreateBatch(ctx context.Context, exec SQLExecutor, encounters []*models.InterclubEncounter) error
	CountBySeason(ctx context.Context, seasonID int) (int, error)
	ListBySeason(ctx context.Context, seasonID int, status *models.EncounterStatus) ([]*models.InterclubEncounter, error)
	ListDue(ctx context.Context, seasonID int, status models.EncounterStatus, due time.Time) ([]*models.InterclubEncounter, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.EncounterStatus) error
	SetLineup(ctx context.Context, exec SQLExecutor, id int, side string, lineup models.Lineup) error
	// Complete records the category results and winner while transitioning
	// from the expected status in a single guarded write.
	Complete(ctx context.Context, exec SQLExecutor, id int, from models.EncounterStatus,
		results []models.CategoryResult, winnerTeamID *int, finalScore string) error
}

type postgresEncounterRepository struct {
	db *sql.DB
}

func NewPostgresEncounterRepository(db *sql.DB) EncounterRepository {
	return &postgresEncounterRepository{db: db}
}

const encounterColumns = `
	id, season_id, home_team_id, away_team_id, week_number, group_number,
	match_date, status, home_lineup, away_lineup, results, winner_team_id,
	final_score, created_at`

func scanEncounter(scan func(...interface{}) error) (*models.InterclubEncounter, error) {
	var e models.InterclubEncounter
	var homeRaw, awayRaw, resultsRaw []byte

	if err := scan(
		&e.ID, &e.SeasonID, &e.HomeTeamID, &e.AwayTeamID, &e.WeekNumber,
		&e.GroupNumber, &e.MatchDate, &e.Status, &homeRaw, &awayRaw,
		&resultsRaw, &e.WinnerTeamID, &e.FinalScore, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(homeRaw, &e.HomeLineup); err != nil {
		return nil, err
	}
	if err := scanJSON(awayRaw, &e.AwayLineup); err != nil {
		return nil, err
	}
	if err := scanJSON(resultsRaw, &e.Results); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *postgresEncounterRepository) GetByID(ctx context.Context, id int) (*models.InterclubEncounter, error) {
	query := `SELECT` + encounterColumns + ` FROM interclub_encounters WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	encounter, err := scanEncounter(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEncounterNotFound
		}
		return nil, fmt.Errorf("failed to scan encounter %d: %w", id, err)
	}
	return encounter, nil
}

func (r *postgresEncounterRepository) CreateBatch(ctx context.Context, exec SQLExecutor, encounters []*models.InterclubEncounter) error {
	query := `
		INSERT INTO interclub_encounters
			(season_id, home_team_id, away_team_id, week_number, group_number, match_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	for _, e := range encounters {
		err := executor(exec, r.db).QueryRowContext(ctx, query,
			e.SeasonID, e.HomeTeamID, e.AwayTeamID, e.WeekNumber,
			e.GroupNumber, e.MatchDate, e.Status,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create encounter for season %d: %w", e.SeasonID, err)
		}
	}
	return nil
}

func (r *postgresEncounterRepository) CountBySeason(ctx context.Context, seasonID int) (int, error) {
	query := `SELECT COUNT(*) FROM interclub_encounters WHERE season_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, seasonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count encounters for season %d: %w", seasonID, err)
	}
	return count, nil
}

func (r *postgresEncounterRepository) ListBySeason(ctx context.Context, seasonID int, status *models.EncounterStatus) ([]*models.InterclubEncounter, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + encounterColumns + `
		FROM interclub_encounters
		WHERE season_id = $1`)

	args := []interface{}{seasonID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY week_number ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query encounters for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectEncounters(rows)
}

func (r *postgresEncounterRepository) ListDue(ctx context.Context, seasonID int, status models.EncounterStatus, due time.Time) ([]*models.InterclubEncounter, error) {
	query := `SELECT` + encounterColumns + `
		FROM interclub_encounters
		WHERE season_id = $1 AND status = $2 AND match_date <= $3
		ORDER BY week_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID, status, due)
	if err != nil {
		return nil, fmt.Errorf("failed to query due encounters for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return collectEncounters(rows)
}

func (r *postgresEncounterRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.EncounterStatus) error {
	query := `UPDATE interclub_encounters SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor(exec, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update encounter %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrEncounterStale)
}

func (r *postgresEncounterRepository) SetLineup(ctx context.Context, exec SQLExecutor, id int, side string, lineup models.Lineup) error {
	lineupRaw, err := marshalJSON(lineup)
	if err != nil {
		return err
	}

	var column string
	switch side {
	case "home":
		column = "home_lineup"
	case "away":
		column = "away_lineup"
	default:
		return fmt.Errorf("invalid lineup side %q", side)
	}

	query := `UPDATE interclub_encounters SET ` + column + ` = $1 WHERE id = $2`
	result, err := executor(exec, r.db).ExecContext(ctx, query, lineupRaw, id)
	if err != nil {
		return fmt.Errorf("failed to set %s lineup for encounter %d: %w", side, id, err)
	}
	return checkAffectedRows(result, ErrEncounterNotFound)
}

func (r *postgresEncounterRepository) Complete(ctx context.Context, exec SQLExecutor, id int, from models.EncounterStatus,
	results []models.CategoryResult, winnerTeamID *int, finalScore string) error {

	resultsRaw, err := marshalJSON(results)
	if err != nil {
		return err
	}
	query := `
		UPDATE interclub_encounters
		SET results = $1, winner_team_id = $2, final_score = $3, status = $4
		WHERE id = $5 AND status = $6`
	result, err := executor(exec, r.db).ExecContext(ctx, query,
		resultsRaw, winnerTeamID, finalScore, models.EncounterCompleted, id, from)
	if err != nil {
		return fmt.Errorf("failed to complete encounter %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEncounterStale)
}

func collectEncounters(rows *sql.Rows) ([]*models.InterclubEncounter, error) {
	encounters := make([]*models.InterclubEncounter, 0)
	for rows.Next() {
		encounter, err := scanEncounter(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan encounter row: %w", err)
		}
		encounters = append(encounters, encounter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during encounter rows iteration: %w", err)
	}
	return encounters, nil
}
