package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player conflict")
)

type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error)
	CreateCPU(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateRank(ctx context.Context, id int, rank float64, label models.Tier) error
	AppendInjury(ctx context.Context, id int, injury models.Injury) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `
	id, club_id, name, gender, level, rank, rank_label, strategy,
	stats, stat_levels, injuries, equipment, is_cpu, created_at`

func scanPlayer(scan func(...interface{}) error) (*models.Player, error) {
	var p models.Player
	var statsRaw, statLevelsRaw, injuriesRaw, equipmentRaw []byte

	if err := scan(
		&p.ID, &p.ClubID, &p.Name, &p.Gender, &p.Level, &p.Rank, &p.RankLabel,
		&p.Strategy, &statsRaw, &statLevelsRaw, &injuriesRaw, &equipmentRaw,
		&p.IsCPU, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(statsRaw, &p.Stats); err != nil {
		return nil, err
	}
	if err := scanJSON(statLevelsRaw, &p.StatLevels); err != nil {
		return nil, err
	}
	if err := scanJSON(injuriesRaw, &p.Injuries); err != nil {
		return nil, err
	}
	if err := scanJSON(equipmentRaw, &p.Equipment); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	player, err := scanPlayer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0, len(ids))
	for rows.Next() {
		player, scanErr := scanPlayer(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) CreateCPU(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	statsRaw, err := marshalJSON(player.Stats)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO players (club_id, name, gender, level, rank, rank_label, strategy, stats, is_cpu)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING id, created_at`

	err = executor(exec, r.db).QueryRowContext(ctx, query,
		player.ClubID, player.Name, player.Gender, player.Level,
		player.Rank, player.RankLabel, player.Strategy, statsRaw,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrPlayerConflict
		}
		return fmt.Errorf("failed to create cpu player: %w", err)
	}
	player.IsCPU = true
	return nil
}

func (r *postgresPlayerRepository) UpdateRank(ctx context.Context, id int, rank float64, label models.Tier) error {
	query := `UPDATE players SET rank = $1, rank_label = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, rank, label, id)
	if err != nil {
		return fmt.Errorf("failed to update rank for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) AppendInjury(ctx context.Context, id int, injury models.Injury) error {
	injuryRaw, err := marshalJSON(injury)
	if err != nil {
		return err
	}
	query := `UPDATE players SET injuries = COALESCE(injuries, '[]'::jsonb) || $1::jsonb WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, injuryRaw, id)
	if err != nil {
		return fmt.Errorf("failed to append injury for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
