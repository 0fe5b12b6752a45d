package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, club_id, name, player_ids, created_at FROM teams WHERE id = $1`

	var t models.Team
	var playerIDs pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.ClubID, &t.Name, &playerIDs, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}

	t.PlayerIDs = make([]int, len(playerIDs))
	for i, pid := range playerIDs {
		t.PlayerIDs[i] = int(pid)
	}
	return &t, nil
}
