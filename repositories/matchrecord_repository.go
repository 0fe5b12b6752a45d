package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

// MatchRecordRepository stores the immutable play history consumed by the
// ranking engine. Rows are written once and never updated.
type MatchRecordRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error
	ListByPlayerSince(ctx context.Context, playerID int, since time.Time) ([]models.MatchRecord, error)
}

type postgresMatchRecordRepository struct {
	db *sql.DB
}

func NewPostgresMatchRecordRepository(db *sql.DB) MatchRecordRepository {
	return &postgresMatchRecordRepository{db: db}
}

func (r *postgresMatchRecordRepository) Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error {
	query := `
		INSERT INTO match_records (player1_id, player2_id, result, player1_rank, player2_rank)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		record.Player1ID, record.Player2ID, record.Result,
		record.Player1Rank, record.Player2Rank,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match record: %w", err)
	}
	return nil
}

func (r *postgresMatchRecordRepository) ListByPlayerSince(ctx context.Context, playerID int, since time.Time) ([]models.MatchRecord, error) {
	query := `
		SELECT id, player1_id, player2_id, result, player1_rank, player2_rank, created_at
		FROM match_records
		WHERE (player1_id = $1 OR player2_id = $1) AND created_at >= $2
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query match records for player %d: %w", playerID, err)
	}
	defer rows.Close()

	records := make([]models.MatchRecord, 0)
	for rows.Next() {
		var rec models.MatchRecord
		if scanErr := rows.Scan(
			&rec.ID, &rec.Player1ID, &rec.Player2ID, &rec.Result,
			&rec.Player1Rank, &rec.Player2Rank, &rec.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match record row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match record rows iteration: %w", err)
	}
	return records, nil
}
