package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

// LedgerRepository appends resource grants. The ledger is append-only; a
// club's balance is the sum of its entries and is computed elsewhere.
type LedgerRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

func (r *postgresLedgerRepository) Insert(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO resource_ledger (club_id, resource, amount, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		entry.ClubID, entry.Resource, entry.Amount, entry.Source,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry for club %d: %w", entry.ClubID, err)
	}
	return nil
}
