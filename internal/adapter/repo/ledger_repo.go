package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// insertGemTransactionSQL is shared by every path that appends a ledger row.
// created_at is always bound explicitly because CountSince filters on it.
const insertGemTransactionSQL = `
INSERT INTO gem_transactions (id, user_id, amount, type, description, reference_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`

// LedgerRepositoryPG implements domain.LedgerStore.
type LedgerRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository backed by PostgreSQL.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{pool: pool}
}

// CountSince counts ledger entries of one type for a user inside the trailing window.
func (r *LedgerRepositoryPG) CountSince(ctx context.Context, userID string, txType domain.TransactionType, since time.Time) (int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM gem_transactions
WHERE user_id = $1 AND type = $2 AND created_at >= $3;
`, userID, txType, since)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
