package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// UserRepositoryPG implements domain.UserStore backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// GetByID fetches a user by identifier.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, gem_balance, created_at, updated_at FROM users WHERE id = $1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.GemBalance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AdjustGemBalance applies delta to the balance and appends the ledger entry
// in one transaction. The WHERE clause re-validates non-negativity so a
// concurrent debit can never push the balance below zero.
func (r *UserRepositoryPG) AdjustGemBalance(ctx context.Context, userID string, delta int, txType domain.TransactionType, description, referenceID string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
UPDATE users
SET gem_balance = gem_balance + $2,
    updated_at = NOW()
WHERE id = $1
  AND gem_balance + $2 >= 0
RETURNING gem_balance;
`, userID, delta)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientGems
		}
		return 0, err
	}

	// created_at is set explicitly: the avatar rate-limit window counts
	// ledger rows against it, so it must never rely on a column default.
	if _, err := tx.Exec(ctx, insertGemTransactionSQL,
		uuid.NewString(), userID, delta, txType, description, nullableText(referenceID), time.Now(),
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
