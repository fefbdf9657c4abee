package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// RhymeRepositoryPG implements domain.RhymeStore.
type RhymeRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRhymeRepository creates a new rhyme repository backed by PostgreSQL.
func NewRhymeRepository(pool *pgxpool.Pool) *RhymeRepositoryPG {
	return &RhymeRepositoryPG{pool: pool}
}

// GetActive fetches a rhyme by identifier, treating inactive entries as missing.
func (r *RhymeRepositoryPG) GetActive(ctx context.Context, id string) (*domain.Rhyme, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, title, gem_cost, is_premium, duration_seconds, is_active, created_at
FROM rhymes
WHERE id = $1 AND is_active = TRUE;
`, id)

	var rh domain.Rhyme
	if err := row.Scan(&rh.ID, &rh.Title, &rh.GemCost, &rh.IsPremium, &rh.DurationSeconds, &rh.IsActive, &rh.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rh, nil
}
