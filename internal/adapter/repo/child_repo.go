package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// ChildRepositoryPG implements domain.ChildStore.
type ChildRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewChildRepository creates a new child repository backed by PostgreSQL.
func NewChildRepository(pool *pgxpool.Pool) *ChildRepositoryPG {
	return &ChildRepositoryPG{pool: pool}
}

// GetOwned fetches a child only when it belongs to the given user.
func (r *ChildRepositoryPG) GetOwned(ctx context.Context, childID, userID string) (*domain.Child, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, name, COALESCE(avatar_url, ''), avatar_cached, avatar_generated_at, created_at, updated_at
FROM children
WHERE id = $1 AND user_id = $2;
`, childID, userID)

	var c domain.Child
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.AvatarURL, &c.AvatarCached, &c.AvatarGeneratedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SetAvatar records a freshly generated avatar on the child profile.
func (r *ChildRepositoryPG) SetAvatar(ctx context.Context, childID, avatarURL string, generatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
UPDATE children
SET avatar_url = $2,
    avatar_cached = TRUE,
    avatar_generated_at = $3,
    updated_at = NOW()
WHERE id = $1;
`, childID, avatarURL, generatedAt)
	return err
}
