package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// VideoRepositoryPG implements domain.VideoStore.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new video repository backed by PostgreSQL.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// GetByID fetches a video job record by its identifier.
func (r *VideoRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, child_id, rhyme_id, status, current_stage, progress_percentage,
       runware_model, COALESCE(runware_task_uuid, ''), estimated_completion, created_at, updated_at
FROM videos
WHERE id = $1;
`, id)

	var v domain.Video
	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.ChildID,
		&v.RhymeID,
		&v.Status,
		&v.CurrentStage,
		&v.ProgressPercentage,
		&v.RunwareModel,
		&v.RunwareTaskUUID,
		&v.EstimatedCompletion,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// CountForUserSince counts the user's videos created inside the trailing window.
func (r *VideoRepositoryPG) CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE user_id = $1 AND created_at >= $2`, userID, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkProcessing persists the provider task handle and moves the video to processing.
func (r *VideoRepositoryPG) MarkProcessing(ctx context.Context, videoID, taskUUID string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE videos
SET runware_task_uuid = $2,
    status = 'processing',
    current_stage = 'starting',
    updated_at = NOW()
WHERE id = $1;
`, videoID, taskUUID)
	return err
}

// MarkFailed flips the video into its terminal failed state.
func (r *VideoRepositoryPG) MarkFailed(ctx context.Context, videoID string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE videos
SET status = 'failed',
    current_stage = 'error',
    updated_at = NOW()
WHERE id = $1;
`, videoID)
	return err
}
