package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// QueueRepositoryPG implements domain.QueueStore.
type QueueRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQueueRepository creates a new queue repository backed by PostgreSQL.
func NewQueueRepository(pool *pgxpool.Pool) *QueueRepositoryPG {
	return &QueueRepositoryPG{pool: pool}
}

// ListActive returns pending and claimed queue entries in dispatch order.
func (r *QueueRepositoryPG) ListActive(ctx context.Context) ([]domain.VideoJob, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, video_id, priority, status, scheduled_at, created_at
FROM video_jobs
WHERE status IN ('pending', 'claimed')
ORDER BY priority DESC, created_at ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.VideoJob
	for rows.Next() {
		var j domain.VideoJob
		if err := rows.Scan(&j.ID, &j.VideoID, &j.Priority, &j.Status, &j.ScheduledAt, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetByVideoID fetches the queue entry paired with a video.
func (r *QueueRepositoryPG) GetByVideoID(ctx context.Context, videoID string) (*domain.VideoJob, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, video_id, priority, status, scheduled_at, created_at
FROM video_jobs
WHERE video_id = $1;
`, videoID)

	var j domain.VideoJob
	if err := row.Scan(&j.ID, &j.VideoID, &j.Priority, &j.Status, &j.ScheduledAt, &j.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// ListDispatchable returns queued videos that still lack a provider task
// handle, oldest first. The dispatch worker polls this to retry submissions.
func (r *QueueRepositoryPG) ListDispatchable(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id
FROM videos
WHERE status = 'queued'
  AND (runware_task_uuid IS NULL OR runware_task_uuid = '')
ORDER BY created_at ASC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
