package repo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// ProgressRepositoryPG implements domain.ProgressStore.
type ProgressRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new progress log repository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepositoryPG {
	return &ProgressRepositoryPG{pool: pool}
}

// Append inserts one progress log entry.
func (r *ProgressRepositoryPG) Append(ctx context.Context, event *domain.ProgressEvent) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO video_progress (id, video_id, stage, progress_percentage, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`,
		event.ID,
		event.VideoID,
		event.Stage,
		event.ProgressPercentage,
		event.Message,
		event.CreatedAt,
	)
	return err
}

// AnalyticsRepositoryPG implements domain.AnalyticsStore.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// Insert appends one analytics event. Properties are stored as JSONB.
func (r *AnalyticsRepositoryPG) Insert(ctx context.Context, event *domain.AnalyticsEvent) error {
	props, err := json.Marshal(event.Properties)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO analytics_events (id, user_id, event_name, properties, created_at)
VALUES ($1, $2, $3, $4, $5);
`,
		event.ID,
		event.UserID,
		event.EventName,
		props,
		event.CreatedAt,
	)
	return err
}
