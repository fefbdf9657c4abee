package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rhymelab/internal/domain"
)

// AdmissionRepositoryPG implements domain.AdmissionStore. The whole admission
// runs inside one transaction so a failed debit can never leave a billable
// video behind, and a created video can never skip its debit.
type AdmissionRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAdmissionRepository creates a new admission repository backed by PostgreSQL.
func NewAdmissionRepository(pool *pgxpool.Pool) *AdmissionRepositoryPG {
	return &AdmissionRepositoryPG{pool: pool}
}

// AdmitVideo inserts the video, appends the debit ledger entry, applies the
// conditional balance decrement and inserts the queue entry. Returns the gem
// balance after the debit.
func (r *AdmissionRepositoryPG) AdmitVideo(ctx context.Context, video *domain.Video, job *domain.VideoJob, debit *domain.GemTransaction) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO videos (id, user_id, child_id, rhyme_id, status, current_stage, progress_percentage,
                    runware_model, estimated_completion, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10);
`,
		video.ID,
		video.UserID,
		video.ChildID,
		video.RhymeID,
		video.Status,
		video.CurrentStage,
		video.ProgressPercentage,
		video.RunwareModel,
		video.EstimatedCompletion,
		video.CreatedAt,
	); err != nil {
		return 0, err
	}

	row := tx.QueryRow(ctx, `
UPDATE users
SET gem_balance = gem_balance + $2,
    updated_at = NOW()
WHERE id = $1
  AND gem_balance + $2 >= 0
RETURNING gem_balance;
`, debit.UserID, debit.Amount)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientGems
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx, insertGemTransactionSQL,
		debit.ID,
		debit.UserID,
		debit.Amount,
		debit.Type,
		debit.Description,
		nullableText(debit.ReferenceID),
		debit.CreatedAt,
	); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO video_jobs (id, video_id, priority, status, scheduled_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`,
		job.ID,
		job.VideoID,
		job.Priority,
		job.Status,
		job.ScheduledAt,
		job.CreatedAt,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}
