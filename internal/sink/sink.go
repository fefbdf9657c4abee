package sink

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rhymelab/internal/domain"
	"rhymelab/internal/infra"
)

// Sink records analytics events and progress log entries. Every write is
// best-effort: failures are logged and swallowed, never returned, so
// bookkeeping can never invalidate a job.
type Sink struct {
	analytics domain.AnalyticsStore
	progress  domain.ProgressStore
	logger    infra.Logger
	now       func() time.Time
}

// New constructs a Sink over the given stores.
func New(analytics domain.AnalyticsStore, progress domain.ProgressStore, logger infra.Logger) *Sink {
	return &Sink{analytics: analytics, progress: progress, logger: logger, now: time.Now}
}

// Event records one analytics event.
func (s *Sink) Event(ctx context.Context, userID, name string, properties map[string]any) {
	if s == nil || s.analytics == nil {
		return
	}
	err := s.analytics.Insert(ctx, &domain.AnalyticsEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		EventName:  name,
		Properties: properties,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", name).Msg("analytics insert failed")
	}
}

// Progress appends one progress log entry for a video.
func (s *Sink) Progress(ctx context.Context, videoID, stage string, percentage int, message string) {
	if s == nil || s.progress == nil {
		return
	}
	err := s.progress.Append(ctx, &domain.ProgressEvent{
		ID:                 uuid.NewString(),
		VideoID:            videoID,
		Stage:              stage,
		ProgressPercentage: percentage,
		Message:            message,
		CreatedAt:          s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("video_id", videoID).Str("stage", stage).Msg("progress append failed")
	}
}
