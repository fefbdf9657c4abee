package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rhymelab/internal/domain"
	"rhymelab/internal/infra"
	"rhymelab/internal/providers/runware"
	"rhymelab/internal/sink"
)

const estimatedRenderTime = 2 * time.Hour

// TaskSubmitter is the asynchronous video render provider.
type TaskSubmitter interface {
	CreateTask(ctx context.Context, req runware.TaskRequest) (string, error)
	HasCredentials() bool
}

// Admission is the outcome of a successful Admit.
type Admission struct {
	Video         *domain.Video
	QueuePosition int
	GemsRemaining int
}

// Manager drives the video job state machine: atomic admission, dispatch to
// the render provider, failure recording and queue position queries.
type Manager struct {
	admissions domain.AdmissionStore
	videos     domain.VideoStore
	children   domain.ChildStore
	queue      domain.QueueStore
	runware    TaskSubmitter
	sink       *sink.Sink
	logger     infra.Logger
	now        func() time.Time
}

// NewManager constructs a Manager over the given collaborators.
func NewManager(admissions domain.AdmissionStore, videos domain.VideoStore, children domain.ChildStore, queue domain.QueueStore, runware TaskSubmitter, bookkeeping *sink.Sink, logger infra.Logger) *Manager {
	return &Manager{
		admissions: admissions,
		videos:     videos,
		children:   children,
		queue:      queue,
		runware:    runware,
		sink:       bookkeeping,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the manager's clock. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Admit creates the video record, debits the rhyme's cost and enqueues the
// job as one atomic admission. Preconditions (ownership, rate limit,
// balance) must already have passed the eligibility gate; the store still
// re-validates the debit, so a concurrent spend surfaces as
// ErrInsufficientGems here.
func (m *Manager) Admit(ctx context.Context, user *domain.User, child *domain.Child, rhyme *domain.Rhyme) (*Admission, error) {
	now := m.now()

	video := &domain.Video{
		ID:                  uuid.NewString(),
		UserID:              user.ID,
		ChildID:             child.ID,
		RhymeID:             rhyme.ID,
		Status:              domain.VideoStatusQueued,
		CurrentStage:        domain.StageInitializing,
		ProgressPercentage:  0,
		RunwareModel:        domain.SelectModel(*rhyme),
		EstimatedCompletion: now.Add(estimatedRenderTime),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	priority := domain.PriorityStandard
	if rhyme.IsPremium {
		priority = domain.PriorityPremium
	}
	job := &domain.VideoJob{
		ID:          uuid.NewString(),
		VideoID:     video.ID,
		Priority:    priority,
		Status:      domain.VideoJobStatusPending,
		ScheduledAt: now,
		CreatedAt:   now,
	}

	debit := &domain.GemTransaction{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Amount:      -rhyme.GemCost,
		Type:        domain.TransactionVideo,
		Description: fmt.Sprintf("Video creation for %q", rhyme.Title),
		ReferenceID: video.ID,
		CreatedAt:   now,
	}

	remaining, err := m.admissions.AdmitVideo(ctx, video, job, debit)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientGems) {
			return nil, fmt.Errorf("%w: this rhyme costs %d gems", domain.ErrInsufficientGems, rhyme.GemCost)
		}
		return nil, fmt.Errorf("admit video: %w", err)
	}

	return &Admission{
		Video:         video,
		QueuePosition: m.QueuePosition(ctx, video.ID),
		GemsRemaining: remaining,
	}, nil
}

// Dispatch submits an admitted video to the render provider and moves it to
// processing. It is safe to call again for a video that was already
// dispatched: the stored task handle is returned without resubmitting.
func (m *Manager) Dispatch(ctx context.Context, videoID, avatarURL, priority string) (string, error) {
	video, err := m.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: video not found", domain.ErrNotFound)
		}
		return "", fmt.Errorf("load video: %w", err)
	}

	if video.Dispatched() && video.Status == domain.VideoStatusProcessing {
		return video.RunwareTaskUUID, nil
	}

	if !m.runware.HasCredentials() {
		return "", fmt.Errorf("%w: render provider credentials missing", domain.ErrConfiguration)
	}

	if avatarURL == "" {
		if child, childErr := m.children.GetOwned(ctx, video.ChildID, video.UserID); childErr == nil {
			avatarURL = child.AvatarURL
		}
	}

	model := video.RunwareModel
	if model == "" {
		model = domain.ModelEconomical
	}

	taskUUID, err := m.runware.CreateTask(ctx, runware.TaskRequest{
		Model:     model,
		AvatarURL: avatarURL,
		RhymeID:   video.RhymeID,
		Priority:  priority,
	})
	if err != nil {
		m.Fail(ctx, videoID, fmt.Sprintf("Runware request failed: %v", err))
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	if err := m.videos.MarkProcessing(ctx, videoID, taskUUID); err != nil {
		// The task is already running on the provider side; keep the handle
		// in the response and let the caller reconcile.
		m.logger.Error().Err(err).Str("video_id", videoID).Msg("persist task handle failed")
	}
	m.sink.Progress(ctx, videoID, domain.StageStarting, 1, "Runware task created")

	return taskUUID, nil
}

// Fail records a terminal failure for a video. It is best-effort: its own
// failures are logged and swallowed so they never mask the primary error.
func (m *Manager) Fail(ctx context.Context, videoID, message string) {
	if err := m.videos.MarkFailed(ctx, videoID); err != nil {
		m.logger.Warn().Err(err).Str("video_id", videoID).Msg("mark failed did not stick")
	}
	m.sink.Progress(ctx, videoID, domain.StageError, 0, message)
}

// QueuePosition returns the 1-based rank of a video among active queue
// entries, ordered by priority descending then creation time ascending.
// Any lookup failure yields position 1 so the response is never blocked.
func (m *Manager) QueuePosition(ctx context.Context, videoID string) int {
	jobs, err := m.queue.ListActive(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Str("video_id", videoID).Msg("queue position lookup failed")
		return 1
	}
	mine, err := m.queue.GetByVideoID(ctx, videoID)
	if err != nil {
		m.logger.Warn().Err(err).Str("video_id", videoID).Msg("queue entry lookup failed")
		return 1
	}

	position := 1
	for _, job := range jobs {
		if job.VideoID == mine.VideoID {
			continue
		}
		if job.Ahead(*mine) {
			position++
		}
	}
	return position
}
