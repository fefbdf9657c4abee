package domain

import (
	"context"
	"time"
)

// UserStore defines access methods for users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// AdjustGemBalance applies delta to the user's balance and appends the
	// matching ledger entry in one transaction. The balance is re-checked at
	// the store level; a debit that would go negative returns
	// ErrInsufficientGems without writing anything. Returns the balance
	// after the adjustment.
	AdjustGemBalance(ctx context.Context, userID string, delta int, txType TransactionType, description, referenceID string) (int, error)
}

// ChildStore defines owner-scoped access to child profiles.
type ChildStore interface {
	GetOwned(ctx context.Context, childID, userID string) (*Child, error)
	SetAvatar(ctx context.Context, childID, avatarURL string, generatedAt time.Time) error
}

// RhymeStore reads the rhyme catalog.
type RhymeStore interface {
	GetActive(ctx context.Context, id string) (*Rhyme, error)
}

// VideoStore defines persistence for video job records.
type VideoStore interface {
	GetByID(ctx context.Context, id string) (*Video, error)
	CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	MarkProcessing(ctx context.Context, videoID, taskUUID string) error
	MarkFailed(ctx context.Context, videoID string) error
}

// QueueStore defines access to the video job queue.
type QueueStore interface {
	// ListActive returns pending and claimed entries ordered by priority
	// descending then creation time ascending.
	ListActive(ctx context.Context) ([]VideoJob, error)
	GetByVideoID(ctx context.Context, videoID string) (*VideoJob, error)
	// ListDispatchable returns IDs of queued videos that have no provider
	// task handle yet, oldest first.
	ListDispatchable(ctx context.Context, limit int) ([]string, error)
}

// LedgerStore reads the gem transaction ledger.
type LedgerStore interface {
	CountSince(ctx context.Context, userID string, txType TransactionType, since time.Time) (int, error)
}

// ProgressStore appends progress log entries.
type ProgressStore interface {
	Append(ctx context.Context, event *ProgressEvent) error
}

// AnalyticsStore appends analytics events.
type AnalyticsStore interface {
	Insert(ctx context.Context, event *AnalyticsEvent) error
}

// AdmissionStore performs the atomic admission: insert the video record,
// append the debit ledger entry, apply the conditional balance decrement and
// insert the queue entry, all in one transaction. A debit that would go
// negative rolls everything back and returns ErrInsufficientGems. Returns
// the gem balance after the debit.
type AdmissionStore interface {
	AdmitVideo(ctx context.Context, video *Video, job *VideoJob, debit *GemTransaction) (int, error)
}
