package domain

import "time"

// VideoJobStatus enumerates queue entry states. Claiming and completion are
// driven by the dispatch worker and the provider callback respectively.
type VideoJobStatus string

const (
	VideoJobStatusPending VideoJobStatus = "pending"
	VideoJobStatusClaimed VideoJobStatus = "claimed"
	VideoJobStatusDone    VideoJobStatus = "done"
)

// Queue priorities. Premium rhymes jump ahead of standard ones.
const (
	PriorityStandard = 1
	PriorityPremium  = 2
)

// VideoJob is the queue entry paired one-to-one with a queued video. It
// exists to order dispatch and to compute queue positions.
type VideoJob struct {
	ID          string
	VideoID     string
	Priority    int
	Status      VideoJobStatus
	ScheduledAt time.Time
	CreatedAt   time.Time
}

// Ahead reports whether j is dispatched before other: higher priority wins,
// and within equal priority the earlier creation wins.
func (j VideoJob) Ahead(other VideoJob) bool {
	if j.Priority != other.Priority {
		return j.Priority > other.Priority
	}
	return j.CreatedAt.Before(other.CreatedAt)
}
