package domain

import "time"

// VideoStatus enumerates video lifecycle states.
type VideoStatus string

const (
	VideoStatusQueued     VideoStatus = "queued"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// Stage labels recorded on videos and progress events.
const (
	StageInitializing = "initializing"
	StageStarting     = "starting"
	StageError        = "error"
)

// Video is the job record for one rhyme rendering. It is created at
// admission time in state queued and moves to processing once the render
// task has been accepted by the provider. RunwareTaskUUID stays empty until
// dispatch succeeds.
type Video struct {
	ID                  string
	UserID              string
	ChildID             string
	RhymeID             string
	Status              VideoStatus
	CurrentStage        string
	ProgressPercentage  int
	RunwareModel        string
	RunwareTaskUUID     string
	EstimatedCompletion time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Dispatched reports whether the video already holds a provider task handle.
func (v Video) Dispatched() bool {
	return v.RunwareTaskUUID != ""
}

// ProgressEvent is one append-only progress log entry for a video.
type ProgressEvent struct {
	ID                 string
	VideoID            string
	Stage              string
	ProgressPercentage int
	Message            string
	CreatedAt          time.Time
}
