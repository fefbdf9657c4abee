package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"rhymelab/internal/domain"
	"rhymelab/internal/gate"
)

type queueVideoRequest struct {
	UserID    string `json:"user_id"`
	ChildID   string `json:"child_id"`
	RhymeID   string `json:"rhyme_id"`
	AvatarURL string `json:"avatar_url"`
}

// QueueVideo admits a video job: eligibility, atomic debit-and-enqueue, then
// an asynchronous dispatch trigger. The trigger is fire-and-forget; the
// dispatch worker retries any video left without a task handle.
func (a *App) QueueVideo(w http.ResponseWriter, r *http.Request) {
	var req queueVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.ChildID == "" || req.RhymeID == "" {
		a.failure(w, http.StatusBadRequest, "missing required fields: user_id, child_id, rhyme_id")
		return
	}

	ctx := r.Context()

	clearance, err := a.Gate.CheckVideo(ctx, gate.VideoRequest{
		UserID:  req.UserID,
		ChildID: req.ChildID,
		RhymeID: req.RhymeID,
	})
	if err != nil {
		a.domainFailure(w, err)
		return
	}

	admission, err := a.Manager.Admit(ctx, clearance.User, clearance.Child, clearance.Rhyme)
	if err != nil {
		a.domainFailure(w, err)
		return
	}

	avatarURL := req.AvatarURL
	if avatarURL == "" {
		avatarURL = clearance.Child.AvatarURL
	}
	priority := "normal"
	if clearance.Rhyme.IsPremium {
		priority = "high"
	}
	go a.triggerDispatch(admission.Video.ID, avatarURL, priority)

	a.Sink.Event(ctx, req.UserID, "video_queued", map[string]any{
		"child_id":    req.ChildID,
		"rhyme_id":    req.RhymeID,
		"rhyme_title": clearance.Rhyme.Title,
		"video_id":    admission.Video.ID,
		"gem_cost":    clearance.Rhyme.GemCost,
		"is_premium":  clearance.Rhyme.IsPremium,
	})

	a.json(w, http.StatusOK, map[string]any{
		"success":              true,
		"video_id":             admission.Video.ID,
		"estimated_completion": admission.Video.EstimatedCompletion,
		"gems_remaining":       admission.GemsRemaining,
		"queue_position":       admission.QueuePosition,
		"message":              "Video creation started! You will be notified when ready.",
	})
}

// triggerDispatch attempts an immediate dispatch so queueing latency does not
// include provider latency. Its failure is tolerated; the worker retries.
func (a *App) triggerDispatch(videoID, avatarURL, priority string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := a.Manager.Dispatch(ctx, videoID, avatarURL, priority); err != nil {
		a.Logger.Warn().Err(err).Str("video_id", videoID).Msg("dispatch trigger failed, worker will retry")
	}
}

type processVideoRequest struct {
	VideoID   string `json:"video_id"`
	AvatarURL string `json:"avatar_url"`
	Priority  string `json:"priority"`
}

// ProcessVideo dispatches an admitted video to the render provider. Safe to
// retry: an already dispatched video returns its stored task handle.
func (a *App) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	var req processVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.VideoID == "" {
		a.failure(w, http.StatusBadRequest, "missing video_id")
		return
	}

	taskUUID, err := a.Manager.Dispatch(r.Context(), req.VideoID, req.AvatarURL, req.Priority)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		a.failure(w, http.StatusNotFound, "video not found")
		return
	case errors.Is(err, domain.ErrConfiguration):
		a.failure(w, http.StatusInternalServerError, err.Error())
		return
	case errors.Is(err, domain.ErrProviderFailure):
		a.failure(w, http.StatusBadGateway, "Runware task creation failed")
		return
	default:
		a.Logger.Error().Err(err).Str("video_id", req.VideoID).Msg("dispatch failed")
		a.failure(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":           true,
		"video_id":          req.VideoID,
		"runware_task_uuid": taskUUID,
	})
}
