package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rhymelab/internal/domain"
	"rhymelab/internal/gate"
	"rhymelab/internal/providers/avatar"
)

type avatarRequest struct {
	UserID      string `json:"user_id"`
	ChildID     string `json:"child_id"`
	PhotoBase64 string `json:"photo_base64"`
	Prompt      string `json:"prompt"`
}

// ProcessAvatar runs the whole avatar flow: eligibility, generation, durable
// persist, debit, child update and bookkeeping.
func (a *App) ProcessAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.ChildID == "" || req.PhotoBase64 == "" {
		a.failure(w, http.StatusBadRequest, "missing required fields: user_id, child_id, photo_base64")
		return
	}

	ctx := r.Context()

	clearance, err := a.Gate.CheckAvatar(ctx, gate.AvatarRequest{
		UserID:      req.UserID,
		ChildID:     req.ChildID,
		PhotoBase64: req.PhotoBase64,
	})
	if err != nil {
		a.domainFailure(w, err)
		return
	}

	result, err := a.Avatars.Generate(ctx, avatar.Request{
		UserID:      req.UserID,
		ChildID:     req.ChildID,
		PhotoBase64: req.PhotoBase64,
		Prompt:      req.Prompt,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("avatar generation failed")
		a.domainFailure(w, err)
		return
	}

	// The generation already happened, so a debit racing another spend is
	// the one failure that still aborts here: no free avatars.
	remaining, err := a.Users.AdjustGemBalance(ctx, req.UserID, -gate.AvatarCost, domain.TransactionAvatar,
		"Avatar generation for "+clearance.Child.Name, req.ChildID)
	if err != nil {
		a.domainFailure(w, err)
		return
	}

	if err := a.Children.SetAvatar(ctx, req.ChildID, result.URL, time.Now()); err != nil {
		a.Logger.Warn().Err(err).Str("child_id", req.ChildID).Msg("child avatar update failed")
	}

	a.Sink.Event(ctx, req.UserID, "avatar_generated", map[string]any{
		"child_id":        req.ChildID,
		"child_name":      clearance.Child.Name,
		"generation_cost": gate.AvatarCost,
		"stored":          result.Stored,
	})

	a.json(w, http.StatusOK, map[string]any{
		"success":        true,
		"avatar_url":     result.URL,
		"gems_remaining": remaining,
		"message":        "Avatar generated successfully!",
	})
}
