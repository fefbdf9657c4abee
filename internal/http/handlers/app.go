package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"rhymelab/internal/domain"
	"rhymelab/internal/gate"
	"rhymelab/internal/infra"
	"rhymelab/internal/lifecycle"
	"rhymelab/internal/providers/avatar"
	"rhymelab/internal/sink"
)

// AvatarGenerator runs the avatar pipeline. Satisfied by avatar.Generator.
type AvatarGenerator interface {
	Generate(ctx context.Context, req avatar.Request) (*avatar.Result, error)
}

// App bundles the collaborators the HTTP handlers need.
type App struct {
	Logger   infra.Logger
	Gate     *gate.Gate
	Avatars  AvatarGenerator
	Manager  *lifecycle.Manager
	Users    domain.UserStore
	Children domain.ChildStore
	Sink     *sink.Sink
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) failure(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "error": message})
}

// domainFailure renders an eligibility or admission error. Every domain
// failure on the admit paths is a 400 with the error message as the body.
func (a *App) domainFailure(w http.ResponseWriter, err error) {
	a.failure(w, http.StatusBadRequest, err.Error())
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"status": "ok"})
}
