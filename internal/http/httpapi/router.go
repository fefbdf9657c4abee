package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"rhymelab/internal/http/handlers"
	"rhymelab/internal/middleware"
)

// NewRouter wires the HTTP surface: health, avatar processing, video
// queueing and video dispatch.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, chimw.Logger)
	r.Use(middleware.CORS())

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/avatars/process", app.ProcessAvatar)
		r.Post("/videos/queue", app.QueueVideo)
		r.Post("/videos/process", app.ProcessVideo)
	})

	return r
}
