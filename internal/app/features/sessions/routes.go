package sessions

import (
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /sessions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeSession)
		r.Patch("/", h.HandleUpdate)
		r.Post("/start", h.HandleStart)
		r.Post("/complete", h.HandleComplete)
		r.Post("/cancel", h.HandleCancel)
		r.Post("/no-show", h.HandleNoShow)
	})
	return r
}
