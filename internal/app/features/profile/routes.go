package profile

import (
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the caller's profile, mounted at /me.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeMe)
	r.Get("/timezones", h.ServeTimeZones)
	r.Patch("/", h.HandleUpdate)
	r.Post("/onboarding", h.HandleOnboarding)
	return r
}
