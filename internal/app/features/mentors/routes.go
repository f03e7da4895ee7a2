package mentors

import (
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the mentor directory, mounted at /mentors.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeSearch)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeMentor)
		r.Get("/slots", h.ServeSlots)
		r.Get("/windows", h.ServeWindows)
		r.Get("/reviews", h.ServeReviews)
		r.Get("/reviews/summary", h.ServeReviewSummary)
	})
	return r
}
