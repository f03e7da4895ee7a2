package availability

import (
	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the caller's slots, mounted at /availability.
// Publishing and moving slots needs the mentor role; deleting only ownership.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Delete("/{id}", h.HandleDelete)
	r.Group(func(r chi.Router) {
		r.Use(authz.RequireMentor(booking.ErrMentorsOnly.Msg))
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
	})
	return r
}
