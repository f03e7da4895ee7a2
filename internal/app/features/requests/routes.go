package requests

import (
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /requests.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeRequest)
	r.Post("/{id}/accept", h.HandleAccept)
	r.Post("/{id}/decline", h.HandleDecline)
	r.Post("/{id}/cancel", h.HandleCancel)
	return r
}
