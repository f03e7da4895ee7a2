package health

import "github.com/go-chi/chi/v5"

// Routes serves the liveness check at the mount root. HEAD is accepted for
// load balancers that check without a body.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
