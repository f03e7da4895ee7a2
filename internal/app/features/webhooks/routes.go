package webhooks

import (
	"github.com/dalemusser/vetmentor/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for webhook endpoints, throttled per client IP
// when t is non-nil.
func Routes(h *Handler, t ratelimit.Throttle) chi.Router {
	r := chi.NewRouter()
	if t != nil {
		r.Use(ratelimit.ByIP(t, "webhook"))
	}
	r.Post("/identity", h.ServeIdentity)
	return r
}
