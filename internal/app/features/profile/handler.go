// Package profile serves the caller's own account: onboarding and profile
// edits.
package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"github.com/dalemusser/vetmentor/internal/app/system/timezones"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler owns all user profile handlers.
type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

// NewHandler constructs a Handler bound to the booking service and logger.
func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.Me(ctx, me)
	if err != nil {
		respond.Fail(w, h.Log, "load profile", err)
		return
	}
	respond.OK(w, u)
}

// ServeTimeZones handles GET /me/timezones: the zones offered by the profile
// picker, grouped by region, plus each zone's current UTC offset.
func (h *Handler) ServeTimeZones(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, map[string]any{
		"groups":  timezones.Groups(),
		"offsets": timezones.WithOffsets(time.Now()),
	})
}

// HandleOnboarding handles POST /me/onboarding.
func (h *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "complete profile", h.Svc.CompleteProfile)
}

// HandleUpdate handles PATCH /me.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "update profile", h.Svc.UpdateProfile)
}

type saveFunc func(context.Context, primitive.ObjectID, booking.ProfileInput) (models.User, error)

func (h *Handler) save(w http.ResponseWriter, r *http.Request, op string, fn saveFunc) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	var in booking.ProfileInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, op, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := fn(ctx, me, in)
	if err != nil {
		respond.Fail(w, h.Log, op, err)
		return
	}
	respond.OK(w, u)
}
