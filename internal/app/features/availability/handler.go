// Package availability lets mentors manage their weekly slots.
package availability

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/formutil"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the caller's availability.
type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

// NewHandler constructs an availability Handler.
func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeList handles GET /availability?day=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	day, err := formutil.Int(r, "day", -1)
	if err != nil {
		respond.Fail(w, h.Log, "list availability", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slots, err := h.Svc.ListSlots(ctx, me, day)
	if err != nil {
		respond.Fail(w, h.Log, "list availability", err)
		return
	}
	respond.OK(w, map[string]any{"slots": slots})
}

// HandleCreate handles POST /availability.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	var in booking.SlotInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "create slot", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	slot, err := h.Svc.CreateSlot(ctx, me, in)
	if err != nil {
		respond.Fail(w, h.Log, "create slot", err)
		return
	}
	respond.Created(w, slot)
}

// HandleUpdate handles PUT /availability/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "update slot", err)
		return
	}
	var in booking.SlotInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "update slot", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	slot, err := h.Svc.UpdateSlot(ctx, me, id, in)
	if err != nil {
		respond.Fail(w, h.Log, "update slot", err)
		return
	}
	respond.OK(w, slot)
}

// HandleDelete handles DELETE /availability/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "delete slot", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.DeleteSlot(ctx, me, id); err != nil {
		respond.Fail(w, h.Log, "delete slot", err)
		return
	}
	respond.NoContent(w)
}
