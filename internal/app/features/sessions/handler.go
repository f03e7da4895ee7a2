// Package sessions serves booked sessions and their status changes.
package sessions

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/formutil"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeList handles GET /sessions?role=&status=&upcoming=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	limit, err := formutil.Int(r, "limit", 0)
	if err != nil {
		respond.Fail(w, h.Log, "list sessions", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Svc.ListSessions(ctx, me, booking.SessionQuery{
		Role:     formutil.String(r, "role"),
		Status:   formutil.String(r, "status"),
		Upcoming: formutil.Bool(r, "upcoming"),
		Limit:    limit,
	})
	if err != nil {
		respond.Fail(w, h.Log, "list sessions", err)
		return
	}
	respond.OK(w, map[string]any{"sessions": rows})
}

// ServeSession handles GET /sessions/{id}.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "get session", h.Svc.GetSession)
}

// HandleUpdate handles PATCH /sessions/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in booking.SessionDetails
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "update session", err)
		return
	}
	h.act(w, r, "update session", func(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
		return h.Svc.UpdateSessionNotes(ctx, me, id, in)
	})
}

// HandleStart handles POST /sessions/{id}/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "start session", h.Svc.StartSession)
}

// HandleComplete handles POST /sessions/{id}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "complete session", h.Svc.CompleteSession)
}

// HandleCancel handles POST /sessions/{id}/cancel with an optional reason.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := respond.DecodeOptional(r, &body); err != nil {
		respond.Fail(w, h.Log, "cancel session", err)
		return
	}
	h.act(w, r, "cancel session", func(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
		return h.Svc.CancelSession(ctx, me, id, body.Reason)
	})
}

// HandleNoShow handles POST /sessions/{id}/no-show.
func (h *Handler) HandleNoShow(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "mark no-show", h.Svc.MarkNoShow)
}

type sessionFunc func(ctx context.Context, me, id primitive.ObjectID) (models.Session, error)

// act runs fn for the caller against the session named in the path.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, op string, fn sessionFunc) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, op, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sess, err := fn(ctx, me, id)
	if err != nil {
		respond.Fail(w, h.Log, op, err)
		return
	}
	respond.OK(w, sess)
}
