// Package requests serves mentorship requests: mentees create and withdraw
// them, mentors accept or decline.
package requests

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/formutil"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

type acceptBody struct {
	MeetingURL string `json:"meeting_url"`
}

type declineBody struct {
	Reason string `json:"reason"`
}

// acceptResponse carries both sides of an accepted request.
type acceptResponse struct {
	Request models.MentorshipRequest `json:"request"`
	Session models.Session           `json:"session"`
}

// HandleCreate handles POST /requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	var in booking.RequestInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "create request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Svc.CreateRequest(ctx, me, in)
	if err != nil {
		respond.Fail(w, h.Log, "create request", err)
		return
	}
	respond.Created(w, req)
}

// ServeList handles GET /requests?role=&status=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	limit, err := formutil.Int(r, "limit", 0)
	if err != nil {
		respond.Fail(w, h.Log, "list requests", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Svc.ListRequests(ctx, me, formutil.String(r, "role"), formutil.String(r, "status"), limit)
	if err != nil {
		respond.Fail(w, h.Log, "list requests", err)
		return
	}
	respond.OK(w, map[string]any{"requests": rows})
}

// ServeRequest handles GET /requests/{id}.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "get request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Svc.GetRequest(ctx, me, id)
	if err != nil {
		respond.Fail(w, h.Log, "get request", err)
		return
	}
	respond.OK(w, req)
}

// HandleAccept handles POST /requests/{id}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "accept request", err)
		return
	}
	var body acceptBody
	if err := respond.DecodeOptional(r, &body); err != nil {
		respond.Fail(w, h.Log, "accept request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	req, sess, err := h.Svc.AcceptRequest(ctx, me, id, body.MeetingURL)
	if err != nil {
		respond.Fail(w, h.Log, "accept request", err)
		return
	}
	respond.OK(w, acceptResponse{Request: req, Session: sess})
}

// HandleDecline handles POST /requests/{id}/decline.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "decline request", err)
		return
	}
	var body declineBody
	if err := respond.DecodeOptional(r, &body); err != nil {
		respond.Fail(w, h.Log, "decline request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Svc.DeclineRequest(ctx, me, id, body.Reason)
	if err != nil {
		respond.Fail(w, h.Log, "decline request", err)
		return
	}
	respond.OK(w, req)
}

// HandleCancel handles POST /requests/{id}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "cancel request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Svc.CancelRequest(ctx, me, id)
	if err != nil {
		respond.Fail(w, h.Log, "cancel request", err)
		return
	}
	respond.OK(w, req)
}
