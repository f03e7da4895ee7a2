// Package reviews lets session participants rate each other and lets the
// person reviewed reply to or report a review.
package reviews

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

// HandleCreate handles POST /reviews.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	var in booking.ReviewInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "create review", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rev, err := h.Svc.CreateReview(ctx, me, in)
	if err != nil {
		respond.Fail(w, h.Log, "create review", err)
		return
	}
	respond.Created(w, rev)
}

// HandleUpdate handles PATCH /reviews/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in booking.ReviewEdit
	if err := respond.Decode(r, &in); err != nil {
		respond.Fail(w, h.Log, "update review", err)
		return
	}
	h.act(w, r, "update review", func(ctx context.Context, me, id primitive.ObjectID) (models.Review, error) {
		return h.Svc.UpdateReview(ctx, me, id, in)
	})
}

// HandleDelete handles DELETE /reviews/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "delete review", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.DeleteReview(ctx, me, id); err != nil {
		respond.Fail(w, h.Log, "delete review", err)
		return
	}
	respond.NoContent(w)
}

type textBody struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// HandleRespond handles POST /reviews/{id}/response.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := respond.Decode(r, &body); err != nil {
		respond.Fail(w, h.Log, "respond to review", err)
		return
	}
	h.act(w, r, "respond to review", func(ctx context.Context, me, id primitive.ObjectID) (models.Review, error) {
		return h.Svc.RespondToReview(ctx, me, id, body.Text)
	})
}

// HandleReport handles POST /reviews/{id}/report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := respond.Decode(r, &body); err != nil {
		respond.Fail(w, h.Log, "report review", err)
		return
	}
	h.act(w, r, "report review", func(ctx context.Context, me, id primitive.ObjectID) (models.Review, error) {
		return h.Svc.ReportReview(ctx, me, id, body.Reason)
	})
}

type reviewFunc func(ctx context.Context, me, id primitive.ObjectID) (models.Review, error)

func (h *Handler) act(w http.ResponseWriter, r *http.Request, op string, fn reviewFunc) {
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

	rev, err := fn(ctx, me, id)
	if err != nil {
		respond.Fail(w, h.Log, op, err)
		return
	}
	respond.OK(w, rev)
}
