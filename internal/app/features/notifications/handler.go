// Package notifications serves the caller's in-app notification feed.
package notifications

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

type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeList handles GET /notifications?unread=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	limit, err := formutil.Int(r, "limit", 0)
	if err != nil {
		respond.Fail(w, h.Log, "list notifications", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Svc.ListNotifications(ctx, me, formutil.Bool(r, "unread"), limit)
	if err != nil {
		respond.Fail(w, h.Log, "list notifications", err)
		return
	}
	respond.OK(w, map[string]any{"notifications": rows})
}

// ServeUnreadCount handles GET /notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Svc.UnreadCount(ctx, me)
	if err != nil {
		respond.Fail(w, h.Log, "count notifications", err)
		return
	}
	respond.OK(w, map[string]int64{"count": n})
}

// HandleMarkRead handles POST /notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "mark notification read", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.MarkRead(ctx, me, id); err != nil {
		respond.Fail(w, h.Log, "mark notification read", err)
		return
	}
	respond.NoContent(w)
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Svc.MarkAllRead(ctx, me)
	if err != nil {
		respond.Fail(w, h.Log, "mark all notifications read", err)
		return
	}
	respond.OK(w, map[string]int64{"updated": n})
}

// HandleDelete handles DELETE /notifications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "delete notification", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.DeleteNotification(ctx, me, id); err != nil {
		respond.Fail(w, h.Log, "delete notification", err)
		return
	}
	respond.NoContent(w)
}
