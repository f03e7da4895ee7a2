// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Svc: svc,
		Log: logger,
	}
}

// ServeDashboard returns the caller's activity summary. The mentor and
// mentee sections appear only for the roles the caller holds.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sum, err := h.Svc.Dashboard(ctx, me)
	if err != nil {
		respond.Fail(w, h.Log, "dashboard", err)
		return
	}
	respond.OK(w, sum)
}
