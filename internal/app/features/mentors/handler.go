// Package mentors serves mentor discovery: search, public profiles, weekly
// availability, open booking windows and received reviews.
package mentors

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/system/authz"
	"github.com/dalemusser/vetmentor/internal/app/system/formutil"
	"github.com/dalemusser/vetmentor/internal/app/system/paging"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the mentor directory.
type Handler struct {
	Svc *booking.Service
	Log *zap.Logger
}

// NewHandler constructs a mentors Handler.
func NewHandler(svc *booking.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeSearch handles GET /mentors.
//
// Query: q, branch, industry, expertise, day (0=Sunday..6), before, after,
// limit.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.Caller(w, r)
	if !ok {
		return
	}
	day, err := formutil.Int(r, "day", -1)
	if err != nil {
		respond.Fail(w, h.Log, "search mentors", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Svc.SearchMentors(ctx, me, booking.MentorSearch{
		Query:     formutil.String(r, "q"),
		Branch:    formutil.String(r, "branch"),
		Industry:  formutil.String(r, "industry"),
		Expertise: formutil.String(r, "expertise"),
		DayOfWeek: day,
		Page:      paging.FromRequest(r),
	})
	if err != nil {
		respond.Fail(w, h.Log, "search mentors", err)
		return
	}
	respond.OK(w, page)
}

// ServeMentor handles GET /mentors/{id}.
func (h *Handler) ServeMentor(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "get mentor", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		respond.Fail(w, h.Log, "get mentor", err)
		return
	}
	if !u.IsMentor {
		respond.Fail(w, h.Log, "get mentor", booking.ErrMentorNotFound)
		return
	}
	respond.OK(w, u)
}

// ServeSlots handles GET /mentors/{id}/slots?day=.
func (h *Handler) ServeSlots(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "list slots", err)
		return
	}
	day, err := formutil.Int(r, "day", -1)
	if err != nil {
		respond.Fail(w, h.Log, "list slots", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slots, err := h.Svc.ListSlots(ctx, id, day)
	if err != nil {
		respond.Fail(w, h.Log, "list slots", err)
		return
	}
	respond.OK(w, map[string]any{"slots": slots})
}

// ServeWindows handles GET /mentors/{id}/windows?date=YYYY-MM-DD.
func (h *Handler) ServeWindows(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "open windows", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	windows, err := h.Svc.WindowsForDate(ctx, id, formutil.String(r, "date"))
	if err != nil {
		respond.Fail(w, h.Log, "open windows", err)
		return
	}
	respond.OK(w, map[string]any{"windows": windows})
}

// ServeReviews handles GET /mentors/{id}/reviews?limit=.
func (h *Handler) ServeReviews(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "list reviews", err)
		return
	}
	limit, err := formutil.Int(r, "limit", 0)
	if err != nil {
		respond.Fail(w, h.Log, "list reviews", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reviews, err := h.Svc.ListReviews(ctx, id, limit)
	if err != nil {
		respond.Fail(w, h.Log, "list reviews", err)
		return
	}
	respond.OK(w, map[string]any{"reviews": reviews})
}

// ServeReviewSummary handles GET /mentors/{id}/reviews/summary.
func (h *Handler) ServeReviewSummary(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		respond.Fail(w, h.Log, "review summary", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sum, err := h.Svc.ReviewSummary(ctx, id)
	if err != nil {
		respond.Fail(w, h.Log, "review summary", err)
		return
	}
	respond.OK(w, sum)
}
