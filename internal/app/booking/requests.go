package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/vetmentor/internal/app/policy/bookingpolicy"
	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	requeststore "github.com/dalemusser/vetmentor/internal/app/store/requests"
	sessionstore "github.com/dalemusser/vetmentor/internal/app/store/sessions"
	"github.com/dalemusser/vetmentor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/app/system/requestid"
	"github.com/dalemusser/vetmentor/internal/app/system/timeslot"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RequestInput is a mentee's session request.
type RequestInput struct {
	MentorID      primitive.ObjectID `json:"mentor_id"`
	RequestedDate string             `json:"requested_date"`
	StartTime     string             `json:"start_time"`
	EndTime       string             `json:"end_time"`
	Subject       string             `json:"subject"`
	Message       string             `json:"message"`
}

// CreateRequest asks a mentor for a session. The date is read in the
// mentor's time zone and the time range must fit inside one of the mentor's
// slots for that weekday without colliding with anything already held.
func (s *Service) CreateRequest(ctx context.Context, me primitive.ObjectID, in RequestInput) (models.MentorshipRequest, error) {
	if in.MentorID == me {
		return models.MentorshipRequest{}, ErrSelfRequest
	}
	mentor, err := s.activeMentor(ctx, in.MentorID)
	if err != nil {
		return models.MentorshipRequest{}, err
	}
	subject := htmlsanitize.PlainText(in.Subject, htmlsanitize.MaxShort)
	if subject == "" {
		return models.MentorshipRequest{}, ErrSubjectRequired
	}
	r, err := timeslot.Parse(in.StartTime, in.EndTime)
	if err != nil {
		return models.MentorshipRequest{}, invalid(err)
	}

	loc := mentor.Loc()
	date := strings.TrimSpace(in.RequestedDate)
	startsAt, err := timeslot.At(date, r.Start, loc)
	if err != nil {
		return models.MentorshipRequest{}, invalid(err)
	}
	now := s.now()
	if date < timeslot.Today(now, loc) || !startsAt.After(now) {
		return models.MentorshipRequest{}, ErrDateInPast
	}

	day, err := timeslot.Weekday(date)
	if err != nil {
		return models.MentorshipRequest{}, invalid(err)
	}
	slots, err := s.slots.ListForUserDay(ctx, mentor.ID, day)
	if err != nil {
		return models.MentorshipRequest{}, err
	}
	if !timeslot.ContainedByAny(r, slotRanges(slots)) {
		return models.MentorshipRequest{}, ErrOutsideAvailable
	}
	if err := s.checkFree(ctx, mentor.ID, date, r); err != nil {
		return models.MentorshipRequest{}, err
	}

	if err := s.allowRequest(ctx, me); err != nil {
		return models.MentorshipRequest{}, err
	}

	var req models.MentorshipRequest
	err = s.holdDay(ctx, mentor.ID, date, func(ctx context.Context) error {
		if err := s.checkFree(ctx, mentor.ID, date, r); err != nil {
			return err
		}
		var err error
		req, err = s.requests.Create(ctx, models.MentorshipRequest{
			MenteeID:      me,
			MentorID:      mentor.ID,
			RequestedDate: date,
			StartTime:     r.StartClock(),
			EndTime:       r.EndClock(),
			Subject:       subject,
			Message:       htmlsanitize.PlainText(in.Message, htmlsanitize.MaxMedium),
			CreatedAt:     now,
		})
		return err
	})
	if err != nil {
		return models.MentorshipRequest{}, err
	}

	s.send(ctx, mentor.ID, models.NotifyRequestReceived, "New session request",
		"You have a new request for "+date+" "+r.String()+": "+subject, req.ID, requestLink(req.ID))
	s.auditBooking(ctx, audit.EventRequestCreated, me, req.ID, map[string]string{"mentor_id": mentor.ID.Hex()})
	metrics.RecordBookingEvent("request_created")
	return req, nil
}

// checkFree rejects r when it overlaps a request or session already holding
// the mentor's time on date.
func (s *Service) checkFree(ctx context.Context, mentorID primitive.ObjectID, date string, r timeslot.Range) error {
	busy, err := s.busyOn(ctx, mentorID, date)
	if err != nil {
		return err
	}
	if timeslot.OverlapsAny(r, busy) {
		return ErrSlotTaken
	}
	return nil
}

// checkNoSession rejects r when it overlaps one of the mentor's active
// sessions on date. Pending requests are ignored; the one being accepted is
// among them.
func (s *Service) checkNoSession(ctx context.Context, mentorID primitive.ObjectID, date string, r timeslot.Range) error {
	active, err := s.sessions.ActiveOn(ctx, mentorID, date)
	if err != nil {
		return err
	}
	for _, other := range active {
		or, err := timeslot.Parse(other.StartTime, other.EndTime)
		if err == nil && r.Overlaps(or) {
			return ErrSlotTaken
		}
	}
	return nil
}

// allowRequest applies the per-mentee throttle. A failing backend lets the
// request through.
func (s *Service) allowRequest(ctx context.Context, me primitive.ObjectID) error {
	if s.throttle == nil {
		return nil
	}
	ok, err := s.throttle.Allow(ctx, me.Hex())
	if err != nil {
		requestid.Logger(ctx, s.log).Warn("request throttle unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return ErrTooManyRequests
	}
	return nil
}

func (s *Service) loadRequest(ctx context.Context, id primitive.ObjectID) (models.MentorshipRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if errors.Is(err, requeststore.ErrNotFound) {
		return models.MentorshipRequest{}, ErrRequestNotFound
	}
	return req, err
}

// AcceptRequest turns a pending request into a scheduled session. The
// status change and the session insert share a transaction where the
// deployment supports one.
func (s *Service) AcceptRequest(ctx context.Context, me, id primitive.ObjectID, meetingURL string) (models.MentorshipRequest, models.Session, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, err
	}
	if !bookingpolicy.CanRespondToRequest(req, me) {
		return models.MentorshipRequest{}, models.Session{}, ErrNotRequestMentor
	}
	if req.Status != models.RequestPending {
		return models.MentorshipRequest{}, models.Session{}, ErrNotPending
	}
	meetingURL = strings.TrimSpace(meetingURL)
	if err := checkLink(meetingURL); err != nil {
		return models.MentorshipRequest{}, models.Session{}, err
	}

	mentor, err := s.activeMentor(ctx, req.MentorID)
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, err
	}
	r, err := timeslot.Parse(req.StartTime, req.EndTime)
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, invalid(err)
	}
	loc := mentor.Loc()
	startsAt, err := timeslot.At(req.RequestedDate, r.Start, loc)
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, invalid(err)
	}
	endsAt, err := timeslot.At(req.RequestedDate, r.End, loc)
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, invalid(err)
	}

	now := s.now()
	sessID := primitive.NewObjectID()
	var (
		accepted models.MentorshipRequest
		sess     models.Session
	)
	err = s.holdDay(ctx, req.MentorID, req.RequestedDate, func(ctx context.Context) error {
		if err := s.checkNoSession(ctx, req.MentorID, req.RequestedDate, r); err != nil {
			return err
		}
		var err error
		accepted, err = s.requests.Respond(ctx, req.ID, requeststore.Response{
			Status:    models.RequestAccepted,
			SessionID: &sessID,
			At:        now,
		})
		if err != nil {
			return err
		}
		sess, err = s.sessions.Create(ctx, models.Session{
			ID:         sessID,
			RequestID:  req.ID,
			MentorID:   req.MentorID,
			MenteeID:   req.MenteeID,
			Date:       req.RequestedDate,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			StartsAt:   startsAt.UTC(),
			EndsAt:     endsAt.UTC(),
			Subject:    req.Subject,
			MeetingURL: meetingURL,
			CreatedAt:  now,
		})
		return err
	})
	if errors.Is(err, requeststore.ErrStatusChanged) || errors.Is(err, sessionstore.ErrDuplicateRequest) {
		return models.MentorshipRequest{}, models.Session{}, ErrNotPending
	}
	if err != nil {
		return models.MentorshipRequest{}, models.Session{}, err
	}

	s.send(ctx, req.MenteeID, models.NotifyRequestAccepted, "Request accepted",
		"Your session \""+req.Subject+"\" on "+req.RequestedDate+" is confirmed.", sess.ID, sessionLink(sess.ID))
	s.auditBooking(ctx, audit.EventRequestAccepted, me, req.ID, map[string]string{"session_id": sess.ID.Hex()})
	metrics.RecordBookingEvent("request_accepted")
	return accepted, sess, nil
}

// DeclineRequest closes a pending request on the mentor's side.
func (s *Service) DeclineRequest(ctx context.Context, me, id primitive.ObjectID, reason string) (models.MentorshipRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return models.MentorshipRequest{}, err
	}
	if !bookingpolicy.CanRespondToRequest(req, me) {
		return models.MentorshipRequest{}, ErrNotRequestMentor
	}
	declined, err := s.closeRequest(ctx, req, requeststore.Response{
		Status:        models.RequestDeclined,
		DeclineReason: htmlsanitize.PlainText(reason, htmlsanitize.MaxShort),
		At:            s.now(),
	})
	if err != nil {
		return models.MentorshipRequest{}, err
	}

	msg := "Your request \"" + req.Subject + "\" was declined."
	if declined.DeclineReason != "" {
		msg += " Reason: " + declined.DeclineReason
	}
	s.send(ctx, req.MenteeID, models.NotifyRequestDeclined, "Request declined", msg, req.ID, requestLink(req.ID))
	s.auditBooking(ctx, audit.EventRequestDeclined, me, req.ID, nil)
	metrics.RecordBookingEvent("request_declined")
	return declined, nil
}

// CancelRequest withdraws a pending request on the mentee's side.
func (s *Service) CancelRequest(ctx context.Context, me, id primitive.ObjectID) (models.MentorshipRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return models.MentorshipRequest{}, err
	}
	if !bookingpolicy.CanCancelRequest(req, me) {
		return models.MentorshipRequest{}, ErrNotRequestMentee
	}
	cancelled, err := s.closeRequest(ctx, req, requeststore.Response{
		Status: models.RequestCancelled,
		At:     s.now(),
	})
	if err != nil {
		return models.MentorshipRequest{}, err
	}

	s.send(ctx, req.MentorID, models.NotifyRequestCancelled, "Request cancelled",
		"The request \""+req.Subject+"\" on "+req.RequestedDate+" was withdrawn.", req.ID, requestLink(req.ID))
	s.auditBooking(ctx, audit.EventRequestCancelled, me, req.ID, nil)
	metrics.RecordBookingEvent("request_cancelled")
	return cancelled, nil
}

func (s *Service) closeRequest(ctx context.Context, req models.MentorshipRequest, resp requeststore.Response) (models.MentorshipRequest, error) {
	if req.Status != models.RequestPending {
		return models.MentorshipRequest{}, ErrNotPending
	}
	out, err := s.requests.Respond(ctx, req.ID, resp)
	if errors.Is(err, requeststore.ErrStatusChanged) {
		return models.MentorshipRequest{}, ErrNotPending
	}
	return out, err
}

// GetRequest returns a request to one of its participants.
func (s *Service) GetRequest(ctx context.Context, me, id primitive.ObjectID) (models.MentorshipRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return models.MentorshipRequest{}, err
	}
	if !bookingpolicy.CanViewRequest(req, me) {
		return models.MentorshipRequest{}, ErrNotRequestParty
	}
	return req, nil
}

// Request list roles.
const (
	AsMentor = "mentor"
	AsMentee = "mentee"
)

// ListRequests returns the caller's incoming (AsMentor) or outgoing
// (AsMentee) requests, newest first. An empty status lists all.
func (s *Service) ListRequests(ctx context.Context, me primitive.ObjectID, role, status string, limit int) ([]models.MentorshipRequest, error) {
	st := models.RequestStatus(status)
	if st != "" && !st.IsValid() {
		return nil, ErrInvalidStatus
	}
	n := clampLimit(limit, 50, 200)

	var (
		rows []models.MentorshipRequest
		err  error
	)
	switch role {
	case AsMentor:
		rows, err = s.requests.ListForMentor(ctx, me, st, n)
	case AsMentee, "":
		rows, err = s.requests.ListForMentee(ctx, me, st, n)
	default:
		return nil, ErrInvalidRole
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.MentorshipRequest{}
	}
	if err := s.withRequestCounterparts(ctx, me, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
