package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/vetmentor/internal/app/policy/bookingpolicy"
	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	sessionstore "github.com/dalemusser/vetmentor/internal/app/store/sessions"
	"github.com/dalemusser/vetmentor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Service) participantSession(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	if !bookingpolicy.CanAccessSession(sess, me) {
		return models.Session{}, ErrNotParticipant
	}
	return sess, nil
}

// sessionChange describes one status transition.
type sessionChange struct {
	to     models.SessionStatus
	verb   string // used in "Session cannot be <verb> from status <status>"
	event  string // audit event
	notify string // notification type for the other participant
	title  string
	body   string
	extra  func(me primitive.ObjectID, sess models.Session) bson.M
	check  func(sess models.Session) error
}

func (s *Service) transition(ctx context.Context, me, id primitive.ObjectID, c sessionChange) (models.Session, error) {
	sess, err := s.participantSession(ctx, me, id)
	if err != nil {
		return models.Session{}, err
	}
	if !sess.Status.CanTransition(c.to) {
		return models.Session{}, transitionErr(c.verb, sess.Status)
	}
	if c.check != nil {
		if err := c.check(sess); err != nil {
			return models.Session{}, err
		}
	}
	var extra bson.M
	if c.extra != nil {
		extra = c.extra(me, sess)
	}

	out, err := s.sessions.Transition(ctx, id, []models.SessionStatus{sess.Status}, c.to, extra, s.now())
	if errors.Is(err, sessionstore.ErrStatusChanged) {
		cur, gerr := s.sessions.GetByID(ctx, id)
		if gerr != nil {
			return models.Session{}, gerr
		}
		return models.Session{}, transitionErr(c.verb, cur.Status)
	}
	if err != nil {
		return models.Session{}, err
	}

	body := strings.ReplaceAll(c.body, "{subject}", out.Subject)
	s.send(ctx, out.OtherParticipant(me), c.notify, c.title, body, out.ID, sessionLink(out.ID))
	s.auditBooking(ctx, c.event, me, out.ID, map[string]string{"from": string(sess.Status), "to": string(c.to)})
	metrics.RecordBookingEvent("session_" + string(c.to))
	return out, nil
}

// StartSession moves a scheduled session to in progress. Sessions may be
// started before their scheduled time.
func (s *Service) StartSession(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
	return s.transition(ctx, me, id, sessionChange{
		to:     models.SessionInProgress,
		verb:   "started",
		event:  audit.EventSessionStarted,
		notify: models.NotifySessionStarted,
		title:  "Session started",
		body:   "Your session \"{subject}\" has started.",
		extra: func(_ primitive.ObjectID, _ models.Session) bson.M {
			return bson.M{"started_at": s.now()}
		},
	})
}

// CompleteSession closes an in-progress session.
func (s *Service) CompleteSession(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
	return s.transition(ctx, me, id, sessionChange{
		to:     models.SessionCompleted,
		verb:   "completed",
		event:  audit.EventSessionCompleted,
		notify: models.NotifySessionCompleted,
		title:  "Session completed",
		body:   "Your session \"{subject}\" is complete. You can now leave a review.",
		extra: func(_ primitive.ObjectID, _ models.Session) bson.M {
			return bson.M{"completed_at": s.now()}
		},
	})
}

// CancelSession cancels a scheduled session.
func (s *Service) CancelSession(ctx context.Context, me, id primitive.ObjectID, reason string) (models.Session, error) {
	reason = htmlsanitize.PlainText(reason, htmlsanitize.MaxShort)
	body := "Your session \"{subject}\" was cancelled."
	if reason != "" {
		body += " Reason: " + reason
	}
	return s.transition(ctx, me, id, sessionChange{
		to:     models.SessionCancelled,
		verb:   "cancelled",
		event:  audit.EventSessionCancelled,
		notify: models.NotifySessionCancelled,
		title:  "Session cancelled",
		body:   body,
		extra: func(me primitive.ObjectID, _ models.Session) bson.M {
			set := bson.M{"cancelled_at": s.now(), "cancelled_by": me}
			if reason != "" {
				set["cancel_reason"] = reason
			}
			return set
		},
	})
}

// MarkNoShow records that the other participant did not attend. It is only
// allowed once the session's start time has passed.
func (s *Service) MarkNoShow(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
	return s.transition(ctx, me, id, sessionChange{
		to:     models.SessionNoShow,
		verb:   "marked as no-show",
		event:  audit.EventSessionNoShow,
		notify: models.NotifySessionNoShow,
		title:  "Session marked as no-show",
		body:   "Your session \"{subject}\" was marked as a no-show.",
		check: func(sess models.Session) error {
			if s.now().Before(sess.StartsAt) {
				return ErrNoShowTooEarly
			}
			return nil
		},
		extra: func(me primitive.ObjectID, _ models.Session) bson.M {
			return bson.M{"no_show_reported_by": me}
		},
	})
}

// SessionDetails are the participant-editable session fields. Nil fields are
// left unchanged.
type SessionDetails struct {
	Notes      *string `json:"notes"`
	MeetingURL *string `json:"meeting_url"`
}

// UpdateSessionNotes changes a session's notes or meeting link.
func (s *Service) UpdateSessionNotes(ctx context.Context, me, id primitive.ObjectID, in SessionDetails) (models.Session, error) {
	if _, err := s.participantSession(ctx, me, id); err != nil {
		return models.Session{}, err
	}
	var notes, link *string
	if in.Notes != nil {
		n := htmlsanitize.PlainText(*in.Notes, htmlsanitize.MaxLong)
		notes = &n
	}
	if in.MeetingURL != nil {
		l := strings.TrimSpace(*in.MeetingURL)
		if err := checkLink(l); err != nil {
			return models.Session{}, err
		}
		link = &l
	}
	sess, err := s.sessions.UpdateDetails(ctx, id, notes, link, s.now())
	if errors.Is(err, sessionstore.ErrNotFound) {
		return models.Session{}, ErrSessionNotFound
	}
	return sess, err
}

// GetSession returns a session to one of its participants.
func (s *Service) GetSession(ctx context.Context, me, id primitive.ObjectID) (models.Session, error) {
	return s.participantSession(ctx, me, id)
}

// SessionQuery narrows ListSessions.
type SessionQuery struct {
	Role     string // "mentor", "mentee" or "" for either
	Status   string
	Upcoming bool
	Limit    int
}

// ListSessions returns the caller's sessions.
func (s *Service) ListSessions(ctx context.Context, me primitive.ObjectID, q SessionQuery) ([]models.Session, error) {
	role := sessionstore.RoleAny
	switch q.Role {
	case "", sessionstore.RoleAny:
	case AsMentor:
		role = sessionstore.RoleMentor
	case AsMentee:
		role = sessionstore.RoleMentee
	default:
		return nil, ErrInvalidRole
	}
	st := models.SessionStatus(q.Status)
	if st != "" && !st.IsValid() {
		return nil, ErrInvalidStatus
	}
	rows, err := s.sessions.ListForUser(ctx, sessionstore.ListFilter{
		UserID:   me,
		Role:     role,
		Status:   st,
		Upcoming: q.Upcoming,
		Now:      s.now(),
		Limit:    clampLimit(q.Limit, 50, 200),
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Session{}
	}
	if err := s.withSessionCounterparts(ctx, me, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
