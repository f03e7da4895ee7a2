package booking

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/domain/models"
)

// Error is a failure the caller can act on. Msg is shown to the user as is
// and Status is the HTTP status handlers reply with.
type Error struct {
	Status int
	Msg    string
	kind   *Error
}

func (e *Error) Error() string { return e.Msg }

// HTTPStatus implements respond.StatusError.
func (e *Error) HTTPStatus() int { return e.Status }

// Is matches e against a sentinel or against the family it was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.kind != nil && e.kind == t)
}

func newErr(status int, msg string) *Error {
	return &Error{Status: status, Msg: msg}
}

// Not found.
var (
	ErrUserNotFound         = newErr(http.StatusNotFound, "User not found")
	ErrMentorNotFound       = newErr(http.StatusNotFound, "Mentor not found")
	ErrSlotNotFound         = newErr(http.StatusNotFound, "Availability slot not found")
	ErrRequestNotFound      = newErr(http.StatusNotFound, "Request not found")
	ErrSessionNotFound      = newErr(http.StatusNotFound, "Session not found")
	ErrReviewNotFound       = newErr(http.StatusNotFound, "Review not found")
	ErrNotificationNotFound = newErr(http.StatusNotFound, "Notification not found")
)

// Validation.
var (
	ErrInvalid            = newErr(http.StatusBadRequest, "Invalid input")
	ErrSelectRole         = newErr(http.StatusBadRequest, "Select at least one role")
	ErrInvalidTimeZone    = newErr(http.StatusBadRequest, "Time zone must be a valid IANA name")
	ErrInvalidMilitary    = newErr(http.StatusBadRequest, "Military status must be one of active, veteran, reserve, guard, retired")
	ErrInvalidYears       = newErr(http.StatusBadRequest, "Years of service must be between 0 and 60")
	ErrInvalidURL         = newErr(http.StatusBadRequest, "Links must be http or https URLs")
	ErrSlotTooShort       = newErr(http.StatusBadRequest, "Time slot must be at least 1 hour")
	ErrSelfRequest        = newErr(http.StatusBadRequest, "You cannot request a session with yourself")
	ErrSubjectRequired    = newErr(http.StatusBadRequest, "Subject is required")
	ErrDateInPast         = newErr(http.StatusBadRequest, "Requested date is in the past")
	ErrOutsideAvailable   = newErr(http.StatusBadRequest, "Requested time is outside the mentor's availability")
	ErrInvalidStatus      = newErr(http.StatusBadRequest, "Unknown status filter")
	ErrInvalidRole        = newErr(http.StatusBadRequest, "Role must be mentor or mentee")
	ErrInvalidRating      = newErr(http.StatusBadRequest, "Rating must be between 1 and 5")
	ErrInvalidSubRating   = newErr(http.StatusBadRequest, "Sub-ratings must be between 1 and 5")
	ErrResponseRequired   = newErr(http.StatusBadRequest, "Response text is required")
	ErrReportReasonNeeded = newErr(http.StatusBadRequest, "A reason is required to report a review")
)

// Forbidden.
var (
	ErrMentorsOnly      = newErr(http.StatusForbidden, "Only mentors can set availability")
	ErrNotSlotOwner     = newErr(http.StatusForbidden, "You can only change your own availability")
	ErrNotRequestMentor = newErr(http.StatusForbidden, "Only the mentor can respond to this request")
	ErrNotRequestMentee = newErr(http.StatusForbidden, "Only the mentee can cancel this request")
	ErrNotRequestParty  = newErr(http.StatusForbidden, "You are not a participant in this request")
	ErrNotParticipant   = newErr(http.StatusForbidden, "You are not a participant in this session")
	ErrNotReviewer      = newErr(http.StatusForbidden, "Only the reviewer can change this review")
	ErrNotReviewee      = newErr(http.StatusForbidden, "Only the person reviewed can respond to or report this review")
)

// Conflicts.
var (
	ErrSlotOverlap        = newErr(http.StatusConflict, "This time slot overlaps with an existing slot")
	ErrSlotTaken          = newErr(http.StatusConflict, "This time slot is already requested or booked")
	ErrNotPending         = newErr(http.StatusConflict, "Request is no longer pending")
	ErrInvalidTransition  = newErr(http.StatusConflict, "Session cannot change from its current status")
	ErrNoShowTooEarly     = newErr(http.StatusConflict, "Cannot mark no-show before the session starts")
	ErrReviewNotCompleted = newErr(http.StatusConflict, "You can only review completed sessions")
	ErrAlreadyReviewed    = newErr(http.StatusConflict, "You have already reviewed this session")
	ErrEditWindow         = newErr(http.StatusConflict, "Reviews can only be edited within 24 hours")
	ErrDeleteWindow       = newErr(http.StatusConflict, "Reviews can only be deleted within 1 hour")
	ErrAlreadyResponded   = newErr(http.StatusConflict, "You have already responded to this review")
)

// ErrTooManyRequests is returned when a mentee exceeds the request throttle.
var ErrTooManyRequests = newErr(http.StatusTooManyRequests, "Too many requests. Please try again later.")

// invalid turns a parse error from a helper package into a 400 carrying the
// helper's message.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Status: http.StatusBadRequest, Msg: err.Error(), kind: ErrInvalid}
}

// transitionErr reports a disallowed session status change.
func transitionErr(verb string, from models.SessionStatus) error {
	return &Error{
		Status: http.StatusConflict,
		Msg:    fmt.Sprintf("Session cannot be %s from status %s", verb, from),
		kind:   ErrInvalidTransition,
	}
}
