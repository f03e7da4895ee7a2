// Package bookingpolicy provides authorization rules for requests, sessions
// and reviews.
//
// Authorization rules:
//   - Only the mentor of a request can accept or decline it
//   - Only the mentee of a request can cancel it
//   - Either participant can view a request or a session and change a session
//   - A review can be edited by its reviewer for 24 hours and deleted for 1 hour
//   - Only the reviewee can respond to or report a review
package bookingpolicy

import (
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review change windows, measured from creation.
const (
	ReviewEditWindow   = 24 * time.Hour
	ReviewDeleteWindow = time.Hour
)

// CanViewRequest reports whether userID is the request's mentor or mentee.
func CanViewRequest(req models.MentorshipRequest, userID primitive.ObjectID) bool {
	return userID == req.MentorID || userID == req.MenteeID
}

// CanRespondToRequest reports whether userID may accept or decline req.
func CanRespondToRequest(req models.MentorshipRequest, userID primitive.ObjectID) bool {
	return userID == req.MentorID
}

// CanCancelRequest reports whether userID may withdraw req.
func CanCancelRequest(req models.MentorshipRequest, userID primitive.ObjectID) bool {
	return userID == req.MenteeID
}

// CanAccessSession reports whether userID takes part in sess.
func CanAccessSession(sess models.Session, userID primitive.ObjectID) bool {
	return sess.IsParticipant(userID)
}

// CanChangeReview reports whether userID wrote rev.
func CanChangeReview(rev models.Review, userID primitive.ObjectID) bool {
	return userID == rev.ReviewerID
}

// CanAnswerReview reports whether userID is the subject of rev. The subject
// is the only one who may respond to or report it.
func CanAnswerReview(rev models.Review, userID primitive.ObjectID) bool {
	return userID == rev.RevieweeID
}

// WithinEditWindow reports whether rev may still be edited at now.
func WithinEditWindow(rev models.Review, now time.Time) bool {
	return now.Sub(rev.CreatedAt) <= ReviewEditWindow
}

// WithinDeleteWindow reports whether rev may still be deleted at now.
func WithinDeleteWindow(rev models.Review, now time.Time) bool {
	return now.Sub(rev.CreatedAt) <= ReviewDeleteWindow
}
