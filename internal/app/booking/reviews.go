package booking

import (
	"context"
	"errors"
	"strconv"

	"github.com/dalemusser/vetmentor/internal/app/policy/bookingpolicy"
	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	reviewstore "github.com/dalemusser/vetmentor/internal/app/store/reviews"
	sessionstore "github.com/dalemusser/vetmentor/internal/app/store/sessions"
	"github.com/dalemusser/vetmentor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewInput is a new review of a completed session.
type ReviewInput struct {
	SessionID  primitive.ObjectID `json:"session_id"`
	Rating     int                `json:"rating"`
	Comment    string             `json:"comment"`
	SubRatings *models.SubRatings `json:"sub_ratings"`
}

// ReviewEdit holds reviewer changes. Nil fields are left unchanged.
type ReviewEdit struct {
	Rating     *int               `json:"rating"`
	Comment    *string            `json:"comment"`
	SubRatings *models.SubRatings `json:"sub_ratings"`
}

func validRating(n int) bool {
	return n >= 1 && n <= 5
}

func checkSubRatings(sr *models.SubRatings) error {
	if sr == nil {
		return nil
	}
	for _, v := range []*int{sr.Communication, sr.Knowledge, sr.Helpfulness} {
		if v != nil && !validRating(*v) {
			return ErrInvalidSubRating
		}
	}
	return nil
}

// CreateReview rates the other participant of a completed session. Each
// participant may review a session once.
func (s *Service) CreateReview(ctx context.Context, me primitive.ObjectID, in ReviewInput) (models.Review, error) {
	sess, err := s.sessions.GetByID(ctx, in.SessionID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return models.Review{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Review{}, err
	}
	if !bookingpolicy.CanAccessSession(sess, me) {
		return models.Review{}, ErrNotParticipant
	}
	if sess.Status != models.SessionCompleted {
		return models.Review{}, ErrReviewNotCompleted
	}
	if !validRating(in.Rating) {
		return models.Review{}, ErrInvalidRating
	}
	if err := checkSubRatings(in.SubRatings); err != nil {
		return models.Review{}, err
	}
	exists, err := s.reviews.ExistsFor(ctx, sess.ID, me)
	if err != nil {
		return models.Review{}, err
	}
	if exists {
		return models.Review{}, ErrAlreadyReviewed
	}

	rev, err := s.reviews.Create(ctx, models.Review{
		SessionID:  sess.ID,
		ReviewerID: me,
		RevieweeID: sess.OtherParticipant(me),
		Rating:     in.Rating,
		Comment:    htmlsanitize.PlainText(in.Comment, htmlsanitize.MaxMedium),
		SubRatings: in.SubRatings,
		CreatedAt:  s.now(),
	})
	if errors.Is(err, reviewstore.ErrDuplicate) {
		return models.Review{}, ErrAlreadyReviewed
	}
	if err != nil {
		return models.Review{}, err
	}

	s.send(ctx, rev.RevieweeID, models.NotifyReviewReceived, "New review",
		"You received a "+strconv.Itoa(rev.Rating)+"-star review for \""+sess.Subject+"\".", rev.ID, reviewLink(rev.ID))
	s.auditBooking(ctx, audit.EventReviewCreated, me, rev.ID, map[string]string{"session_id": sess.ID.Hex()})
	metrics.RecordBookingEvent("review_created")
	return rev, nil
}

func (s *Service) loadReview(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	rev, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	return rev, err
}

// UpdateReview edits the caller's review within the edit window.
func (s *Service) UpdateReview(ctx context.Context, me, id primitive.ObjectID, in ReviewEdit) (models.Review, error) {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if !bookingpolicy.CanChangeReview(rev, me) {
		return models.Review{}, ErrNotReviewer
	}
	if !bookingpolicy.WithinEditWindow(rev, s.now()) {
		return models.Review{}, ErrEditWindow
	}
	if in.Rating != nil && !validRating(*in.Rating) {
		return models.Review{}, ErrInvalidRating
	}
	if err := checkSubRatings(in.SubRatings); err != nil {
		return models.Review{}, err
	}
	edit := reviewstore.Edit{Rating: in.Rating, SubRatings: in.SubRatings}
	if in.Comment != nil {
		c := htmlsanitize.PlainText(*in.Comment, htmlsanitize.MaxMedium)
		edit.Comment = &c
	}
	out, err := s.reviews.Update(ctx, id, edit, s.now())
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	return out, err
}

// DeleteReview removes the caller's review within the delete window.
func (s *Service) DeleteReview(ctx context.Context, me, id primitive.ObjectID) error {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return err
	}
	if !bookingpolicy.CanChangeReview(rev, me) {
		return ErrNotReviewer
	}
	if !bookingpolicy.WithinDeleteWindow(rev, s.now()) {
		return ErrDeleteWindow
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, reviewstore.ErrNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	s.auditBooking(ctx, audit.EventReviewDeleted, me, id, nil)
	return nil
}

// RespondToReview attaches the reviewee's single public reply.
func (s *Service) RespondToReview(ctx context.Context, me, id primitive.ObjectID, text string) (models.Review, error) {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if !bookingpolicy.CanAnswerReview(rev, me) {
		return models.Review{}, ErrNotReviewee
	}
	if rev.Response != nil {
		return models.Review{}, ErrAlreadyResponded
	}
	text = htmlsanitize.PlainText(text, htmlsanitize.MaxMedium)
	if text == "" {
		return models.Review{}, ErrResponseRequired
	}
	out, err := s.reviews.SetResponse(ctx, id, text, s.now())
	switch {
	case errors.Is(err, reviewstore.ErrAlreadyResponded):
		return models.Review{}, ErrAlreadyResponded
	case errors.Is(err, reviewstore.ErrNotFound):
		return models.Review{}, ErrReviewNotFound
	case err != nil:
		return models.Review{}, err
	}
	s.send(ctx, rev.ReviewerID, models.NotifyReviewResponse, "Review response",
		"Your review received a response.", rev.ID, reviewLink(rev.ID))
	return out, nil
}

// ReportReview flags a review about the caller for moderation.
func (s *Service) ReportReview(ctx context.Context, me, id primitive.ObjectID, reason string) (models.Review, error) {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if !bookingpolicy.CanAnswerReview(rev, me) {
		return models.Review{}, ErrNotReviewee
	}
	reason = htmlsanitize.PlainText(reason, htmlsanitize.MaxShort)
	if reason == "" {
		return models.Review{}, ErrReportReasonNeeded
	}
	out, err := s.reviews.Report(ctx, id, me, reason, s.now())
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return models.Review{}, err
	}
	s.auditBooking(ctx, audit.EventReviewReported, me, id, map[string]string{"reason": reason})
	return out, nil
}

// ListReviews returns reviews about userID, newest first.
func (s *Service) ListReviews(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Review, error) {
	rows, err := s.reviews.ListForUser(ctx, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Review{}
	}
	if err := s.withReviewers(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReviewSummary aggregates the ratings userID received.
func (s *Service) ReviewSummary(ctx context.Context, userID primitive.ObjectID) (reviewstore.Summary, error) {
	return s.reviews.Aggregate(ctx, userID)
}
