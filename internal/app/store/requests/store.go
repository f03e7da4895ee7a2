// internal/app/store/requests/store.go
package requeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no request matches.
	ErrNotFound = errors.New("request not found")
	// ErrStatusChanged is returned when a conditional transition finds the
	// request no longer in the expected status.
	ErrStatusChanged = errors.New("request status changed")
)

// Store manages mentorship requests.
type Store struct {
	c *mongo.Collection
}

// New creates a new requests Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mentorship_requests")}
}

// Create inserts a pending request.
func (s *Store) Create(ctx context.Context, r models.MentorshipRequest) (models.MentorshipRequest, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = primitive.NewObjectID()
	r.Status = models.RequestPending
	r.UpdatedAt = r.CreatedAt
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.MentorshipRequest{}, err
	}
	return r, nil
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MentorshipRequest, error) {
	var r models.MentorshipRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MentorshipRequest{}, ErrNotFound
		}
		return models.MentorshipRequest{}, err
	}
	return r, nil
}

// Response describes how a pending request is closed.
type Response struct {
	Status        models.RequestStatus
	DeclineReason string
	SessionID     *primitive.ObjectID
	At            time.Time
}

// Respond moves a pending request to resp.Status. It is conditional on the
// request still being pending and returns ErrStatusChanged otherwise.
func (s *Store) Respond(ctx context.Context, id primitive.ObjectID, resp Response) (models.MentorshipRequest, error) {
	set := bson.M{
		"status":       resp.Status,
		"responded_at": resp.At,
		"updated_at":   resp.At,
	}
	if resp.DeclineReason != "" {
		set["decline_reason"] = resp.DeclineReason
	}
	if resp.SessionID != nil {
		set["session_id"] = *resp.SessionID
	}

	var r models.MentorshipRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MentorshipRequest{}, ErrStatusChanged
		}
		return models.MentorshipRequest{}, err
	}
	return r, nil
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.MentorshipRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.MentorshipRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForMentor returns requests addressed to a mentor, newest first.
// An empty status matches every status.
func (s *Store) ListForMentor(ctx context.Context, mentorID primitive.ObjectID, status models.RequestStatus, limit int64) ([]models.MentorshipRequest, error) {
	f := bson.M{"mentor_id": mentorID}
	if status != "" {
		f["status"] = status
	}
	return s.list(ctx, f, limit)
}

// ListForMentee returns requests a mentee sent, newest first.
func (s *Store) ListForMentee(ctx context.Context, menteeID primitive.ObjectID, status models.RequestStatus, limit int64) ([]models.MentorshipRequest, error) {
	f := bson.M{"mentee_id": menteeID}
	if status != "" {
		f["status"] = status
	}
	return s.list(ctx, f, limit)
}

// HoldingSlotsOn returns a mentor's pending and accepted requests on a date.
func (s *Store) HoldingSlotsOn(ctx context.Context, mentorID primitive.ObjectID, date string) ([]models.MentorshipRequest, error) {
	return s.list(ctx, bson.M{
		"mentor_id":      mentorID,
		"requested_date": date,
		"status":         bson.M{"$in": []models.RequestStatus{models.RequestPending, models.RequestAccepted}},
	}, 0)
}

// CountByStatus counts requests where field ("mentor_id" or "mentee_id")
// equals userID and the status matches.
func (s *Store) CountByStatus(ctx context.Context, field string, userID primitive.ObjectID, status models.RequestStatus) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{field: userID, "status": status})
}

// CountTouchingSince counts requests involving userID created or updated at
// or after since.
func (s *Store) CountTouchingSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"$or":        []bson.M{{"mentor_id": userID}, {"mentee_id": userID}},
		"updated_at": bson.M{"$gte": since},
	})
}
