// internal/app/store/sessions/store.go
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no session matches.
	ErrNotFound = errors.New("session not found")
	// ErrStatusChanged is returned when a conditional transition finds the
	// session in a different status than expected.
	ErrStatusChanged = errors.New("session status changed")
	// ErrDuplicateRequest is returned when a request already has a session.
	ErrDuplicateRequest = errors.New("a session already exists for this request")
)

// Roles for ListForUser.
const (
	RoleAny    = "any"
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

// Store manages mentorship sessions.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create inserts a scheduled session.
func (s *Store) Create(ctx context.Context, sess models.Session) (models.Session, error) {
	if sess.ID.IsZero() {
		sess.ID = primitive.NewObjectID()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	sess.UpdatedAt = sess.CreatedAt
	sess.Status = models.SessionScheduled
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Session{}, ErrDuplicateRequest
		}
		return models.Session{}, err
	}
	return sess, nil
}

// GetByID loads one session.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, err
	}
	return sess, nil
}

// Transition moves a session from one of the from statuses to to, applying
// extra fields in the same write. It returns ErrStatusChanged when the
// session is no longer in an allowed status.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, from []models.SessionStatus, to models.SessionStatus, extra bson.M, now time.Time) (models.Session, error) {
	set := bson.M{"status": to, "updated_at": now}
	for k, v := range extra {
		set[k] = v
	}

	var sess models.Session
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sess)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrStatusChanged
		}
		return models.Session{}, err
	}
	return sess, nil
}

// UpdateDetails changes notes and meeting URL. Nil values are left as is.
func (s *Store) UpdateDetails(ctx context.Context, id primitive.ObjectID, notes, meetingURL *string, now time.Time) (models.Session, error) {
	set := bson.M{"updated_at": now}
	if notes != nil {
		set["notes"] = *notes
	}
	if meetingURL != nil {
		set["meeting_url"] = *meetingURL
	}

	var sess models.Session
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sess)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, err
	}
	return sess, nil
}

var activeStatuses = []models.SessionStatus{models.SessionScheduled, models.SessionInProgress}

// ActiveOn returns a mentor's scheduled and in-progress sessions on a date.
func (s *Store) ActiveOn(ctx context.Context, mentorID primitive.ObjectID, date string) ([]models.Session, error) {
	return s.find(ctx, bson.M{
		"mentor_id": mentorID,
		"date":      date,
		"status":    bson.M{"$in": activeStatuses},
	}, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Session, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func participantFilter(userID primitive.ObjectID, role string) bson.M {
	switch role {
	case RoleMentor:
		return bson.M{"mentor_id": userID}
	case RoleMentee:
		return bson.M{"mentee_id": userID}
	default:
		return bson.M{"$or": []bson.M{{"mentor_id": userID}, {"mentee_id": userID}}}
	}
}

// ListFilter narrows ListForUser.
type ListFilter struct {
	UserID   primitive.ObjectID
	Role     string // RoleAny, RoleMentor or RoleMentee
	Status   models.SessionStatus
	Upcoming bool // active sessions ending after Now, soonest first
	Now      time.Time
	Limit    int64
}

// ListForUser returns a participant's sessions. Upcoming lists sort by start
// ascending, all others newest first.
func (s *Store) ListForUser(ctx context.Context, f ListFilter) ([]models.Session, error) {
	filter := participantFilter(f.UserID, f.Role)
	if f.Status != "" {
		filter["status"] = f.Status
	}
	order := -1
	if f.Upcoming {
		if f.Status == "" {
			filter["status"] = bson.M{"$in": activeStatuses}
		}
		filter["ends_at"] = bson.M{"$gt": f.Now}
		order = 1
	}

	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: order}, {Key: "_id", Value: order}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return s.find(ctx, filter, opts)
}

// NextUpcoming returns the participant's soonest active session that has not
// ended, or nil.
func (s *Store) NextUpcoming(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.Session, error) {
	rows, err := s.ListForUser(ctx, ListFilter{UserID: userID, Upcoming: true, Now: now, Limit: 1})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// CountUpcoming counts active sessions that have not ended.
func (s *Store) CountUpcoming(ctx context.Context, userID primitive.ObjectID, role string, now time.Time) (int64, error) {
	filter := participantFilter(userID, role)
	filter["status"] = bson.M{"$in": activeStatuses}
	filter["ends_at"] = bson.M{"$gt": now}
	return s.c.CountDocuments(ctx, filter)
}

// RoleStats summarizes sessions for one side of the relationship.
type RoleStats struct {
	ByStatus       map[models.SessionStatus]int64
	CompletedHours float64
}

// StatsForRole aggregates counts per status and the total hours of
// completed sessions where userID plays role.
func (s *Store) StatsForRole(ctx context.Context, userID primitive.ObjectID, role string) (RoleStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: participantFilter(userID, role)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "ms", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$subtract", Value: bson.A{"$ends_at", "$starts_at"}},
			}}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return RoleStats{}, err
	}
	defer cur.Close(ctx)

	stats := RoleStats{ByStatus: map[models.SessionStatus]int64{}}
	for cur.Next(ctx) {
		var row struct {
			Status models.SessionStatus `bson:"_id"`
			Count  int64                `bson:"count"`
			MS     int64                `bson:"ms"`
		}
		if err := cur.Decode(&row); err != nil {
			return RoleStats{}, err
		}
		stats.ByStatus[row.Status] = row.Count
		if row.Status == models.SessionCompleted {
			stats.CompletedHours = float64(row.MS) / float64(time.Hour/time.Millisecond)
		}
	}
	return stats, cur.Err()
}

// DueForReminder returns scheduled sessions starting within lead of now that
// have not been reminded.
func (s *Store) DueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Session, error) {
	return s.find(ctx, bson.M{
		"status":           models.SessionScheduled,
		"starts_at":        bson.M{"$gt": now, "$lte": now.Add(lead)},
		"reminder_sent_at": bson.M{"$exists": false},
	}, options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
}

// MarkReminderSent claims the reminder for a session. It reports false when
// another run already claimed it.
func (s *Store) MarkReminderSent(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "reminder_sent_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"reminder_sent_at": now}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// CountTouchingSince counts sessions involving userID changed at or after since.
func (s *Store) CountTouchingSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	filter := participantFilter(userID, RoleAny)
	filter["updated_at"] = bson.M{"$gte": since}
	return s.c.CountDocuments(ctx, filter)
}
