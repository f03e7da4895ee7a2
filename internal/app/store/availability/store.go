// internal/app/store/availability/store.go
package availabilitystore

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

// ErrNotFound is returned when no slot matches.
var ErrNotFound = errors.New("availability slot not found")

// Store manages weekly availability slots.
type Store struct {
	c *mongo.Collection
}

// New creates a new availability Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("availability")}
}

// Create inserts a slot. Times must already be normalized "HH:MM".
func (s *Store) Create(ctx context.Context, a models.Availability) (models.Availability, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Availability{}, err
	}
	return a, nil
}

// GetByID loads one slot.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Availability, error) {
	var a models.Availability
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Availability{}, ErrNotFound
		}
		return models.Availability{}, err
	}
	return a, nil
}

// Update replaces the day and times of a slot and returns the new version.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, day int, start, end string) (models.Availability, error) {
	var a models.Availability
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"day_of_week": day,
			"start_time":  start,
			"end_time":    end,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Availability{}, ErrNotFound
		}
		return models.Availability{}, err
	}
	return a, nil
}

// Delete removes one slot.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForUser removes every slot owned by userID.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Availability, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Availability{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns a user's slots ordered by day then start time.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Availability, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

// ListForUserDay returns a user's slots on one weekday ordered by start time.
func (s *Store) ListForUserDay(ctx context.Context, userID primitive.ObjectID, day int) ([]models.Availability, error) {
	return s.find(ctx, bson.M{"user_id": userID, "day_of_week": day})
}

// UserIDsOnDay returns the distinct owners of slots on a weekday.
func (s *Store) UserIDsOnDay(ctx context.Context, day int) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, "user_id", bson.M{"day_of_week": day})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}
