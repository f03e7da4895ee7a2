// internal/app/store/locks/store.go
package lockstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps one version document per booking key. Writing a key inside a
// transaction makes any other transaction that writes the same key conflict,
// so checks made after Touch see every committed booking for that key.
type Store struct {
	c *mongo.Collection
}

// New creates a new locks Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("booking_locks")}
}

// MentorDay is the key that guards a mentor's bookings on one date.
func MentorDay(mentorID primitive.ObjectID, date string) string {
	return mentorID.Hex() + ":" + date
}

// Touch bumps the version of key, creating the document on first use.
func (s *Store) Touch(ctx context.Context, key string, now time.Time) error {
	filter := bson.M{"_id": key}
	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": now},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if wafflemongo.IsDup(err) {
		// A concurrent upsert created it first.
		_, err = s.c.UpdateOne(ctx, filter, update)
	}
	return err
}
