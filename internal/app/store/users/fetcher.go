package userstore

import (
	"context"

	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by identity-provider id and returns nil if the
// user is not found, deleted, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, externalID string) *auth.SessionUser {
	if externalID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":              1,
		"external_id":      1,
		"full_name":        1,
		"email":            1,
		"is_mentor":        1,
		"is_mentee":        1,
		"profile_complete": 1,
		"status":           1,
	})
	if err := f.users.FindOne(ctx, bson.M{"external_id": externalID}, proj).Decode(&u); err != nil {
		return nil
	}
	if !u.IsActive() {
		return nil
	}

	return &auth.SessionUser{
		ID:              u.ID.Hex(),
		ExternalID:      u.ExternalID,
		Name:            u.FullName,
		Email:           u.Email,
		IsMentor:        u.IsMentor,
		IsMentee:        u.IsMentee,
		ProfileComplete: u.ProfileComplete,
	}
}
