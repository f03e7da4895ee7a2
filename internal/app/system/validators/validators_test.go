package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/system/validators"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}

	for _, want := range []string{"users", "availability", "mentorship_requests", "sessions", "reviews", "notifications", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators_RejectInvalidDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	uid := primitive.NewObjectID()
	tests := []struct {
		name       string
		collection string
		doc        bson.M
	}{
		{"user missing external id", "users", bson.M{"email": "a@b.c", "status": "active"}},
		{"user bad status", "users", bson.M{"external_id": "u_1", "email": "a@b.c", "status": "disabled"}},
		{"slot bad day", "availability", bson.M{"user_id": uid, "day_of_week": 7, "start_time": "09:00", "end_time": "10:00"}},
		{"slot bad clock", "availability", bson.M{"user_id": uid, "day_of_week": 1, "start_time": "9am", "end_time": "10:00"}},
		{"request bad status", "mentorship_requests", bson.M{
			"mentee_id": uid, "mentor_id": uid, "requested_date": "2026-10-14",
			"start_time": "09:00", "end_time": "10:00", "subject": "x", "status": "maybe",
		}},
		{"review rating out of range", "reviews", bson.M{
			"session_id": uid, "reviewer_id": uid, "reviewee_id": uid, "rating": 6,
		}},
		{"notification blank title", "notifications", bson.M{"user_id": uid, "type": "welcome", "title": " ", "read": false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Collection(tt.collection).InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("expected validation error inserting into %s", tt.collection)
			}
		})
	}
}

func TestValidators_AcceptValidSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	_, err := db.Collection("sessions").InsertOne(ctx, bson.M{
		"request_id": primitive.NewObjectID(),
		"mentor_id":  primitive.NewObjectID(),
		"mentee_id":  primitive.NewObjectID(),
		"date":       "2026-10-14",
		"starts_at":  now,
		"ends_at":    now.Add(time.Hour),
		"status":     "scheduled",
	})
	if err != nil {
		t.Errorf("insert valid session failed: %v", err)
	}
}
