package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/vetmentor/internal/app/system/indexes"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		collection string
		expected   []string
	}{
		{"users", []string{"uniq_users_external_id", "idx_users_mentor_status_complete_fullnameci_id", "idx_users_expertiseci"}},
		{"availability", []string{"idx_avail_user_day_start", "idx_avail_day_user"}},
		{"mentorship_requests", []string{"idx_req_mentor_date_status", "idx_req_mentee_status_created"}},
		{"sessions", []string{"uniq_sessions_request", "idx_sessions_status_startsat"}},
		{"reviews", []string{"uniq_reviews_session_reviewer", "idx_reviews_reviewee_created"}},
		{"notifications", []string{"idx_notif_user_read_created"}},
		{"audit_events", []string{"idx_audit_created"}},
		{"booking_locks", []string{"ttl_locks_updatedat"}},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			names := indexNames(t, ctx, db.Collection(tt.collection))
			for _, name := range tt.expected {
				if !names[name] {
					t.Errorf("expected index %q to exist on %s", name, tt.collection)
				}
			}
		})
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys, legacy name.
	_, err := db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db.Collection("notifications"))
	if !names["idx_notif_user_created"] {
		t.Error("expected legacy index to be renamed to idx_notif_user_created")
	}
	if names["user_id_1_created_at_-1"] {
		t.Error("expected legacy index name to be gone")
	}
}

func TestEnsureAll_UniqueReviewPerReviewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	sessionID := primitive.NewObjectID()
	reviewerID := primitive.NewObjectID()
	doc := bson.M{"session_id": sessionID, "reviewer_id": reviewerID, "rating": 5}

	if _, err := db.Collection("reviews").InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Collection("reviews").InsertOne(ctx, bson.M{"session_id": sessionID, "reviewer_id": reviewerID, "rating": 3}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("second insert err = %v, want duplicate key", err)
	}
}
