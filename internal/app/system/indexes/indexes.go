// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"availability", ensureAvailability},
		{"mentorship_requests", ensureRequests},
		{"sessions", ensureSessions},
		{"reviews", ensureReviews},
		{"notifications", ensureNotifications},
		{"audit_events", ensureAuditEvents},
		{"booking_locks", ensureBookingLocks},
	}

	var problems []string
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB returns IndexOptionsConflict when an index with the same keys
// already exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

// duplicateHints maps a unique index name to an aggregation that finds the
// offending documents, so an operator can clean up before restarting.
var duplicateHints = map[string]string{
	"uniq_users_external_id": `db.users.aggregate([{ $group: { _id: "$external_id", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
	"uniq_reviews_session_reviewer": `db.reviews.aggregate([{ $group: { _id: { s: "$session_id", r: "$reviewer_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
	"uniq_sessions_request":         `db.sessions.aggregate([{ $group: { _id: "$request_id", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

func createErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if isDuplicateKeyErr(err) && unique {
		helper := ""
		if q, ok := duplicateHints[name]; ok {
			helper = ". Example finder:\n" + q
		}
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s", coll.Name(), name, helper)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if msg := reconcile(ctx, coll, m); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// reconcile makes one desired index exist with the desired name and
// uniqueness. It returns a non-empty message on failure.
func reconcile(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel) string {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	isUnique := unique != nil && *unique
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()

	log := zap.L().With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", isUnique))
	log.Info("ensuring index")

	existing := listExisting(ctx, coll)

	if ex, ok := existing[sig]; ok {
		if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
			log.Info("index already present", zap.String("took", time.Since(start).String()))
			return ""
		}
		// Name or uniqueness differs: drop and recreate.
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
			return fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err)
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			return createErr(coll, name, isUnique, err)
		}
		log.Info("index dropped and recreated",
			zap.String("from", ex.Name),
			zap.String("took", time.Since(start).String()))
		return ""
	}

	created, err := coll.Indexes().CreateOne(ctx, m)
	if err == nil {
		log.Info("index ensured",
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))
		return ""
	}

	if isOptionsConflictErr(err) {
		// A concurrent starter may have created it between List and CreateOne.
		if match, ok := listExisting(ctx, coll)[sig]; ok {
			if sameBoolPtr(unique, match.Unique) {
				log.Info("reusing existing index (post-conflict)", zap.String("existing", match.Name))
				return ""
			}
			if _, dropErr := coll.Indexes().DropOne(ctx, match.Name); dropErr != nil {
				log.Warn("failed to drop conflicting index", zap.String("existing", match.Name), zap.Error(dropErr))
			}
			if _, e3 := coll.Indexes().CreateOne(ctx, m); e3 != nil {
				return createErr(coll, name, isUnique, e3)
			}
			log.Info("index dropped and recreated (post-conflict)",
				zap.String("took", time.Since(start).String()))
			return ""
		}
	}

	log.Warn("index ensure failed",
		zap.String("took", time.Since(start).String()),
		zap.Error(err))
	return createErr(coll, name, isUnique, err)
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Identity-provider id is the join key for webhooks and token lookup.
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_external_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
		// Mentor directory: filter then keyset by folded name.
		{
			Keys: bson.D{
				{Key: "is_mentor", Value: 1},
				{Key: "status", Value: 1},
				{Key: "profile_complete", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_mentor_status_complete_fullnameci_id"),
		},
		{
			Keys:    bson.D{{Key: "expertise_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_expertiseci"),
		},
		{
			Keys:    bson.D{{Key: "branch_ci", Value: 1}, {Key: "industry_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_branchci_industryci"),
		},
	})
}

func ensureAvailability(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("availability"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "day_of_week", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().SetName("idx_avail_user_day_start"),
		},
		// Directory filter: which mentors have a slot on a weekday.
		{
			Keys:    bson.D{{Key: "day_of_week", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_avail_day_user"),
		},
	})
}

func ensureRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("mentorship_requests"), []mongo.IndexModel{
		// Collision checks: same mentor, same date, live status.
		{
			Keys: bson.D{
				{Key: "mentor_id", Value: 1},
				{Key: "requested_date", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_req_mentor_date_status"),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_req_mentor_status_created"),
		},
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_req_mentee_status_created"),
		},
	})
}

func ensureSessions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("sessions"), []mongo.IndexModel{
		// One session per accepted request.
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_sessions_request"),
		},
		{
			Keys: bson.D{
				{Key: "mentor_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_sessions_mentor_date_status"),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "starts_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_mentor_startsat"),
		},
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "starts_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_mentee_startsat"),
		},
		// Reminder sweep.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_sessions_status_startsat"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_updatedat"),
		},
	})
}

func ensureReviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reviews"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "reviewer_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_reviews_session_reviewer"),
		},
		{
			Keys:    bson.D{{Key: "reviewee_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reviews_reviewee_created"),
		},
		{
			Keys:    bson.D{{Key: "reviewer_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reviews_reviewer_created"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "read", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_notif_user_read_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notif_user_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_created"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_created"),
		},
	})
}

// Lock documents only matter while their day can still be booked.
func ensureBookingLocks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("booking_locks"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(lockTTL / time.Second)).SetName("ttl_locks_updatedat"),
		},
	})
}

const lockTTL = 30 * 24 * time.Hour
