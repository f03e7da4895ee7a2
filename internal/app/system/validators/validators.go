// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. Servers that don't support collMod/validators (some DocumentDB
// versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("availability", availabilitySchema())
	ensure("mentorship_requests", requestsSchema())
	ensure("sessions", sessionsSchema())
	ensure("reviews", reviewsSchema())
	ensure("notifications", notificationsSchema())
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if it was actually created.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	clockTime = bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$|^24:00$"}
	isoDate   = bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
	rating    = bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5}
)

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"external_id", "email", "status"},
			"properties": bson.M{
				"external_id":     nonBlank,
				"email":           bson.M{"bsonType": "string"},
				"status":          bson.M{"enum": bson.A{"active", "deleted"}},
				"military_status": bson.M{"enum": bson.A{"", "active", "veteran", "reserve", "guard", "retired"}},
				"is_mentor":       bson.M{"bsonType": "bool"},
				"is_mentee":       bson.M{"bsonType": "bool"},
			},
		},
	}
}

func availabilitySchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "day_of_week", "start_time", "end_time"},
			"properties": bson.M{
				"user_id":     bson.M{"bsonType": "objectId"},
				"day_of_week": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 6},
				"start_time":  clockTime,
				"end_time":    clockTime,
			},
		},
	}
}

func requestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"mentee_id", "mentor_id", "requested_date", "start_time", "end_time", "subject", "status"},
			"properties": bson.M{
				"mentee_id":      bson.M{"bsonType": "objectId"},
				"mentor_id":      bson.M{"bsonType": "objectId"},
				"requested_date": isoDate,
				"start_time":     clockTime,
				"end_time":       clockTime,
				"subject":        nonBlank,
				"status":         bson.M{"enum": bson.A{"pending", "accepted", "declined", "cancelled"}},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"request_id", "mentor_id", "mentee_id", "date", "starts_at", "ends_at", "status"},
			"properties": bson.M{
				"request_id": bson.M{"bsonType": "objectId"},
				"mentor_id":  bson.M{"bsonType": "objectId"},
				"mentee_id":  bson.M{"bsonType": "objectId"},
				"date":       isoDate,
				"starts_at":  bson.M{"bsonType": "date"},
				"ends_at":    bson.M{"bsonType": "date"},
				"status":     bson.M{"enum": bson.A{"scheduled", "in_progress", "completed", "no_show", "cancelled"}},
			},
		},
	}
}

func reviewsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"session_id", "reviewer_id", "reviewee_id", "rating"},
			"properties": bson.M{
				"session_id":  bson.M{"bsonType": "objectId"},
				"reviewer_id": bson.M{"bsonType": "objectId"},
				"reviewee_id": bson.M{"bsonType": "objectId"},
				"rating":      rating,
				"sub_ratings": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"communication": rating,
						"knowledge":     rating,
						"helpfulness":   rating,
					},
				},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "type", "title", "read"},
			"properties": bson.M{
				"user_id": bson.M{"bsonType": "objectId"},
				"type":    nonBlank,
				"title":   nonBlank,
				"read":    bson.M{"bsonType": "bool"},
			},
		},
	}
}
