// internal/app/store/reviews/store.go
package reviewstore

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no review matches.
	ErrNotFound = errors.New("review not found")
	// ErrDuplicate is returned when the reviewer already reviewed the session.
	ErrDuplicate = errors.New("review already exists for this session")
	// ErrAlreadyResponded is returned when a review already carries a response.
	ErrAlreadyResponded = errors.New("review already has a response")
)

// Store manages session reviews.
type Store struct {
	c *mongo.Collection
}

// New creates a new reviews Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// Create inserts a review. Uniqueness of (session, reviewer) is enforced by
// the uniq_reviews_session_reviewer index.
func (s *Store) Create(ctx context.Context, r models.Review) (models.Review, error) {
	r.ID = primitive.NewObjectID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.UpdatedAt = r.CreatedAt
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Review{}, ErrDuplicate
		}
		return models.Review{}, err
	}
	return r, nil
}

// GetByID loads one review.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	var r models.Review
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, err
	}
	return r, nil
}

// ExistsFor reports whether reviewerID already reviewed sessionID.
func (s *Store) ExistsFor(ctx context.Context, sessionID, reviewerID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"session_id": sessionID, "reviewer_id": reviewerID}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) update(ctx context.Context, filter, update bson.M) (models.Review, error) {
	var r models.Review
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, err
	}
	return r, nil
}

// Edit holds the reviewer-editable fields. Nil values are left as is.
type Edit struct {
	Rating     *int
	Comment    *string
	SubRatings *models.SubRatings
}

// Update applies e to a review.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e Edit, now time.Time) (models.Review, error) {
	set := bson.M{"updated_at": now}
	if e.Rating != nil {
		set["rating"] = *e.Rating
	}
	if e.Comment != nil {
		set["comment"] = *e.Comment
	}
	if e.SubRatings != nil {
		set["sub_ratings"] = e.SubRatings
	}
	return s.update(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// Delete removes a review.
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

// SetResponse stores the reviewee's reply. A review takes one response only.
func (s *Store) SetResponse(ctx context.Context, id primitive.ObjectID, text string, now time.Time) (models.Review, error) {
	r, err := s.update(ctx,
		bson.M{"_id": id, "response": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"response":   models.ReviewResponse{Text: text, RespondedAt: now},
			"updated_at": now,
		}},
	)
	if errors.Is(err, ErrNotFound) {
		if _, gerr := s.GetByID(ctx, id); gerr == nil {
			return models.Review{}, ErrAlreadyResponded
		}
	}
	return r, err
}

// Report flags a review for moderation.
func (s *Store) Report(ctx context.Context, id, by primitive.ObjectID, reason string, now time.Time) (models.Review, error) {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reported":      true,
		"report_reason": reason,
		"reported_by":   by,
		"reported_at":   now,
		"updated_at":    now,
	}})
}

// ListForUser returns reviews about revieweeID, newest first.
func (s *Store) ListForUser(ctx context.Context, revieweeID primitive.ObjectID, limit int64) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"reviewee_id": revieweeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince counts reviews about revieweeID created at or after since.
func (s *Store) CountSince(ctx context.Context, revieweeID primitive.ObjectID, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"reviewee_id": revieweeID, "created_at": bson.M{"$gte": since}})
}

// SubAverages are per-aspect means, nil when no review scored that aspect.
type SubAverages struct {
	Communication *float64 `json:"communication,omitempty"`
	Knowledge     *float64 `json:"knowledge,omitempty"`
	Helpfulness   *float64 `json:"helpfulness,omitempty"`
}

// Summary aggregates the reviews about one user.
type Summary struct {
	Count        int64         `json:"count"`
	Average      float64       `json:"average"`
	Distribution map[int]int64 `json:"distribution"`
	SubAverages  SubAverages   `json:"sub_averages"`
}

// Aggregate computes count, mean rating, the 1..5 distribution and sub-rating
// means for revieweeID in one pipeline. Means are rounded to two decimals.
func (s *Store) Aggregate(ctx context.Context, revieweeID primitive.ObjectID) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "reviewee_id", Value: revieweeID}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "overall", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
					{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
					{Key: "communication", Value: bson.D{{Key: "$avg", Value: "$sub_ratings.communication"}}},
					{Key: "knowledge", Value: bson.D{{Key: "$avg", Value: "$sub_ratings.knowledge"}}},
					{Key: "helpfulness", Value: bson.D{{Key: "$avg", Value: "$sub_ratings.helpfulness"}}},
				}}},
			}},
			{Key: "distribution", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$rating"},
					{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
				}}},
			}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Overall []struct {
			Count         int64    `bson:"count"`
			Avg           float64  `bson:"avg"`
			Communication *float64 `bson:"communication"`
			Knowledge     *float64 `bson:"knowledge"`
			Helpfulness   *float64 `bson:"helpfulness"`
		} `bson:"overall"`
		Distribution []struct {
			Rating int   `bson:"_id"`
			N      int64 `bson:"n"`
		} `bson:"distribution"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Summary{}, err
	}

	sum := Summary{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(rows) == 0 {
		return sum, nil
	}
	if len(rows[0].Overall) > 0 {
		o := rows[0].Overall[0]
		sum.Count = o.Count
		sum.Average = round2(o.Avg)
		sum.SubAverages = SubAverages{
			Communication: round2Ptr(o.Communication),
			Knowledge:     round2Ptr(o.Knowledge),
			Helpfulness:   round2Ptr(o.Helpfulness),
		}
	}
	for _, d := range rows[0].Distribution {
		if d.Rating >= 1 && d.Rating <= 5 {
			sum.Distribution[d.Rating] = d.N
		}
	}
	return sum, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round2Ptr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := round2(*f)
	return &v
}
