package userstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/system/normalize"
	"github.com/dalemusser/vetmentor/internal/app/system/paging"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByExternalID loads a user by identity-provider id.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"external_id": externalID})
}

// GetMany loads users by id, keyed by id. Missing ids are absent from the map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Identity is the subset of the provider's user record mirrored locally.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
}

// UpsertFromIdentity creates the local account for an identity-provider user,
// or refreshes its email, name and image when it already exists. Deleted
// accounts stay deleted. created reports whether a new document was inserted.
func (s *Store) UpsertFromIdentity(ctx context.Context, id Identity, now time.Time) (u models.User, created bool, err error) {
	if id.ExternalID == "" {
		return models.User{}, false, errors.New("external id required")
	}
	first := normalize.Name(id.FirstName)
	last := normalize.Name(id.LastName)
	full := normalize.FullName(first, last)

	set := bson.M{
		"email":        normalize.Email(id.Email),
		"first_name":   first,
		"last_name":    last,
		"full_name":    full,
		"full_name_ci": text.Fold(full),
		"image_url":    id.ImageURL,
		"updated_at":   now,
	}
	onInsert := bson.M{
		"is_mentor":        false,
		"is_mentee":        false,
		"profile_complete": false,
		"timezone":         "UTC",
		"status":           models.UserStatusActive,
		"created_at":       now,
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"external_id": id.ExternalID},
		bson.M{"$set": set, "$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.User{}, false, fmt.Errorf("upsert user %s: %w", id.ExternalID, err)
	}
	got, err := s.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		return models.User{}, false, err
	}
	return *got, res.UpsertedCount > 0, nil
}

// MarkDeleted flags the account deleted and returns it.
func (s *Store) MarkDeleted(ctx context.Context, externalID string, now time.Time) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"external_id": externalID},
		bson.M{"$set": bson.M{"status": models.UserStatusDeleted, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds profile fields to change. Nil fields are left as is.
type ProfileUpdate struct {
	IsMentor        *bool
	IsMentee        *bool
	ProfileComplete *bool
	Bio             *string

	Branch         *string
	Rank           *string
	MilitaryStatus *string
	YearsOfService *int
	Specialty      *string

	CurrentTitle *string
	Company      *string
	Industry     *string
	Expertise    *[]string
	LinkedInURL  *string

	Location *string
	TimeZone *string
}

func (p ProfileUpdate) setDoc() bson.M {
	set := bson.M{}
	putBool := func(k string, v *bool) {
		if v != nil {
			set[k] = *v
		}
	}
	putStr := func(k string, v *string) {
		if v != nil {
			set[k] = *v
		}
	}
	putFold := func(k string, v *string) {
		if v != nil {
			set[k] = text.Fold(*v)
		}
	}
	putBool("is_mentor", p.IsMentor)
	putBool("is_mentee", p.IsMentee)
	putBool("profile_complete", p.ProfileComplete)
	putStr("bio", p.Bio)
	putStr("branch", p.Branch)
	putFold("branch_ci", p.Branch)
	putStr("rank", p.Rank)
	putStr("military_status", p.MilitaryStatus)
	putStr("specialty", p.Specialty)
	putStr("current_title", p.CurrentTitle)
	putStr("company", p.Company)
	putStr("industry", p.Industry)
	putFold("industry_ci", p.Industry)
	putStr("linkedin_url", p.LinkedInURL)
	putStr("location", p.Location)
	putStr("timezone", p.TimeZone)
	if p.YearsOfService != nil {
		set["years_of_service"] = *p.YearsOfService
	}
	if p.Expertise != nil {
		tags, folded := normalize.Tags(*p.Expertise)
		set["expertise"] = tags
		set["expertise_ci"] = folded
	}
	return set
}

// UpdateProfile applies upd to an active user and returns the result.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate, now time.Time) (models.User, error) {
	set := upd.setDoc()
	set["updated_at"] = now

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.UserStatusActive},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// MentorFilter narrows SearchMentors.
type MentorFilter struct {
	Query     string // prefix of name or exact expertise, case-insensitive
	Branch    string // case-insensitive
	Industry  string // case-insensitive
	Expertise string

	// MentorIDs restricts results to these ids when non-nil. An empty,
	// non-nil slice matches nothing.
	MentorIDs []primitive.ObjectID
	ExcludeID primitive.ObjectID

	Page paging.Params
}

// mentorBase is the filter every searchable mentor satisfies.
func mentorBase() bson.M {
	return bson.M{
		"status":           models.UserStatusActive,
		"is_mentor":        true,
		"profile_complete": true,
	}
}

// SearchMentors returns one keyset page of mentors ordered by folded name.
func (s *Store) SearchMentors(ctx context.Context, f MentorFilter) ([]models.User, paging.Result, error) {
	base := mentorBase()
	if f.Branch != "" {
		base["branch_ci"] = text.Fold(f.Branch)
	}
	if f.Industry != "" {
		base["industry_ci"] = text.Fold(f.Industry)
	}
	if f.Expertise != "" {
		base["expertise_ci"] = text.Fold(f.Expertise)
	}

	idCond := bson.M{}
	if f.MentorIDs != nil {
		idCond["$in"] = f.MentorIDs
	}
	if !f.ExcludeID.IsZero() {
		idCond["$ne"] = f.ExcludeID
	}
	if len(idCond) > 0 {
		base["_id"] = idCond
	}

	var searchOr []bson.M
	if q := text.Fold(f.Query); q != "" {
		hi := q + "\uffff"
		searchOr = []bson.M{
			{"full_name_ci": bson.M{"$gte": q, "$lt": hi}},
			{"expertise_ci": q},
		}
		base["$or"] = searchOr
	}

	const sortField = "full_name_ci"
	filter := maps.Clone(base)
	find := options.Find()
	cfg := f.Page.Keyset()
	cfg.ApplyToFind(find, sortField)

	if ks := cfg.KeysetWindow(sortField); ks != nil {
		if searchOr != nil {
			filter["$and"] = []bson.M{{"$or": searchOr}, ks}
			delete(filter, "$or")
		} else {
			maps.Copy(filter, ks)
		}
	}

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, f.Page)
	return rows, res, nil
}

// ForEachActive streams every active user with a profile to fn.
func (s *Store) ForEachActive(ctx context.Context, fn func(models.User) error) error {
	cur, err := s.c.Find(ctx,
		bson.M{"status": models.UserStatusActive, "profile_complete": true},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return cur.Err()
}
