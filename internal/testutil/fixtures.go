package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user. Zero-valued fields get defaults.
func (f *Fixtures) CreateUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.ExternalID == "" {
		u.ExternalID = "user_" + u.ID.Hex()
	}
	if u.FullName == "" {
		u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.FullName == "" {
		u.FullName = "Test User"
	}
	if u.Email == "" {
		u.Email = strings.ToLower(strings.ReplaceAll(u.FullName, " ", ".")) + "+" + u.ID.Hex()[18:] + "@test.com"
	}
	u.FullNameCI = text.Fold(u.FullName)
	u.BranchCI = text.Fold(u.Branch)
	u.IndustryCI = text.Fold(u.Industry)
	for _, e := range u.Expertise {
		u.ExpertiseCI = append(u.ExpertiseCI, text.Fold(e))
	}
	if u.TimeZone == "" {
		u.TimeZone = "UTC"
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMentor inserts a profile-complete mentor in the given time zone.
func (f *Fixtures) CreateMentor(ctx context.Context, name, tz string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, models.User{
		FullName:        name,
		TimeZone:        tz,
		IsMentor:        true,
		ProfileComplete: true,
		Branch:          "Army",
		Industry:        "Technology",
		Expertise:       []string{"Career Transition"},
	})
}

// CreateMentee inserts a profile-complete mentee.
func (f *Fixtures) CreateMentee(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, models.User{
		FullName:        name,
		IsMentee:        true,
		ProfileComplete: true,
	})
}

// CreateSlot inserts a weekly availability slot.
func (f *Fixtures) CreateSlot(ctx context.Context, userID primitive.ObjectID, day int, start, end string) models.Availability {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Availability{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("availability").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test slot: %v", err)
	}
	return a
}

// CreateRequest inserts a mentorship request. Status defaults to pending.
func (f *Fixtures) CreateRequest(ctx context.Context, r models.MentorshipRequest) models.MentorshipRequest {
	f.t.Helper()

	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Status == "" {
		r.Status = models.RequestPending
	}
	if r.Subject == "" {
		r.Subject = "Resume review"
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := f.db.Collection("mentorship_requests").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	return r
}

// CreateSession inserts a session. Status defaults to scheduled and the
// absolute times default to one hour starting at StartsAt (or now+1h).
func (f *Fixtures) CreateSession(ctx context.Context, s models.Session) models.Session {
	f.t.Helper()

	now := time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.RequestID.IsZero() {
		s.RequestID = primitive.NewObjectID()
	}
	if s.Status == "" {
		s.Status = models.SessionScheduled
	}
	if s.StartsAt.IsZero() {
		s.StartsAt = now.Add(time.Hour).Truncate(time.Minute)
	}
	if s.EndsAt.IsZero() {
		s.EndsAt = s.StartsAt.Add(time.Hour)
	}
	if s.Date == "" {
		s.Date = s.StartsAt.UTC().Format("2006-01-02")
		s.StartTime = s.StartsAt.UTC().Format("15:04")
		s.EndTime = s.EndsAt.UTC().Format("15:04")
	}
	if s.Subject == "" {
		s.Subject = "Resume review"
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	if _, err := f.db.Collection("sessions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}
	return s
}

// CreateReview inserts a review with the given creation time.
func (f *Fixtures) CreateReview(ctx context.Context, r models.Review) models.Review {
	f.t.Helper()

	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.UpdatedAt = r.CreatedAt

	if _, err := f.db.Collection("reviews").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test review: %v", err)
	}
	return r
}
