// Package booking holds the mentorship rules: profiles, availability,
// requests, sessions, reviews and the dashboard summary.
//
// Every exported operation takes the caller's user id and returns either a
// result or an error. Errors meant for the user are *Error values carrying
// the message and HTTP status; anything else is an infrastructure failure.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	availabilitystore "github.com/dalemusser/vetmentor/internal/app/store/availability"
	lockstore "github.com/dalemusser/vetmentor/internal/app/store/locks"
	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	requeststore "github.com/dalemusser/vetmentor/internal/app/store/requests"
	reviewstore "github.com/dalemusser/vetmentor/internal/app/store/reviews"
	sessionstore "github.com/dalemusser/vetmentor/internal/app/store/sessions"
	userstore "github.com/dalemusser/vetmentor/internal/app/store/users"
	"github.com/dalemusser/vetmentor/internal/app/system/auditlog"
	"github.com/dalemusser/vetmentor/internal/app/system/notify"
	"github.com/dalemusser/vetmentor/internal/app/system/ratelimit"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service runs booking operations against MongoDB.
type Service struct {
	db            *mongo.Database
	users         *userstore.Store
	slots         *availabilitystore.Store
	requests      *requeststore.Store
	sessions      *sessionstore.Store
	reviews       *reviewstore.Store
	notifications *notificationstore.Store
	locks         *lockstore.Store
	dayLocks      dayLocks

	notifier notify.Notifier
	throttle ratelimit.Throttle
	audit    *auditlog.Logger
	log      *zap.Logger
	linkBase string

	// Now is the clock. Tests replace it.
	Now func() time.Time
}

// Options are the collaborators a Service needs besides the database.
// A nil Throttle disables request throttling. LinkBase, when set, is
// prefixed to notification action URLs.
type Options struct {
	Notifier notify.Notifier
	Throttle ratelimit.Throttle
	Audit    *auditlog.Logger
	Log      *zap.Logger
	LinkBase string
}

// New creates a Service over db.
func New(db *mongo.Database, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.New(notificationstore.New(db), log)
	}
	return &Service{
		db:            db,
		users:         userstore.New(db),
		slots:         availabilitystore.New(db),
		requests:      requeststore.New(db),
		sessions:      sessionstore.New(db),
		reviews:       reviewstore.New(db),
		notifications: notificationstore.New(db),
		locks:         lockstore.New(db),
		notifier:      notifier,
		throttle:      opts.Throttle,
		audit:         opts.Audit,
		log:           log,
		linkBase:      strings.TrimRight(opts.LinkBase, "/"),
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) now() time.Time {
	return s.Now().UTC().Truncate(time.Millisecond)
}

// activeUser loads an active account or returns ErrUserNotFound.
func (s *Service) activeUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && !u.IsActive()) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return *u, nil
}

// activeMentor loads an active mentor or returns ErrMentorNotFound.
func (s *Service) activeMentor(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && (!u.IsActive() || !u.IsMentor)) {
		return models.User{}, ErrMentorNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return *u, nil
}

// link makes a relative action URL absolute when a link base is configured.
func (s *Service) link(action *models.NotificationAction) *models.NotificationAction {
	if action != nil && s.linkBase != "" && strings.HasPrefix(action.URL, "/") {
		action.URL = s.linkBase + action.URL
	}
	return action
}

func (s *Service) send(ctx context.Context, to primitive.ObjectID, kind, title, msg string, related primitive.ObjectID, action *models.NotificationAction) {
	s.notifier.Notify(ctx, models.Notification{
		UserID:    to,
		Type:      kind,
		Title:     title,
		Message:   msg,
		Action:    s.link(action),
		RelatedID: &related,
		CreatedAt: s.now(),
	})
}

func (s *Service) auditBooking(ctx context.Context, event string, actor, entity primitive.ObjectID, details map[string]string) {
	s.audit.Booking(ctx, event, actor, entity, details)
}

func sessionLink(id primitive.ObjectID) *models.NotificationAction {
	return &models.NotificationAction{Label: "View session", URL: "/sessions/" + id.Hex()}
}

func requestLink(id primitive.ObjectID) *models.NotificationAction {
	return &models.NotificationAction{Label: "View request", URL: "/requests/" + id.Hex()}
}

func reviewLink(id primitive.ObjectID) *models.NotificationAction {
	return &models.NotificationAction{Label: "View review", URL: "/reviews/" + id.Hex()}
}

func clampLimit(limit, def, max int) int64 {
	if limit <= 0 {
		return int64(def)
	}
	if limit > max {
		return int64(max)
	}
	return int64(limit)
}
