// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	"github.com/dalemusser/vetmentor/internal/app/system/ratelimit"
	"github.com/dalemusser/vetmentor/internal/app/system/requestid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Identity controls logging for identity-provider webhook events.
	Identity string
	// Booking controls logging for request, session and review lifecycle events.
	Booking string
}

// Uniform applies one destination to every category.
func Uniform(dest string) Config {
	return Config{Identity: dest, Booking: dest}
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.EntityID != nil {
		fields = append(fields, zap.String("entity_id", event.EntityID.Hex()))
	}
	if event.ExternalID != "" {
		fields = append(fields, zap.String("external_id", event.ExternalID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryIdentity:
		setting = l.config.Identity
	case audit.CategoryBooking:
		setting = l.config.Booking
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if event.RequestID == "" {
		event.RequestID = requestid.FromContext(ctx)
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Identity Events ---

// Identity logs a processed identity-provider webhook for one account.
func (l *Logger) Identity(ctx context.Context, r *http.Request, eventType, externalID string, userID *primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryIdentity,
		EventType:  eventType,
		UserID:     userID,
		ExternalID: externalID,
		IP:         ratelimit.ClientIP(r),
		Success:    true,
	})
}

// WebhookRejected logs a webhook that failed verification or decoding.
func (l *Logger) WebhookRejected(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryIdentity,
		EventType:     audit.EventWebhookRejected,
		IP:            ratelimit.ClientIP(r),
		Success:       false,
		FailureReason: reason,
	})
}

// --- Booking Events ---

// Booking logs a lifecycle change of a request, session or review made by actorID.
func (l *Logger) Booking(ctx context.Context, eventType string, actorID, entityID primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBooking,
		EventType: eventType,
		ActorID:   &actorID,
		EntityID:  &entityID,
		Success:   true,
		Details:   details,
	})
}
