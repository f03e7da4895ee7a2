// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyWelcome          = "welcome"
	NotifyRequestReceived  = "request_received"
	NotifyRequestAccepted  = "request_accepted"
	NotifyRequestDeclined  = "request_declined"
	NotifyRequestCancelled = "request_cancelled"
	NotifySessionReminder  = "session_reminder"
	NotifySessionStarted   = "session_started"
	NotifySessionCompleted = "session_completed"
	NotifySessionCancelled = "session_cancelled"
	NotifySessionNoShow    = "session_no_show"
	NotifyReviewReceived   = "review_received"
	NotifyReviewResponse   = "review_response"
	NotifyDailyDigest      = "daily_digest"
)

// NotificationAction is an optional call to action rendered with the notification.
type NotificationAction struct {
	Label string `bson:"label" json:"label"`
	URL   string `bson:"url" json:"url"`
}

// Notification is an entry in a user's event feed.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	ReadAt    *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Action    *NotificationAction `bson:"action,omitempty" json:"action,omitempty"`
	RelatedID *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
