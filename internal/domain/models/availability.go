// internal/domain/models/availability.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability is a weekly recurring window in which a mentor takes sessions.
// StartTime and EndTime are "HH:MM" wall-clock times in the owner's time zone.
type Availability struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	DayOfWeek int                `bson:"day_of_week" json:"day_of_week"` // 0 = Sunday
	StartTime string             `bson:"start_time" json:"start_time"`
	EndTime   string             `bson:"end_time" json:"end_time"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
