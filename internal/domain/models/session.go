// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the lifecycle state of a mentorship session.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionNoShow     SessionStatus = "no_show"
	SessionCancelled  SessionStatus = "cancelled"
)

// IsValid reports whether s is a known session status.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionNoShow, SessionCancelled:
		return true
	}
	return false
}

// IsActive reports whether a session in this state still occupies its slot.
func (s SessionStatus) IsActive() bool {
	return s == SessionScheduled || s == SessionInProgress
}

// sessionTransitions lists the statuses each status may move to.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled:  {SessionInProgress, SessionCancelled, SessionNoShow},
	SessionInProgress: {SessionCompleted, SessionNoShow},
}

// CanTransition reports whether a session may move from s to next.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is the scheduled meeting created once a request is accepted.
// StartsAt/EndsAt are absolute instants resolved in the mentor's time zone.
type Session struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID  primitive.ObjectID `bson:"request_id" json:"request_id"`
	MentorID   primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`
	MenteeID   primitive.ObjectID `bson:"mentee_id" json:"mentee_id"`
	Date       string             `bson:"date" json:"date"`
	StartTime  string             `bson:"start_time" json:"start_time"`
	EndTime    string             `bson:"end_time" json:"end_time"`
	StartsAt   time.Time          `bson:"starts_at" json:"starts_at"`
	EndsAt     time.Time          `bson:"ends_at" json:"ends_at"`
	Subject    string             `bson:"subject" json:"subject"`
	MeetingURL string             `bson:"meeting_url,omitempty" json:"meeting_url,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`

	Status           SessionStatus       `bson:"status" json:"status"`
	StartedAt        *time.Time          `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt      *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CancelledAt      *time.Time          `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancelledBy      *primitive.ObjectID `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelReason     string              `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	NoShowReportedBy *primitive.ObjectID `bson:"no_show_reported_by,omitempty" json:"no_show_reported_by,omitempty"`
	ReminderSentAt   *time.Time          `bson:"reminder_sent_at,omitempty" json:"reminder_sent_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Counterpart is the other participant, filled on list reads.
	Counterpart *Party `bson:"-" json:"counterpart,omitempty"`
}

// IsParticipant reports whether userID is the session's mentor or mentee.
func (s Session) IsParticipant(userID primitive.ObjectID) bool {
	return userID == s.MentorID || userID == s.MenteeID
}

// OtherParticipant returns the participant who is not userID.
func (s Session) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	if userID == s.MentorID {
		return s.MenteeID
	}
	return s.MentorID
}

// Duration is the scheduled length of the session.
func (s Session) Duration() time.Duration {
	return s.EndsAt.Sub(s.StartsAt)
}
