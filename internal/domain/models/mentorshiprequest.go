// internal/domain/models/mentorshiprequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a mentorship request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestCancelled RequestStatus = "cancelled"
)

// IsValid reports whether s is a known request status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestDeclined, RequestCancelled:
		return true
	}
	return false
}

// HoldsSlot reports whether a request in this state reserves its time range.
func (s RequestStatus) HoldsSlot() bool {
	return s == RequestPending || s == RequestAccepted
}

// MentorshipRequest is a mentee's ask for a session at a specific date and time.
// RequestedDate is "YYYY-MM-DD" interpreted in the mentor's time zone.
type MentorshipRequest struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MenteeID      primitive.ObjectID  `bson:"mentee_id" json:"mentee_id"`
	MentorID      primitive.ObjectID  `bson:"mentor_id" json:"mentor_id"`
	RequestedDate string              `bson:"requested_date" json:"requested_date"`
	StartTime     string              `bson:"start_time" json:"start_time"`
	EndTime       string              `bson:"end_time" json:"end_time"`
	Subject       string              `bson:"subject" json:"subject"`
	Message       string              `bson:"message,omitempty" json:"message,omitempty"`
	Status        RequestStatus       `bson:"status" json:"status"`
	DeclineReason string              `bson:"decline_reason,omitempty" json:"decline_reason,omitempty"`
	SessionID     *primitive.ObjectID `bson:"session_id,omitempty" json:"session_id,omitempty"`
	RespondedAt   *time.Time          `bson:"responded_at,omitempty" json:"responded_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Counterpart is filled on list reads: the mentee for incoming
	// requests, the mentor for outgoing ones.
	Counterpart *Party `bson:"-" json:"counterpart,omitempty"`
}
