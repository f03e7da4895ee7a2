// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubRatings are optional per-aspect scores, each 1..5 when present.
type SubRatings struct {
	Communication *int `bson:"communication,omitempty" json:"communication,omitempty"`
	Knowledge     *int `bson:"knowledge,omitempty" json:"knowledge,omitempty"`
	Helpfulness   *int `bson:"helpfulness,omitempty" json:"helpfulness,omitempty"`
}

// ReviewResponse is the reviewee's single public reply.
type ReviewResponse struct {
	Text        string    `bson:"text" json:"text"`
	RespondedAt time.Time `bson:"responded_at" json:"responded_at"`
}

// Review is one participant's rating of the other for a completed session.
// There is at most one review per (SessionID, ReviewerID).
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  primitive.ObjectID `bson:"session_id" json:"session_id"`
	ReviewerID primitive.ObjectID `bson:"reviewer_id" json:"reviewer_id"`
	RevieweeID primitive.ObjectID `bson:"reviewee_id" json:"reviewee_id"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
	SubRatings *SubRatings        `bson:"sub_ratings,omitempty" json:"sub_ratings,omitempty"`
	Response   *ReviewResponse    `bson:"response,omitempty" json:"response,omitempty"`

	Reported     bool                `bson:"reported" json:"reported"`
	ReportReason string              `bson:"report_reason,omitempty" json:"-"`
	ReportedBy   *primitive.ObjectID `bson:"reported_by,omitempty" json:"-"`
	ReportedAt   *time.Time          `bson:"reported_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	Reviewer *Party `bson:"-" json:"reviewer,omitempty"`
}
