// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values.
const (
	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

// Military status values.
const (
	MilitaryActive  = "active"
	MilitaryVeteran = "veteran"
	MilitaryReserve = "reserve"
	MilitaryGuard   = "guard"
	MilitaryRetired = "retired"
)

// User is a platform account. A user may be a mentor, a mentee, or both.
//
// NOTE:
//   - ExternalID is the identity provider's user id; accounts are created by
//     the identity webhook, never by the API directly.
//   - ExpertiseCI mirrors Expertise folded for equality search.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"external_id" json:"external_id"`
	Email      string             `bson:"email" json:"email"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`
	ImageURL   string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`

	IsMentor        bool `bson:"is_mentor" json:"is_mentor"`
	IsMentee        bool `bson:"is_mentee" json:"is_mentee"`
	ProfileComplete bool `bson:"profile_complete" json:"profile_complete"`

	// Military background
	Branch         string `bson:"branch,omitempty" json:"branch,omitempty"`
	BranchCI       string `bson:"branch_ci,omitempty" json:"-"`
	Rank           string `bson:"rank,omitempty" json:"rank,omitempty"`
	MilitaryStatus string `bson:"military_status,omitempty" json:"military_status,omitempty"`
	YearsOfService int    `bson:"years_of_service,omitempty" json:"years_of_service,omitempty"`
	Specialty      string `bson:"specialty,omitempty" json:"specialty,omitempty"`

	// Professional background
	CurrentTitle string   `bson:"current_title,omitempty" json:"current_title,omitempty"`
	Company      string   `bson:"company,omitempty" json:"company,omitempty"`
	Industry     string   `bson:"industry,omitempty" json:"industry,omitempty"`
	IndustryCI   string   `bson:"industry_ci,omitempty" json:"-"`
	Expertise    []string `bson:"expertise,omitempty" json:"expertise,omitempty"`
	ExpertiseCI  []string `bson:"expertise_ci,omitempty" json:"-"`
	LinkedInURL  string   `bson:"linkedin_url,omitempty" json:"linkedin_url,omitempty"`

	Location string `bson:"location,omitempty" json:"location,omitempty"`
	TimeZone string `bson:"timezone,omitempty" json:"timezone,omitempty"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Loc returns the user's time zone, falling back to UTC when unset or unknown.
func (u User) Loc() *time.Location {
	if u.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Party is the public card of a user shown beside their bookings and reviews.
type Party struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"full_name"`
	ImageURL string             `json:"image_url,omitempty"`
}

// Card returns the user's public card.
func (u User) Card() *Party {
	return &Party{ID: u.ID, FullName: u.FullName, ImageURL: u.ImageURL}
}

// IsActive reports whether the account has not been deleted.
func (u User) IsActive() bool {
	return u.Status != UserStatusDeleted
}

// IsValidMilitaryStatus reports whether s is a known military status (empty allowed).
func IsValidMilitaryStatus(s string) bool {
	switch s {
	case "", MilitaryActive, MilitaryVeteran, MilitaryReserve, MilitaryGuard, MilitaryRetired:
		return true
	}
	return false
}
