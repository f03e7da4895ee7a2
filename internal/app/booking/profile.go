package booking

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	userstore "github.com/dalemusser/vetmentor/internal/app/store/users"
	"github.com/dalemusser/vetmentor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/vetmentor/internal/app/system/normalize"
	"github.com/dalemusser/vetmentor/internal/app/system/paging"
	"github.com/dalemusser/vetmentor/internal/app/system/timeslot"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileInput carries profile fields from the client. Nil fields are left
// unchanged by UpdateProfile.
type ProfileInput struct {
	IsMentor *bool   `json:"is_mentor"`
	IsMentee *bool   `json:"is_mentee"`
	Bio      *string `json:"bio"`

	Branch         *string `json:"branch"`
	Rank           *string `json:"rank"`
	MilitaryStatus *string `json:"military_status"`
	YearsOfService *int    `json:"years_of_service"`
	Specialty      *string `json:"specialty"`

	CurrentTitle *string   `json:"current_title"`
	Company      *string   `json:"company"`
	Industry     *string   `json:"industry"`
	Expertise    *[]string `json:"expertise"`
	LinkedInURL  *string   `json:"linkedin_url"`

	Location *string `json:"location"`
	TimeZone *string `json:"timezone"`
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, me primitive.ObjectID) (models.User, error) {
	return s.activeUser(ctx, me)
}

// GetUser returns an active account by id.
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.activeUser(ctx, id)
}

// CompleteProfile finishes onboarding: it sets the roles and background
// fields and marks the profile complete. At least one role is required.
func (s *Service) CompleteProfile(ctx context.Context, me primitive.ObjectID, in ProfileInput) (models.User, error) {
	if !deref(in.IsMentor) && !deref(in.IsMentee) {
		return models.User{}, ErrSelectRole
	}
	upd, err := in.toUpdate()
	if err != nil {
		return models.User{}, err
	}
	done := true
	upd.ProfileComplete = &done
	return s.saveProfile(ctx, me, upd)
}

// UpdateProfile applies the fields present in in. Clearing both roles is
// rejected.
func (s *Service) UpdateProfile(ctx context.Context, me primitive.ObjectID, in ProfileInput) (models.User, error) {
	if in.IsMentor != nil || in.IsMentee != nil {
		cur, err := s.activeUser(ctx, me)
		if err != nil {
			return models.User{}, err
		}
		mentor, mentee := cur.IsMentor, cur.IsMentee
		if in.IsMentor != nil {
			mentor = *in.IsMentor
		}
		if in.IsMentee != nil {
			mentee = *in.IsMentee
		}
		if !mentor && !mentee {
			return models.User{}, ErrSelectRole
		}
	}
	upd, err := in.toUpdate()
	if err != nil {
		return models.User{}, err
	}
	return s.saveProfile(ctx, me, upd)
}

func (s *Service) saveProfile(ctx context.Context, me primitive.ObjectID, upd userstore.ProfileUpdate) (models.User, error) {
	u, err := s.users.UpdateProfile(ctx, me, upd, s.now())
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

// toUpdate validates and cleans the input.
func (in ProfileInput) toUpdate() (userstore.ProfileUpdate, error) {
	upd := userstore.ProfileUpdate{
		IsMentor:       in.IsMentor,
		IsMentee:       in.IsMentee,
		YearsOfService: in.YearsOfService,
		Expertise:      in.Expertise,
	}

	label := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := normalize.Label(htmlsanitize.PlainText(*p, htmlsanitize.MaxShort))
		return &v
	}
	upd.Branch = label(in.Branch)
	upd.Rank = label(in.Rank)
	upd.Specialty = label(in.Specialty)
	upd.CurrentTitle = label(in.CurrentTitle)
	upd.Company = label(in.Company)
	upd.Industry = label(in.Industry)
	upd.Location = label(in.Location)

	if in.Bio != nil {
		bio := htmlsanitize.PlainText(*in.Bio, htmlsanitize.MaxLong)
		upd.Bio = &bio
	}
	if in.MilitaryStatus != nil {
		ms := strings.ToLower(strings.TrimSpace(*in.MilitaryStatus))
		if !models.IsValidMilitaryStatus(ms) {
			return upd, ErrInvalidMilitary
		}
		upd.MilitaryStatus = &ms
	}
	if in.YearsOfService != nil && (*in.YearsOfService < 0 || *in.YearsOfService > 60) {
		return upd, ErrInvalidYears
	}
	if in.TimeZone != nil {
		tz := strings.TrimSpace(*in.TimeZone)
		if tz == "" {
			tz = "UTC"
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return upd, ErrInvalidTimeZone
		}
		upd.TimeZone = &tz
	}
	if in.LinkedInURL != nil {
		link := strings.TrimSpace(*in.LinkedInURL)
		if err := checkLink(link); err != nil {
			return upd, err
		}
		upd.LinkedInURL = &link
	}
	return upd, nil
}

// checkLink accepts an empty string or an absolute http(s) URL.
func checkLink(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

func deref(b *bool) bool {
	return b != nil && *b
}

// MentorSearch narrows SearchMentors. DayOfWeek is -1 for any day.
type MentorSearch struct {
	Query     string
	Branch    string
	Industry  string
	Expertise string
	DayOfWeek int
	Page      paging.Params
}

// SearchMentors lists searchable mentors other than the caller.
func (s *Service) SearchMentors(ctx context.Context, me primitive.ObjectID, q MentorSearch) (paging.Page[models.User], error) {
	f := userstore.MentorFilter{
		Query:     q.Query,
		Branch:    normalize.Label(q.Branch),
		Industry:  normalize.Label(q.Industry),
		Expertise: q.Expertise,
		ExcludeID: me,
		Page:      q.Page,
	}
	if q.DayOfWeek >= 0 {
		if !timeslot.ValidDay(q.DayOfWeek) {
			return paging.Page[models.User]{}, invalid(timeslot.ErrInvalidDay)
		}
		ids, err := s.slots.UserIDsOnDay(ctx, q.DayOfWeek)
		if err != nil {
			return paging.Page[models.User]{}, err
		}
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		f.MentorIDs = ids
	}

	rows, res, err := s.users.SearchMentors(ctx, f)
	if err != nil {
		return paging.Page[models.User]{}, err
	}
	return paging.NewPage(rows, res,
		func(u models.User) string { return u.FullNameCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	), nil
}

// Identity is the identity provider's view of an account.
type Identity = userstore.Identity

// SyncIdentity creates or refreshes the local account for an identity
// provider user. New accounts get a welcome notification.
func (s *Service) SyncIdentity(ctx context.Context, id Identity) (models.User, bool, error) {
	u, created, err := s.users.UpsertFromIdentity(ctx, id, s.now())
	if err != nil {
		return models.User{}, false, err
	}
	if created {
		s.notifier.Notify(ctx, models.Notification{
			UserID:    u.ID,
			Type:      models.NotifyWelcome,
			Title:     "Welcome to VetMentor",
			Message:   "Complete your profile to start connecting with mentors and mentees.",
			Action:    s.link(&models.NotificationAction{Label: "Complete profile", URL: "/onboarding"}),
			CreatedAt: s.now(),
		})
	}
	return u, created, nil
}

// DeleteIdentity marks the account deleted and removes its availability.
func (s *Service) DeleteIdentity(ctx context.Context, externalID string) (models.User, error) {
	u, err := s.users.MarkDeleted(ctx, externalID, s.now())
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.slots.DeleteForUser(ctx, u.ID); err != nil {
		return u, err
	}
	return u, nil
}
