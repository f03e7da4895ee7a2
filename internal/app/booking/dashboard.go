package booking

import (
	"context"
	"math"

	sessionstore "github.com/dalemusser/vetmentor/internal/app/store/sessions"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleSummary is one side of a user's activity.
type RoleSummary struct {
	SessionsByStatus map[models.SessionStatus]int64 `json:"sessions_by_status"`
	UpcomingSessions int64                          `json:"upcoming_sessions"`
	PendingRequests  int64                          `json:"pending_requests"`
	Hours            float64                        `json:"hours"`
}

// MentorSummary adds review figures to the mentor side.
type MentorSummary struct {
	RoleSummary
	ReviewCount   int64   `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

// Summary is the dashboard view of a user. Mentor and Mentee are present
// only for the roles the user holds.
type Summary struct {
	Mentor              *MentorSummary  `json:"mentor,omitempty"`
	Mentee              *RoleSummary    `json:"mentee,omitempty"`
	UnreadNotifications int64           `json:"unread_notifications"`
	NextSession         *models.Session `json:"next_session"`
}

func (s *Service) roleSummary(ctx context.Context, me primitive.ObjectID, role, requestField string) (RoleSummary, error) {
	stats, err := s.sessions.StatsForRole(ctx, me, role)
	if err != nil {
		return RoleSummary{}, err
	}
	upcoming, err := s.sessions.CountUpcoming(ctx, me, role, s.now())
	if err != nil {
		return RoleSummary{}, err
	}
	pending, err := s.requests.CountByStatus(ctx, requestField, me, models.RequestPending)
	if err != nil {
		return RoleSummary{}, err
	}
	return RoleSummary{
		SessionsByStatus: stats.ByStatus,
		UpcomingSessions: upcoming,
		PendingRequests:  pending,
		Hours:            math.Round(stats.CompletedHours*100) / 100,
	}, nil
}

// Dashboard summarizes the caller's sessions, requests and reviews.
func (s *Service) Dashboard(ctx context.Context, me primitive.ObjectID) (Summary, error) {
	u, err := s.activeUser(ctx, me)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	if u.IsMentor {
		rs, err := s.roleSummary(ctx, me, sessionstore.RoleMentor, "mentor_id")
		if err != nil {
			return Summary{}, err
		}
		agg, err := s.reviews.Aggregate(ctx, me)
		if err != nil {
			return Summary{}, err
		}
		out.Mentor = &MentorSummary{RoleSummary: rs, ReviewCount: agg.Count, AverageRating: agg.Average}
	}
	if u.IsMentee {
		rs, err := s.roleSummary(ctx, me, sessionstore.RoleMentee, "mentee_id")
		if err != nil {
			return Summary{}, err
		}
		out.Mentee = &rs
	}

	if out.UnreadNotifications, err = s.notifications.UnreadCount(ctx, me); err != nil {
		return Summary{}, err
	}
	if out.NextSession, err = s.sessions.NextUpcoming(ctx, me, s.now()); err != nil {
		return Summary{}, err
	}
	return out, nil
}
