package booking

import (
	"context"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parties loads public cards for ids with one lookup. Deleted accounts are
// left out, so their rows list without a counterpart.
func (s *Service) parties(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Party, error) {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	uniq := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	users, err := s.users.GetMany(ctx, uniq)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*models.Party, len(users))
	for id, u := range users {
		if u.IsActive() {
			out[id] = u.Card()
		}
	}
	return out, nil
}

func (s *Service) withRequestCounterparts(ctx context.Context, me primitive.ObjectID, rows []models.MentorshipRequest) error {
	other := func(r models.MentorshipRequest) primitive.ObjectID {
		if r.MentorID == me {
			return r.MenteeID
		}
		return r.MentorID
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = other(r)
	}
	cards, err := s.parties(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Counterpart = cards[other(rows[i])]
	}
	return nil
}

func (s *Service) withSessionCounterparts(ctx context.Context, me primitive.ObjectID, rows []models.Session) error {
	ids := make([]primitive.ObjectID, len(rows))
	for i, ss := range rows {
		ids[i] = ss.OtherParticipant(me)
	}
	cards, err := s.parties(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Counterpart = cards[rows[i].OtherParticipant(me)]
	}
	return nil
}

func (s *Service) withReviewers(ctx context.Context, rows []models.Review) error {
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ReviewerID
	}
	cards, err := s.parties(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Reviewer = cards[rows[i].ReviewerID]
	}
	return nil
}
