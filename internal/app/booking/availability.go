package booking

import (
	"context"
	"errors"
	"time"

	availabilitystore "github.com/dalemusser/vetmentor/internal/app/store/availability"
	"github.com/dalemusser/vetmentor/internal/app/system/timeslot"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinSlotLength is the shortest availability slot a mentor may publish.
const MinSlotLength = time.Hour

// SlotInput describes one weekly availability slot.
type SlotInput struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// parse validates the day and times and enforces the minimum length.
func (in SlotInput) parse() (timeslot.Range, error) {
	if !timeslot.ValidDay(in.DayOfWeek) {
		return timeslot.Range{}, invalid(timeslot.ErrInvalidDay)
	}
	r, err := timeslot.Parse(in.StartTime, in.EndTime)
	if err != nil {
		return timeslot.Range{}, invalid(err)
	}
	if r.Duration() < MinSlotLength {
		return timeslot.Range{}, ErrSlotTooShort
	}
	return r, nil
}

// checkSlotOverlap rejects r when it overlaps any of existing other than
// the slot being edited.
func checkSlotOverlap(existing []models.Availability, editing primitive.ObjectID, r timeslot.Range) error {
	for _, a := range existing {
		if a.ID == editing {
			continue
		}
		other, err := timeslot.Parse(a.StartTime, a.EndTime)
		if err != nil {
			continue
		}
		if r.Overlaps(other) {
			return ErrSlotOverlap
		}
	}
	return nil
}

// CreateSlot publishes a weekly slot for the calling mentor.
func (s *Service) CreateSlot(ctx context.Context, me primitive.ObjectID, in SlotInput) (models.Availability, error) {
	if err := s.requireMentorRole(ctx, me); err != nil {
		return models.Availability{}, err
	}
	r, err := in.parse()
	if err != nil {
		return models.Availability{}, err
	}
	existing, err := s.slots.ListForUserDay(ctx, me, in.DayOfWeek)
	if err != nil {
		return models.Availability{}, err
	}
	if err := checkSlotOverlap(existing, primitive.NilObjectID, r); err != nil {
		return models.Availability{}, err
	}
	return s.slots.Create(ctx, models.Availability{
		UserID:    me,
		DayOfWeek: in.DayOfWeek,
		StartTime: r.StartClock(),
		EndTime:   r.EndClock(),
		CreatedAt: s.now(),
	})
}

// requireMentorRole checks that me is an active account with the mentor role.
func (s *Service) requireMentorRole(ctx context.Context, me primitive.ObjectID) error {
	u, err := s.activeUser(ctx, me)
	if err != nil {
		return err
	}
	if !u.IsMentor {
		return ErrMentorsOnly
	}
	return nil
}

// ownSlot loads a slot and checks that me owns it.
func (s *Service) ownSlot(ctx context.Context, me, id primitive.ObjectID) (models.Availability, error) {
	a, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, availabilitystore.ErrNotFound) {
		return models.Availability{}, ErrSlotNotFound
	}
	if err != nil {
		return models.Availability{}, err
	}
	if a.UserID != me {
		return models.Availability{}, ErrNotSlotOwner
	}
	return a, nil
}

// UpdateSlot moves or resizes one of the caller's slots.
func (s *Service) UpdateSlot(ctx context.Context, me, id primitive.ObjectID, in SlotInput) (models.Availability, error) {
	if err := s.requireMentorRole(ctx, me); err != nil {
		return models.Availability{}, err
	}
	if _, err := s.ownSlot(ctx, me, id); err != nil {
		return models.Availability{}, err
	}
	r, err := in.parse()
	if err != nil {
		return models.Availability{}, err
	}
	existing, err := s.slots.ListForUserDay(ctx, me, in.DayOfWeek)
	if err != nil {
		return models.Availability{}, err
	}
	if err := checkSlotOverlap(existing, id, r); err != nil {
		return models.Availability{}, err
	}
	a, err := s.slots.Update(ctx, id, in.DayOfWeek, r.StartClock(), r.EndClock())
	if errors.Is(err, availabilitystore.ErrNotFound) {
		return models.Availability{}, ErrSlotNotFound
	}
	return a, err
}

// DeleteSlot removes one of the caller's slots. Owners who dropped the
// mentor role may still clear slots they left behind.
func (s *Service) DeleteSlot(ctx context.Context, me, id primitive.ObjectID) error {
	if _, err := s.activeUser(ctx, me); err != nil {
		return err
	}
	if _, err := s.ownSlot(ctx, me, id); err != nil {
		return err
	}
	err := s.slots.Delete(ctx, id)
	if errors.Is(err, availabilitystore.ErrNotFound) {
		return ErrSlotNotFound
	}
	return err
}

// ListSlots returns a user's weekly slots ordered by day and start. A day
// between 0 and 6 narrows the list to that day.
func (s *Service) ListSlots(ctx context.Context, userID primitive.ObjectID, day int) ([]models.Availability, error) {
	var (
		rows []models.Availability
		err  error
	)
	if day >= 0 {
		if !timeslot.ValidDay(day) {
			return nil, invalid(timeslot.ErrInvalidDay)
		}
		rows, err = s.slots.ListForUserDay(ctx, userID, day)
	} else {
		rows, err = s.slots.ListForUser(ctx, userID)
	}
	if rows == nil && err == nil {
		rows = []models.Availability{}
	}
	return rows, err
}

// Window is an open, bookable range on a specific date.
type Window struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// busyOn collects the ranges a mentor already has requested or booked on date.
func (s *Service) busyOn(ctx context.Context, mentorID primitive.ObjectID, date string) ([]timeslot.Range, error) {
	reqs, err := s.requests.HoldingSlotsOn(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.ActiveOn(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]timeslot.Range, 0, len(reqs)+len(sess))
	for _, r := range reqs {
		if rr, err := timeslot.Parse(r.StartTime, r.EndTime); err == nil {
			busy = append(busy, rr)
		}
	}
	for _, ss := range sess {
		if rr, err := timeslot.Parse(ss.StartTime, ss.EndTime); err == nil {
			busy = append(busy, rr)
		}
	}
	return busy, nil
}

// slotRanges converts slots to ranges, skipping malformed rows.
func slotRanges(slots []models.Availability) []timeslot.Range {
	out := make([]timeslot.Range, 0, len(slots))
	for _, a := range slots {
		if r, err := timeslot.Parse(a.StartTime, a.EndTime); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// openWindows subtracts busy from every slot.
func openWindows(date string, slots, busy []timeslot.Range) []Window {
	out := []Window{}
	for _, slot := range slots {
		for _, free := range timeslot.Subtract(slot, busy) {
			out = append(out, Window{Date: date, StartTime: free.StartClock(), EndTime: free.EndClock()})
		}
	}
	return out
}

// WindowsForDate lists the mentor's open ranges on date: the weekly slots of
// that weekday minus pending and accepted requests and active sessions.
func (s *Service) WindowsForDate(ctx context.Context, mentorID primitive.ObjectID, date string) ([]Window, error) {
	if _, err := s.activeMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	day, err := timeslot.Weekday(date)
	if err != nil {
		return nil, invalid(err)
	}
	slots, err := s.slots.ListForUserDay(ctx, mentorID, day)
	if err != nil {
		return nil, err
	}
	busy, err := s.busyOn(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}
	return openWindows(date, slotRanges(slots), busy), nil
}
