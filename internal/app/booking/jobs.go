package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SendSessionReminders notifies both participants of every scheduled session
// starting within lead. Each session is claimed before notifying so
// overlapping runs send one reminder at most. It returns the number of
// sessions reminded.
func (s *Service) SendSessionReminders(ctx context.Context, lead time.Duration) (int, error) {
	now := s.now()
	due, err := s.sessions.DueForReminder(ctx, now, lead)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sess := range due {
		claimed, err := s.sessions.MarkReminderSent(ctx, sess.ID, now)
		if err != nil {
			s.log.Warn("reminder claim failed", zap.String("session_id", sess.ID.Hex()), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		when := sess.StartsAt.Sub(now).Round(time.Minute)
		msg := fmt.Sprintf("Your session %q starts in %s.", sess.Subject, humanDuration(when))
		for _, to := range []primitive.ObjectID{sess.MentorID, sess.MenteeID} {
			s.send(ctx, to, models.NotifySessionReminder, "Upcoming session", msg, sess.ID, sessionLink(sess.ID))
		}
		sent++
	}
	return sent, nil
}

// humanDuration renders d as "2 hours 5 minutes", "45 minutes" or "1 day".
func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	mins := int(d / time.Minute)

	out := ""
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		if out != "" {
			out += " "
		}
		out += plural(n, unit)
	}
	add(days, "day")
	add(hours, "hour")
	if days == 0 {
		add(mins, "minute")
	}
	return out
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DigestCounts is the activity one user had in a digest window.
type DigestCounts struct {
	Requests int64
	Sessions int64
	Reviews  int64
	Unread   int64 // unread notifications created in the window, digests excluded
}

// Empty reports whether there is nothing to tell the user.
func (c DigestCounts) Empty() bool {
	return c.Requests == 0 && c.Sessions == 0 && c.Reviews == 0 && c.Unread == 0
}

// Message renders the digest body.
func (c DigestCounts) Message(window time.Duration) string {
	return fmt.Sprintf("In the last %s: %s, %s, %s. You have %s.",
		humanDuration(window),
		plural(int(c.Requests), "request update"),
		plural(int(c.Sessions), "session update"),
		plural(int(c.Reviews), "new review"),
		plural(int(c.Unread), "new unread notification"),
	)
}

// SendDailyDigests sends one digest notification to every active user with
// activity in the last window. It returns the number of digests sent.
func (s *Service) SendDailyDigests(ctx context.Context, window time.Duration) (int, error) {
	since := s.now().Add(-window)
	sent := 0
	err := s.users.ForEachActive(ctx, func(u models.User) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := s.digestCounts(ctx, u, since)
		if err != nil {
			s.log.Warn("digest counts failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
			return nil
		}
		if c.Empty() {
			return nil
		}
		s.notifier.Notify(ctx, models.Notification{
			UserID:    u.ID,
			Type:      models.NotifyDailyDigest,
			Title:     "Your daily summary",
			Message:   c.Message(window),
			Action:    s.link(&models.NotificationAction{Label: "Open dashboard", URL: "/dashboard"}),
			CreatedAt: s.now(),
		})
		sent++
		return nil
	})
	return sent, err
}

func (s *Service) digestCounts(ctx context.Context, u models.User, since time.Time) (DigestCounts, error) {
	var (
		c   DigestCounts
		err error
	)
	if c.Requests, err = s.requests.CountTouchingSince(ctx, u.ID, since); err != nil {
		return c, err
	}
	if c.Sessions, err = s.sessions.CountTouchingSince(ctx, u.ID, since); err != nil {
		return c, err
	}
	if c.Reviews, err = s.reviews.CountSince(ctx, u.ID, since); err != nil {
		return c, err
	}
	if c.Unread, err = s.notifications.UnreadSince(ctx, u.ID, since, models.NotifyDailyDigest); err != nil {
		return c, err
	}
	return c, nil
}
