package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reminder sends reminders for sessions starting within lead.
type Reminder interface {
	SendSessionReminders(ctx context.Context, lead time.Duration) (int, error)
}

// Digester sends activity digests covering the last window.
type Digester interface {
	SendDailyDigests(ctx context.Context, window time.Duration) (int, error)
}

// SessionReminderJob creates a job that reminds participants of sessions
// starting within lead. It checks every interval.
func SessionReminderJob(r Reminder, logger *zap.Logger, interval, lead time.Duration) Job {
	return Job{
		Name:       "session-reminders",
		Interval:   interval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			n, err := r.SendSessionReminders(ctx, lead)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("sent session reminders",
					zap.Int("sessions", n),
					zap.Duration("lead", lead))
			}
			return nil
		},
	}
}

// DailyDigestJob creates a job that sends each active user a summary of
// the activity since the previous run.
func DailyDigestJob(d Digester, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "daily-digest",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := d.SendDailyDigests(ctx, interval)
			if err != nil {
				return err
			}
			logger.Info("sent daily digests", zap.Int("users", n))
			return nil
		},
	}
}
