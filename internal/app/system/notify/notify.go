// Package notify delivers in-app notifications on behalf of mutations.
//
// Delivery is best effort: a failed insert is logged and counted but never
// returned, so the mutation that triggered it still succeeds.
package notify

import (
	"context"

	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/app/system/requestid"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.uber.org/zap"
)

// Notifier sends one notification.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Service stores notifications in MongoDB.
type Service struct {
	store *notificationstore.Store
	log   *zap.Logger
}

// New creates a Service.
func New(store *notificationstore.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Notify inserts n. Errors are logged, never returned.
func (s *Service) Notify(ctx context.Context, n models.Notification) {
	if _, err := s.store.Create(ctx, n); err != nil {
		requestid.Logger(ctx, s.log).Warn("notification not delivered",
			zap.String("type", n.Type),
			zap.String("user_id", n.UserID.Hex()),
			zap.Error(err))
		metrics.RecordNotification(n.Type, false)
		return
	}
	metrics.RecordNotification(n.Type, true)
}

// Recorder keeps notifications in memory. Tests use it to assert on what a
// mutation sent.
type Recorder struct {
	Sent []models.Notification
}

// Notify appends n.
func (r *Recorder) Notify(_ context.Context, n models.Notification) {
	r.Sent = append(r.Sent, n)
}

// Types returns the type of every recorded notification in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Sent))
	for i, n := range r.Sent {
		out[i] = n.Type
	}
	return out
}
