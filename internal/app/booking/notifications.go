package booking

import (
	"context"
	"errors"

	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListNotifications returns the caller's feed, newest first.
func (s *Service) ListNotifications(ctx context.Context, me primitive.ObjectID, unreadOnly bool, limit int) ([]models.Notification, error) {
	rows, err := s.notifications.ListForUser(ctx, me, unreadOnly, clampLimit(limit, 50, 200))
	if rows == nil && err == nil {
		rows = []models.Notification{}
	}
	return rows, err
}

// UnreadCount counts the caller's unread notifications.
func (s *Service) UnreadCount(ctx context.Context, me primitive.ObjectID) (int64, error) {
	return s.notifications.UnreadCount(ctx, me)
}

// MarkRead marks one of the caller's notifications read.
func (s *Service) MarkRead(ctx context.Context, me, id primitive.ObjectID) error {
	err := s.notifications.MarkRead(ctx, id, me, s.now())
	if errors.Is(err, notificationstore.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks every unread notification of the caller read.
func (s *Service) MarkAllRead(ctx context.Context, me primitive.ObjectID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, me, s.now())
}

// DeleteNotification removes one of the caller's notifications.
func (s *Service) DeleteNotification(ctx context.Context, me, id primitive.ObjectID) error {
	err := s.notifications.Delete(ctx, id, me)
	if errors.Is(err, notificationstore.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
