package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/domain/repository"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// NotificationUseCase creates and serves user notifications.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	clock         clock.Clock
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(notifications repository.NotificationRepository, c clock.Clock) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, clock: c}
}

// Notify stores n as a new unread notification.
func (u *NotificationUseCase) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	n.ID = uuid.NewString()
	n.Read = false
	n.CreatedAt = u.clock.Now().UTC()
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}

	if err := u.notifications.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

// List returns the user's notifications, newest first.
func (u *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	return u.notifications.ListByUser(ctx, userID, unreadOnly, normalizeLimit(limit))
}

// MarkRead marks the given notifications of userID as read and returns how many changed.
func (u *NotificationUseCase) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return u.notifications.MarkRead(ctx, userID, ids)
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultNotificationLimit
	case limit > maxNotificationLimit:
		return maxNotificationLimit
	default:
		return limit
	}
}
