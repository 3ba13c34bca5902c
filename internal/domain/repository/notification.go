package repository

import (
	"context"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// NotificationRepository stores user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}
