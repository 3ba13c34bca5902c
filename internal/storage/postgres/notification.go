package postgres

import (
	"context"
	"fmt"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

type notificationRepository struct {
	storage *Storage
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	const query = `INSERT INTO notifications (id, user_id, type, title, message, metadata, read, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, err := r.storage.pool.Exec(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, metadata, n.Read, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	const query = `SELECT id, user_id, type, title, message, metadata, read, created_at
                   FROM notifications
                   WHERE user_id=$1 AND (NOT $2 OR read = FALSE)
                   ORDER BY created_at DESC
                   LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Metadata, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkRead only touches rows owned by userID.
func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE notifications SET read = TRUE WHERE user_id=$1 AND id = ANY($2)`
	tag, err := r.storage.pool.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
