package model

import "time"

// NotificationType categorises user notifications.
type NotificationType string

const (
	NotificationPaymentVerified NotificationType = "payment_verified"
	NotificationPaymentRejected NotificationType = "payment_rejected"
)

// Notification is a user-facing message created as a side effect of a payment change.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
