package dto

import "github.com/polkiloo/apply4me/internal/domain/model"

// MarkReadRequest marks the listed notifications of userId as read.
type MarkReadRequest struct {
	NotificationIDs []string `json:"notificationIds" validate:"required,min=1,max=100,dive,notblank"`
	UserID          string   `json:"userId" validate:"required,notblank"`
}

type MarkReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

type NotificationsResponse struct {
	Success       bool                 `json:"success"`
	Notifications []model.Notification `json:"notifications"`
}
