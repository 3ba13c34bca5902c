package handlers

import (
	"context"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/server/http/middleware"
)

// PaymentFacade reconciles gateway callbacks.
type PaymentFacade interface {
	HandleCallback(ctx context.Context, params map[string]string) (*model.Reconciliation, error)
}

// DeadlineFacade exposes deadline evaluation and the expiry sweep.
type DeadlineFacade interface {
	DeadlineSummary(ctx context.Context) (*model.DeadlineSummary, error)
	MarkExpiredItemsInactive(ctx context.Context) model.SweepResult
	DeadlineStatus(deadline time.Time) model.DeadlineStatus
}

// ListingFacade provides filtered listings.
type ListingFacade interface {
	OpenInstitutions(ctx context.Context) ([]model.Institution, error)
	OpenPrograms(ctx context.Context) ([]model.Program, error)
	ActiveBursaries(ctx context.Context) ([]model.Bursary, error)
	UpcomingDeadlines(ctx context.Context, daysAhead int) ([]model.Listing, error)
}

// NotificationFacade provides a user's notifications.
type NotificationFacade interface {
	Notifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// PortalFacade aggregates the full set of operations used across handlers and middleware.
type PortalFacade interface {
	PaymentFacade
	DeadlineFacade
	ListingFacade
	NotificationFacade
	HealthFacade
	middleware.TokenParser
	middleware.AdminVerifier
}
