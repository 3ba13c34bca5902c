package app

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/usecase"
)

// ChargeFetcher looks up a charge at the payment gateway.
type ChargeFetcher interface {
	FetchCharge(ctx context.Context, chargeID string) (*model.Charge, error)
}

// HealthChecker reports store connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PortalFacade is the single entry point used by HTTP handlers and background workers.
type PortalFacade struct {
	auth          *usecase.AuthUseCase
	listings      *usecase.ListingUseCase
	sweep         *usecase.SweepUseCase
	payments      *usecase.PaymentUseCase
	notifications *usecase.NotificationUseCase
	charges       ChargeFetcher
	health        HealthChecker
}

// FacadeParams lists PortalFacade dependencies.
type FacadeParams struct {
	fx.In

	Auth          *usecase.AuthUseCase
	Listings      *usecase.ListingUseCase
	Sweep         *usecase.SweepUseCase
	Payments      *usecase.PaymentUseCase
	Notifications *usecase.NotificationUseCase
	Charges       ChargeFetcher
	Health        HealthChecker
}

func NewPortalFacade(p FacadeParams) *PortalFacade {
	return &PortalFacade{
		auth:          p.Auth,
		listings:      p.Listings,
		sweep:         p.Sweep,
		payments:      p.Payments,
		notifications: p.Notifications,
		charges:       p.Charges,
		health:        p.Health,
	}
}

func (f *PortalFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *PortalFacade) VerifyAdminKey(key string) error {
	return f.auth.VerifyAdminKey(key)
}

func (f *PortalFacade) HandleCallback(ctx context.Context, params map[string]string) (*model.Reconciliation, error) {
	return f.payments.HandleCallback(ctx, params)
}

func (f *PortalFacade) PendingPayments(ctx context.Context, limit int) ([]model.Application, error) {
	return f.payments.PendingPayments(ctx, limit)
}

func (f *PortalFacade) FetchCharge(ctx context.Context, chargeID string) (*model.Charge, error) {
	return f.charges.FetchCharge(ctx, chargeID)
}

func (f *PortalFacade) ReconcileCharge(ctx context.Context, chargeID string, status model.GatewayStatus) (*model.Reconciliation, error) {
	return f.payments.ReconcileCharge(ctx, chargeID, status)
}

func (f *PortalFacade) DeadlineSummary(ctx context.Context) (*model.DeadlineSummary, error) {
	return f.sweep.Summary(ctx)
}

func (f *PortalFacade) MarkExpiredItemsInactive(ctx context.Context) model.SweepResult {
	return f.sweep.MarkExpiredItemsInactive(ctx)
}

func (f *PortalFacade) DeadlineStatus(deadline time.Time) model.DeadlineStatus {
	return f.listings.DeadlineStatus(deadline)
}

func (f *PortalFacade) OpenInstitutions(ctx context.Context) ([]model.Institution, error) {
	return f.listings.OpenInstitutions(ctx)
}

func (f *PortalFacade) OpenPrograms(ctx context.Context) ([]model.Program, error) {
	return f.listings.OpenPrograms(ctx)
}

func (f *PortalFacade) ActiveBursaries(ctx context.Context) ([]model.Bursary, error) {
	return f.listings.ActiveBursaries(ctx)
}

func (f *PortalFacade) UpcomingDeadlines(ctx context.Context, daysAhead int) ([]model.Listing, error) {
	return f.listings.UpcomingDeadlines(ctx, daysAhead)
}

func (f *PortalFacade) Notifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	return f.notifications.List(ctx, userID, unreadOnly, limit)
}

func (f *PortalFacade) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	return f.notifications.MarkRead(ctx, userID, ids)
}

func (f *PortalFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
