package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/domain/repository"
	"github.com/polkiloo/apply4me/internal/pkg/auth"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
)

// CallbackVerifier checks the signature carried by callback parameters.
type CallbackVerifier interface {
	Verify(params map[string]string) bool
}

// Notifier delivers user notifications.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) (*model.Notification, error)
}

// PaymentOptions tunes the reconciler.
type PaymentOptions struct {
	DedupTTL   time.Duration
	PendingAge time.Duration
}

// PaymentUseCase applies payment gateway outcomes to applications.
type PaymentUseCase struct {
	applications repository.ApplicationRepository
	notifier     Notifier
	verifier     CallbackVerifier
	ledger       repository.CallbackLedger
	clock        clock.Clock
	logger       *slog.Logger
	opts         PaymentOptions
}

// NewPaymentUseCase constructs PaymentUseCase. ledger may be nil.
func NewPaymentUseCase(
	applications repository.ApplicationRepository,
	notifier Notifier,
	verifier CallbackVerifier,
	ledger repository.CallbackLedger,
	c clock.Clock,
	logger *slog.Logger,
	opts PaymentOptions,
) *PaymentUseCase {
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	if opts.PendingAge <= 0 {
		opts.PendingAge = 15 * time.Minute
	}
	return &PaymentUseCase{
		applications: applications,
		notifier:     notifier,
		verifier:     verifier,
		ledger:       ledger,
		clock:        c,
		logger:       logger,
		opts:         opts,
	}
}

// MapGatewayStatus maps a gateway charge status to the payment and application status pair.
func MapGatewayStatus(status model.GatewayStatus) (model.PaymentStatus, model.ApplicationStatus, error) {
	switch model.GatewayStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case model.GatewayStatusSuccessful:
		return model.PaymentStatusCompleted, model.ApplicationStatusSubmitted, nil
	case model.GatewayStatusFailed:
		return model.PaymentStatusFailed, model.ApplicationStatusPaymentFailed, nil
	case model.GatewayStatusCancelled:
		return model.PaymentStatusCancelled, model.ApplicationStatusPaymentCancelled, nil
	default:
		return "", "", fmt.Errorf("%w: %q", domainErrors.ErrUnknownPaymentStatus, status)
	}
}

// HandleCallback verifies and applies an inbound gateway callback.
func (u *PaymentUseCase) HandleCallback(ctx context.Context, params map[string]string) (*model.Reconciliation, error) {
	chargeID := strings.TrimSpace(params["id"])
	if chargeID == "" {
		chargeID = strings.TrimSpace(params["chargeId"])
	}

	if !u.verifier.Verify(params) {
		u.logger.Warn("rejected payment callback with invalid signature",
			slog.String("event", "security"),
			slog.String("charge_id", chargeID),
		)
		return nil, domainErrors.ErrInvalidSignature
	}

	if chargeID == "" {
		return nil, domainErrors.ErrMissingChargeID
	}
	status := model.GatewayStatus(strings.ToLower(strings.TrimSpace(params["status"])))
	if status == "" {
		return nil, domainErrors.ErrMissingStatus
	}

	return u.ReconcileCharge(ctx, chargeID, status)
}

// ReconcileCharge applies a gateway status to the application holding chargeID.
// Repeated calls with the same charge and status are reported as duplicates and
// have no side effects. Outcomes arriving after the application left the payment
// stages are ignored.
func (u *PaymentUseCase) ReconcileCharge(ctx context.Context, chargeID string, status model.GatewayStatus) (*model.Reconciliation, error) {
	payment, appStatus, err := MapGatewayStatus(status)
	if err != nil {
		return nil, err
	}

	result := &model.Reconciliation{
		ChargeID:      chargeID,
		PaymentStatus: payment,
		Status:        appStatus,
	}

	key := ledgerKey(chargeID, status)
	claimed, err := u.claim(ctx, key)
	if err != nil {
		u.logger.Warn("callback ledger unavailable, relying on status check",
			slog.String("charge_id", chargeID),
			slog.Any("error", err),
		)
		claimed = true
	}
	if !claimed {
		u.logger.Info("duplicate payment callback ignored", slog.String("charge_id", chargeID), slog.String("status", string(status)))
		result.Duplicate = true
		return result, nil
	}

	app, err := u.applications.GetByChargeID(ctx, chargeID)
	if err != nil {
		u.release(ctx, key)
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("payment callback for unknown charge", slog.String("charge_id", chargeID))
		}
		return nil, fmt.Errorf("find application for charge %s: %w", chargeID, err)
	}
	result.ApplicationID = app.ID

	if app.PaymentStatus == payment && app.Status == appStatus {
		result.Duplicate = true
		return result, nil
	}
	if !app.PaymentSettleable() {
		u.logger.Warn("payment outcome ignored for settled application",
			slog.String("charge_id", chargeID),
			slog.String("application_id", app.ID),
			slog.String("status", string(app.Status)),
			slog.String("gateway_status", string(status)),
		)
		result.Duplicate = true
		return result, nil
	}

	changed, err := u.applications.UpdatePaymentStatus(ctx, app.ID, payment, appStatus, model.SettleableStatuses())
	if err != nil {
		u.logger.Error("MANUAL RECONCILIATION NEEDED",
			slog.String("charge_id", chargeID),
			slog.String("application_id", app.ID),
			slog.Float64("amount", app.TotalAmount),
			slog.String("payment_status", string(payment)),
			slog.String("status", string(appStatus)),
			slog.Any("error", err),
		)
		u.release(ctx, key)
		return nil, fmt.Errorf("update application %s: %w", app.ID, err)
	}
	if !changed {
		u.logger.Info("payment status already applied by a concurrent delivery",
			slog.String("charge_id", chargeID),
			slog.String("application_id", app.ID),
		)
		result.Duplicate = true
		return result, nil
	}

	u.logger.Info("payment reconciled",
		slog.String("charge_id", chargeID),
		slog.String("application_id", app.ID),
		slog.String("payment_status", string(payment)),
	)

	if _, err := u.notifier.Notify(ctx, paymentNotification(app, chargeID, payment)); err != nil {
		u.logger.Error("failed to create payment notification",
			slog.String("application_id", app.ID),
			slog.String("user_id", app.UserID),
			slog.Any("error", err),
		)
	}

	return result, nil
}

// PendingPayments claims the next batch of applications whose payment has been
// pending longer than the configured age. Each call rotates through the backlog.
func (u *PaymentUseCase) PendingPayments(ctx context.Context, limit int) ([]model.Application, error) {
	now := u.clock.Now()
	return u.applications.ClaimPendingPayments(ctx, now.Add(-u.opts.PendingAge), now, limit)
}

func (u *PaymentUseCase) claim(ctx context.Context, key string) (bool, error) {
	if u.ledger == nil {
		return true, nil
	}
	return u.ledger.Claim(ctx, key, u.opts.DedupTTL)
}

func (u *PaymentUseCase) release(ctx context.Context, key string) {
	if u.ledger == nil {
		return
	}
	if err := u.ledger.Release(context.WithoutCancel(ctx), key); err != nil {
		u.logger.Warn("failed to release callback ledger entry", slog.String("key", key), slog.Any("error", err))
	}
}

func ledgerKey(chargeID string, status model.GatewayStatus) string {
	return "callback:" + chargeID + ":" + string(status)
}

func paymentNotification(app *model.Application, chargeID string, payment model.PaymentStatus) model.Notification {
	n := model.Notification{
		UserID: app.UserID,
		Metadata: map[string]any{
			"application_id": app.ID,
			"charge_id":      chargeID,
			"amount":         app.TotalAmount,
			"payment_status": string(payment),
		},
	}

	switch payment {
	case model.PaymentStatusCompleted:
		n.Type = model.NotificationPaymentVerified
		n.Title = "Payment Verified"
		n.Message = fmt.Sprintf("Your application fee payment of R%.2f was received and your application has been submitted.", app.TotalAmount)
	case model.PaymentStatusCancelled:
		n.Type = model.NotificationPaymentRejected
		n.Title = "Payment Cancelled"
		n.Message = "Your application fee payment was cancelled. You can retry the payment from your dashboard."
	default:
		n.Type = model.NotificationPaymentRejected
		n.Title = "Payment Failed"
		n.Message = "Your application fee payment could not be processed. Please try again."
	}
	return n
}

var _ CallbackVerifier = (*auth.CallbackSigner)(nil)
