package repository

import (
	"context"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// ApplicationRepository describes persistence operations with applications.
type ApplicationRepository interface {
	GetByChargeID(ctx context.Context, chargeID string) (*model.Application, error)
	// UpdatePaymentStatus moves the application to payment/status only while its
	// current status is one of from and the pair differs from the stored one.
	// It reports false when nothing changed and ErrNotFound when the row is gone.
	UpdatePaymentStatus(ctx context.Context, applicationID string, payment model.PaymentStatus, status model.ApplicationStatus, from []model.ApplicationStatus) (bool, error)
	// ClaimPendingPayments returns up to limit pending applications untouched since
	// updatedBefore, least recently polled first, and stamps them as polled at now.
	ClaimPendingPayments(ctx context.Context, updatedBefore, now time.Time, limit int) ([]model.Application, error)
}
