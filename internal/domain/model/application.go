package model

import "time"

// ApplicationStatus describes the application lifecycle.
type ApplicationStatus string

const (
	ApplicationStatusDraft            ApplicationStatus = "draft"
	ApplicationStatusPaymentPending   ApplicationStatus = "payment_pending"
	ApplicationStatusSubmitted        ApplicationStatus = "submitted"
	ApplicationStatusPaymentFailed    ApplicationStatus = "payment_failed"
	ApplicationStatusPaymentCancelled ApplicationStatus = "payment_cancelled"
	ApplicationStatusProcessing       ApplicationStatus = "processing"
	ApplicationStatusCompleted        ApplicationStatus = "completed"
	ApplicationStatusRejected         ApplicationStatus = "rejected"
)

// PaymentStatus describes the application fee payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Application is a student's application carrying the fee payment state.
type Application struct {
	ID               string
	UserID           string
	PaymentStatus    PaymentStatus
	Status           ApplicationStatus
	PaymentReference *string
	ChargeID         *string
	TotalAmount      float64
	UpdatedAt        time.Time
	LastPolledAt     *time.Time
}

// PaymentSettleable reports whether a gateway outcome may still change the application.
// Applications that were submitted or moved further along keep their status.
func (a Application) PaymentSettleable() bool {
	switch a.Status {
	case ApplicationStatusDraft, ApplicationStatusPaymentPending, ApplicationStatusPaymentFailed, ApplicationStatusPaymentCancelled:
		return true
	default:
		return false
	}
}

// SettleableStatuses lists the application statuses a payment outcome may transition from.
func SettleableStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusDraft,
		ApplicationStatusPaymentPending,
		ApplicationStatusPaymentFailed,
		ApplicationStatusPaymentCancelled,
	}
}

// GatewayReference returns the identifier the payment gateway knows this application by.
func (a Application) GatewayReference() string {
	if a.ChargeID != nil && *a.ChargeID != "" {
		return *a.ChargeID
	}
	if a.PaymentReference != nil {
		return *a.PaymentReference
	}
	return ""
}
