package model

// GatewayStatus is the charge status reported by the payment gateway.
type GatewayStatus string

const (
	GatewayStatusSuccessful GatewayStatus = "successful"
	GatewayStatusFailed     GatewayStatus = "failed"
	GatewayStatusCancelled  GatewayStatus = "cancelled"
	GatewayStatusPending    GatewayStatus = "pending"
)

// Charge is a gateway transaction as returned by the charge lookup API.
type Charge struct {
	ID       string
	Status   GatewayStatus
	Amount   int64
	Currency string
}

// Reconciliation is the outcome of applying a gateway status to an application.
type Reconciliation struct {
	ChargeID      string
	ApplicationID string
	PaymentStatus PaymentStatus
	Status        ApplicationStatus
	Duplicate     bool
}
