package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/pkg/auth"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
	"github.com/polkiloo/apply4me/internal/test"
)

const testWebhookSecret = "whsec_test"

type paymentFixture struct {
	uc            *PaymentUseCase
	apps          *test.ApplicationRepositoryStub
	notifications *test.NotificationRepositoryStub
	ledger        *test.LedgerStub
	signer        *auth.CallbackSigner
	logs          *syncBuffer
}

func newPaymentFixture(apps ...model.Application) *paymentFixture {
	f := &paymentFixture{
		apps:          test.NewApplicationRepositoryStub(apps...),
		notifications: &test.NotificationRepositoryStub{},
		ledger:        &test.LedgerStub{},
		signer:        auth.NewCallbackSigner(testWebhookSecret, ""),
	}
	logger, logs := capturingLogger()
	f.logs = logs
	c := clock.Fixed(evalNow)
	f.uc = NewPaymentUseCase(
		f.apps,
		NewNotificationUseCase(f.notifications, c),
		f.signer,
		f.ledger,
		c,
		logger,
		PaymentOptions{},
	)
	return f
}

func (f *paymentFixture) signed(params map[string]string) map[string]string {
	params[auth.SignatureField] = f.signer.Sign(params)
	return params
}

func pendingApplication(id, userID, chargeID string) model.Application {
	return model.Application{
		ID:            id,
		UserID:        userID,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.ApplicationStatusPaymentPending,
		ChargeID:      test.String(chargeID),
		TotalAmount:   150,
		UpdatedAt:     evalNow.Add(-time.Hour),
	}
}

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		in      model.GatewayStatus
		payment model.PaymentStatus
		status  model.ApplicationStatus
		wantErr bool
	}{
		{in: "successful", payment: model.PaymentStatusCompleted, status: model.ApplicationStatusSubmitted},
		{in: "FAILED", payment: model.PaymentStatusFailed, status: model.ApplicationStatusPaymentFailed},
		{in: " cancelled ", payment: model.PaymentStatusCancelled, status: model.ApplicationStatusPaymentCancelled},
		{in: "pending", wantErr: true},
		{in: "refunded", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		payment, status, err := MapGatewayStatus(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domainErrors.ErrUnknownPaymentStatus) {
				t.Errorf("%q: expected unknown status error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
			continue
		}
		if payment != tt.payment || status != tt.status {
			t.Errorf("%q: expected (%s, %s), got (%s, %s)", tt.in, tt.payment, tt.status, payment, status)
		}
	}
}

func TestHandleCallbackSuccessfulPayment(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))

	result, err := f.uc.HandleCallback(context.Background(), f.signed(map[string]string{"id": "ch_ok", "status": "successful"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate || result.ApplicationID != "app-1" {
		t.Fatalf("unexpected result: %+v", result)
	}

	app, _ := f.apps.Get("app-1")
	if app.PaymentStatus != model.PaymentStatusCompleted || app.Status != model.ApplicationStatusSubmitted {
		t.Fatalf("expected completed/submitted, got %s/%s", app.PaymentStatus, app.Status)
	}
	if n := f.notifications.ByType("user-1", model.NotificationPaymentVerified); n != 1 {
		t.Fatalf("expected one payment_verified notification, got %d", n)
	}
	notification := f.notifications.Notifications[0]
	if notification.Read || notification.ID == "" || notification.Metadata["application_id"] != "app-1" {
		t.Fatalf("unexpected notification: %+v", notification)
	}
}

func TestHandleCallbackFailedPaymentByReference(t *testing.T) {
	app := pendingApplication("app-2", "user-2", "")
	app.ChargeID = nil
	app.PaymentReference = test.String("pf_123")
	f := newPaymentFixture(app)

	_, err := f.uc.HandleCallback(context.Background(), f.signed(map[string]string{"id": "pf_123", "status": "failed"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.apps.Get("app-2")
	if stored.PaymentStatus != model.PaymentStatusFailed || stored.Status != model.ApplicationStatusPaymentFailed {
		t.Fatalf("expected failed/payment_failed, got %s/%s", stored.PaymentStatus, stored.Status)
	}
	if n := f.notifications.ByType("user-2", model.NotificationPaymentRejected); n != 1 {
		t.Fatalf("expected one payment_rejected notification, got %d", n)
	}
}

func TestHandleCallbackChargeIDField(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-3", "user-3", "ch_alt"))

	result, err := f.uc.HandleCallback(context.Background(), f.signed(map[string]string{"chargeId": "ch_alt", "status": "cancelled"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PaymentStatus != model.PaymentStatusCancelled || result.Status != model.ApplicationStatusPaymentCancelled {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHandleCallbackTamperedSignature(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))

	params := f.signed(map[string]string{"id": "ch_ok", "status": "failed"})
	params["status"] = "successful"

	_, err := f.uc.HandleCallback(context.Background(), params)
	if !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}
	if len(f.apps.UpdateCalls) != 0 {
		t.Fatalf("expected no updates, got %+v", f.apps.UpdateCalls)
	}
	if len(f.notifications.Notifications) != 0 {
		t.Fatalf("expected no notifications, got %d", len(f.notifications.Notifications))
	}
	if !strings.Contains(f.logs.String(), `"event":"security"`) {
		t.Fatalf("expected security log entry, got %s", f.logs.String())
	}
}

func TestHandleCallbackValidation(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   error
	}{
		{name: "missing id", params: map[string]string{"status": "successful"}, want: domainErrors.ErrMissingChargeID},
		{name: "missing status", params: map[string]string{"id": "ch_ok"}, want: domainErrors.ErrMissingStatus},
		{name: "missing status is malformed", params: map[string]string{"id": "ch_ok"}, want: domainErrors.ErrInvalidCallback},
		{name: "unknown status", params: map[string]string{"id": "ch_ok", "status": "disputed"}, want: domainErrors.ErrUnknownPaymentStatus},
		{name: "unknown charge", params: map[string]string{"id": "ch_missing", "status": "failed"}, want: domainErrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
			_, err := f.uc.HandleCallback(context.Background(), f.signed(tt.params))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.apps.UpdateCalls) != 0 {
				t.Fatalf("expected no updates, got %+v", f.apps.UpdateCalls)
			}
		})
	}
}

func TestReconcileChargeIsIdempotent(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	ctx := context.Background()

	if _, err := f.uc.ReconcileCharge(ctx, "ch_ok", model.GatewayStatusSuccessful); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := f.uc.ReconcileCharge(ctx, "ch_ok", model.GatewayStatusSuccessful)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if !second.Duplicate {
		t.Fatalf("expected duplicate result, got %+v", second)
	}
	if len(f.apps.UpdateCalls) != 1 {
		t.Fatalf("expected a single update, got %d", len(f.apps.UpdateCalls))
	}
	if n := f.notifications.ByType("user-1", model.NotificationPaymentVerified); n != 1 {
		t.Fatalf("expected exactly one notification, got %d", n)
	}
}

func TestReconcileChargeWithoutLedgerUsesStoredState(t *testing.T) {
	app := pendingApplication("app-1", "user-1", "ch_ok")
	app.PaymentStatus = model.PaymentStatusCompleted
	app.Status = model.ApplicationStatusSubmitted
	apps := test.NewApplicationRepositoryStub(app)
	notifications := &test.NotificationRepositoryStub{}
	c := clock.Fixed(evalNow)
	uc := NewPaymentUseCase(apps, NewNotificationUseCase(notifications, c), test.VerifierStub{}, nil, c, discardLogger(), PaymentOptions{})

	result, err := uc.ReconcileCharge(context.Background(), "ch_ok", model.GatewayStatusSuccessful)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Duplicate || result.ApplicationID != "app-1" {
		t.Fatalf("expected duplicate for already applied status, got %+v", result)
	}
	if len(apps.UpdateCalls) != 0 || len(notifications.Notifications) != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestReconcileChargeLedgerErrorFallsBack(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	f.ledger.ClaimFn = func(context.Context, string, time.Duration) (bool, error) {
		return false, errors.New("redis down")
	}

	result, err := f.uc.ReconcileCharge(context.Background(), "ch_ok", model.GatewayStatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate || len(f.apps.UpdateCalls) != 1 {
		t.Fatalf("expected update despite ledger error, got %+v", result)
	}
}

func TestReconcileChargeUpdateFailureNeedsManualReconciliation(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	f.apps.UpdatePaymentStatusFn = func(context.Context, string, model.PaymentStatus, model.ApplicationStatus) (bool, error) {
		return false, errors.New("connection reset")
	}

	_, err := f.uc.ReconcileCharge(context.Background(), "ch_ok", model.GatewayStatusSuccessful)
	if err == nil {
		t.Fatal("expected error when update fails")
	}

	logs := f.logs.String()
	for _, want := range []string{"MANUAL RECONCILIATION NEEDED", `"charge_id":"ch_ok"`, `"application_id":"app-1"`, `"amount":150`} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected log to contain %s, got %s", want, logs)
		}
	}
	if f.ledger.Has("callback:ch_ok:successful") {
		t.Fatal("expected ledger claim to be released so the gateway retry is processed")
	}
	if len(f.notifications.Notifications) != 0 {
		t.Fatal("expected no notification on failed update")
	}
}

func TestReconcileChargeNotificationFailureIsBestEffort(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	f.notifications.CreateErr = errors.New("insert failed")

	result, err := f.uc.ReconcileCharge(context.Background(), "ch_ok", model.GatewayStatusSuccessful)
	if err != nil {
		t.Fatalf("expected notification failure to be swallowed, got %v", err)
	}
	if result.PaymentStatus != model.PaymentStatusCompleted {
		t.Fatalf("unexpected result: %+v", result)
	}
	app, _ := f.apps.Get("app-1")
	if app.PaymentStatus != model.PaymentStatusCompleted {
		t.Fatalf("expected status update to persist, got %s", app.PaymentStatus)
	}
	if !strings.Contains(f.logs.String(), "failed to create payment notification") {
		t.Fatalf("expected notification failure log, got %s", f.logs.String())
	}
}

func TestReconcileChargeNotFoundReleasesClaim(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.uc.ReconcileCharge(context.Background(), "ch_unknown", model.GatewayStatusFailed)
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.ledger.Has("callback:ch_unknown:failed") {
		t.Fatal("expected claim to be released")
	}
}

func TestReconcileChargeConcurrentDeliveriesNotifyOnce(t *testing.T) {
	apps := test.NewApplicationRepositoryStub(pendingApplication("app-1", "user-1", "ch_race"))
	notifications := &test.NotificationRepositoryStub{}
	c := clock.Fixed(evalNow)
	uc := NewPaymentUseCase(apps, NewNotificationUseCase(notifications, c), test.VerifierStub{}, nil, c, discardLogger(), PaymentOptions{})

	// Both deliveries read the pending row before either writes.
	var arrived sync.WaitGroup
	arrived.Add(2)
	apps.GetByChargeIDFn = func(_ context.Context, chargeID string) (*model.Application, error) {
		app, err := apps.Lookup(chargeID)
		arrived.Done()
		arrived.Wait()
		return app, err
	}

	results := make([]*model.Reconciliation, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.ReconcileCharge(context.Background(), "ch_race", model.GatewayStatusSuccessful)
		}(i)
	}
	wg.Wait()

	duplicates := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("delivery %d failed: %v", i, errs[i])
		}
		if results[i].Duplicate {
			duplicates++
		}
	}
	if duplicates != 1 {
		t.Fatalf("expected exactly one delivery reported as duplicate, got %d", duplicates)
	}
	if n := notifications.ByType("user-1", model.NotificationPaymentVerified); n != 1 {
		t.Fatalf("expected exactly one payment_verified notification, got %d", n)
	}
}

func TestReconcileChargeLateFailureKeepsSubmittedApplication(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	ctx := context.Background()

	if _, err := f.uc.ReconcileCharge(ctx, "ch_ok", model.GatewayStatusSuccessful); err != nil {
		t.Fatalf("successful reconcile: %v", err)
	}
	late, err := f.uc.ReconcileCharge(ctx, "ch_ok", model.GatewayStatusFailed)
	if err != nil {
		t.Fatalf("late failure: %v", err)
	}
	if !late.Duplicate {
		t.Fatalf("expected late failure to be ignored, got %+v", late)
	}

	app, _ := f.apps.Get("app-1")
	if app.PaymentStatus != model.PaymentStatusCompleted || app.Status != model.ApplicationStatusSubmitted {
		t.Fatalf("expected completed/submitted to survive, got %s/%s", app.PaymentStatus, app.Status)
	}
	if n := f.notifications.ByType("user-1", model.NotificationPaymentRejected); n != 0 {
		t.Fatalf("expected no rejection notification, got %d", n)
	}
	if !strings.Contains(f.logs.String(), "payment outcome ignored for settled application") {
		t.Fatalf("expected ignored outcome log, got %s", f.logs.String())
	}
}

func TestReconcileChargeRetryAfterFailureSubmits(t *testing.T) {
	app := pendingApplication("app-1", "user-1", "ch_retry")
	app.PaymentStatus = model.PaymentStatusFailed
	app.Status = model.ApplicationStatusPaymentFailed
	f := newPaymentFixture(app)

	result, err := f.uc.ReconcileCharge(context.Background(), "ch_retry", model.GatewayStatusSuccessful)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate {
		t.Fatalf("expected a failed payment to be recoverable, got %+v", result)
	}
	stored, _ := f.apps.Get("app-1")
	if stored.Status != model.ApplicationStatusSubmitted {
		t.Fatalf("expected submitted, got %s", stored.Status)
	}
}

func TestReconcileChargeUnchangedRowIsDuplicate(t *testing.T) {
	f := newPaymentFixture(pendingApplication("app-1", "user-1", "ch_ok"))
	f.apps.UpdatePaymentStatusFn = func(context.Context, string, model.PaymentStatus, model.ApplicationStatus) (bool, error) {
		return false, nil
	}

	result, err := f.uc.ReconcileCharge(context.Background(), "ch_ok", model.GatewayStatusSuccessful)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Duplicate {
		t.Fatalf("expected duplicate when the row did not change, got %+v", result)
	}
	if len(f.notifications.Notifications) != 0 {
		t.Fatalf("expected no notification, got %d", len(f.notifications.Notifications))
	}
	if !f.ledger.Has("callback:ch_ok:successful") {
		t.Fatal("expected ledger claim to be kept for an applied status")
	}
}

func TestPendingPayments(t *testing.T) {
	stale := pendingApplication("stale", "u", "ch_stale")
	stale.UpdatedAt = evalNow.Add(-time.Hour)
	fresh := pendingApplication("fresh", "u", "ch_fresh")
	fresh.UpdatedAt = evalNow.Add(-time.Minute)
	f := newPaymentFixture(stale, fresh)

	apps, err := f.uc.PendingPayments(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 1 || apps[0].ID != "stale" {
		t.Fatalf("expected only stale application, got %+v", apps)
	}
	stored, _ := f.apps.Get("stale")
	if stored.LastPolledAt == nil || !stored.LastPolledAt.Equal(evalNow) {
		t.Fatalf("expected claimed application to be stamped, got %v", stored.LastPolledAt)
	}
}

func TestPendingPaymentsRotatesBacklog(t *testing.T) {
	var apps []model.Application
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		app := pendingApplication(id, "u", "ch_"+id)
		app.UpdatedAt = evalNow.Add(-time.Duration(10-i) * time.Hour)
		apps = append(apps, app)
	}
	f := newPaymentFixture(apps...)

	seen := map[string]int{}
	for tick := 0; tick < 3; tick++ {
		batch, err := f.uc.PendingPayments(context.Background(), 2)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if len(batch) != 2 {
			t.Fatalf("tick %d: expected a full batch, got %d", tick, len(batch))
		}
		for _, app := range batch {
			seen[app.ID]++
		}
	}
	if len(seen) != len(apps) {
		t.Fatalf("expected every pending application to be polled within three ticks, got %v", seen)
	}
}

func TestPaymentNotificationContent(t *testing.T) {
	app := &model.Application{ID: "a", UserID: "u", TotalAmount: 100}

	verified := paymentNotification(app, "ch", model.PaymentStatusCompleted)
	if verified.Type != model.NotificationPaymentVerified || !strings.Contains(verified.Message, "R100.00") {
		t.Fatalf("unexpected verified notification: %+v", verified)
	}
	cancelled := paymentNotification(app, "ch", model.PaymentStatusCancelled)
	if cancelled.Type != model.NotificationPaymentRejected || cancelled.Title != "Payment Cancelled" {
		t.Fatalf("unexpected cancelled notification: %+v", cancelled)
	}
	failed := paymentNotification(app, "ch", model.PaymentStatusFailed)
	if failed.Type != model.NotificationPaymentRejected || failed.Title != "Payment Failed" {
		t.Fatalf("unexpected failed notification: %+v", failed)
	}
}
