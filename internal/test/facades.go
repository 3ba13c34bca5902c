package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
	pkgAuth "github.com/polkiloo/apply4me/internal/pkg/auth"
)

// PaymentFacadeStub provides controllable webhook handling.
type PaymentFacadeStub struct {
	HandleFn func(context.Context, map[string]string) (*model.Reconciliation, error)
}

// HandleCallback delegates to HandleFn or reports a successful reconciliation.
func (s PaymentFacadeStub) HandleCallback(ctx context.Context, params map[string]string) (*model.Reconciliation, error) {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, params)
	}
	return &model.Reconciliation{
		ChargeID:      params["id"],
		ApplicationID: "app-1",
		PaymentStatus: model.PaymentStatusCompleted,
		Status:        model.ApplicationStatusSubmitted,
	}, nil
}

// DeadlineFacadeStub simulates sweep and status operations.
type DeadlineFacadeStub struct {
	SummaryFn func(context.Context) (*model.DeadlineSummary, error)
	SweepFn   func(context.Context) model.SweepResult
	StatusFn  func(time.Time) model.DeadlineStatus
}

func (s DeadlineFacadeStub) DeadlineSummary(ctx context.Context) (*model.DeadlineSummary, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx)
	}
	return &model.DeadlineSummary{OpenInstitutions: 1}, nil
}

func (s DeadlineFacadeStub) MarkExpiredItemsInactive(ctx context.Context) model.SweepResult {
	if s.SweepFn != nil {
		return s.SweepFn(ctx)
	}
	return model.SweepResult{}
}

func (s DeadlineFacadeStub) DeadlineStatus(deadline time.Time) model.DeadlineStatus {
	if s.StatusFn != nil {
		return s.StatusFn(deadline)
	}
	return model.DeadlineStatus{IsOpen: true, DaysRemaining: 20, UrgencyLevel: model.UrgencyOpen, Message: "20 days remaining"}
}

// ListingFacadeStub returns configured listings.
type ListingFacadeStub struct {
	Institutions []model.Institution
	Programs     []model.Program
	Bursaries    []model.Bursary
	Upcoming     []model.Listing
	Err          error
	UpcomingFn   func(context.Context, int) ([]model.Listing, error)
}

func (s ListingFacadeStub) OpenInstitutions(context.Context) ([]model.Institution, error) {
	return s.Institutions, s.Err
}

func (s ListingFacadeStub) OpenPrograms(context.Context) ([]model.Program, error) {
	return s.Programs, s.Err
}

func (s ListingFacadeStub) ActiveBursaries(context.Context) ([]model.Bursary, error) {
	return s.Bursaries, s.Err
}

func (s ListingFacadeStub) UpcomingDeadlines(ctx context.Context, days int) ([]model.Listing, error) {
	if s.UpcomingFn != nil {
		return s.UpcomingFn(ctx, days)
	}
	return s.Upcoming, s.Err
}

// NotificationFacadeStub simulates notification endpoints.
type NotificationFacadeStub struct {
	ListFn     func(context.Context, string, bool, int) ([]model.Notification, error)
	MarkReadFn func(context.Context, string, []string) (int64, error)
}

func (s NotificationFacadeStub) Notifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID, unreadOnly, limit)
	}
	return []model.Notification{{ID: "n1", UserID: userID, Type: model.NotificationPaymentVerified}}, nil
}

func (s NotificationFacadeStub) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(ctx, userID, ids)
	}
	return int64(len(ids)), nil
}

// HealthFacadeStub reports configured store health.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// TokenParserStub returns configured subject or error.
type TokenParserStub struct {
	Subject string
	Err     error
}

// ParseToken satisfies middleware.TokenParser.
func (s TokenParserStub) ParseToken(string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Subject == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	return s.Subject, nil
}

// AdminVerifierStub accepts exactly Key.
type AdminVerifierStub struct {
	Key string
}

// ErrAdminKeyMismatch is returned by AdminVerifierStub for unknown keys.
var ErrAdminKeyMismatch = errors.New("admin key mismatch")

func (s AdminVerifierStub) VerifyAdminKey(key string) error {
	if s.Key == "" || key != s.Key {
		return ErrAdminKeyMismatch
	}
	return nil
}

// PortalFacadeStub aggregates every handler facade stub.
type PortalFacadeStub struct {
	PaymentFacadeStub
	DeadlineFacadeStub
	ListingFacadeStub
	NotificationFacadeStub
	HealthFacadeStub
	TokenParserStub
	AdminVerifierStub
}

// LimiterStub allows the first Limit calls per key.
type LimiterStub struct {
	mu    sync.Mutex
	calls map[string]int
	Keys  []string
}

func (l *LimiterStub) Allow(_ context.Context, key string, limit int, _ time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[key]++
	l.Keys = append(l.Keys, key)
	return l.calls[key] <= limit
}

// ReconcileCall stores information about ReconcileCharge invocations.
type ReconcileCall struct {
	ChargeID string
	Status   model.GatewayStatus
}

// WorkerFacadeStub mimics poller interactions with the portal facade.
type WorkerFacadeStub struct {
	Pending       [][]model.Application
	PendingFn     func(context.Context, int) ([]model.Application, error)
	FetchFn       func(context.Context, string) (*model.Charge, error)
	ReconcileFn   func(context.Context, string, model.GatewayStatus) (*model.Reconciliation, error)
	Reconciled    []ReconcileCall
	mu            sync.Mutex
	pendingCalls  int32
	fetchAttempts int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// FetchAttempts reports how many charge lookups were made.
func (s *WorkerFacadeStub) FetchAttempts() int {
	return int(atomic.LoadInt32(&s.fetchAttempts))
}

// PendingPayments returns batches from configured queue.
func (s *WorkerFacadeStub) PendingPayments(ctx context.Context, limit int) ([]model.Application, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.pendingCalls, 1)
	if int(call) <= len(s.Pending) {
		return s.Pending[call-1], nil
	}
	return nil, nil
}

// FetchCharge returns configured charge or a successful one.
func (s *WorkerFacadeStub) FetchCharge(ctx context.Context, chargeID string) (*model.Charge, error) {
	atomic.AddInt32(&s.fetchAttempts, 1)
	if s.FetchFn != nil {
		return s.FetchFn(ctx, chargeID)
	}
	return &model.Charge{ID: chargeID, Status: model.GatewayStatusSuccessful}, nil
}

// ReconcileCharge records reconciliation requests.
func (s *WorkerFacadeStub) ReconcileCharge(ctx context.Context, chargeID string, status model.GatewayStatus) (*model.Reconciliation, error) {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, chargeID, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, ReconcileCall{ChargeID: chargeID, Status: status})
	return &model.Reconciliation{ChargeID: chargeID, ApplicationID: "app-" + chargeID}, nil
}

// SweepRunnerStub counts sweep invocations.
type SweepRunnerStub struct {
	runs int32
}

func (s *SweepRunnerStub) MarkExpiredItemsInactive(context.Context) model.SweepResult {
	atomic.AddInt32(&s.runs, 1)
	return model.SweepResult{ProgramsUpdated: 1}
}

// Runs reports how many sweeps were executed.
func (s *SweepRunnerStub) Runs() int {
	return int(atomic.LoadInt32(&s.runs))
}
