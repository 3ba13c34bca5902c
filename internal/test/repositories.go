package test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/domain/model"
)

// ListingRepositoryStub serves configured listings and records sweep calls.
type ListingRepositoryStub struct {
	Institutions []model.Institution
	Programs     []model.Program
	Bursaries    []model.Bursary

	ListErr             error
	DeactivateExpiredFn func(context.Context, model.ListingKind, time.Time) (int64, error)
	SummaryFn           func(context.Context, time.Time, time.Time) (*model.DeadlineSummary, error)

	mu              sync.Mutex
	DeactivateCalls []model.ListingKind
}

func (s *ListingRepositoryStub) ListInstitutions(context.Context) ([]model.Institution, error) {
	return s.Institutions, s.ListErr
}

func (s *ListingRepositoryStub) ListPrograms(context.Context) ([]model.Program, error) {
	return s.Programs, s.ListErr
}

func (s *ListingRepositoryStub) ListBursaries(context.Context) ([]model.Bursary, error) {
	return s.Bursaries, s.ListErr
}

// DeactivateExpired applies the override or flips flags on the in-memory listings.
func (s *ListingRepositoryStub) DeactivateExpired(ctx context.Context, kind model.ListingKind, now time.Time) (int64, error) {
	s.mu.Lock()
	s.DeactivateCalls = append(s.DeactivateCalls, kind)
	s.mu.Unlock()

	if s.DeactivateExpiredFn != nil {
		return s.DeactivateExpiredFn(ctx, kind, now)
	}

	var n int64
	switch kind {
	case model.ListingInstitutions:
		for i := range s.Institutions {
			inst := &s.Institutions[i]
			if inst.ApplicationDeadline != nil && inst.ApplicationDeadline.Before(now) && inst.IsFeatured {
				inst.IsFeatured = false
				n++
			}
		}
	case model.ListingPrograms:
		for i := range s.Programs {
			p := &s.Programs[i]
			if p.ApplicationDeadline != nil && p.ApplicationDeadline.Before(now) && (p.IsAvailable == nil || *p.IsAvailable) {
				p.IsAvailable = Bool(false)
				n++
			}
		}
	case model.ListingBursaries:
		for i := range s.Bursaries {
			b := &s.Bursaries[i]
			if b.ApplicationDeadline != nil && b.ApplicationDeadline.Before(now) && (b.IsActive == nil || *b.IsActive) {
				b.IsActive = Bool(false)
				n++
			}
		}
	}
	return n, nil
}

func (s *ListingRepositoryStub) Summary(ctx context.Context, now, horizon time.Time) (*model.DeadlineSummary, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx, now, horizon)
	}
	return &model.DeadlineSummary{}, nil
}

// ApplicationRepositoryStub keeps applications in memory keyed by id.
type ApplicationRepositoryStub struct {
	mu   sync.Mutex
	Apps map[string]*model.Application

	GetByChargeIDFn        func(context.Context, string) (*model.Application, error)
	UpdatePaymentStatusFn  func(context.Context, string, model.PaymentStatus, model.ApplicationStatus) (bool, error)
	ClaimPendingPaymentsFn func(context.Context, time.Time, time.Time, int) ([]model.Application, error)

	UpdateCalls []ApplicationUpdateCall
}

// ApplicationUpdateCall captures UpdatePaymentStatus invocation arguments.
type ApplicationUpdateCall struct {
	ApplicationID string
	PaymentStatus model.PaymentStatus
	Status        model.ApplicationStatus
}

// NewApplicationRepositoryStub seeds the stub with apps.
func NewApplicationRepositoryStub(apps ...model.Application) *ApplicationRepositoryStub {
	s := &ApplicationRepositoryStub{Apps: make(map[string]*model.Application, len(apps))}
	for i := range apps {
		app := apps[i]
		s.Apps[app.ID] = &app
	}
	return s
}

// GetByChargeID matches the charge id or the payment reference.
func (s *ApplicationRepositoryStub) GetByChargeID(ctx context.Context, chargeID string) (*model.Application, error) {
	if s.GetByChargeIDFn != nil {
		return s.GetByChargeIDFn(ctx, chargeID)
	}
	return s.Lookup(chargeID)
}

// Lookup is the in-memory GetByChargeID, usable from GetByChargeIDFn overrides.
func (s *ApplicationRepositoryStub) Lookup(chargeID string) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.Apps {
		if (app.ChargeID != nil && *app.ChargeID == chargeID) || (app.PaymentReference != nil && *app.PaymentReference == chargeID) {
			copied := *app
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// UpdatePaymentStatus applies the same conditional update as the database, atomically.
func (s *ApplicationRepositoryStub) UpdatePaymentStatus(ctx context.Context, id string, payment model.PaymentStatus, status model.ApplicationStatus, from []model.ApplicationStatus) (bool, error) {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, ApplicationUpdateCall{ApplicationID: id, PaymentStatus: payment, Status: status})
	s.mu.Unlock()

	if s.UpdatePaymentStatusFn != nil {
		return s.UpdatePaymentStatusFn(ctx, id, payment, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.Apps[id]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if !slices.Contains(from, app.Status) || (app.PaymentStatus == payment && app.Status == status) {
		return false, nil
	}
	app.PaymentStatus = payment
	app.Status = status
	return true, nil
}

// ClaimPendingPayments rotates pending applications by their last poll time.
func (s *ApplicationRepositoryStub) ClaimPendingPayments(ctx context.Context, before, now time.Time, limit int) ([]model.Application, error) {
	if s.ClaimPendingPaymentsFn != nil {
		return s.ClaimPendingPaymentsFn(ctx, before, now, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*model.Application
	for _, app := range s.Apps {
		if app.PaymentStatus == model.PaymentStatusPending && app.GatewayReference() != "" && app.UpdatedAt.Before(before) {
			due = append(due, app)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].LastPolledAt, due[j].LastPolledAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return due[i].UpdatedAt.Before(due[j].UpdatedAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]model.Application, 0, len(due))
	for _, app := range due {
		polled := now
		app.LastPolledAt = &polled
		out = append(out, *app)
	}
	return out, nil
}

// Get returns a copy of the stored application.
func (s *ApplicationRepositoryStub) Get(id string) (model.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.Apps[id]
	if !ok {
		return model.Application{}, false
	}
	return *app, true
}

// NotificationRepositoryStub stores notifications in memory.
type NotificationRepositoryStub struct {
	mu            sync.Mutex
	Notifications []model.Notification

	CreateErr  error
	ListErr    error
	MarkReadFn func(context.Context, string, []string) (int64, error)
}

func (s *NotificationRepositoryStub) Create(_ context.Context, n *model.Notification) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, *n)
	return nil
}

// ListByUser returns the user's notifications newest first.
func (s *NotificationRepositoryStub) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.Notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationRepositoryStub) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(ctx, userID, ids)
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.Notifications {
		item := &s.Notifications[i]
		if _, ok := wanted[item.ID]; ok && item.UserID == userID && !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

// ByType counts stored notifications of the given type for a user.
func (s *NotificationRepositoryStub) ByType(userID string, typ model.NotificationType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.Notifications {
		if n.UserID == userID && n.Type == typ {
			count++
		}
	}
	return count
}

// LedgerStub is an in-memory callback ledger.
type LedgerStub struct {
	mu      sync.Mutex
	keys    map[string]struct{}
	ClaimFn func(context.Context, string, time.Duration) (bool, error)
}

func (l *LedgerStub) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.ClaimFn != nil {
		return l.ClaimFn(ctx, key, ttl)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.keys == nil {
		l.keys = make(map[string]struct{})
	}
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = struct{}{}
	return true, nil
}

func (l *LedgerStub) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
	return nil
}

// Has reports whether key is currently claimed.
func (l *LedgerStub) Has(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Time returns a pointer to v.
func Time(v time.Time) *time.Time { return &v }
