package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

func TestNotificationRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}
	ctx := context.Background()

	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	n := &model.Notification{
		ID:        "n1",
		UserID:    "user-1",
		Type:      model.NotificationPaymentVerified,
		Title:     "Payment Verified",
		Message:   "ok",
		CreatedAt: created,
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n1", "user-1", model.NotificationPaymentVerified, "Payment Verified", "ok", map[string]any{}, false, created).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO notifications").WillReturnError(errors.New("duplicate"))
	if err := repo.Create(ctx, n); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestNotificationRepositoryListByUser(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}
	ctx := context.Background()

	newer := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	columns := []string{"id", "user_id", "type", "title", "message", "metadata", "read", "created_at"}

	mock.ExpectQuery("FROM notifications").WithArgs("user-1", true, 50).WillReturnRows(
		pgxmockv3.NewRows(columns).
			AddRow("n2", "user-1", model.NotificationPaymentRejected, "Payment Failed", "no", map[string]any{"charge_id": "ch_2"}, false, newer).
			AddRow("n1", "user-1", model.NotificationPaymentVerified, "Payment Verified", "ok", map[string]any{}, false, older),
	)
	items, err := repo.ListByUser(ctx, "user-1", true, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "n2" || items[0].Metadata["charge_id"] != "ch_2" {
		t.Fatalf("unexpected notifications: %+v", items)
	}

	mock.ExpectQuery("FROM notifications").WithArgs("user-1", false, 10).WillReturnError(errors.New("boom"))
	if _, err := repo.ListByUser(ctx, "user-1", false, 10); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}

	errStorage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows")}}}
	if _, err := (&notificationRepository{storage: errStorage}).ListByUser(ctx, "user-1", false, 10); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}
	ctx := context.Background()

	if updated, err := repo.MarkRead(ctx, "user-1", nil); err != nil || updated != 0 {
		t.Fatalf("expected no-op for empty ids, got %d, %v", updated, err)
	}

	ids := []string{"n1", "n2", "other-user"}
	mock.ExpectExec("UPDATE notifications SET read = TRUE").WithArgs("user-1", ids).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 2))
	updated, err := repo.MarkRead(ctx, "user-1", ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated, got %d", updated)
	}

	mock.ExpectExec("UPDATE notifications SET read = TRUE").WithArgs("user-1", ids).WillReturnError(errors.New("boom"))
	if _, err := repo.MarkRead(ctx, "user-1", ids); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
