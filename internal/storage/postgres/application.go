package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/domain/model"
)

type applicationRepository struct {
	storage *Storage
}

const applicationColumns = `id, user_id, payment_status, status, payment_reference, yoco_charge_id, total_amount, updated_at, last_polled_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(&a.ID, &a.UserID, &a.PaymentStatus, &a.Status, &a.PaymentReference, &a.ChargeID, &a.TotalAmount, &a.UpdatedAt, &a.LastPolledAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByChargeID prefers a match on the gateway charge id over the payment reference.
func (r *applicationRepository) GetByChargeID(ctx context.Context, chargeID string) (*model.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications
                   WHERE yoco_charge_id=$1 OR payment_reference=$1
                   ORDER BY CASE WHEN yoco_charge_id=$1 THEN 0 ELSE 1 END, updated_at DESC
                   LIMIT 1`
	app, err := scanApplication(r.storage.pool.QueryRow(ctx, query, chargeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) UpdatePaymentStatus(ctx context.Context, applicationID string, payment model.PaymentStatus, status model.ApplicationStatus, from []model.ApplicationStatus) (bool, error) {
	const query = `UPDATE applications SET payment_status=$1, status=$2, updated_at=NOW()
                   WHERE id=$3 AND status = ANY($4) AND NOT (payment_status=$1 AND status=$2)`
	tag, err := r.storage.pool.Exec(ctx, query, payment, status, applicationID, statusNames(from))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	const exists = `SELECT EXISTS(SELECT 1 FROM applications WHERE id=$1)`
	var found bool
	if err := r.storage.pool.QueryRow(ctx, exists, applicationID).Scan(&found); err != nil {
		return false, err
	}
	if !found {
		return false, domainErrors.ErrNotFound
	}
	return false, nil
}

func (r *applicationRepository) ClaimPendingPayments(ctx context.Context, updatedBefore, now time.Time, limit int) ([]model.Application, error) {
	const query = `UPDATE applications SET last_polled_at=$3
                   WHERE id IN (
                       SELECT id FROM applications
                       WHERE payment_status=$1
                         AND COALESCE(yoco_charge_id, payment_reference, '') <> ''
                         AND updated_at < $2
                       ORDER BY last_polled_at NULLS FIRST, updated_at
                       LIMIT $4
                       FOR UPDATE SKIP LOCKED)
                   RETURNING ` + applicationColumns
	rows, err := r.storage.pool.Query(ctx, query, model.PaymentStatusPending, updatedBefore, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func statusNames(statuses []model.ApplicationStatus) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}
