package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

type listingRepository struct {
	storage *Storage
}

func (r *listingRepository) ListInstitutions(ctx context.Context) ([]model.Institution, error) {
	const query = `SELECT id, name, application_deadline, is_featured FROM institutions ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Institution
	for rows.Next() {
		var i model.Institution
		if err := rows.Scan(&i.ID, &i.Name, &i.ApplicationDeadline, &i.IsFeatured); err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *listingRepository) ListPrograms(ctx context.Context) ([]model.Program, error) {
	const query = `SELECT id, institution_id, name, application_deadline, is_available FROM programs ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Program
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.Name, &p.ApplicationDeadline, &p.IsAvailable); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *listingRepository) ListBursaries(ctx context.Context) ([]model.Bursary, error) {
	const query = `SELECT id, title, provider, application_deadline, is_active FROM bursaries ORDER BY title`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Bursary
	for rows.Next() {
		var b model.Bursary
		if err := rows.Scan(&b.ID, &b.Title, &b.Provider, &b.ApplicationDeadline, &b.IsActive); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeactivateExpired counts first and then applies the update with the same
// predicate, so the reported number never depends on the driver's command tag.
func (r *listingRepository) DeactivateExpired(ctx context.Context, kind model.ListingKind, now time.Time) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countExpiredQuery(table), now).Scan(&count); err != nil {
			return fmt.Errorf("count expired %s: %w", table.name, err)
		}
		if count == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, deactivateExpiredQuery(table), now); err != nil {
			return fmt.Errorf("deactivate expired %s: %w", table.name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *listingRepository) Summary(ctx context.Context, now, horizon time.Time) (*model.DeadlineSummary, error) {
	var s model.DeadlineSummary
	err := r.storage.pool.QueryRow(ctx, summaryQuery(), now, horizon).Scan(
		&s.OpenInstitutions, &s.ClosedInstitutions,
		&s.OpenPrograms, &s.ClosedPrograms,
		&s.ActiveBursaries, &s.ExpiredBursaries,
		&s.UpcomingDeadlines,
	)
	if err != nil {
		return nil, fmt.Errorf("deadline summary: %w", err)
	}
	return &s, nil
}
