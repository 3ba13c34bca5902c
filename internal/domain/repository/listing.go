package repository

import (
	"context"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// ListingRepository reads listings and maintains their availability flags.
type ListingRepository interface {
	ListInstitutions(ctx context.Context) ([]model.Institution, error)
	ListPrograms(ctx context.Context) ([]model.Program, error)
	ListBursaries(ctx context.Context) ([]model.Bursary, error)
	// DeactivateExpired counts still-active rows whose deadline passed before now,
	// clears their availability flag, and returns the count.
	DeactivateExpired(ctx context.Context, kind model.ListingKind, now time.Time) (int64, error)
	Summary(ctx context.Context, now, horizon time.Time) (*model.DeadlineSummary, error)
}
