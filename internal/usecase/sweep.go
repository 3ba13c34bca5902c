package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/domain/repository"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
)

// SweepUseCase deactivates expired listings and reports deadline counts.
type SweepUseCase struct {
	listings     repository.ListingRepository
	clock        clock.Clock
	logger       *slog.Logger
	upcomingDays int
}

// NewSweepUseCase constructs SweepUseCase. upcomingDays bounds the summary's upcoming count.
func NewSweepUseCase(listings repository.ListingRepository, c clock.Clock, logger *slog.Logger, upcomingDays int) *SweepUseCase {
	if upcomingDays <= 0 {
		upcomingDays = defaultUpcomingDaysAhead
	}
	return &SweepUseCase{listings: listings, clock: c, logger: logger, upcomingDays: upcomingDays}
}

// MarkExpiredItemsInactive clears the availability flag of every listing whose deadline
// passed. A failing collection is logged and reported as zero; the others still run.
func (u *SweepUseCase) MarkExpiredItemsInactive(ctx context.Context) model.SweepResult {
	now := u.clock.Now()
	var result model.SweepResult

	for _, kind := range model.ListingKinds {
		n, err := u.listings.DeactivateExpired(ctx, kind, now)
		if err != nil {
			u.logger.Error("failed to deactivate expired listings",
				slog.String("collection", string(kind)),
				slog.Any("error", err),
			)
			n = 0
		}

		switch kind {
		case model.ListingInstitutions:
			result.InstitutionsUpdated = n
		case model.ListingPrograms:
			result.ProgramsUpdated = n
		case model.ListingBursaries:
			result.BursariesUpdated = n
		}
	}

	u.logger.Info("expiry sweep finished",
		slog.Int64("institutions_updated", result.InstitutionsUpdated),
		slog.Int64("programs_updated", result.ProgramsUpdated),
		slog.Int64("bursaries_updated", result.BursariesUpdated),
	)
	return result
}

// Summary counts open and closed listings directly in the store.
func (u *SweepUseCase) Summary(ctx context.Context) (*model.DeadlineSummary, error) {
	now := u.clock.Now()
	horizon := now.Add(time.Duration(u.upcomingDays) * day)

	summary, err := u.listings.Summary(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("deadline summary: %w", err)
	}
	return summary, nil
}
