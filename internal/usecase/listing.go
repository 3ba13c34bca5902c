package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/domain/repository"
)

// ListingUseCase serves listings filtered by their deadlines.
type ListingUseCase struct {
	listings  repository.ListingRepository
	evaluator *DeadlineEvaluator
}

// NewListingUseCase constructs ListingUseCase.
func NewListingUseCase(listings repository.ListingRepository, evaluator *DeadlineEvaluator) *ListingUseCase {
	return &ListingUseCase{listings: listings, evaluator: evaluator}
}

func (u *ListingUseCase) OpenInstitutions(ctx context.Context) ([]model.Institution, error) {
	items, err := u.listings.ListInstitutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return u.evaluator.FilterOpenInstitutions(items), nil
}

func (u *ListingUseCase) OpenPrograms(ctx context.Context) ([]model.Program, error) {
	items, err := u.listings.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return u.evaluator.FilterOpenPrograms(items), nil
}

func (u *ListingUseCase) ActiveBursaries(ctx context.Context) ([]model.Bursary, error) {
	items, err := u.listings.ListBursaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bursaries: %w", err)
	}
	return u.evaluator.FilterActiveBursaries(items), nil
}

// UpcomingDeadlines collects listings of every kind closing within daysAhead days.
func (u *ListingUseCase) UpcomingDeadlines(ctx context.Context, daysAhead int) ([]model.Listing, error) {
	institutions, err := u.listings.ListInstitutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	programs, err := u.listings.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	bursaries, err := u.listings.ListBursaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bursaries: %w", err)
	}

	all := make([]model.Listing, 0, len(institutions)+len(programs)+len(bursaries))
	for _, i := range institutions {
		all = append(all, i)
	}
	for _, p := range programs {
		all = append(all, p)
	}
	for _, b := range bursaries {
		all = append(all, b)
	}
	return u.evaluator.GetUpcomingDeadlines(all, daysAhead), nil
}

// DeadlineStatus evaluates a single deadline.
func (u *ListingUseCase) DeadlineStatus(deadline time.Time) model.DeadlineStatus {
	return u.evaluator.CheckDeadlineStatus(deadline)
}
