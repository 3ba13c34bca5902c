package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
	"github.com/polkiloo/apply4me/internal/domain/repository"
	"github.com/polkiloo/apply4me/internal/pkg/auth"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		newCalendarPolicy,
		NewDeadlineEvaluator,
		NewListingUseCase,
		newSweepUseCase,
		NewNotificationUseCase,
		newAuthUseCase,
		newPaymentUseCase,
	),
	fx.Provide(
		func(n *NotificationUseCase) Notifier { return n },
		func(s *auth.CallbackSigner) CallbackVerifier { return s },
	),
)

func newCalendarPolicy(cfg *config.Config) (*CalendarPolicy, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return LoadCalendarPolicy(cfg.CalendarFile, loc)
}

func newSweepUseCase(listings repository.ListingRepository, c clock.Clock, logger *slog.Logger, cfg *config.Config) *SweepUseCase {
	return NewSweepUseCase(listings, c, logger, cfg.UpcomingDays)
}

func newAuthUseCase(strategy auth.Strategy, hasher auth.KeyHasher, cfg *config.Config) *AuthUseCase {
	return NewAuthUseCase(strategy, hasher, cfg.AdminKeyHash)
}

type paymentParams struct {
	fx.In

	Applications repository.ApplicationRepository
	Notifier     Notifier
	Verifier     CallbackVerifier
	Ledger       repository.CallbackLedger `optional:"true"`
	Clock        clock.Clock
	Logger       *slog.Logger
	Config       *config.Config
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(
		p.Applications,
		p.Notifier,
		p.Verifier,
		p.Ledger,
		p.Clock,
		p.Logger,
		PaymentOptions{DedupTTL: p.Config.WebhookDedupTTL, PendingAge: p.Config.PaymentPendingAge},
	)
}
