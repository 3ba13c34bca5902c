package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/apply4me/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the poller.
type PaymentFacade interface {
	PendingPayments(ctx context.Context, limit int) ([]model.Application, error)
	FetchCharge(ctx context.Context, chargeID string) (*model.Charge, error)
	ReconcileCharge(ctx context.Context, chargeID string, status model.GatewayStatus) (*model.Reconciliation, error)
}

// PaymentPoller asks the gateway about payments whose callback never arrived
// and reconciles them concurrently.
type PaymentPoller struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Application
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentPoller constructs the poller worker pool.
func NewPaymentPoller(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentPoller {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentPoller{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Application, batchSize*workers),
	}
}

// Start launches background processing.
func (p *PaymentPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentPoller) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentPoller) fetchAndDispatch(ctx context.Context) {
	apps, err := p.facade.PendingPayments(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending payments failed", slog.String("error", err.Error()))
		return
	}
	for _, app := range apps {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- app:
		}
	}
}

func (p *PaymentPoller) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case app, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handlePayment(ctx, app)
		}
	}
}

func (p *PaymentPoller) handlePayment(ctx context.Context, app model.Application) {
	chargeID := app.GatewayReference()
	if chargeID == "" {
		return
	}

	charge, err := p.facade.FetchCharge(ctx, chargeID)
	if err != nil {
		var tooMany gateway.TooManyRequestsError
		switch {
		case errors.As(err, &tooMany):
			p.logger.Warn("gateway rate limited", slog.Duration("retry_after", tooMany.RetryAfter))
			sleep(ctx, tooMany.RetryAfter)
		case errors.Is(err, gateway.ErrChargeNotFound):
			p.logger.Warn("charge unknown to gateway",
				slog.String("charge_id", chargeID),
				slog.String("application_id", app.ID),
			)
		default:
			p.logger.Error("charge lookup failed", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		}
		return
	}

	if charge.Status == model.GatewayStatusPending {
		return
	}

	result, err := p.facade.ReconcileCharge(ctx, chargeID, charge.Status)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUnknownPaymentStatus) {
			p.logger.Warn("gateway reported unknown status",
				slog.String("charge_id", chargeID),
				slog.String("gateway_status", string(charge.Status)),
			)
			return
		}
		p.logger.Error("poll reconciliation failed", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		return
	}
	if !result.Duplicate {
		p.logger.Info("payment reconciled by poller",
			slog.String("charge_id", chargeID),
			slog.String("application_id", result.ApplicationID),
			slog.String("payment_status", string(result.PaymentStatus)),
		)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
