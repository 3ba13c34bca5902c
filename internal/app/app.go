package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
	"github.com/polkiloo/apply4me/internal/server/http/handlers"
	"github.com/polkiloo/apply4me/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewPortalFacade,
		func(f *PortalFacade) handlers.PortalFacade { return f },
		newHTTPServer,
		newPaymentPoller,
		newSweepScheduler,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *PortalFacade
	Config *config.Config
	Logger *slog.Logger
}

// newPaymentPoller returns nil unless polling is enabled.
func newPaymentPoller(p workerParams) *worker.PaymentPoller {
	if !p.Config.PaymentPollEnabled {
		return nil
	}
	return worker.NewPaymentPoller(
		p.Facade,
		p.Config.PaymentPollInterval,
		p.Config.PaymentPollBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

// newSweepScheduler returns nil unless the periodic sweep is enabled.
func newSweepScheduler(p workerParams) *worker.SweepScheduler {
	if !p.Config.SweepEnabled {
		return nil
	}
	return worker.NewSweepScheduler(p.Facade, p.Config.SweepInterval, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *worker.PaymentPoller
	Sweeper    *worker.SweepScheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting apply4me", slog.String("addr", p.Server.Addr))
			// the start context is cancelled once startup completes
			runCtx := context.WithoutCancel(ctx)
			if p.Poller != nil {
				p.Poller.Start(runCtx)
			}
			if p.Sweeper != nil {
				p.Sweeper.Start(runCtx)
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if p.Poller != nil {
				p.Poller.Stop()
			}
			if p.Sweeper != nil {
				p.Sweeper.Stop()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("apply4me stopped")
			return nil
		},
	})
}
