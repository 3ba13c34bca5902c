package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/adapter/gateway"
	"github.com/polkiloo/apply4me/internal/app"
	"github.com/polkiloo/apply4me/internal/config"
	"github.com/polkiloo/apply4me/internal/logger"
	"github.com/polkiloo/apply4me/internal/pkg/auth"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
	"github.com/polkiloo/apply4me/internal/pkg/validation"
	"github.com/polkiloo/apply4me/internal/server/http/middleware"
	"github.com/polkiloo/apply4me/internal/server/http/router"
	"github.com/polkiloo/apply4me/internal/storage/kv"
	"github.com/polkiloo/apply4me/internal/storage/postgres"
	"github.com/polkiloo/apply4me/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		validation.Module,
		auth.Module,
		postgres.Module,
		kv.Module,
		gateway.Module,
		usecase.Module,
		fx.Provide(
			func(client gateway.Client) app.ChargeFetcher { return client },
			func(h postgres.HealthChecker) app.HealthChecker { return h },
			func(s *kv.Store) middleware.RateLimiter { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
