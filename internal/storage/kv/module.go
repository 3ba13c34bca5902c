package kv

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
	"github.com/polkiloo/apply4me/internal/domain/repository"
)

// Module provides the optional redis store as webhook ledger.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(newLedger),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStore(p storeParams) (*Store, error) {
	return Open(p.Ctx, p.Config.RedisURL, p.Logger)
}

func newLedger(s *Store) repository.CallbackLedger {
	if s == nil {
		return nil
	}
	return s
}

func registerLifecycle(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
}
