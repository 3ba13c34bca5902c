package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newKeyHasher),
	fx.Provide(newTokenStrategy),
	fx.Provide(newCallbackSigner),
)

func newKeyHasher() KeyHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	if p.Config.TokenStrategy == "hmac" {
		return NewHMACStrategy(p.Config.TokenSecret, Options{})
	}
	return NewJWTStrategy(p.Config.TokenSecret, Options{})
}

func newCallbackSigner(cfg *config.Config) *CallbackSigner {
	return NewCallbackSigner(cfg.WebhookSecret, cfg.WebhookPassphrase)
}
