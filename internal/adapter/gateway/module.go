package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
)

// Module exposes the gateway client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.GatewayAddress, p.Config.GatewaySecretKey, p.Logger)
}
