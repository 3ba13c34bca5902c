package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/apply4me/internal/config"
	"github.com/polkiloo/apply4me/internal/pkg/validation"
	"github.com/polkiloo/apply4me/internal/server/http/handlers"
	"github.com/polkiloo/apply4me/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Params lists router dependencies. Limiter is absent when redis is not configured.
type Params struct {
	fx.In

	Facade    handlers.PortalFacade
	Logger    *slog.Logger
	Config    *config.Config
	Validator *validation.Validator
	Limiter   middleware.RateLimiter `optional:"true"`
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	healthHandler := handlers.NewHealthHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade, p.Logger)
	deadlineHandler := handlers.NewDeadlineHandler(p.Facade, p.Validator)
	listingHandler := handlers.NewListingHandler(p.Facade, p.Facade)
	notificationHandler := handlers.NewNotificationHandler(p.Facade, p.Validator)

	engine.GET("/ping", healthHandler.Ping)

	api := engine.Group("/api")
	api.POST("/payments/webhook",
		middleware.RateLimit(p.Limiter, "webhook", p.Config.WebhookRateLimit, p.Config.WebhookRateWindow),
		paymentHandler.Webhook,
	)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(p.Facade, p.Logger))
	admin.GET("/deadlines", deadlineHandler.Summary)
	admin.POST("/deadlines", deadlineHandler.Trigger)

	listings := api.Group("/listings")
	listings.GET("/institutions", listingHandler.Institutions)
	listings.GET("/programs", listingHandler.Programs)
	listings.GET("/bursaries", listingHandler.Bursaries)
	listings.GET("/upcoming", listingHandler.Upcoming)

	api.GET("/deadlines/status", deadlineHandler.Status)

	userAuth := api.Group("")
	userAuth.Use(middleware.AuthRequired(p.Facade))
	userAuth.GET("/notifications", notificationHandler.List)
	userAuth.PATCH("/notifications", notificationHandler.MarkRead)

	return engine
}
