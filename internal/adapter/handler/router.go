package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/common"
	httpmw "github.com/johnquangdev/webhook-relay/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/webhook-relay/pkg/config"

	_ "github.com/johnquangdev/webhook-relay/docs"
)

// Router holds all handlers
type Router struct {
	cfg     *config.Config
	github  *GitHubWebhookHandler
	krisp   *KrispWebhookHandler
	hubspot *HubSpotWebhookHandler
	logger  *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	github *GitHubWebhookHandler,
	krisp *KrispWebhookHandler,
	hubspot *HubSpotWebhookHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:     cfg,
		github:  github,
		krisp:   krisp,
		hubspot: hubspot,
		logger:  logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.HTTPErrorHandler = HTTPErrorHandler(rt.logger)

	e.GET("/health", rt.healthCheck)
	if rt.cfg.Server.Environment != "production" {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	rt.setupWebhookRoutes(e.Group(rt.cfg.Webhook.BasePath))
}

// setupWebhookRoutes configures provider routes behind the shared secret
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	g.Use(httpmw.SharedSecret(rt.cfg.Webhook.SharedSecret))

	if rt.cfg.Server.RateLimit > 0 {
		g.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(rt.cfg.Server.RateLimit))))
	}

	g.POST("/github", rt.github.Handle)
	g.POST("/krisp", rt.krisp.Handle, httpmw.BearerToken(rt.cfg.Webhook.KrispSecret))
	g.POST("/hubspot", rt.hubspot.Handle)
}

// healthCheck godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  common.StatusResponse
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, common.OK())
}
