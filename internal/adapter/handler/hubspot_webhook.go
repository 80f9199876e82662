package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/common"
)

// HubSpotWebhookHandler acknowledges CRM deliveries without processing them
type HubSpotWebhookHandler struct {
	logger *zap.Logger
}

// NewHubSpotWebhookHandler creates a new handler
func NewHubSpotWebhookHandler(logger *zap.Logger) *HubSpotWebhookHandler {
	return &HubSpotWebhookHandler{logger: logger}
}

// Handle godoc
// @Summary      HubSpot Webhook
// @Description  Accepts CRM deliveries; processing is not implemented
// @Tags         Webhooks
// @Produce      json
// @Success      200  {object}  common.StatusResponse
// @Router       /webhooks/hubspot [post]
func (h *HubSpotWebhookHandler) Handle(c echo.Context) error {
	return HandleSuccess(h.logger, c, common.StatusResponse{Status: "ok", Message: "not implemented"})
}
