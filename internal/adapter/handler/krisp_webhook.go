package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/errors"
	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/common"
	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/webhook"
	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
	"github.com/johnquangdev/webhook-relay/internal/usecase/meeting"
)

const sourceKrisp = "krisp"

// KrispWebhookHandler handles meeting-transcription deliveries
type KrispWebhookHandler struct {
	svc    meeting.Service
	events repositories.EventLogRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewKrispWebhookHandler creates a new handler
func NewKrispWebhookHandler(svc meeting.Service, events repositories.EventLogRepository, logger *zap.Logger) *KrispWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KrispWebhookHandler{svc: svc, events: events, logger: logger, now: time.Now}
}

// Handle godoc
// @Summary      Krisp Webhook
// @Description  Receives meeting events, stores them under the meeting directory and forwards a summary
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        Authorization     header  string  false  "Bearer <token> or the bare token"
// @Param        X-Webhook-Secret  header  string  false  "Relay shared secret"
// @Success      200  {object}  common.StatusResponse
// @Failure      400  {object}  common.ErrorResponse  "Invalid JSON"
// @Failure      401  {object}  common.ErrorResponse  "Bad token"
// @Failure      500  {object}  common.ErrorResponse  "Meeting store failure"
// @Router       /webhooks/krisp [post]
func (h *KrispWebhookHandler) Handle(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	payload, err := webhook.ParseKrispPayload(body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	ctx := context.WithoutCancel(c.Request().Context())
	audit(ctx, h.logger, h.events, sourceKrisp, entities.RawEvent{
		Provider:   sourceKrisp,
		Type:       payload.Event,
		Payload:    body,
		ReceivedAt: h.now(),
	})

	h.logger.Info("Krisp event",
		zap.String("source", sourceKrisp),
		zap.String("event", payload.Event),
		zap.String("title", payload.Title()),
		zap.String("request_id", getRequestID(c)),
	)

	_, err = h.svc.Ingest(ctx, meeting.Event{
		Type:    payload.Event,
		Meeting: payload.Meeting,
		Content: payload.Content,
		Raw:     body,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.OK())
}
