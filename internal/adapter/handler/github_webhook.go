package handler

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/errors"
	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/common"
	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/webhook"
	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
	githubuc "github.com/johnquangdev/webhook-relay/internal/usecase/github"
	"github.com/johnquangdev/webhook-relay/internal/usecase/meeting"
	"github.com/johnquangdev/webhook-relay/pkg/signature"
)

const (
	headerGitHubEvent     = "X-GitHub-Event"
	headerGitHubSignature = "X-Hub-Signature-256"

	sourceGitHub = "github"
)

// GitHubWebhookHandler handles source-control deliveries
type GitHubWebhookHandler struct {
	secret   string
	events   repositories.EventLogRepository
	notifier meeting.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewGitHubWebhookHandler creates a new handler. An empty secret disables
// signature verification.
func NewGitHubWebhookHandler(secret string, events repositories.EventLogRepository, notifier meeting.Notifier, logger *zap.Logger) *GitHubWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubWebhookHandler{
		secret:   secret,
		events:   events,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle godoc
// @Summary      GitHub Webhook
// @Description  Receives GitHub deliveries, verifies the HMAC-SHA256 signature when a secret is configured and forwards pull request, review and comment events
// @Tags         Webhooks
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        X-GitHub-Event       header  string  true   "Event type"
// @Param        X-Hub-Signature-256  header  string  false  "sha256=<hex digest>"
// @Param        X-Webhook-Secret     header  string  false  "Relay shared secret"
// @Success      200  {object}  common.StatusResponse
// @Failure      400  {object}  common.ErrorResponse  "Invalid JSON or unsupported content type"
// @Failure      401  {object}  common.ErrorResponse  "Shared secret mismatch"
// @Failure      403  {object}  common.ErrorResponse  "Invalid signature"
// @Router       /webhooks/github [post]
func (h *GitHubWebhookHandler) Handle(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if h.secret != "" && !signature.Verify(body, c.Request().Header.Get(headerGitHubSignature), h.secret) {
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	event := c.Request().Header.Get(headerGitHubEvent)
	if event == "" {
		event = entities.EventUnknown
	}

	payload, err := webhook.GitHubPayload(c.Request().Header.Get(echo.HeaderContentType), body)
	if err != nil {
		var unsupported *webhook.ErrUnsupportedContentType
		if stdErrors.As(err, &unsupported) {
			return HandleError(h.logger, c, errors.ErrUnsupportedContentType(unsupported.ContentType))
		}
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	ctx := context.WithoutCancel(c.Request().Context())
	label := webhook.GitHubLabel(event, payload)
	audit(ctx, h.logger, h.events, sourceGitHub, entities.RawEvent{
		Provider:   sourceGitHub,
		Type:       label,
		Payload:    payload,
		ReceivedAt: h.now(),
	})

	n, err := githubuc.Classify(event, payload)
	if err != nil {
		h.logger.Warn("Unparseable GitHub payload, not announcing",
			zap.String("source", sourceGitHub),
			zap.String("event", label),
			zap.Error(err),
		)
	}

	message := n.Message()
	if message == "" {
		h.logger.Debug("GitHub event not announced",
			zap.String("source", sourceGitHub),
			zap.String("event", label),
			zap.Stringer("kind", n.Kind),
		)
		return HandleSuccess(h.logger, c, common.OK())
	}

	h.logger.Info("GitHub event",
		zap.String("source", sourceGitHub),
		zap.String("event", event),
		zap.Stringer("kind", n.Kind),
		zap.String("message", message),
		zap.String("request_id", getRequestID(c)),
	)
	if h.notifier != nil {
		h.notifier.Notify(ctx, message)
	}

	return HandleSuccess(h.logger, c, common.OK())
}
