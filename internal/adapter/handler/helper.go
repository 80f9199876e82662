package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/errors"
	"github.com/johnquangdev/webhook-relay/internal/adapter/dto/common"
	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
)

// getRequestID returns the id assigned by the request-id middleware, falling
// back to the inbound header
func getRequestID(c echo.Context) string {
	if c == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes body with 200 and logs the response
func HandleSuccess(logger *zap.Logger, c echo.Context, body interface{}) error {
	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}
	return c.JSON(http.StatusOK, body)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			log := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				log = logger.Error
			}
			log("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Stringer("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		return c.JSON(appErr.HTTPCode, common.ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code.String(),
			Details: appErr.Details,
		})
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		if logger != nil {
			logger.Warn("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Int("status", httpErr.Code),
				zap.Error(err),
			)
		}
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return c.JSON(httpErr.Code, common.ErrorResponse{Error: message})
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Error: "internal server error",
		Code:  errors.ErrorCode_INTERNAL.String(),
	})
}

// HTTPErrorHandler routes errors returned by middleware and handlers through
// HandleError
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if herr := HandleError(logger, c, err); herr != nil && logger != nil {
			logger.Error("Failed to write error response", zap.Error(herr))
		}
	}
}

// readBody reads the full request body
func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if stdErrors.As(err, &httpErr) {
			return nil, httpErr
		}
		var maxErr *http.MaxBytesError
		if stdErrors.As(err, &maxErr) {
			return nil, echo.ErrStatusRequestEntityTooLarge
		}
		return nil, errors.ErrInvalidPayload(err)
	}
	return body, nil
}

// audit appends an accepted delivery to the audit log. Failures are logged and
// never fail the request.
func audit(ctx context.Context, logger *zap.Logger, events repositories.EventLogRepository, source string, event entities.RawEvent) {
	if events == nil {
		return
	}
	if err := events.Append(ctx, source, event); err != nil && logger != nil {
		logger.Error("Failed to append audit log",
			zap.String("source", source),
			zap.String("event", event.Type),
			zap.Time("timestamp", event.ReceivedAt),
			zap.Error(err),
		)
		return
	}
	if logger != nil {
		logger.Info("Webhook received",
			zap.String("source", source),
			zap.String("event", event.Type),
			zap.Time("timestamp", event.ReceivedAt),
		)
	}
}
