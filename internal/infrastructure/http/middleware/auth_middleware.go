package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/webhook-relay/errors"
	"github.com/johnquangdev/webhook-relay/pkg/signature"
)

// SharedSecretHeader carries the relay-wide secret
const SharedSecretHeader = "X-Webhook-Secret"

// SharedSecret rejects requests whose X-Webhook-Secret header does not match
// secret. An empty secret disables the check.
func SharedSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(c echo.Context) error {
			if !signature.EqualToken(c.Request().Header.Get(SharedSecretHeader), secret) {
				return errors.ErrUnauthenticated()
			}
			return next(c)
		}
	}
}

// BearerToken rejects requests whose Authorization header is neither
// "Bearer <token>" nor the bare token. An empty token disables the check.
func BearerToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if token == "" {
			return next
		}
		return func(c echo.Context) error {
			if !signature.EqualToken(ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization)), token) {
				return errors.ErrUnauthenticated()
			}
			return next(c)
		}
	}
}

// ExtractToken strips an optional "Bearer " prefix
func ExtractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(authHeader)
}
