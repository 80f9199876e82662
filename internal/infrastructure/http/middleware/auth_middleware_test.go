package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/webhook-relay/errors"
)

func run(mw echo.MiddlewareFunc, header, value string) (bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := mw(func(echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestSharedSecret(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantCalled bool
	}{
		{"no secret configured", "", "", true},
		{"matching header", "s3cret", "s3cret", true},
		{"missing header", "s3cret", "", false},
		{"wrong header", "s3cret", "s3cre7", false},
		{"prefix of secret", "s3cret", "s3c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := ""
			if tt.header != "" {
				header = SharedSecretHeader
			}
			called, err := run(SharedSecret(tt.secret), header, tt.header)
			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			if !tt.wantCalled {
				var appErr errors.AppError
				if !stdErrors.As(err, &appErr) || appErr.HTTPCode != http.StatusUnauthorized {
					t.Errorf("err = %v, want 401 AppError", err)
				}
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantCalled bool
	}{
		{"bearer form", "Bearer krisp-token", true},
		{"lowercase scheme", "bearer krisp-token", true},
		{"bare token", "krisp-token", true},
		{"wrong token", "Bearer other", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, err := run(BearerToken("krisp-token"), echo.HeaderAuthorization, tt.header)
			if called != tt.wantCalled {
				t.Errorf("next called = %v (err %v), want %v", called, err, tt.wantCalled)
			}
		})
	}

	if called, _ := run(BearerToken(""), "", ""); !called {
		t.Error("empty token should disable the check")
	}
}
