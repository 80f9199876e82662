package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johnquangdev/webhook-relay/pkg/config"
)

func TestNewEcho(t *testing.T) {
	g := NewWithT(t)
	core, logs := observer.New(zap.InfoLevel)
	cfg := &config.Config{Server: config.ServerConfig{BodyLimit: "1K"}}

	e := newEcho(cfg, zap.New(core))
	g.Expect(e.Validator).To(BeNil())

	e.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(Equal("hello"))
	g.Expect(rec.Header().Get(echo.HeaderXRequestID)).To(HaveLen(36))

	entries := logs.FilterMessage("http.request").All()
	g.Expect(entries).To(HaveLen(1))
	g.Expect(entries[0].ContextMap()).To(HaveKeyWithValue("status", int64(http.StatusOK)))

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 2048)))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
}
