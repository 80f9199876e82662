package openclaw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/pkg/config"
)

const (
	wakePath    = "/hooks/wake"
	wakeModeNow = "now"
	previewLen  = 80
)

// WakeRequest is the body of POST /hooks/wake
type WakeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// Client delivers one-line wake messages to the agent gateway
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new wake client
func NewClient(cfg *config.NotifyConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Enabled reports whether a token is configured
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Notify sends one POST to the gateway. Failures are logged and never
// returned; without a token it does nothing. When retries are configured only
// transport errors are retried, all attempts together bounded by the
// configured timeout.
func (c *Client) Notify(ctx context.Context, text string) {
	if !c.Enabled() {
		c.logger.Debug("Notification skipped, no gateway token configured")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(WakeRequest{Text: text, Mode: wakeModeNow})
	if err != nil {
		c.logger.Error("Failed to encode wake request", zap.Error(err))
		return
	}

	var status int
	send := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+wakePath, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		status = resp.StatusCode
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = time.Second
	retry := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(send, retry); err != nil {
		c.logger.Error("❌ Failed to notify gateway",
			zap.String("text", Preview(text)),
			zap.Error(err),
		)
		return
	}

	if status < 200 || status >= 300 {
		c.logger.Error("❌ Gateway rejected notification",
			zap.Int("status", status),
			zap.String("text", Preview(text)),
		)
		return
	}

	c.logger.Info("✅ Notified gateway", zap.String("text", Preview(text)))
}

// Preview returns the first 80 characters of text
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen])
}

// String describes the target for startup logs
func (c *Client) String() string {
	return fmt.Sprintf("%s%s (enabled=%t)", c.baseURL, wakePath, c.Enabled())
}
