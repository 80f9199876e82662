package openclaw

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johnquangdev/webhook-relay/pkg/config"
)

func newTestClient(url, token string, timeout time.Duration) (*Client, *observer.ObservedLogs) {
	return newRetryingClient(url, token, timeout, 0)
}

func newRetryingClient(url, token string, timeout time.Duration, retries int) (*Client, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewClient(&config.NotifyConfig{
		BaseURL:    url,
		Token:      token,
		Timeout:    timeout,
		MaxRetries: retries,
	}, zap.New(core)), logs
}

// droppingGateway reads each request fully, then closes the connection
// without answering
func droppingGateway(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		_, _ = io.ReadAll(r.Body)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer cannot hijack")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
}

func TestNotify_SendsWakeRequest(t *testing.T) {
	var got WakeRequest
	var auth, path, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, logs := newTestClient(server.URL+"/", "secret-token", time.Second)
	client.Notify(context.Background(), `PR #42 "Fix bug" merged in org/repo`)

	if path != "/hooks/wake" {
		t.Errorf("path = %q, want /hooks/wake", path)
	}
	if auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", auth)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got.Text != `PR #42 "Fix bug" merged in org/repo` || got.Mode != "now" {
		t.Errorf("body = %+v", got)
	}
	if logs.FilterMessage("✅ Notified gateway").Len() != 1 {
		t.Error("missing success log")
	}
}

func TestNotify_NoTokenMakesNoRequest(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, "", time.Second)
	client.Notify(context.Background(), "hello")

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestNotify_Non2xxIsLoggedNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, logs := newTestClient(server.URL, "tok", time.Second)
	client.Notify(context.Background(), "hello")

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	entries := logs.FilterMessage("❌ Gateway rejected notification").All()
	if len(entries) != 1 || entries[0].ContextMap()["status"] != int64(http.StatusServiceUnavailable) {
		t.Errorf("rejection log = %+v", entries)
	}
}

func TestNotify_BoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, logs := newTestClient(server.URL, "tok", 100*time.Millisecond)

	start := time.Now()
	client.Notify(context.Background(), "hello")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Notify took %v, want bounded by timeout", elapsed)
	}
	if logs.FilterMessage("❌ Failed to notify gateway").Len() != 1 {
		t.Error("missing failure log")
	}
}

func TestNotify_UnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, logs := newTestClient(url, "tok", time.Second)
	client.Notify(context.Background(), "hello")

	if logs.FilterMessage("❌ Failed to notify gateway").Len() != 1 {
		t.Error("missing failure log")
	}
}

func TestNotify_DefaultSendsSinglePost(t *testing.T) {
	var calls int32
	server := droppingGateway(t, &calls)
	defer server.Close()

	cfg := &config.NotifyConfig{BaseURL: server.URL, Token: "tok", Timeout: time.Second}
	core, logs := observer.New(zap.DebugLevel)
	NewClient(cfg, zap.New(core)).Notify(context.Background(), "hello")

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("POSTs received = %d, want 1", n)
	}
	if logs.FilterMessage("❌ Failed to notify gateway").Len() != 1 {
		t.Error("missing failure log")
	}
}

func TestNotify_RetriesTransportErrorsWhenEnabled(t *testing.T) {
	var calls int32
	server := droppingGateway(t, &calls)
	defer server.Close()

	client, _ := newRetryingClient(server.URL, "tok", 5*time.Second, 2)
	client.Notify(context.Background(), "hello")

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("POSTs received = %d, want 3", n)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 100)
	if got := Preview(long); len([]rune(got)) != 80 {
		t.Errorf("Preview() rune length = %d, want 80", len([]rune(got)))
	}
	if got := Preview("short"); got != "short" {
		t.Errorf("Preview(short) = %q", got)
	}
}
