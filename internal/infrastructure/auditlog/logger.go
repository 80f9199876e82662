// Package auditlog appends every accepted webhook delivery to a per-source,
// per-day JSON Lines file.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
)

// TimestampLayout is millisecond-precision UTC ISO-8601
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Logger writes logs/<source>/<YYMMDD>.jsonl. The day file follows the local
// clock; timestamps inside are UTC.
type Logger struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

var _ repositories.EventLogRepository = (*Logger)(nil)

// NewLogger creates an audit logger rooted at dir
func NewLogger(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Path returns the file a delivery received at t is appended to
func (l *Logger) Path(source string, t time.Time) string {
	return filepath.Join(l.dir, entities.SafeEventName(source), entities.DateStamp(t.Local())+".jsonl")
}

// Append writes one line for event. Concurrent appends never interleave.
func (l *Logger) Append(ctx context.Context, source string, event entities.RawEvent) error {
	ts := event.ReceivedAt
	if ts.IsZero() {
		ts = l.now()
	}

	payload := event.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("null")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(entities.AuditLogLine{
		Event:     event.Type,
		Timestamp: ts.UTC().Format(TimestampLayout),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit line: %w", err)
	}

	path := l.Path(source, ts)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append audit line: %w", err)
	}
	return f.Close()
}
