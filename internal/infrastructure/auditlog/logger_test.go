package auditlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

func readLines(t *testing.T, path string) []entities.AuditLogLine {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []entities.AuditLogLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var line entities.AuditLogLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		lines = append(lines, line)
	}
	return lines
}

func TestLogger_Append(t *testing.T) {
	g := NewWithT(t)
	logger := NewLogger(t.TempDir())
	received := time.Date(2026, 3, 5, 12, 0, 0, 123000000, time.UTC)

	err := logger.Append(context.Background(), "krisp", entities.RawEvent{
		Type:       "transcript_created",
		Payload:    json.RawMessage("{\n  \"event\": \"transcript_created\"\n}"),
		ReceivedAt: received,
	})
	g.Expect(err).NotTo(HaveOccurred())

	path := logger.Path("krisp", received)
	g.Expect(filepath.Base(path)).To(Equal(received.Local().Format("060102") + ".jsonl"))

	raw, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(raw)).To(Equal(`{"event":"transcript_created","timestamp":"2026-03-05T12:00:00.123Z","payload":{"event":"transcript_created"}}` + "\n"))
}

func TestLogger_AppendsInOrder(t *testing.T) {
	g := NewWithT(t)
	logger := NewLogger(t.TempDir())
	received := time.Now()

	for i := 0; i < 3; i++ {
		err := logger.Append(context.Background(), "github", entities.RawEvent{
			Type:       fmt.Sprintf("push.%d", i),
			Payload:    json.RawMessage(`{}`),
			ReceivedAt: received,
		})
		g.Expect(err).NotTo(HaveOccurred())
	}

	lines := readLines(t, logger.Path("github", received))
	g.Expect(lines).To(HaveLen(3))
	g.Expect(lines[0].Event).To(Equal("push.0"))
	g.Expect(lines[2].Event).To(Equal("push.2"))
}

func TestLogger_ConcurrentAppends(t *testing.T) {
	g := NewWithT(t)
	logger := NewLogger(t.TempDir())
	received := time.Now()
	big := `{"text":"` + strings.Repeat("a", 64*1024) + `"}`

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = logger.Append(context.Background(), "krisp", entities.RawEvent{
				Type:       "transcript_created",
				Payload:    json.RawMessage(big),
				ReceivedAt: received,
			})
		}()
	}
	wg.Wait()

	g.Expect(readLinesLarge(t, logger.Path("krisp", received))).To(Equal(16))
}

func readLinesLarge(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		var line entities.AuditLogLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("interleaved line: %v", err)
		}
		n++
	}
	return n
}

func TestLogger_SourceIsSanitized(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	logger := NewLogger(dir)

	g.Expect(logger.Path("../evil", time.Now())).To(HavePrefix(filepath.Join(dir, ".._evil")))
	g.Expect(logger.Append(context.Background(), "hubspot", entities.RawEvent{Type: "contact"})).To(Succeed())

	raw, err := os.ReadFile(logger.Path("hubspot", time.Now()))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(raw)).To(HaveSuffix(`"payload":null}` + "\n"))
}
