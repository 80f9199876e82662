package entities

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EventKind is the recognized set of meeting event types
type EventKind int

const (
	// EventKindOther covers any event type without a dedicated renderer
	EventKindOther EventKind = iota
	EventKindTranscriptCreated
	EventKindKeyPointsGenerated
	EventKindActionItemsGenerated
)

// Krisp event type strings
const (
	EventTranscriptCreated    = "transcript_created"
	EventKeyPointsGenerated   = "key_points_generated"
	EventActionItemsGenerated = "action_items_generated"
	EventUnknown              = "unknown"
)

// ParseEventKind maps an event type string to its kind
func ParseEventKind(eventType string) EventKind {
	switch eventType {
	case EventTranscriptCreated:
		return EventKindTranscriptCreated
	case EventKeyPointsGenerated:
		return EventKindKeyPointsGenerated
	case EventActionItemsGenerated:
		return EventKindActionItemsGenerated
	default:
		return EventKindOther
	}
}

// Derived artifact and store file names
const (
	MeetingFile     = "meeting.json"
	RawDir          = "raw"
	TranscriptFile  = "transcript.md"
	KeyPointsFile   = "key-points.md"
	ActionItemsFile = "action-items.md"
)

// ArtifactFiles lists the well-known artifacts in summary order
var ArtifactFiles = []struct {
	Label string
	File  string
}{
	{"transcript", TranscriptFile},
	{"key-points", KeyPointsFile},
	{"action-items", ActionItemsFile},
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SafeEventName makes an event type usable as a single path element
func SafeEventName(eventType string) string {
	name := unsafeFileChars.ReplaceAllString(eventType, "_")
	if name == "" || strings.Trim(name, ".") == "" {
		return EventUnknown
	}
	return name
}

// ContentItem is one element of an event's content list
type ContentItem map[string]interface{}

// Text renders the scalar value of key. Missing, null and structured values
// render as "".
func (c ContentItem) Text(key string) string {
	return scalarString(c[key])
}

// firstText renders the first of keys holding a non-null value, even if that
// value renders empty
func (c ContentItem) firstText(keys ...string) string {
	for _, k := range keys {
		if v, ok := c[k]; ok && v != nil {
			return scalarString(v)
		}
	}
	return ""
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool, float64, float32, int, int64, int32:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// Artifact is a derived Markdown file
type Artifact struct {
	FileName string
	Body     string
}

// DeriveArtifact renders the content of one event into its Markdown file.
// It reports false when there is nothing to write: empty content, or an
// unrecognized event whose items carry no text. Key points and action items
// with only blank entries still produce an empty file so that a redelivery
// replaces the earlier list.
func DeriveArtifact(eventType string, content []ContentItem) (Artifact, bool) {
	if len(content) == 0 {
		return Artifact{}, false
	}

	switch ParseEventKind(eventType) {
	case EventKindTranscriptCreated:
		blocks := make([]string, 0, len(content))
		for _, c := range content {
			blocks = append(blocks, "**"+c.Text("speaker")+":** "+c.Text("text"))
		}
		return Artifact{FileName: TranscriptFile, Body: strings.Join(blocks, "\n\n")}, true

	case EventKindKeyPointsGenerated:
		lines := collect(content, "- ", "description")
		return Artifact{FileName: KeyPointsFile, Body: strings.Join(lines, "\n")}, true

	case EventKindActionItemsGenerated:
		lines := collect(content, "- [ ] ", "description", "text")
		return Artifact{FileName: ActionItemsFile, Body: strings.Join(lines, "\n")}, true

	default:
		parts := collect(content, "", "description", "text")
		if len(parts) == 0 {
			return Artifact{}, false
		}
		return Artifact{FileName: otherArtifactName(eventType), Body: strings.Join(parts, "\n\n")}, true
	}
}

// collect prefixes the first non-null key of each item, skipping empties
func collect(content []ContentItem, prefix string, keys ...string) []string {
	out := make([]string, 0, len(content))
	for _, c := range content {
		if s := c.firstText(keys...); s != "" {
			out = append(out, prefix+s)
		}
	}
	return out
}

func otherArtifactName(eventType string) string {
	name := SafeEventName(eventType) + ".md"
	for _, a := range ArtifactFiles {
		if a.File == name {
			return "event-" + name
		}
	}
	return name
}

// RawEvent is one inbound webhook delivery
type RawEvent struct {
	Provider   string
	Type       string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// AuditLogLine is one line of logs/<source>/<YYMMDD>.jsonl
type AuditLogLine struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
