package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

// KrispPayload is the envelope of a meeting-transcription webhook:
// {"event": "...", "data": {"meeting": {...}, "content": [...]}}
type KrispPayload struct {
	Event   string
	Meeting entities.Metadata
	Content []entities.ContentItem
}

// ParseKrispPayload decodes body. Only malformed JSON is an error; missing or
// mistyped envelope fields fall back to defaults.
func ParseKrispPayload(body []byte) (*KrispPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON: trailing data after top-level value")
	}

	p := &KrispPayload{
		Event:   entities.EventUnknown,
		Meeting: entities.Metadata{},
	}

	root, _ := raw.(map[string]interface{})
	if event, ok := root["event"].(string); ok {
		p.Event = event
	}

	data, ok := root["data"].(map[string]interface{})
	if !ok {
		return p, nil
	}

	if meeting, ok := data["meeting"].(map[string]interface{}); ok {
		p.Meeting = entities.Metadata(meeting)
	}

	if content, ok := data["content"].([]interface{}); ok {
		p.Content = make([]entities.ContentItem, 0, len(content))
		for _, item := range content {
			obj, _ := item.(map[string]interface{})
			p.Content = append(p.Content, entities.ContentItem(obj))
		}
	}

	return p, nil
}

// Title returns the meeting title for logs
func (p *KrispPayload) Title() string {
	if t, ok := p.Meeting["title"].(string); ok {
		return t
	}
	return "unknown"
}
