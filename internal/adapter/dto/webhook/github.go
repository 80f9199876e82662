package webhook

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

const (
	mimeJSON = "application/json"
	mimeForm = "application/x-www-form-urlencoded"
)

// ErrUnsupportedContentType marks a delivery with a content type other than
// JSON or form encoding
type ErrUnsupportedContentType struct {
	ContentType string
}

func (e *ErrUnsupportedContentType) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.ContentType)
}

// GitHubPayload extracts the JSON document from a delivery body. Form-encoded
// deliveries carry it in the "payload" field.
func GitHubPayload(contentType string, body []byte) (json.RawMessage, error) {
	mediaType := ""
	if strings.TrimSpace(contentType) != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, &ErrUnsupportedContentType{ContentType: contentType}
		}
		mediaType = mt
	}

	var doc []byte
	switch mediaType {
	case "", mimeJSON:
		doc = body
	case mimeForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		doc = []byte(values.Get("payload"))
	default:
		return nil, &ErrUnsupportedContentType{ContentType: contentType}
	}

	if !json.Valid(doc) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return json.RawMessage(doc), nil
}

// GitHubLabel returns "<event>.<action>", or the bare event when the payload
// carries no action
func GitHubLabel(event string, payload json.RawMessage) string {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Action == "" {
		return event
	}
	return event + "." + envelope.Action
}
