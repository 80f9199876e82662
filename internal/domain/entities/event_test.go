package entities

import (
	"encoding/json"
	"testing"
)

func TestDeriveArtifact(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		content  []ContentItem
		wantFile string
		wantBody string
		wantOK   bool
	}{
		{
			name:  "transcript",
			event: EventTranscriptCreated,
			content: []ContentItem{
				{"speaker": "Ada", "text": "Hello"},
				{"speaker": "Grace", "text": "Hi"},
			},
			wantFile: "transcript.md",
			wantBody: "**Ada:** Hello\n\n**Grace:** Hi",
			wantOK:   true,
		},
		{
			name:     "transcript missing fields",
			event:    EventTranscriptCreated,
			content:  []ContentItem{{"text": "orphan"}},
			wantFile: "transcript.md",
			wantBody: "**:** orphan",
			wantOK:   true,
		},
		{
			name:  "key points drop empty descriptions",
			event: EventKeyPointsGenerated,
			content: []ContentItem{
				{"description": "A"},
				{"description": ""},
				{"description": "B"},
			},
			wantFile: "key-points.md",
			wantBody: "- A\n- B",
			wantOK:   true,
		},
		{
			name:     "key points all empty still writes the file",
			event:    EventKeyPointsGenerated,
			content:  []ContentItem{{"text": "ignored"}, {"description": ""}},
			wantFile: "key-points.md",
			wantBody: "",
			wantOK:   true,
		},
		{
			name:     "action items all empty still writes the file",
			event:    EventActionItemsGenerated,
			content:  []ContentItem{{"description": ""}, {}},
			wantFile: "action-items.md",
			wantBody: "",
			wantOK:   true,
		},
		{
			name:  "transcript stringifies scalar values",
			event: EventTranscriptCreated,
			content: []ContentItem{
				{"speaker": json.Number("7"), "text": "Hi"},
				{"speaker": float64(2), "text": true},
			},
			wantFile: "transcript.md",
			wantBody: "**7:** Hi\n\n**2:** true",
			wantOK:   true,
		},
		{
			name:     "action items use a numeric description",
			event:    EventActionItemsGenerated,
			content:  []ContentItem{{"description": json.Number("42"), "text": "ignored"}},
			wantFile: "action-items.md",
			wantBody: "- [ ] 42",
			wantOK:   true,
		},
		{
			name:  "action items prefer description",
			event: EventActionItemsGenerated,
			content: []ContentItem{
				{"description": "Ship it", "text": "ignored"},
				{"text": "Review PR"},
				{"description": "", "text": "empty description wins"},
			},
			wantFile: "action-items.md",
			wantBody: "- [ ] Ship it\n- [ ] Review PR",
			wantOK:   true,
		},
		{
			name:  "other event",
			event: "summary_generated",
			content: []ContentItem{
				{"description": "Para one"},
				{"text": "Para two"},
				{},
			},
			wantFile: "summary_generated.md",
			wantBody: "Para one\n\nPara two",
			wantOK:   true,
		},
		{
			name:    "other event with no text",
			event:   "summary_generated",
			content: []ContentItem{{"speaker": "x"}},
		},
		{
			name:     "other event colliding with artifact name",
			event:    "transcript",
			content:  []ContentItem{{"text": "x"}},
			wantFile: "event-transcript.md",
			wantBody: "x",
			wantOK:   true,
		},
		{
			name:  "empty content",
			event: EventTranscriptCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveArtifact(tt.event, tt.content)
			if ok != tt.wantOK {
				t.Fatalf("DeriveArtifact() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.FileName != tt.wantFile {
				t.Errorf("FileName = %q, want %q", got.FileName, tt.wantFile)
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestSafeEventName(t *testing.T) {
	tests := map[string]string{
		"transcript_created": "transcript_created",
		"a/b c":              "a_b_c",
		"":                   "unknown",
		".":                  "unknown",
		"..":                 "unknown",
		"v1.2-beta":          "v1.2-beta",
	}

	for in, want := range tests {
		if got := SafeEventName(in); got != want {
			t.Errorf("SafeEventName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseEventKind(t *testing.T) {
	if ParseEventKind("transcript_created") != EventKindTranscriptCreated {
		t.Error("transcript_created not recognized")
	}
	if ParseEventKind("key_points_generated") != EventKindKeyPointsGenerated {
		t.Error("key_points_generated not recognized")
	}
	if ParseEventKind("action_items_generated") != EventKindActionItemsGenerated {
		t.Error("action_items_generated not recognized")
	}
	if ParseEventKind("Transcript_Created") != EventKindOther {
		t.Error("event kinds are case-sensitive")
	}
}
