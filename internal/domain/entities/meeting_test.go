package entities

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weekly Sync", "weekly-sync"},
		{"Café Müller: Q3 review!", "cafe-muller-q3-review"},
		{"Straße", "strasse"},
		{"  --Hello,   World--  ", "hello-world"},
		{"日本語", ""},
		{"", ""},
		{strings.Repeat("a", 100), strings.Repeat("a", 80)},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMeetingSlug(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{"from start date", Metadata{"title": "Weekly Sync", "start_date": "2026-03-05T10:00:00Z"}, "260305-weekly-sync"},
		{"missing title", Metadata{"start_date": "2026-03-05T10:00:00Z"}, "260305-untitled"},
		{"non-string title", Metadata{"title": 42.0, "start_date": "2026-03-05"}, "260305-untitled"},
		{"title folds to nothing", Metadata{"title": "!!!", "start_date": "2026-03-05"}, "260305-untitled"},
		{"missing start date", Metadata{"title": "Sync"}, "260309-sync"},
		{"short start date", Metadata{"title": "Sync", "start_date": "2026-3-5"}, "260309-sync"},
		{"non-numeric date", Metadata{"title": "Sync", "start_date": "20/6/03/05x"}, "260309-sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeetingSlug(tt.meta, fixedNow); got != tt.want {
				t.Errorf("MeetingSlug() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeetingSlug_Deterministic(t *testing.T) {
	meta := Metadata{"title": "Design Review", "start_date": "2026-01-02T08:00:00Z"}
	first := MeetingSlug(meta, fixedNow)
	second := MeetingSlug(meta, fixedNow.Add(72*time.Hour))
	if first != second {
		t.Errorf("slug changed between calls: %q vs %q", first, second)
	}
}

func TestMetadata_Merge(t *testing.T) {
	base := Metadata{"a": 1, "b": 2}
	merged := base.Merge(Metadata{"b": 3, "c": 4})

	if len(merged) != 3 || merged["a"] != 1 || merged["b"] != 3 || merged["c"] != 4 {
		t.Errorf("Merge() = %v", merged)
	}
	if base["b"] != 2 {
		t.Error("Merge() mutated the receiver")
	}
}

func TestMetadata_DurationMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration interface{}
		want     int
		ok       bool
	}{
		{"float", 1800.0, 30, true},
		{"json number", json.Number("1830"), 31, true},
		{"zero", 0.0, 0, false},
		{"sub minute", 20.0, 0, false},
		{"numeric string", "1800", 30, true},
		{"padded numeric string", " 90 ", 2, true},
		{"non-numeric string", "half an hour", 0, false},
		{"absent", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Metadata{}
			if tt.duration != nil {
				meta["duration"] = tt.duration
			}
			got, ok := meta.DurationMinutes()
			if got != tt.want || ok != tt.ok {
				t.Errorf("DurationMinutes() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMetadata_ParticipantNames(t *testing.T) {
	var meta Metadata
	raw := `{"participants":[
		{"first_name":"Ada","last_name":"Lovelace"},
		{"first_name":"Grace"},
		{"email":"alan@example.com"},
		{"first_name":"","email":"bob@example.com"},
		{},
		"not-an-object"
	]}`
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatal(err)
	}

	got := strings.Join(meta.ParticipantNames(), ", ")
	want := "Ada Lovelace, Grace, alan@example.com, bob@example.com"
	if got != want {
		t.Errorf("ParticipantNames() = %q, want %q", got, want)
	}

	if names := (Metadata{}).ParticipantNames(); len(names) != 0 {
		t.Errorf("ParticipantNames() without participants = %v", names)
	}
}

func TestMetadata_Title(t *testing.T) {
	if got := (Metadata{}).Title(); got != "Untitled meeting" {
		t.Errorf("Title() = %q", got)
	}
	if got := (Metadata{"title": "Sync"}).Title(); got != "Sync" {
		t.Errorf("Title() = %q", got)
	}
}
