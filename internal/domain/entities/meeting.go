package entities

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSlugLength caps the title part of a meeting directory name
	MaxSlugLength = 80

	untitledSlug    = "untitled"
	untitledMeeting = "Untitled meeting"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Metadata is the provider's meeting object. Keys are kept verbatim so that
// fields this relay does not know about survive merges.
type Metadata map[string]interface{}

// Merge returns a new map with next laid over m. Keys in next win; keys only
// in m survive.
func (m Metadata) Merge(next Metadata) Metadata {
	merged := make(Metadata, len(m)+len(next))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	return merged
}

func (m Metadata) str(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Title returns the meeting title or "Untitled meeting"
func (m Metadata) Title() string {
	if t, _ := m.str("title"); t != "" {
		return t
	}
	return untitledMeeting
}

// StartDate returns the raw start_date value
func (m Metadata) StartDate() string {
	s, _ := m.str("start_date")
	return s
}

// DurationMinutes returns the duration rounded to whole minutes. Numeric
// strings count as numbers. Missing, non-numeric and sub-minute durations
// report false.
func (m Metadata) DurationMinutes() (int, bool) {
	secs, ok := toFloat(m["duration"])
	if !ok || secs <= 0 {
		return 0, false
	}
	minutes := int(math.Round(secs / 60))
	if minutes == 0 {
		return 0, false
	}
	return minutes, true
}

// ParticipantNames renders each participant as "first last", falling back
// to the email when no first name is present. Blank entries are dropped.
func (m Metadata) ParticipantNames() []string {
	list, ok := m["participants"].([]interface{})
	if !ok {
		return nil
	}

	names := make([]string, 0, len(list))
	for _, raw := range list {
		p, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		var name string
		if first, _ := p["first_name"].(string); first != "" {
			last, _ := p["last_name"].(string)
			name = strings.TrimSpace(first + " " + last)
		} else {
			name, _ = p["email"].(string)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// MeetingSlug derives the directory name for a meeting: a YYMMDD stamp from
// start_date (or now, in UTC) followed by the slugified title. Identical
// (start_date, title) pairs always map to the same directory.
func MeetingSlug(m Metadata, now time.Time) string {
	title, ok := m.str("title")
	if !ok {
		title = untitledSlug
	}
	slug := Slugify(title)
	if slug == "" {
		slug = untitledSlug
	}
	return meetingDateStamp(m.StartDate(), now) + "-" + slug
}

// meetingDateStamp takes YYMMDD positionally from an ISO date prefix
func meetingDateStamp(startDate string, now time.Time) string {
	iso := now.UTC().Format("2006-01-02")
	if len(startDate) >= 10 {
		iso = startDate[:10]
	}
	stamp := iso[2:4] + iso[5:7] + iso[8:10]
	for _, r := range stamp {
		if r < '0' || r > '9' {
			return DateStamp(now.UTC())
		}
	}
	return stamp
}

// DateStamp formats t as YYMMDD
func DateStamp(t time.Time) string {
	return t.Format("060102")
}

// Slugify lowercases text, folds accented letters to ASCII, collapses
// everything else into single hyphens and caps the result at MaxSlugLength.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "ß", "ss")

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return s
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Meeting is a stored meeting directory
type Meeting struct {
	Slug      string    `json:"slug"`
	Metadata  Metadata  `json:"meeting"`
	Artifacts []string  `json:"artifacts"`
	Events    []string  `json:"events"`
	UpdatedAt time.Time `json:"updated_at"`
}
