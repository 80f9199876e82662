package meeting

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

// BuildSummary composes the notification text for a meeting event from the
// accumulated metadata and the artifacts currently on disk. An empty string
// means there is nothing to announce.
func BuildSummary(dir string, meta entities.Metadata, eventType string, available []string) string {
	if meta == nil {
		return ""
	}

	parts := []string{fmt.Sprintf("Krisp meeting: \"%s\" (%s)", meta.Title(), eventType)}

	if start := meta.StartDate(); start != "" {
		parts = append(parts, "Time: "+start)
	}
	if minutes, ok := meta.DurationMinutes(); ok {
		parts = append(parts, fmt.Sprintf("Duration: %d min", minutes))
	}
	if names := meta.ParticipantNames(); len(names) > 0 {
		parts = append(parts, "Participants: "+strings.Join(names, ", "))
	}
	if dir != "" {
		parts = append(parts, "Data: "+dir)
	}
	if len(available) > 0 {
		parts = append(parts, "Available: "+strings.Join(available, ", "))
	}

	return strings.Join(parts, "\n")
}
