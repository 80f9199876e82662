package repositories

import (
	"context"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

// MeetingRepository defines access to the per-meeting directory store.
// Callers serialize writes to one slug; the repository does not lock.
type MeetingRepository interface {
	// SaveRaw stores the verbatim payload of an event, replacing any earlier
	// payload of the same type
	SaveRaw(ctx context.Context, slug, eventType string, body []byte) error

	// MergeMetadata lays meta over the stored metadata and returns the result
	MergeMetadata(ctx context.Context, slug string, meta entities.Metadata) (entities.Metadata, error)

	// SaveArtifact writes a derived Markdown file
	SaveArtifact(ctx context.Context, slug string, artifact entities.Artifact) error

	// Artifacts returns the labels of the well-known artifacts present, in
	// summary order
	Artifacts(ctx context.Context, slug string) ([]string, error)

	// Path returns the location of a meeting directory as shown to operators
	Path(slug string) string

	// Get loads one meeting
	Get(ctx context.Context, slug string) (*entities.Meeting, error)

	// List returns every stored meeting, newest directory name first
	List(ctx context.Context) ([]*entities.Meeting, error)
}

// ObjectMirror receives copies of files written to the meeting store
type ObjectMirror interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// EventLogRepository appends raw deliveries to the per-source audit log
type EventLogRepository interface {
	Append(ctx context.Context, source string, event entities.RawEvent) error
}
