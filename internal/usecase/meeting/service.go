package meeting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/errors"
	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/lock"
)

// Notifier delivers summaries downstream. Implementations swallow failures.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Event is one parsed meeting webhook delivery
type Event struct {
	Type    string
	Meeting entities.Metadata
	Content []entities.ContentItem
	Raw     []byte
}

// IngestResult describes what an ingest left on disk
type IngestResult struct {
	Slug     string
	Dir      string
	Artifact string
	Summary  string
}

// Service defines meeting store orchestration
type Service interface {
	Ingest(ctx context.Context, evt Event) (*IngestResult, error)
	List(ctx context.Context) ([]*entities.Meeting, error)
	Get(ctx context.Context, slug string) (*entities.Meeting, error)
}

type meetingService struct {
	repo     repositories.MeetingRepository
	locker   lock.Locker
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewMeetingService constructs a new meeting service. notifier may be nil for
// read-only use.
func NewMeetingService(
	repo repositories.MeetingRepository,
	locker lock.Locker,
	notifier Notifier,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &meetingService{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest stores the event under its meeting directory and notifies with the
// resulting summary. Every store step for one slug runs under the slug lock.
func (s *meetingService) Ingest(ctx context.Context, evt Event) (*IngestResult, error) {
	if evt.Type == "" {
		evt.Type = entities.EventUnknown
	}
	if evt.Meeting == nil {
		evt.Meeting = entities.Metadata{}
	}

	result, err := s.store(ctx, evt)
	if err != nil {
		return nil, err
	}

	if result.Summary == "" {
		s.logger.Info("Meeting summary suppressed",
			zap.String("source", "krisp"),
			zap.String("event", evt.Type),
			zap.String("slug", result.Slug),
		)
		return result, nil
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, result.Summary)
	}
	return result, nil
}

func (s *meetingService) store(ctx context.Context, evt Event) (*IngestResult, error) {
	slug := entities.MeetingSlug(evt.Meeting, s.now())
	result := &IngestResult{Slug: slug, Dir: s.repo.Path(slug)}

	unlock, err := s.locker.Lock(ctx, slug)
	if err != nil {
		return nil, errors.ErrStorageFailed("lock meeting", err)
	}
	defer unlock()

	if err := s.repo.SaveRaw(ctx, slug, evt.Type, evt.Raw); err != nil {
		return nil, s.storageError("save raw payload", slug, evt.Type, err)
	}

	merged, err := s.repo.MergeMetadata(ctx, slug, evt.Meeting)
	if err != nil {
		return nil, s.storageError("merge metadata", slug, evt.Type, err)
	}

	if artifact, ok := entities.DeriveArtifact(evt.Type, evt.Content); ok {
		if err := s.repo.SaveArtifact(ctx, slug, artifact); err != nil {
			return nil, s.storageError("save artifact", slug, evt.Type, err)
		}
		result.Artifact = artifact.FileName
	}

	available, err := s.repo.Artifacts(ctx, slug)
	if err != nil {
		return nil, s.storageError("list artifacts", slug, evt.Type, err)
	}

	result.Summary = BuildSummary(result.Dir, merged, evt.Type, available)

	s.logger.Info("Meeting event stored",
		zap.String("source", "krisp"),
		zap.String("event", evt.Type),
		zap.String("slug", slug),
		zap.String("artifact", result.Artifact),
		zap.Strings("available", available),
	)
	return result, nil
}

func (s *meetingService) storageError(op, slug, eventType string, err error) error {
	s.logger.Error("Meeting store failed",
		zap.String("source", "krisp"),
		zap.String("event", eventType),
		zap.String("slug", slug),
		zap.String("operation", op),
		zap.Time("timestamp", s.now()),
		zap.Error(err),
	)
	return errors.ErrStorageFailed(op, err)
}

// List returns every stored meeting, newest first
func (s *meetingService) List(ctx context.Context) ([]*entities.Meeting, error) {
	return s.repo.List(ctx)
}

// Get loads one meeting by directory name
func (s *meetingService) Get(ctx context.Context, slug string) (*entities.Meeting, error) {
	return s.repo.Get(ctx, slug)
}
