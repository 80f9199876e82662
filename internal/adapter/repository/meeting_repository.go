package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	contentTypeJSON     = "application/json"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
)

// meetingRepository stores one directory per meeting under root
type meetingRepository struct {
	root   string
	mirror repositories.ObjectMirror
	logger *zap.Logger
}

// NewMeetingRepository creates a filesystem meeting repository. mirror may be
// nil.
func NewMeetingRepository(root string, mirror repositories.ObjectMirror, logger *zap.Logger) repositories.MeetingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &meetingRepository{root: root, mirror: mirror, logger: logger}
}

// Path returns the meeting directory
func (r *meetingRepository) Path(slug string) string {
	return filepath.Join(r.root, slug)
}

// SaveRaw stores raw/<event>.json, pretty-printed with key order preserved
func (r *meetingRepository) SaveRaw(ctx context.Context, slug, eventType string, body []byte) error {
	if err := validSlug(slug); err != nil {
		return err
	}

	pretty, err := indentJSON(body)
	if err != nil {
		return fmt.Errorf("raw payload is not JSON: %w", err)
	}

	rel := filepath.Join(entities.RawDir, entities.SafeEventName(eventType)+".json")
	return r.write(ctx, slug, rel, pretty, contentTypeJSON)
}

// MergeMetadata merges meta into meeting.json. A missing or unreadable file
// counts as empty.
func (r *meetingRepository) MergeMetadata(ctx context.Context, slug string, meta entities.Metadata) (entities.Metadata, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}

	existing, err := r.readMetadata(slug)
	if err != nil {
		r.logger.Warn("Discarding unreadable meeting metadata",
			zap.String("slug", slug),
			zap.Error(err),
		)
		existing = entities.Metadata{}
	}

	merged := existing.Merge(meta)
	data, err := encodeJSON(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := r.write(ctx, slug, entities.MeetingFile, data, contentTypeJSON); err != nil {
		return nil, err
	}
	return merged, nil
}

// SaveArtifact writes a derived Markdown file
func (r *meetingRepository) SaveArtifact(ctx context.Context, slug string, artifact entities.Artifact) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	if err := validSlug(artifact.FileName); err != nil {
		return fmt.Errorf("artifact %q: %w", artifact.FileName, err)
	}
	return r.write(ctx, slug, artifact.FileName, []byte(artifact.Body), contentTypeMarkdown)
}

// Artifacts lists the well-known artifacts present for slug
func (r *meetingRepository) Artifacts(ctx context.Context, slug string) ([]string, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}

	var labels []string
	for _, a := range entities.ArtifactFiles {
		_, err := os.Stat(filepath.Join(r.Path(slug), a.File))
		switch {
		case err == nil:
			labels = append(labels, a.Label)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to stat %s: %w", a.File, err)
		}
	}
	return labels, nil
}

// Get loads the metadata, artifacts and raw event names of one meeting
func (r *meetingRepository) Get(ctx context.Context, slug string) (*entities.Meeting, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}

	info, err := os.Stat(r.Path(slug))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, entities.ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat meeting: %w", err)
	}

	meta, err := r.readMetadata(slug)
	if err != nil {
		r.logger.Warn("Unreadable meeting metadata",
			zap.String("slug", slug),
			zap.Error(err),
		)
		meta = entities.Metadata{}
	}

	artifacts, err := r.Artifacts(ctx, slug)
	if err != nil {
		return nil, err
	}

	events, err := r.rawEvents(slug)
	if err != nil {
		return nil, err
	}

	return &entities.Meeting{
		Slug:      slug,
		Metadata:  meta,
		Artifacts: artifacts,
		Events:    events,
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// List returns all meetings, newest directory name first
func (r *meetingRepository) List(ctx context.Context) ([]*entities.Meeting, error) {
	entries, err := os.ReadDir(r.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []*entities.Meeting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read meeting root: %w", err)
	}

	meetings := make([]*entities.Meeting, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.Get(ctx, e.Name())
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Slug > meetings[j].Slug
	})
	return meetings, nil
}

func (r *meetingRepository) readMetadata(slug string) (entities.Metadata, error) {
	data, err := os.ReadFile(filepath.Join(r.Path(slug), entities.MeetingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return entities.Metadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var meta entities.Metadata
	if err := dec.Decode(&meta); err != nil {
		return nil, err
	}
	if meta == nil {
		meta = entities.Metadata{}
	}
	return meta, nil
}

func (r *meetingRepository) rawEvents(slug string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.Path(slug), entities.RawDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read raw payloads: %w", err)
	}

	var events []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		events = append(events, strings.TrimSuffix(name, ".json"))
	}
	return events, nil
}

// write replaces <slug>/<rel> atomically and mirrors it when a mirror is set
func (r *meetingRepository) write(ctx context.Context, slug, rel string, data []byte, contentType string) error {
	path := filepath.Join(r.Path(slug), rel)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}

	if r.mirror != nil {
		key := slug + "/" + filepath.ToSlash(rel)
		if err := r.mirror.Put(ctx, key, data, contentType); err != nil {
			r.logger.Warn("Failed to mirror meeting file",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func validSlug(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", entities.ErrInvalidSlug, name)
	}
	return nil
}

// indentJSON re-indents body with two spaces without reordering keys
func indentJSON(body []byte) ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
