package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KugaChihiro/vr-queue/internal/media"
	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Ingest checks the format, stores the recording and enqueues its descriptor.
// Nothing is stored or enqueued for an unsupported format. When enqueueing
// fails the stored blob is removed again.
func (s *implService) Ingest(ctx context.Context, upload Upload) (models.JobDescriptor, error) {
	name := filepath.Base(strings.TrimSpace(upload.FileName))
	if name == "." || name == "/" || name == "" {
		return models.JobDescriptor{}, fmt.Errorf("%w: file", ErrMissingField)
	}
	if upload.Project == "" {
		return models.JobDescriptor{}, fmt.Errorf("%w: project", ErrMissingField)
	}
	if upload.ProjectDirectory == "" {
		return models.JobDescriptor{}, fmt.Errorf("%w: project_directory", ErrMissingField)
	}

	if !media.SupportedContainer(name) {
		s.logger.Warn(ctx, "Rejected %s: unsupported format %q", name, filepath.Ext(name))
		return models.JobDescriptor{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat,
			filepath.Ext(name), strings.Join(media.SupportedContainers(), ", "))
	}

	url, err := s.store.Upload(ctx, name, upload.Data)
	if err != nil {
		return models.JobDescriptor{}, fmt.Errorf("store %s: %w", name, err)
	}

	desc := models.JobDescriptor{
		Project:          upload.Project,
		ProjectDirectory: upload.ProjectDirectory,
		SourceReference:  url,
		ClientID:         upload.ClientID,
	}

	if err := s.queue.Enqueue(ctx, desc); err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.logger.Error(ctx, "Blob %s left behind after enqueue failure: %v", name, delErr)
		}
		return models.JobDescriptor{}, fmt.Errorf("enqueue %s: %w", name, err)
	}

	s.logger.Info(ctx, "Ingested %s (%d bytes) for project %s", name, len(upload.Data), upload.Project)
	return desc, nil
}
