package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KugaChihiro/vr-queue/internal/logger"
)

// FolderHandler ingests recordings dropped into a watched folder. The local
// file is removed once its job is queued.
type FolderHandler struct {
	service          Service
	project          string
	projectDirectory string
	logger           logger.Logger
}

// NewFolderHandler creates a FolderHandler that files every recording under
// the given project and directory.
func NewFolderHandler(svc Service, project, projectDirectory string, log logger.Logger) *FolderHandler {
	return &FolderHandler{
		service:          svc,
		project:          project,
		projectDirectory: projectDirectory,
		logger:           log,
	}
}

// Handle ingests the file at path.
func (h *FolderHandler) Handle(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	_, err = h.service.Ingest(ctx, Upload{
		FileName:         filepath.Base(path),
		Data:             data,
		Project:          h.project,
		ProjectDirectory: h.projectDirectory,
	})
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		h.logger.Warn(ctx, "Failed to remove ingested file %s: %v", path, err)
	}
	return nil
}
