package ingestion

import (
	"context"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Upload is one recording plus the job metadata sent with it.
type Upload struct {
	FileName         string
	Data             []byte
	Project          string
	ProjectDirectory string
	ClientID         string
}

// Service stores uploads and hands them to the worker through the queue.
type Service interface {
	Ingest(ctx context.Context, upload Upload) (models.JobDescriptor, error)
}
