package pipeline

import (
	"context"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Orchestrator runs one job descriptor end to end.
type Orchestrator interface {
	Run(ctx context.Context, desc models.JobDescriptor) (models.PipelineResult, error)
}
