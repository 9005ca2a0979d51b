package media

import (
	"context"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Extractor turns a container recording into a mono, fixed-rate audio artifact.
type Extractor interface {
	Extract(ctx context.Context, container models.MediaArtifact) (models.MediaArtifact, error)
}
