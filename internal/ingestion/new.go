package ingestion

import (
	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/queue"
)

type implService struct {
	store  blobstore.Store
	queue  queue.Mediator
	logger logger.Logger
}

// New creates a new ingestion Service
func New(store blobstore.Store, q queue.Mediator, log logger.Logger) Service {
	return &implService{
		store:  store,
		queue:  q,
		logger: log,
	}
}
