package blobstore

import (
	"fmt"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
)

// New opens the Store selected by cfg.Backend.
func New(cfg config.StorageConfig, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendAzure:
		return NewAzure(cfg.ConnectionString, cfg.Container, log)
	case config.BackendLocal:
		return NewLocal(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
