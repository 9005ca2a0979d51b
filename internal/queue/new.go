package queue

import (
	"fmt"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/jonboulle/clockwork"
)

// New opens the Mediator selected by cfg.Backend.
func New(cfg config.QueueConfig, log logger.Logger) (Mediator, error) {
	switch cfg.Backend {
	case config.BackendAzure:
		return NewAzure(cfg.ConnectionString, cfg.Name, cfg.VisibilityTimeout, log)
	case config.BackendLocal:
		return NewLocal(LocalOptions{
			Path:       cfg.LocalPath,
			Visibility: cfg.VisibilityTimeout,
			Clock:      clockwork.NewRealClock(),
		}, log)
	default:
		return nil, fmt.Errorf("unsupported queue backend %q", cfg.Backend)
	}
}
