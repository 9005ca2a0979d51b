package tasks

import (
	"fmt"
	"sync"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// Supervisor runs background tasks on a bounded pool and keeps a registry of
// the ones still running so failures are logged and shutdown can wait on them.
type Supervisor struct {
	pool   *ants.Pool
	size   int
	logger logger.Logger

	mu      sync.Mutex
	active   map[string]*Task
	reserved int
	closing  bool
	wg      sync.WaitGroup
}

// New creates a Supervisor that runs at most size tasks at once.
// Submissions beyond that are rejected with ErrPoolFull instead of blocking.
// Slots are counted here because the pool keeps idle workers alive.
func New(size int, log logger.Logger) (*Supervisor, error) {
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create task pool: %w", err)
	}
	return &Supervisor{
		pool:   pool,
		size:   size,
		logger: log,
		active: make(map[string]*Task),
	}, nil
}
