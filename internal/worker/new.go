package worker

import (
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/pipeline"
	"github.com/KugaChihiro/vr-queue/internal/queue"
	"github.com/KugaChihiro/vr-queue/internal/tasks"
	"github.com/jonboulle/clockwork"
)

// Worker pulls descriptors off the queue and runs them as supervised tasks.
type Worker struct {
	queue         queue.Mediator
	supervisor    *tasks.Supervisor
	orchestrator  pipeline.Orchestrator
	clock         clockwork.Clock
	drainInterval time.Duration
	lease         time.Duration
	logger        logger.Logger
}

// Options configures a Worker. DrainInterval 0 disables the drain loop.
// Lease is the visibility window taken on each message and renewed while its
// run is active; 0 uses the queue default without renewal.
type Options struct {
	DrainInterval time.Duration
	Lease         time.Duration
	Clock         clockwork.Clock
}

// New creates a new Worker
func New(q queue.Mediator, sup *tasks.Supervisor, orch pipeline.Orchestrator, opts Options, log logger.Logger) *Worker {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Worker{
		queue:         q,
		supervisor:    sup,
		orchestrator:  orch,
		clock:         opts.Clock,
		drainInterval: opts.DrainInterval,
		lease:         opts.Lease,
		logger:        log,
	}
}
