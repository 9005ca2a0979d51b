package watcher

import (
	"fmt"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 500 * time.Millisecond

// New creates a new Watcher instance with concurrency control
func New(dir string, handler EventHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &implWatcher{
		dir:           dir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   defaultSettleDelay,
		inFlight:      make(map[string]struct{}),
	}, nil
}
