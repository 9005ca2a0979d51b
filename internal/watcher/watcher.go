package watcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/media"
	"github.com/fsnotify/fsnotify"
)

type implWatcher struct {
	dir           string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settleDelay   time.Duration
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Start begins monitoring the directory for new recordings
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Folder watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.dir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(media.SupportedContainers(), ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing ingestion to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Folder watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !event.Has(fsnotify.Create) {
				continue
			}
			if !media.SupportedContainer(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			if !w.claim(event.Name) {
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)

			// Acquire semaphore slot (blocks if max concurrent reached)
			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go w.handle(ctx, event.Name)
			case <-ctx.Done():
				w.release(event.Name)
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handle(ctx context.Context, path string) {
	defer w.wg.Done()
	defer func() { <-w.semaphore }()
	defer w.release(path)

	// give the writer a moment to finish the file
	select {
	case <-time.After(w.settleDelay):
	case <-ctx.Done():
		return
	}

	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to ingest %s: %v", path, err)
	}
}

// claim marks path as being handled; duplicate create events are dropped.
func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[path]; ok {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
