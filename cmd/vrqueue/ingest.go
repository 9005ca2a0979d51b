package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/httpapi"
	"github.com/KugaChihiro/vr-queue/internal/ingestion"
	"github.com/KugaChihiro/vr-queue/internal/queue"
	"github.com/KugaChihiro/vr-queue/internal/watcher"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := blobstore.New(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	q, err := queue.New(cfg.Queue, log)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer q.Close()

	svc := ingestion.New(store, q, log)

	watchDir := c.String("watch")
	if watchDir == "" {
		watchDir = cfg.Paths.Watch
	}
	if watchDir != "" {
		if cfg.Ingest.DefaultProject == "" || cfg.Ingest.DefaultDirectory == "" {
			return fmt.Errorf("ingest.default_project and ingest.default_directory are required to watch %s", watchDir)
		}
		if err := os.MkdirAll(watchDir, 0o755); err != nil {
			return fmt.Errorf("create watch dir: %w", err)
		}

		folder := ingestion.NewFolderHandler(svc, cfg.Ingest.DefaultProject, cfg.Ingest.DefaultDirectory, log)
		w, err := watcher.New(watchDir, folder.Handle, log, cfg.Performance.MaxConcurrent)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				log.Error(ctx, "Watcher error: %v", err)
				stop()
			}
		}()
	}

	log.Info(ctx, "Ingest service ready (storage %s, queue %s)", cfg.Storage.Backend, cfg.Queue.Backend)
	handler := httpapi.NewIngestHandler(svc, cfg.Server.MaxUploadBytes, log)
	if err := httpapi.Serve(ctx, cfg.Server, httpapi.NewIngestRouter(handler, log), log); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	log.Info(context.Background(), "Ingest service stopped")
	return nil
}
