package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/delivery"
	"github.com/KugaChihiro/vr-queue/internal/document"
	"github.com/KugaChihiro/vr-queue/internal/httpapi"
	"github.com/KugaChihiro/vr-queue/internal/media"
	"github.com/KugaChihiro/vr-queue/internal/notify"
	"github.com/KugaChihiro/vr-queue/internal/pipeline"
	"github.com/KugaChihiro/vr-queue/internal/queue"
	"github.com/KugaChihiro/vr-queue/internal/summarizer"
	"github.com/KugaChihiro/vr-queue/internal/tasks"
	"github.com/KugaChihiro/vr-queue/internal/transcription"
	"github.com/KugaChihiro/vr-queue/internal/worker"
	"github.com/KugaChihiro/vr-queue/pkg/executor"
	"github.com/urfave/cli/v2"
)

func workerCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return fmt.Errorf("worker config: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Paths.Temp, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	store, err := blobstore.New(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	q, err := queue.New(cfg.Queue, log)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer q.Close()

	summ, err := summarizer.New(cfg.Summarizer, log)
	if err != nil {
		return fmt.Errorf("create summarizer: %w", err)
	}

	var gateway delivery.Gateway
	if cfg.Delivery.Enabled {
		gateway = delivery.New(cfg.Delivery, log)
	} else {
		log.Warn(ctx, "Delivery is disabled, documents will not be uploaded")
	}

	registry := notify.NewRegistry()
	defer registry.Close()

	orch := pipeline.New(pipeline.Deps{
		Store: store,
		Extractor: media.New(media.Options{
			BinaryPath: cfg.FFmpeg.BinaryPath,
			SampleRate: cfg.FFmpeg.SampleRate,
			Channels:   cfg.FFmpeg.Channels,
			TempDir:    cfg.Paths.Temp,
		}, executor.New(), log),
		Transcriber: transcription.New(transcription.Options{
			Endpoint: cfg.Speech.Endpoint,
			Key:      cfg.Speech.Key,
		}, log),
		Summarizer: summ,
		Documents:  document.New(cfg.Paths.Temp, log),
		Delivery:   gateway,
		Notifier:   registry,
	}, pipeline.OptionsFromConfig(cfg.Speech), log)

	sup, err := tasks.New(cfg.Performance.MaxConcurrent, log)
	if err != nil {
		return err
	}

	w := worker.New(q, sup, orch, worker.Options{
		DrainInterval: cfg.Worker.DrainInterval,
		Lease:         cfg.Queue.VisibilityTimeout,
	}, log)
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			log.Error(ctx, "Drain loop error: %v", err)
		}
	}()

	log.Info(ctx, "Worker ready (max concurrent %d, summarizer %s)", cfg.Performance.MaxConcurrent, cfg.Summarizer.Provider)
	handler := httpapi.NewWorkerHandler(w, gateway, notify.NewHandler(registry, log), log)
	serveErr := httpapi.Serve(ctx, cfg.Server, httpapi.NewWorkerRouter(handler, log), log)

	// let running jobs finish before the queue and channels close
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := sup.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "Stopped with jobs still running; their messages will be redelivered")
	}

	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	log.Info(context.Background(), "Worker stopped")
	return nil
}
