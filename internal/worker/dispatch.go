package worker

import (
	"context"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/queue"
	"github.com/KugaChihiro/vr-queue/internal/tasks"
	"github.com/pkg/errors"
)

// DispatchOne reserves a task slot, leases one descriptor and starts its
// pipeline run in the background. It returns nil, nil when the queue is empty.
// The lease is renewed while the run is active and the message is
// acknowledged when the run ends, whatever its outcome. If the run never
// starts the lease simply expires and the message is redelivered.
// Returned errors carry a stack trace.
func (w *Worker) DispatchOne(ctx context.Context) (*tasks.Task, error) {
	slot, err := w.supervisor.Reserve()
	if errors.Is(err, tasks.ErrPoolFull) {
		return nil, errors.WithStack(ErrNoCapacity)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer slot.Release()

	msg, err := w.queue.Dequeue(ctx, w.lease)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if msg == nil {
		return nil, nil
	}

	ctx = logger.WithFields(ctx, "message_id", msg.ID)
	if msg.Descriptor.ClientID != "" {
		ctx = logger.WithFields(ctx, "client_id", msg.Descriptor.ClientID)
	}
	if msg.DequeueCount > 1 {
		w.logger.Warn(ctx, "Message delivered %d times, processing again", msg.DequeueCount)
	}

	task, err := slot.Go(ctx, "pipeline", func(taskCtx context.Context) error {
		stopRenewal := w.keepLeased(taskCtx, msg)
		_, runErr := w.orchestrator.Run(taskCtx, msg.Descriptor)
		stopRenewal()

		if ackErr := w.queue.Acknowledge(taskCtx, msg); ackErr != nil {
			w.logger.Error(taskCtx, "Failed to acknowledge message: %v", ackErr)
		}
		return runErr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "start pipeline for message %s", msg.ID)
	}

	w.logger.Info(ctx, "Dispatched %s as task %s", msg.Descriptor.SourceReference, task.ID)
	return task, nil
}

// keepLeased extends the lease on msg every half lease until the returned
// stop func is called. stop waits for an in-flight extension so the caller
// sees the latest pop receipt.
func (w *Worker) keepLeased(ctx context.Context, msg *queue.Message) (stop func()) {
	if w.lease <= 0 {
		return func() {}
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := w.clock.NewTicker(w.lease / 2)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return
			case <-ticker.Chan():
				err := w.queue.Extend(ctx, msg, w.lease)
				if errors.Is(err, queue.ErrLeaseLost) {
					w.logger.Error(ctx, "Lease lost, message may be processed again: %v", err)
					return
				}
				if err != nil {
					w.logger.Warn(ctx, "Failed to extend lease: %v", err)
					continue
				}
				w.logger.Debug(ctx, "Lease extended by %s", w.lease)
			}
		}
	}()

	return func() {
		close(quit)
		<-done
	}
}

// Run drains the queue every DrainInterval until ctx ends. It returns
// immediately when the drain loop is disabled.
func (w *Worker) Run(ctx context.Context) error {
	if w.drainInterval <= 0 {
		return nil
	}

	w.logger.Info(ctx, "Queue drain loop started (interval %s)", w.drainInterval)
	ticker := w.clock.NewTicker(w.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Queue drain loop stopped")
			return ctx.Err()
		case <-ticker.Chan():
			if w.supervisor.Free() == 0 {
				continue
			}
			if _, err := w.DispatchOne(ctx); err != nil {
				if errors.Is(err, queue.ErrMalformedMessage) {
					w.logger.Warn(ctx, "Skipping malformed message: %v", err)
					continue
				}
				w.logger.Error(ctx, "Dispatch failed: %v", err)
			}
		}
	}
}

// ActiveTasks reports how many pipeline runs are in progress.
func (w *Worker) ActiveTasks() int {
	return w.supervisor.Active()
}
