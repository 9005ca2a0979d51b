package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Reservation holds one task slot until it is used by Go or given back
// with Release.
type Reservation struct {
	s    *Supervisor
	used bool
}

// Reserve claims a slot without starting anything, so a caller can check
// capacity and take work in one step.
func (s *Supervisor) Reserve() (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return nil, ErrShutdown
	}
	if len(s.active)+s.reserved >= s.size {
		return nil, ErrPoolFull
	}
	s.reserved++
	return &Reservation{s: s}, nil
}

// Release returns an unused slot. It is a no-op after Go or a previous Release.
func (r *Reservation) Release() {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.used {
		return
	}
	r.used = true
	r.s.reserved--
}

// Go starts fn in the reserved slot. The reservation is spent either way.
func (r *Reservation) Go(ctx context.Context, name string, fn func(ctx context.Context) error) (*Task, error) {
	s := r.s
	task := &Task{
		ID:      uuid.NewString(),
		Name:    name,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
	taskCtx := logger.WithFields(context.WithoutCancel(ctx), "task_id", task.ID)

	s.mu.Lock()
	if r.used {
		s.mu.Unlock()
		return nil, fmt.Errorf("start %s: reservation already used", name)
	}
	r.used = true
	s.reserved--
	if s.closing {
		s.mu.Unlock()
		return nil, ErrShutdown
	}
	s.active[task.ID] = task
	s.wg.Add(1)
	s.mu.Unlock()

	err := s.pool.Submit(func() {
		s.run(taskCtx, task, fn)
	})
	if err != nil {
		s.finish(task)
		if errors.Is(err, ants.ErrPoolClosed) {
			return nil, ErrShutdown
		}
		return nil, fmt.Errorf("submit %s: %w", name, err)
	}

	s.logger.Debug(taskCtx, "Task %s started", name)
	return task, nil
}

// Go starts fn in the background. The task context keeps the values of ctx
// but not its cancellation, so a finished HTTP request does not stop the run.
func (s *Supervisor) Go(ctx context.Context, name string, fn func(ctx context.Context) error) (*Task, error) {
	r, err := s.Reserve()
	if err != nil {
		return nil, err
	}
	return r.Go(ctx, name, fn)
}

func (s *Supervisor) run(ctx context.Context, task *Task, fn func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			task.err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			s.logger.Error(ctx, "Task %s panicked: %v", task.Name, r)
		}
		// deregister first so Active is accurate once Done fires
		s.finish(task)
		close(task.done)
	}()

	task.err = fn(ctx)
	if task.err != nil {
		s.logger.Error(ctx, "Task %s failed after %s: %v", task.Name, time.Since(task.Started).Round(time.Millisecond), task.err)
		return
	}
	s.logger.Info(ctx, "Task %s finished in %s", task.Name, time.Since(task.Started).Round(time.Millisecond))
}

func (s *Supervisor) finish(task *Task) {
	s.mu.Lock()
	delete(s.active, task.ID)
	s.mu.Unlock()
	s.wg.Done()
}

// Active returns the number of tasks that have not finished.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Free returns the number of slots neither running nor reserved.
func (s *Supervisor) Free() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size - len(s.active) - s.reserved
}

// Shutdown stops accepting tasks and waits for running ones until ctx ends.
// The pool is released either way.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	defer s.pool.Release()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "Shutdown with %d task(s) still running", s.Active())
		return ctx.Err()
	}
}
