package tasks

import (
	"context"
	"time"
)

// Task is the handle of one supervised background run.
type Task struct {
	ID      string
	Name    string
	Started time.Time

	done chan struct{}
	err  error
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's result. It is nil until Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
