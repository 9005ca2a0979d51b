package tasks

import "errors"

var (
	ErrPoolFull  = errors.New("no free task slot")
	ErrShutdown  = errors.New("supervisor is shutting down")
	ErrTaskPanic = errors.New("task panicked")
)
