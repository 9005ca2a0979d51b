package queue

import "errors"

var (
	ErrMalformedMessage = errors.New("malformed queue message")
	ErrEnqueue          = errors.New("enqueue failed")
	ErrDequeue          = errors.New("dequeue failed")
	ErrAcknowledge      = errors.New("acknowledge failed")

	// ErrLeaseLost means the message was leased again after our visibility window ran out.
	ErrLeaseLost = errors.New("message lease lost")
)
