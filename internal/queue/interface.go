package queue

import (
	"context"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Message is one leased delivery of a job descriptor. It stays invisible to
// other consumers until acknowledged or until the visibility window expires.
type Message struct {
	ID           string
	PopReceipt   string
	DequeueCount int64
	Descriptor   models.JobDescriptor

	// text is the body as received, resent unchanged when a lease is extended
	text string
}

// Mediator hands job descriptors from the ingestion service to workers with
// at-least-once semantics.
type Mediator interface {
	Enqueue(ctx context.Context, desc models.JobDescriptor) error
	// Dequeue leases the next visible message for visibility, or for the
	// mediator's default window when visibility is 0. It returns nil, nil when
	// the queue is empty. A message that fails to decode is left leased and
	// reported with ErrMalformedMessage.
	Dequeue(ctx context.Context, visibility time.Duration) (*Message, error)
	// Extend keeps msg invisible for another visibility window counted from now.
	// It updates msg.PopReceipt; calls on one message must not overlap.
	// ErrLeaseLost means the lease already expired and someone else holds it.
	Extend(ctx context.Context, msg *Message, visibility time.Duration) error
	// Acknowledge removes a leased message for good.
	Acknowledge(ctx context.Context, msg *Message) error
	Close() error
}
