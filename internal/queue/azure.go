package queue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/models"
)

type azureMediator struct {
	client     *azqueue.QueueClient
	visibility time.Duration
	logger     logger.Logger
}

// NewAzure creates a Mediator over an Azure Storage queue. Message bodies are plain JSON text.
func NewAzure(connStr, queueName string, visibility time.Duration, log logger.Logger) (Mediator, error) {
	client, err := azqueue.NewQueueClientFromConnectionString(connStr, queueName, nil)
	if err != nil {
		return nil, fmt.Errorf("create queue client: %w", err)
	}
	return &azureMediator{
		client:     client,
		visibility: visibility,
		logger:     log,
	}, nil
}

func (m *azureMediator) Enqueue(ctx context.Context, desc models.JobDescriptor) error {
	body, err := Encode(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	if _, err := m.client.EnqueueMessage(ctx, string(body), nil); err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	m.logger.Info(ctx, "Enqueued job for %s", desc.SourceReference)
	return nil
}

func (m *azureMediator) Dequeue(ctx context.Context, visibility time.Duration) (*Message, error) {
	if visibility <= 0 {
		visibility = m.visibility
	}
	resp, err := m.client.DequeueMessage(ctx, &azqueue.DequeueMessageOptions{
		VisibilityTimeout: to.Ptr(seconds(visibility)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDequeue, err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0] == nil {
		return nil, nil
	}

	raw := resp.Messages[0]
	msg := &Message{
		ID:           deref(raw.MessageID),
		PopReceipt:   deref(raw.PopReceipt),
		DequeueCount: derefInt(raw.DequeueCount),
		text:         deref(raw.MessageText),
	}

	desc, err := Decode([]byte(deref(raw.MessageText)))
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	msg.Descriptor = desc
	return msg, nil
}

func (m *azureMediator) Extend(ctx context.Context, msg *Message, visibility time.Duration) error {
	if visibility <= 0 {
		visibility = m.visibility
	}
	resp, err := m.client.UpdateMessage(ctx, msg.ID, msg.PopReceipt, msg.text, &azqueue.UpdateMessageOptions{
		VisibilityTimeout: to.Ptr(seconds(visibility)),
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && (respErr.StatusCode == http.StatusNotFound || respErr.StatusCode == http.StatusBadRequest) {
			return fmt.Errorf("%w: %s: %w", ErrLeaseLost, msg.ID, err)
		}
		return fmt.Errorf("extend lease of %s: %w", msg.ID, err)
	}
	if resp.PopReceipt != nil {
		msg.PopReceipt = *resp.PopReceipt
	}
	return nil
}

func (m *azureMediator) Acknowledge(ctx context.Context, msg *Message) error {
	if msg == nil {
		return nil
	}
	if _, err := m.client.DeleteMessage(ctx, msg.ID, msg.PopReceipt, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAcknowledge, msg.ID, err)
	}
	return nil
}

func (m *azureMediator) Close() error {
	return nil
}

// seconds rounds up so a sub-second window never becomes 0, which Azure reads
// as "visible immediately".
func seconds(d time.Duration) int32 {
	secs := int32((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
