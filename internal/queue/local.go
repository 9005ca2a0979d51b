package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/models"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	messagePrefix     = "msg/"
	messageSeqKey     = "seq/msg"
	sequenceBandwidth = 100
)

// envelope is the stored form of a message. VisibleAt is unix nanoseconds.
type envelope struct {
	ID           string `json:"id"`
	Body         []byte `json:"body"`
	VisibleAt    int64  `json:"visible_at"`
	PopReceipt   string `json:"pop_receipt,omitempty"`
	DequeueCount int64  `json:"dequeue_count"`
}

// LocalOptions configures the badger-backed queue.
type LocalOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	Visibility time.Duration
	Clock      clockwork.Clock
}

type localMediator struct {
	mu         sync.Mutex
	db         *badger.DB
	seq        *badger.Sequence
	visibility time.Duration
	clock      clockwork.Clock
	logger     logger.Logger
}

// NewLocal opens a durable single-node queue stored in badger.
func NewLocal(opts LocalOptions, log logger.Logger) (Mediator, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create queue dir: %w", err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = &badgerLogger{logger: log}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}

	seq, err := db.GetSequence([]byte(messageSeqKey), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open queue sequence: %w", err)
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Visibility <= 0 {
		opts.Visibility = time.Hour
	}

	return &localMediator{
		db:         db,
		seq:        seq,
		visibility: opts.Visibility,
		clock:      opts.Clock,
		logger:     log,
	}, nil
}

func (m *localMediator) Enqueue(ctx context.Context, desc models.JobDescriptor) error {
	body, err := Encode(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	if err := m.enqueueRaw(body); err != nil {
		return err
	}
	m.logger.Info(ctx, "Enqueued job for %s", desc.SourceReference)
	return nil
}

func (m *localMediator) enqueueRaw(body []byte) error {
	n, err := m.seq.Next()
	if err != nil {
		return fmt.Errorf("%w: next id: %w", ErrEnqueue, err)
	}
	env := envelope{
		ID:        fmt.Sprintf("%020d", n),
		Body:      body,
		VisibleAt: m.clock.Now().UnixNano(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(env.ID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	return nil
}

func (m *localMediator) Dequeue(ctx context.Context, visibility time.Duration) (*Message, error) {
	if visibility <= 0 {
		visibility = m.visibility
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var leased *envelope

	err := m.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(messagePrefix), PrefetchValues: true, PrefetchSize: 16})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var env envelope
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			}); err != nil {
				return err
			}
			if env.VisibleAt > now.UnixNano() {
				continue
			}

			env.PopReceipt = uuid.NewString()
			env.DequeueCount++
			env.VisibleAt = now.Add(visibility).UnixNano()
			leased = &env
			break
		}
		if leased == nil {
			return nil
		}

		data, err := json.Marshal(leased)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(leased.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDequeue, err)
	}
	if leased == nil {
		return nil, nil
	}

	desc, err := Decode(leased.Body)
	if err != nil {
		m.logger.Warn(ctx, "Message %s is malformed (dequeue count %d)", leased.ID, leased.DequeueCount)
		return nil, fmt.Errorf("message %s: %w", leased.ID, err)
	}

	return &Message{
		ID:           leased.ID,
		PopReceipt:   leased.PopReceipt,
		DequeueCount: leased.DequeueCount,
		Descriptor:   desc,
	}, nil
}

// loadLeased loads the stored envelope of msg and checks that msg still holds its lease.
func loadLeased(txn *badger.Txn, msg *Message) (envelope, error) {
	var env envelope
	item, err := txn.Get(messageKey(msg.ID))
	if err != nil {
		return env, err
	}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &env)
	}); err != nil {
		return env, err
	}
	if env.PopReceipt != msg.PopReceipt {
		return env, ErrLeaseLost
	}
	return env, nil
}

func (m *localMediator) Extend(ctx context.Context, msg *Message, visibility time.Duration) error {
	if visibility <= 0 {
		visibility = m.visibility
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	receipt := uuid.NewString()
	err := m.db.Update(func(txn *badger.Txn) error {
		env, err := loadLeased(txn, msg)
		if err != nil {
			return err
		}
		env.PopReceipt = receipt
		env.VisibleAt = m.clock.Now().Add(visibility).UnixNano()
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(msg.ID), data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, ErrLeaseLost) {
		return fmt.Errorf("%w: %s", ErrLeaseLost, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("extend lease of %s: %w", msg.ID, err)
	}
	msg.PopReceipt = receipt
	return nil
}

func (m *localMediator) Acknowledge(ctx context.Context, msg *Message) error {
	if msg == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.db.Update(func(txn *badger.Txn) error {
		if _, err := loadLeased(txn, msg); err != nil {
			return err
		}
		return txn.Delete(messageKey(msg.ID))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrAcknowledge, msg.ID, ErrLeaseLost)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAcknowledge, msg.ID, err)
	}
	return nil
}

func (m *localMediator) Close() error {
	relErr := m.seq.Release()
	if err := m.db.Close(); err != nil {
		return err
	}
	return relErr
}

func messageKey(id string) []byte {
	return []byte(messagePrefix + id)
}

// badgerLogger routes badger's internal logging through the service logger.
type badgerLogger struct {
	logger logger.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(context.Background(), "badger: %s", trimLine(msg, items))
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(context.Background(), "badger: %s", trimLine(msg, items))
}

func (l *badgerLogger) Infof(msg string, items ...any) {
	l.logger.Debug(context.Background(), "badger: %s", trimLine(msg, items))
}

func (l *badgerLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(context.Background(), "badger: %s", trimLine(msg, items))
}

func trimLine(msg string, items []any) string {
	return strings.TrimRight(fmt.Sprintf(msg, items...), "\n")
}
