package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// slot serializes every operation on one client id. A dead slot has been
// removed from the registry and must not be reused.
type slot struct {
	mu   sync.Mutex
	ch   Channel
	dead atomic.Bool
}

// Registry maps client ids to live channels. Operations on the same id are
// serialized; different ids never block each other during a send.
type Registry struct {
	mu     sync.Mutex
	slots  map[string]*slot
	closed bool
}

// NewRegistry creates an empty Registry. Call Close at shutdown.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*slot)}
}

func (r *Registry) slot(clientID string, create bool) (*slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	s := r.slots[clientID]
	if (s == nil || s.dead.Load()) && create {
		s = &slot{}
		r.slots[clientID] = s
	}
	return s, nil
}

// Register binds ch to clientID. A channel already registered under the same
// id is closed and replaced.
func (r *Registry) Register(clientID string, ch Channel) error {
	for {
		s, err := r.slot(clientID, true)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.dead.Load() {
			s.mu.Unlock()
			continue
		}
		old := s.ch
		s.ch = ch
		s.mu.Unlock()

		if old != nil && old != ch {
			_ = old.Close()
		}
		return nil
	}
}

// Unregister removes clientID only while it is still bound to ch, so a stale
// disconnect cannot drop a newer connection.
func (r *Registry) Unregister(clientID string, ch Channel) {
	s, err := r.slot(clientID, false)
	if err != nil || s == nil {
		return
	}

	s.mu.Lock()
	if s.ch != ch {
		s.mu.Unlock()
		return
	}
	s.ch = nil
	s.dead.Store(true)
	s.mu.Unlock()

	r.mu.Lock()
	if r.slots[clientID] == s {
		delete(r.slots, clientID)
	}
	r.mu.Unlock()
}

func (r *Registry) Notify(ctx context.Context, clientID, text string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	s, err := r.slot(clientID, false)
	if err != nil || s == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return false, nil
	}
	if err := s.ch.Send(ctx, text); err != nil {
		return true, fmt.Errorf("%w: %s: %w", ErrSend, clientID, err)
	}
	return true, nil
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Close closes every registered channel and rejects later registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[string]*slot)
	r.closed = true
	r.mu.Unlock()

	for _, s := range slots {
		s.mu.Lock()
		if s.ch != nil {
			_ = s.ch.Close()
			s.ch = nil
		}
		s.dead.Store(true)
		s.mu.Unlock()
	}
}
