package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use. Conversations live for the lifetime of the process;
// there is no eviction.
type Store struct {
	data map[string]*domain.Conversation
	mu   sync.RWMutex
}

// NewStore creates a new in-memory context store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Conversation),
	}
}

// conversation returns the sender's entry, creating it on first access.
// The caller must hold the write lock.
func (s *Store) conversation(sender string) *domain.Conversation {
	conv, ok := s.data[sender]
	if !ok {
		conv = domain.NewConversation(sender)
		s.data[sender] = conv
	}
	return conv
}

// Touch creates the sender's conversation if needed and marks it as updated.
func (s *Store) Touch(ctx context.Context, sender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversation(sender).UpdatedAt = time.Now()
	return nil
}

// GetContext returns the current address of the sender.
func (s *Store) GetContext(ctx context.Context, sender string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conv, ok := s.data[sender]; ok {
		return conv.Current, nil
	}
	return "", nil
}

// SetContext moves the sender to address and remembers where it was.
func (s *Store) SetContext(ctx context.Context, sender, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.conversation(sender)
	conv.Previous = conv.Current
	conv.Current = address
	conv.UpdatedAt = time.Now()
	return nil
}

// Stash stores opaque data for the sender.
func (s *Store) Stash(ctx context.Context, sender string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.conversation(sender)
	conv.Stash = data
	conv.UpdatedAt = time.Now()
	return nil
}

// GetStash returns the stashed data of the sender.
func (s *Store) GetStash(ctx context.Context, sender string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conv, ok := s.data[sender]; ok {
		return conv.Stash, nil
	}
	return nil, nil
}

// Snapshot returns a copy of the sender's conversation.
// Unknown senders get an empty conversation that is not stored.
func (s *Store) Snapshot(ctx context.Context, sender string) (domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[sender]
	if !ok {
		return domain.Conversation{Sender: sender}, nil
	}
	// Copy on read so callers can't mutate store state through the pointer
	return *conv, nil
}

// Delete forgets the sender.
func (s *Store) Delete(ctx context.Context, sender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sender)
	return nil
}

// List returns the tracked senders in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	senders := make([]string, 0, len(s.data))
	for id := range s.data {
		senders = append(senders, id)
	}
	sort.Strings(senders)
	return senders, nil
}
