package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// ActionFunc defines the signature for an action implementation.
// It receives the inbound message and the sender's conversation accessors,
// and returns a result (e.g. a reply) or an error.
type ActionFunc func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error)

// Registry manages the available actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionFunc),
	}
}

// Register binds name to fn.
// If an action with the same name exists, it is overwritten. Registration never fails.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Lookup returns the action bound to name.
// Returns domain.ErrMissingAction if nothing is bound.
func (r *Registry) Lookup(name string) (ActionFunc, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingAction, name)
	}
	return fn, nil
}

// Execute looks up an action by name and executes it.
// Returns domain.ErrMissingAction if the action is not found.
func (r *Registry) Execute(ctx context.Context, name string, msg domain.Message, conv ports.Conversation) (any, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, msg, conv)
}

// Names returns the registered action names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
