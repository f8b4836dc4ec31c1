// Package command is a small name-to-handler registry. Tree items carry a
// command name and arguments; the view executes them through a Registry.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCommand is returned by Execute for an unregistered name.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs a command with its positional arguments.
type Handler func(ctx context.Context, args ...any) error

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h, replacing any previous binding.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Execute runs the handler bound to name.
func (r *Registry) Execute(ctx context.Context, name string, args ...any) error {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h(ctx, args...)
}

// Names lists registered commands in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
