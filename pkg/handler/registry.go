// Package handler holds the name-to-callback table both execution modes
// dispatch events through. Application code populates it; the interpreter
// looks handlers up by name at call time, and generated code resolves the
// same names through statically emitted calls.
package handler

import (
	"sort"
	"sync"
)

// Handler is the closed callback capability a name maps to.
type Handler func(payload any)

// Registry is a concurrency-safe name → handler table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a name, replacing any previous binding.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler bound to name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Dispatch looks a handler up and invokes it. It reports whether a handler
// was bound; an unbound name is a no-op, never a failure.
func (r *Registry) Dispatch(name string, payload any) bool {
	h, ok := r.Lookup(name)
	if !ok {
		return false
	}
	h(payload)
	return true
}

// Names returns the registered handler names in sorted order.
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
