// Package registry provides a generic, thread-safe registry keyed by
// case-insensitive names.
//
// Lookups vastly outnumber registrations: a registry is normally filled once
// at startup and then read concurrently by many readers and writers.
//
// Example usage:
//
//	scribes := registry.New[Scribe]()
//	scribes.Register("TEL", telephoneScribe)
//	s, ok := scribes.Lookup("tel")
package registry

import (
	"fmt"
	"strings"
	"sync"

	"card-codec/internal/common/errors"
)

// Registry provides a generic, thread-safe registry of entries of type T.
type Registry[T any] struct {
	entries map[string]T
	order   []string
	mu      sync.RWMutex
}

// New creates a new empty registry for entries of type T.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// Register adds an entry under key. An existing entry for the same key
// (compared case-insensitively) is replaced and keeps its position.
func (r *Registry[T]) Register(key string, entry T) {
	k := normalize(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[k]; !exists {
		r.order = append(r.order, k)
	}
	r.entries[k] = entry
}

// Lookup retrieves the entry registered under key.
func (r *Registry[T]) Lookup(key string) (T, bool) {
	r.mu.RLock()
	entry, exists := r.entries[normalize(key)]
	r.mu.RUnlock()
	return entry, exists
}

// Get retrieves an entry by key.
// Returns a not-found error if nothing is registered under key.
func (r *Registry[T]) Get(key string) (T, error) {
	entry, exists := r.Lookup(key)
	if !exists {
		var zero T
		return zero, errors.NotFoundError(fmt.Sprintf("registry entry %s", key))
	}
	return entry, nil
}

// Unregister removes the entry registered under key, if any.
func (r *Registry[T]) Unregister(key string) {
	k := normalize(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[k]; !exists {
		return
	}
	delete(r.entries, k)
	for i, o := range r.order {
		if o == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Keys returns the registered keys (upper-cased) in registration order.
// The returned slice is a copy and safe to modify.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// IsRegistered checks if an entry is registered under key.
func (r *Registry[T]) IsRegistered(key string) bool {
	_, exists := r.Lookup(key)
	return exists
}

// Count returns the number of registered entries.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all registered entries.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]T)
	r.order = nil
}
