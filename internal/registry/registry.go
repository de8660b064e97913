// Package registry implements the process-wide handle layer: a generic,
// mutex-protected map from monotonically increasing integer handles to
// instances of one kind (fuzzy engines, evidence networks, optimizers),
// replacing the teacher's per-kind map+mutex pattern with a single generic
// type (spec.md §4.4).
package registry

import (
	"sync"
	"sync/atomic"

	"edc/internal/edcerr"
)

// Handle is an opaque, monotonically increasing identifier. Handles are
// never reused within a process lifetime, even after Destroy.
type Handle uint64

// Registry owns a mutex-protected map from Handle to *T for one kind of
// instance.
type Registry[T any] struct {
	mu      sync.RWMutex
	next    atomic.Uint64
	entries map[Handle]*T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[Handle]*T)}
}

// Create stores v under a freshly minted handle.
func (r *Registry[T]) Create(v *T) Handle {
	h := Handle(r.next.Add(1))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[h] = v
	return h
}

// Get looks up a handle, returning UnknownHandle if it was never created or
// has been destroyed.
func (r *Registry[T]) Get(h Handle) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[h]
	if !ok {
		return nil, edcerr.Newf(edcerr.UnknownHandle, "unknown handle: %d", h)
	}
	return v, nil
}

// Destroy removes a handle. Destroying an unknown or already-destroyed
// handle is a no-op error (spec.md §4.4 "destroyed handles return
// UnknownHandle").
func (r *Registry[T]) Destroy(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[h]; !ok {
		return edcerr.Newf(edcerr.UnknownHandle, "unknown handle: %d", h)
	}
	delete(r.entries, h)
	return nil
}

// Len returns the number of live handles, for stats endpoints.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns a copy of the handle set, for read-heavy iteration
// without holding the registry lock (spec.md §4.4 "copy-on-propagate").
func (r *Registry[T]) Snapshot() map[Handle]*T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Handle]*T, len(r.entries))
	for h, v := range r.entries {
		out[h] = v
	}
	return out
}
