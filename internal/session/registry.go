package session

import (
	"sync"
	"sync/atomic"
)

// Registry holds the process-wide Session, created lazily on first access.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[Session]
	factory func() *Session
}

// NewRegistry creates a Registry that builds its Session with factory.
func NewRegistry(factory func() *Session) *Registry {
	return &Registry{factory: factory}
}

// Session returns the shared Session, constructing it on first access.
// Only the first access takes the lock; later accesses read the cached pointer.
func (r *Registry) Session() *Session {
	if s := r.current.Load(); s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.current.Load(); s != nil {
		return s
	}
	s := r.factory()
	r.current.Store(s)
	return s
}

// Reset releases the current Session, if any, and drops it so the next
// access constructs a fresh one.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.current.Swap(nil); s != nil {
		s.Release()
	}
}
