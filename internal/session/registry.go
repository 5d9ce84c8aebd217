// Package session keeps one conversation store per client session.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/conversation"
)

// ErrNotFound is returned when a session has no store yet.
var ErrNotFound = errors.New("session not found")

// CreateHook runs once for every store the registry creates, before the
// store is handed to any caller. Hooks run without the registry lock held
// and may use the registry, but must not Acquire or Get their own session.
type CreateHook func(sessionID string, store *conversation.Store)

// Registry owns the conversation stores of all live sessions. Acquiring the
// same session id always yields the same store.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*entry
	hooks  []CreateHook
	opts   []conversation.Option
}

// entry is a store whose create hooks may still be running; ready is closed
// once they are done.
type entry struct {
	store *conversation.Store
	ready chan struct{}
}

// NewRegistry creates an empty registry; opts are applied to every store it creates.
func NewRegistry(opts ...conversation.Option) *Registry {
	return &Registry{
		stores: make(map[string]*entry),
		opts:   opts,
	}
}

// OnCreate registers a hook for stores created from now on.
func (r *Registry) OnCreate(hook CreateHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Acquire returns the store for sessionID, creating it on first use.
func (r *Registry) Acquire(sessionID string) *conversation.Store {
	r.mu.RLock()
	e, ok := r.stores[sessionID]
	r.mu.RUnlock()
	if ok {
		<-e.ready
		return e.store
	}

	r.mu.Lock()
	if e, ok := r.stores[sessionID]; ok {
		r.mu.Unlock()
		<-e.ready
		return e.store
	}
	e = &entry{store: conversation.New(r.opts...), ready: make(chan struct{})}
	r.stores[sessionID] = e
	hooks := append([]CreateHook(nil), r.hooks...)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook(sessionID, e.store)
	}
	close(e.ready)
	log.Debug().Str("session_id", sessionID).Msg("conversation store created")
	return e.store
}

// Get returns the store for sessionID without creating one.
func (r *Registry) Get(sessionID string) (*conversation.Store, error) {
	r.mu.RLock()
	e, ok := r.stores[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	<-e.ready
	return e.store, nil
}

// Release drops the store for sessionID. The next Acquire starts from an empty store.
func (r *Registry) Release(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[sessionID]; !ok {
		return false
	}
	delete(r.stores, sessionID)
	log.Debug().Str("session_id", sessionID).Msg("conversation store released")
	return true
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// SessionIDs returns the ids of all live sessions, sorted.
func (r *Registry) SessionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
