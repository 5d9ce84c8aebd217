package conversation

import "github.com/RL8/mb-final/internal/domain"

// Observer receives every change made to a store, after the change is applied.
type Observer func(domain.Change)

type observerEntry struct {
	id      int
	observe Observer
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run in registration order.
func (s *Store) Subscribe(observe Observer) (unsubscribe func()) {
	if observe == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextObserverID++
	id := s.nextObserverID
	s.observers = append(s.observers, observerEntry{id: id, observe: observe})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.observers {
			if entry.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// ObserverCount returns the number of registered observers.
func (s *Store) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

func (s *Store) observersLocked() []Observer {
	out := make([]Observer, len(s.observers))
	for i, entry := range s.observers {
		out[i] = entry.observe
	}
	return out
}
