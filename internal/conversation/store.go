// Package conversation holds the state of a single chat conversation: its
// message log, the exchanges derived from it, the active UI component and the
// sideboard panel.
//
// A Store accepts every input as given. Callers that need validation do it
// before calling in.
package conversation

import (
	"sync"
	"time"

	"github.com/RL8/mb-final/internal/domain"
)

// Store is the conversation state holder. All methods are safe for
// concurrent use; mutations are applied and observed in the order they
// acquire the store.
type Store struct {
	// notifyMu serializes mutation plus observer dispatch so observers see
	// changes in mutation order. Observers must not mutate the store they
	// are subscribed to.
	notifyMu sync.Mutex
	mu       sync.RWMutex

	conversationID         *domain.ConversationID
	messages               []domain.Message
	exchanges              []*domain.Exchange
	activeComponent        *domain.ActiveComponent
	activeSideboardContent *domain.SideboardContent
	sideboardHistory       []*domain.SideboardContent

	observers      []observerEntry
	nextObserverID int

	now          func() time.Time
	newID        func() string
	historyLimit int
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for sideboard and change timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the exchange id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithHistoryLimit overrides the sideboard history cap. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		newID:        newExchangeID,
		historyLimit: domain.SideboardHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetConversationID sets the conversation identity. Messages and exchanges are untouched.
func (s *Store) SetConversationID(id domain.ConversationID) {
	s.apply(domain.ChangeConversationIDSet, id, func() []domain.Field {
		s.conversationID = &id
		return []domain.Field{domain.FieldConversationID}
	})
}

// AddMessage appends a message to the log and groups it into an exchange.
func (s *Store) AddMessage(msg domain.Message) {
	msg = cloneMessage(msg)
	s.apply(domain.ChangeMessageAdded, cloneMessage(msg), func() []domain.Field {
		s.messages = append(s.messages, msg)
		s.groupLocked(msg)
		return []domain.Field{domain.FieldMessages, domain.FieldExchanges}
	})
}

// SetActiveComponent replaces the active component. A nil data map becomes
// empty; the component type comes from data["type"] when it is a non-empty
// string.
func (s *Store) SetActiveComponent(componentID string, data map[string]any) {
	component := newActiveComponent(componentID, data)
	s.apply(domain.ChangeActiveComponentSet, cloneComponent(component), func() []domain.Field {
		s.activeComponent = component
		return []domain.Field{domain.FieldActiveComponent}
	})
}

// ClearActiveComponent removes the active component. Calling it with no
// active component is a no-op and notifies nobody.
func (s *Store) ClearActiveComponent() {
	s.apply(domain.ChangeActiveComponentCleared, nil, func() []domain.Field {
		if s.activeComponent == nil {
			return nil
		}
		s.activeComponent = nil
		return []domain.Field{domain.FieldActiveComponent}
	})
}

// UpdateSideboard builds new sideboard content, makes it active, records it
// in the history and attaches it to the last exchange when there is one,
// complete or not.
func (s *Store) UpdateSideboard(displayID string, update domain.SideboardUpdate) domain.SideboardContent {
	content := newSideboardContent(displayID, update, s.now())
	s.apply(domain.ChangeSideboardUpdated, *cloneSideboard(content), func() []domain.Field {
		return s.pushSideboardLocked(content)
	})
	return *cloneSideboard(content)
}

// SetActiveSideboardContent replaces the active sideboard content as given.
// History and exchanges are left alone. A nil content clears it.
func (s *Store) SetActiveSideboardContent(content *domain.SideboardContent) {
	active := cloneSideboard(content)
	s.apply(domain.ChangeActiveSideboardContentSet, cloneSideboard(active), func() []domain.Field {
		s.activeSideboardContent = active
		return []domain.Field{domain.FieldActiveSideboardContent}
	})
}

// ClearConversation resets messages, exchanges, the active component and the
// active sideboard content. The conversation id and sideboard history survive.
func (s *Store) ClearConversation() {
	s.apply(domain.ChangeConversationCleared, nil, func() []domain.Field {
		s.messages = nil
		s.exchanges = nil
		s.activeComponent = nil
		s.activeSideboardContent = nil
		return []domain.Field{
			domain.FieldMessages,
			domain.FieldExchanges,
			domain.FieldActiveComponent,
			domain.FieldActiveSideboardContent,
		}
	})
}

// apply runs mutate under the write lock and notifies observers with the
// resulting change. mutate returns the fields it changed; none means no
// notification.
func (s *Store) apply(kind domain.ChangeKind, payload any, mutate func() []domain.Field) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fields := mutate()
	if len(fields) == 0 {
		s.mu.Unlock()
		return
	}
	change := domain.Change{
		Kind:    kind,
		Fields:  fields,
		Ts:      s.now().UnixMilli(),
		Payload: payload,
		State:   s.snapshotLocked(),
	}
	observers := s.observersLocked()
	s.mu.Unlock()

	for _, observe := range observers {
		observe(change)
	}
}
