package conversation

import "github.com/RL8/mb-final/internal/domain"

// Snapshot returns a deep copy of the whole state; callers may modify it
// freely.
func (s *Store) Snapshot() domain.ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ConversationID returns the conversation id and whether one was ever set.
func (s *Store) ConversationID() (domain.ConversationID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conversationID == nil {
		return "", false
	}
	return *s.conversationID, true
}

// Messages returns a copy of the message log.
func (s *Store) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.messages)
}

// Exchanges returns a copy of the exchange list.
func (s *Store) Exchanges() []domain.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exchangesLocked()
}

// LastExchange returns the most recent exchange, if any.
func (s *Store) LastExchange() (domain.Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last := s.lastExchangeLocked()
	if last == nil {
		return domain.Exchange{}, false
	}
	return copyExchange(last), true
}

// ActiveComponent returns the active component or nil.
func (s *Store) ActiveComponent() *domain.ActiveComponent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneComponent(s.activeComponent)
}

// ActiveSideboardContent returns the active sideboard content or nil.
func (s *Store) ActiveSideboardContent() *domain.SideboardContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSideboard(s.activeSideboardContent)
}

// SideboardHistory returns the sideboard history, most recent first.
func (s *Store) SideboardHistory() []domain.SideboardContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLocked()
}

func (s *Store) snapshotLocked() domain.ConversationState {
	state := domain.ConversationState{
		Messages:         cloneMessages(s.messages),
		Exchanges:        s.exchangesLocked(),
		SideboardHistory: s.historyLocked(),
	}
	if s.conversationID != nil {
		id := *s.conversationID
		state.ConversationID = &id
	}
	state.ActiveComponent = cloneComponent(s.activeComponent)
	state.ActiveSideboardContent = cloneSideboard(s.activeSideboardContent)
	return state
}

func (s *Store) exchangesLocked() []domain.Exchange {
	out := make([]domain.Exchange, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		out = append(out, copyExchange(ex))
	}
	return out
}

func (s *Store) historyLocked() []domain.SideboardContent {
	out := make([]domain.SideboardContent, 0, len(s.sideboardHistory))
	for _, c := range s.sideboardHistory {
		out = append(out, *cloneSideboard(c))
	}
	return out
}

func copyExchange(ex *domain.Exchange) domain.Exchange {
	c := *ex
	c.Messages = cloneMessages(ex.Messages)
	c.SideboardContent = cloneSideboard(ex.SideboardContent)
	return c
}
