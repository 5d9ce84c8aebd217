package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/domain"
)

func (s *Service) SetConversationID(ctx context.Context, sessionID string, id domain.ConversationID) {
	s.registry.Acquire(sessionID).SetConversationID(id)
}

// AddMessage appends a message. A message without a timestamp is stamped
// with the current time.
func (s *Service) AddMessage(ctx context.Context, sessionID string, msg domain.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.registry.Acquire(sessionID).AddMessage(msg)
}

func (s *Service) SetActiveComponent(ctx context.Context, sessionID, componentID string, data map[string]any) {
	log.Debug().Str("session_id", sessionID).Str("component_id", componentID).Msg("setting active component")
	s.registry.Acquire(sessionID).SetActiveComponent(componentID, data)
}

func (s *Service) ClearActiveComponent(ctx context.Context, sessionID string) {
	s.registry.Acquire(sessionID).ClearActiveComponent()
}

func (s *Service) UpdateSideboard(ctx context.Context, sessionID, displayID string, update domain.SideboardUpdate) domain.SideboardContent {
	content := s.registry.Acquire(sessionID).UpdateSideboard(displayID, update)
	log.Debug().Str("session_id", sessionID).Str("display_id", displayID).Msg("sideboard updated")
	return content
}

func (s *Service) SetActiveSideboardContent(ctx context.Context, sessionID string, content *domain.SideboardContent) {
	s.registry.Acquire(sessionID).SetActiveSideboardContent(content)
}

func (s *Service) ClearConversation(ctx context.Context, sessionID string) {
	s.registry.Acquire(sessionID).ClearConversation()
}

// GetState returns the session's full state.
func (s *Service) GetState(ctx context.Context, sessionID string) (domain.ConversationState, error) {
	store, err := s.registry.Get(sessionID)
	if err != nil {
		return domain.ConversationState{}, fmt.Errorf("failed to get state: %w", err)
	}
	return store.Snapshot(), nil
}

func (s *Service) GetExchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	store, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchanges: %w", err)
	}
	return store.Exchanges(), nil
}

func (s *Service) GetSideboardHistory(ctx context.Context, sessionID string) ([]domain.SideboardContent, error) {
	store, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sideboard history: %w", err)
	}
	return store.SideboardHistory(), nil
}

// GetJournal returns recorded changes of a session.
func (s *Service) GetJournal(ctx context.Context, sessionID string, afterTs int64, kinds []string, limit int) ([]domain.JournalEvent, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	events, err := s.journal.GetEvents(ctx, sessionID, afterTs, kinds, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal events: %w", err)
	}
	return events, nil
}
