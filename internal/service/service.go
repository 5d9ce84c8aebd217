// Package service is the entry point transports use to reach conversation
// stores. It owns the session registry and wires the change journal and the
// component policy around it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/conversation"
	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/policy"
	"github.com/RL8/mb-final/internal/repository"
	"github.com/RL8/mb-final/internal/session"
	"github.com/RL8/mb-final/internal/uicomponent"
)

// ErrJournalDisabled is returned by journal queries when no journal is configured.
var ErrJournalDisabled = errors.New("change journal is disabled")

// BlockedHook is called for each component the policy keeps out of a session.
type BlockedHook func(sessionID string, c uicomponent.Component)

type Service struct {
	registry     *session.Registry
	journal      repository.Journal
	policyEngine *policy.Engine
	now          func() time.Time

	mu           sync.RWMutex
	blockedHooks []BlockedHook
}

// New creates a service. journal and policyEngine may be nil: without a
// journal changes are not recorded, without a policy every component is applied.
func New(registry *session.Registry, journal repository.Journal, policyEngine *policy.Engine) *Service {
	s := &Service{
		registry:     registry,
		journal:      journal,
		policyEngine: policyEngine,
		now:          time.Now,
	}
	if journal != nil {
		registry.OnCreate(s.attachJournal)
	}
	return s
}

// OnSessionCreated registers a hook that runs for every new session store.
func (s *Service) OnSessionCreated(hook session.CreateHook) {
	s.registry.OnCreate(hook)
}

// OnComponentBlocked registers a hook for components the policy blocks.
func (s *Service) OnComponentBlocked(hook BlockedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockedHooks = append(s.blockedHooks, hook)
}

func (s *Service) reportBlocked(sessionID string, c uicomponent.Component) {
	s.mu.RLock()
	hooks := append([]BlockedHook(nil), s.blockedHooks...)
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(sessionID, c)
	}
}

// Acquire returns the session's store, creating it on first use.
func (s *Service) Acquire(sessionID string) *conversation.Store {
	return s.registry.Acquire(sessionID)
}

// SessionCount returns the number of live session stores.
func (s *Service) SessionCount() int {
	return s.registry.Len()
}

// Subscribe registers an observer on the session's store.
func (s *Service) Subscribe(sessionID string, observe conversation.Observer) (unsubscribe func()) {
	return s.registry.Acquire(sessionID).Subscribe(observe)
}

// attachJournal records every change of a new store in the journal.
func (s *Service) attachJournal(sessionID string, store *conversation.Store) {
	if err := s.journal.EnsureSession(context.Background(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to record session in journal")
	}
	store.Subscribe(func(change domain.Change) {
		s.recordChange(sessionID, change)
	})
}

func (s *Service) recordChange(sessionID string, change domain.Change) {
	event := &domain.JournalEvent{
		EventID:   "evt_" + uuid.New().String(),
		SessionID: sessionID,
		Ts:        change.Ts,
		Kind:      change.Kind,
		Fields:    change.Fields,
	}
	if change.Payload != nil {
		payload, err := json.Marshal(change.Payload)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Str("kind", string(change.Kind)).Msg("failed to marshal change payload")
		} else {
			event.Payload = payload
		}
	}

	if err := s.journal.CreateEvent(context.Background(), event); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("kind", string(change.Kind)).Msg("failed to record change")
	}
}
