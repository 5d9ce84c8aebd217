package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/policy"
	"github.com/RL8/mb-final/internal/uicomponent"
)

// AppliedComponent is a component that reached the store.
type AppliedComponent struct {
	Component uicomponent.Component    `json:"component"`
	Sideboard *domain.SideboardContent `json:"sideboard,omitempty"`
}

// ApplyResult reports what ApplyComponents did with each component.
type ApplyResult struct {
	Applied []AppliedComponent      `json:"applied"`
	Blocked []uicomponent.Component `json:"blocked"`
}

// ReplyResult is the outcome of ApplyAIReply.
type ReplyResult struct {
	Message domain.Message `json:"message"`
	ApplyResult
}

// ApplyComponents applies backend tool outputs to the session in order.
// Sideboard updates go through UpdateSideboard; every other allowed
// component becomes the active component. Components the policy blocks are
// returned in Blocked and left out.
func (s *Service) ApplyComponents(ctx context.Context, sessionID string, components []uicomponent.Component) (ApplyResult, error) {
	result := ApplyResult{
		Applied: []AppliedComponent{},
		Blocked: []uicomponent.Component{},
	}
	store := s.registry.Acquire(sessionID)

	for _, c := range components {
		decision, err := s.evaluate(ctx, sessionID, c)
		if err != nil {
			return result, err
		}
		if decision != policy.DecisionAllow {
			log.Warn().Str("session_id", sessionID).Str("type", string(c.Type)).Str("decision", string(decision)).Msg("ui component blocked")
			result.Blocked = append(result.Blocked, c)
			s.reportBlocked(sessionID, c)
			continue
		}

		applied := AppliedComponent{Component: c}
		switch c.Type {
		case uicomponent.TypeSideboardUpdate:
			content := store.UpdateSideboard(sideboardDisplayID(c), c.SideboardUpdate())
			applied.Sideboard = &content
		default:
			store.SetActiveComponent(componentID(c), componentData(c))
		}
		result.Applied = append(result.Applied, applied)
	}

	return result, nil
}

// ApplyAIReply handles a free-text AI reply: an embedded component, if any,
// is cut out of the text, the remaining text is appended as an AI message and
// the component is applied after it.
func (s *Service) ApplyAIReply(ctx context.Context, sessionID, text string) (ReplyResult, error) {
	component, rest, err := uicomponent.Extract(text)
	found := err == nil
	if err != nil && !errors.Is(err, uicomponent.ErrNoComponent) {
		return ReplyResult{}, err
	}

	msg := domain.Message{
		Sender:    domain.SenderAI,
		Timestamp: s.now(),
		Content:   rest,
	}
	s.registry.Acquire(sessionID).AddMessage(msg)

	result := ReplyResult{
		Message: msg,
		ApplyResult: ApplyResult{
			Applied: []AppliedComponent{},
			Blocked: []uicomponent.Component{},
		},
	}
	if !found {
		return result, nil
	}

	applied, err := s.ApplyComponents(ctx, sessionID, []uicomponent.Component{component})
	if err != nil {
		return result, err
	}
	result.ApplyResult = applied
	return result, nil
}

func (s *Service) evaluate(ctx context.Context, sessionID string, c uicomponent.Component) (policy.Decision, error) {
	if s.policyEngine == nil {
		return policy.DecisionAllow, nil
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
		SessionID: sessionID,
		Type:      string(c.Type),
		ID:        c.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to evaluate ui component policy: %w", err)
	}
	return decision, nil
}

func sideboardDisplayID(c uicomponent.Component) string {
	if c.ID != "" {
		return c.ID
	}
	return "sideboard_" + uuid.New().String()[:8]
}

func componentID(c uicomponent.Component) string {
	if c.ID != "" {
		return c.ID
	}
	if c.Type == uicomponent.TypeContextualInput {
		inputType, _ := c.Data["input_type"].(string)
		label, _ := c.Data["label"].(string)
		if inputType != "" && label != "" {
			return uicomponent.ContextualInputID(inputType, label)
		}
	}
	return "component_" + uuid.New().String()[:8]
}

// componentData tags the data with the store-side component type, e.g.
// CONTEXTUAL_INPUT becomes contextual_input.
func componentData(c uicomponent.Component) map[string]any {
	data := make(map[string]any, len(c.Data)+1)
	for k, v := range c.Data {
		data[k] = v
	}
	data["type"] = strings.ToLower(string(c.Type))
	return data
}
