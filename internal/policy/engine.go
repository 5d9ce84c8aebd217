// Package policy decides whether a UI component sent by the AI backend may be
// applied to a conversation.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision is the outcome of a policy evaluation.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionBlock Decision = "block"
)

// Input is what the policy sees for one component.
type Input struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	ID        string `json:"id"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the given rego module. The module must define
// data.ui_policy.decision.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.ui_policy.decision"),
		rego.Module("ui_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the decision for a component. An undefined decision
// blocks; a decision of an unexpected type is an error.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
	input := map[string]interface{}{
		"session_id": in.SessionID,
		"type":       in.Type,
		"id":         in.ID,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionBlock, nil
	}

	val := results[0].Expressions[0].Value
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("policy returned %T, want string", val)
	}
	return Decision(s), nil
}

// DefaultPolicy allows the component types the front-end knows how to render.
const DefaultPolicy = `
package ui_policy

default decision = "block"

decision = "allow" {
	input.type == "CONTEXTUAL_INPUT"
}

decision = "allow" {
	input.type == "SIDEBOARD_UPDATE"
}
`
