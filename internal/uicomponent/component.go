// Package uicomponent decodes the UI component payloads produced by the AI
// backend's tools: contextual input requests and sideboard updates.
package uicomponent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RL8/mb-final/internal/domain"
)

// Type is the backend's component tag.
type Type string

const (
	TypeContextualInput Type = "CONTEXTUAL_INPUT"
	TypeSideboardUpdate Type = "SIDEBOARD_UPDATE"
)

// DefaultContentType is used for sideboard updates that do not name one.
const DefaultContentType = "text"

// ErrNoComponent is returned by Extract when the text carries no component.
var ErrNoComponent = errors.New("no ui component found")

// Component is a single tool output as sent by the backend.
type Component struct {
	Type Type           `json:"type"`
	ID   string         `json:"id,omitempty"`
	Data map[string]any `json:"data"`
}

// NewContextualInput builds the component asking the user for one form value.
func NewContextualInput(inputType, label string, required bool, placeholder string) Component {
	if placeholder == "" {
		placeholder = "Please enter " + strings.ToLower(label)
	}
	return Component{
		Type: TypeContextualInput,
		ID:   ContextualInputID(inputType, label),
		Data: map[string]any{
			"input_type":  inputType,
			"label":       label,
			"required":    required,
			"placeholder": placeholder,
		},
	}
}

// ContextualInputID derives the component id, e.g. input_text_first_name.
func ContextualInputID(inputType, label string) string {
	return "input_" + inputType + "_" + strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// NewSideboardUpdate builds a sideboard update component.
func NewSideboardUpdate(title, content, contentType string, actions []map[string]any) Component {
	if contentType == "" {
		contentType = DefaultContentType
	}
	if actions == nil {
		actions = []map[string]any{}
	}
	return Component{
		Type: TypeSideboardUpdate,
		Data: map[string]any{
			"title":        title,
			"content":      content,
			"content_type": contentType,
			"actions":      actions,
		},
	}
}

// SideboardUpdate reads the sideboard fields out of Data. Missing or
// mistyped fields are left empty for the store to default.
func (c Component) SideboardUpdate() domain.SideboardUpdate {
	update := domain.SideboardUpdate{
		Title:       stringField(c.Data, "title"),
		Content:     stringField(c.Data, "content"),
		ContentType: stringField(c.Data, "content_type"),
	}
	switch actions := c.Data["actions"].(type) {
	case []map[string]any:
		update.Actions = actions
	case []any:
		for _, a := range actions {
			if m, ok := a.(map[string]any); ok {
				update.Actions = append(update.Actions, m)
			}
		}
	}
	return update
}

// Decode parses a single component object or an array of them.
func Decode(raw []byte) ([]Component, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrNoComponent
	}

	if raw[0] == '[' {
		var components []Component
		if err := json.Unmarshal(raw, &components); err != nil {
			return nil, fmt.Errorf("decode components: %w", err)
		}
		return components, nil
	}

	var component Component
	if err := json.Unmarshal(raw, &component); err != nil {
		return nil, fmt.Errorf("decode component: %w", err)
	}
	return []Component{component}, nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
