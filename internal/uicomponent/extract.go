package uicomponent

import (
	"encoding/json"
	"strings"
)

// Extract looks for a JSON object embedded in a free-text AI reply, spanning
// the first '{' to the last '}'. The object counts as a component only when
// it has both "type" and "data" keys. On success the remaining text, with the
// object cut out, is returned alongside the component.
func Extract(text string) (Component, string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Component{}, text, ErrNoComponent
	}

	candidate := text[start : end+1]

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &keys); err != nil {
		return Component{}, text, ErrNoComponent
	}
	if _, ok := keys["type"]; !ok {
		return Component{}, text, ErrNoComponent
	}
	if _, ok := keys["data"]; !ok {
		return Component{}, text, ErrNoComponent
	}

	var component Component
	if err := json.Unmarshal([]byte(candidate), &component); err != nil {
		return Component{}, text, ErrNoComponent
	}

	rest := strings.TrimSpace(strings.TrimSpace(text[:start]) + " " + strings.TrimSpace(text[end+1:]))
	return component, rest, nil
}
